package lr

import (
	"bytes"
	"fmt"
	"strings"
	"text/scanner"

	"github.com/npillmayer/lrgen"
)

// --- Symbols ---------------------------------------------------------------

type symbolKind int8

const (
	terminalKind symbolKind = iota
	nonTerminalKind
)

// Symbol is a grammar symbol, either a terminal or a non-terminal.
// Symbols are compared by identity.
type Symbol struct {
	Name  string
	Value lrgen.TokType // token type, for terminals only
	kind  symbolKind
}

// EOF is the end-of-input terminal. It is implicitly part of every grammar
// and must not be used on a right hand side.
var EOF = &Symbol{Name: "#eof", Value: scanner.EOF, kind: terminalKind}

// NewTerminal creates a terminal symbol for a token type.
func NewTerminal(name string, tokval lrgen.TokType) *Symbol {
	return &Symbol{Name: name, Value: tokval, kind: terminalKind}
}

// NewNonTerminal creates a non-terminal symbol.
func NewNonTerminal(name string) *Symbol {
	return &Symbol{Name: name, kind: nonTerminalKind}
}

// IsTerminal returns true if this symbol represents a terminal.
func (A *Symbol) IsTerminal() bool {
	return A.kind == terminalKind
}

// TokenType returns the token type of a terminal. For non-terminals it
// returns 0.
func (A *Symbol) TokenType() lrgen.TokType {
	if A.kind != terminalKind {
		return 0
	}
	return A.Value
}

func (A *Symbol) String() string {
	return A.Name
}

// --- Rules -----------------------------------------------------------------

// Rule is a grammar production. Rules are immutable once built.
type Rule struct {
	Serial int     // ordinal number of the rule within its grammar
	LHS    *Symbol // left hand side, a non-terminal
	rhs    []*Symbol
}

// NewRule creates a rule LHS ::= RHS. lhs has to be a non-terminal.
func NewRule(serial int, lhs *Symbol, rhs ...*Symbol) *Rule {
	r := &Rule{Serial: serial, LHS: lhs}
	r.rhs = append([]*Symbol(nil), rhs...)
	return r
}

// RHS returns a copy of the right hand side of a rule.
func (r *Rule) RHS() []*Symbol {
	return append([]*Symbol(nil), r.rhs...)
}

// Len returns the length of the right hand side.
func (r *Rule) Len() int {
	return len(r.rhs)
}

// IsEpsilon is true for rules with an empty right hand side.
func (r *Rule) IsEpsilon() bool {
	return len(r.rhs) == 0
}

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(r.LHS.Name)
	b.WriteString("] ::= [")
	for i, A := range r.rhs {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(A.Name)
	}
	b.WriteString("]")
	return b.String()
}

// --- Grammar ---------------------------------------------------------------

// Grammar is a context-free grammar. Grammars are immutable; use a
// GrammarBuilder or NewGrammar to create one.
//
// Every symbol of a grammar has an integer ID. Terminals are numbered first,
// starting with EOF = 0, then follow the non-terminals, starting with the
// start symbol.
type Grammar struct {
	Name         string
	start        *Symbol
	rules        []*Rule
	terminals    []*Symbol // EOF at index 0
	nonterminals []*Symbol // start symbol at index 0
	symbols      map[string]*Symbol
	ids          map[*Symbol]int
	tokens       map[lrgen.TokType]*Symbol
	rulesFor     map[*Symbol][]*Rule
	augmented    bool // start symbol has been introduced by Normalize
}

// NewGrammar creates a grammar from a start symbol and a list of rules.
// It checks that no symbol name is used for different symbols, that
// terminals have distinct token types and that EOF is not used on a
// right hand side.
func NewGrammar(name string, start *Symbol, rules []*Rule) (*Grammar, error) {
	if start == nil || start.IsTerminal() {
		return nil, fmt.Errorf("grammar %q: start symbol must be a non-terminal", name)
	}
	g := &Grammar{
		Name:     name,
		start:    start,
		rules:    append([]*Rule(nil), rules...),
		symbols:  make(map[string]*Symbol),
		ids:      make(map[*Symbol]int),
		tokens:   make(map[lrgen.TokType]*Symbol),
		rulesFor: make(map[*Symbol][]*Rule),
	}
	var terms, nonterms []*Symbol
	register := func(A *Symbol) error {
		if B, ok := g.symbols[A.Name]; ok {
			if A != B {
				return fmt.Errorf("grammar %q: symbol name %q used for different symbols", name, A.Name)
			}
			return nil
		}
		g.symbols[A.Name] = A
		if A.IsTerminal() {
			if A == EOF {
				return nil
			}
			if A.Value == scanner.EOF {
				return fmt.Errorf("grammar %q: terminal %q uses token type of EOF", name, A.Name)
			}
			if B, ok := g.tokens[A.Value]; ok {
				return fmt.Errorf("grammar %q: terminals %q and %q share token type %d",
					name, B.Name, A.Name, A.Value)
			}
			g.tokens[A.Value] = A
			terms = append(terms, A)
		} else if A != start {
			nonterms = append(nonterms, A)
		}
		return nil
	}
	if err := register(EOF); err != nil {
		return nil, err
	}
	if err := register(start); err != nil {
		return nil, err
	}
	for _, r := range g.rules {
		if r.LHS == nil || r.LHS.IsTerminal() {
			return nil, fmt.Errorf("grammar %q: rule %d has no non-terminal LHS", name, r.Serial)
		}
		if err := register(r.LHS); err != nil {
			return nil, err
		}
		g.rulesFor[r.LHS] = append(g.rulesFor[r.LHS], r)
	}
	for _, r := range g.rules {
		for _, A := range r.rhs {
			if A == EOF {
				return nil, fmt.Errorf("grammar %q: EOF not allowed in rule %v", name, r)
			}
			if err := register(A); err != nil {
				return nil, err
			}
		}
	}
	g.terminals = append([]*Symbol{EOF}, terms...)
	g.nonterminals = append([]*Symbol{start}, nonterms...)
	for i, A := range g.terminals {
		g.ids[A] = i
	}
	for i, A := range g.nonterminals {
		g.ids[A] = len(g.terminals) + i
	}
	return g, nil
}

// Start returns the start symbol.
func (g *Grammar) Start() *Symbol {
	return g.start
}

// Size returns the number of rules.
func (g *Grammar) Size() int {
	return len(g.rules)
}

// Rule returns rule no. i.
func (g *Grammar) Rule(i int) *Rule {
	if i < 0 || i >= len(g.rules) {
		return nil
	}
	return g.rules[i]
}

// Rules returns all rules of the grammar, in order.
func (g *Grammar) Rules() []*Rule {
	return append([]*Rule(nil), g.rules...)
}

// RulesFor returns all rules with left hand side N.
func (g *Grammar) RulesFor(N *Symbol) []*Rule {
	return g.rulesFor[N]
}

// Terminals returns the terminals of g, EOF first.
func (g *Grammar) Terminals() []*Symbol {
	return append([]*Symbol(nil), g.terminals...)
}

// NonTerminals returns the non-terminals of g, start symbol first.
func (g *Grammar) NonTerminals() []*Symbol {
	return append([]*Symbol(nil), g.nonterminals...)
}

// SymbolCount returns the number of terminals (including EOF) plus the number
// of non-terminals.
func (g *Grammar) SymbolCount() int {
	return len(g.terminals) + len(g.nonterminals)
}

// SymbolByName finds a symbol by name, or returns nil.
func (g *Grammar) SymbolByName(name string) *Symbol {
	return g.symbols[name]
}

// TerminalByToken finds a terminal by its token type, or returns nil.
func (g *Grammar) TerminalByToken(tt lrgen.TokType) *Symbol {
	if tt == scanner.EOF {
		return EOF
	}
	return g.tokens[tt]
}

// SymbolID returns the ID of a symbol, or -1 if it is not part of g.
func (g *Grammar) SymbolID(A *Symbol) int {
	if id, ok := g.ids[A]; ok {
		return id
	}
	return -1
}

// Symbol returns the symbol with a given ID, or nil.
func (g *Grammar) Symbol(id int) *Symbol {
	if id < 0 {
		return nil
	}
	if id < len(g.terminals) {
		return g.terminals[id]
	}
	if id -= len(g.terminals); id < len(g.nonterminals) {
		return g.nonterminals[id]
	}
	return nil
}

// EachSymbol iterates over all symbols of the grammar, in order of their IDs.
// It returns the results of the mapper, omitting nils.
func (g *Grammar) EachSymbol(mapper func(A *Symbol) interface{}) []interface{} {
	var r []interface{}
	for _, A := range g.terminals {
		if x := mapper(A); x != nil {
			r = append(r, x)
		}
	}
	return append(r, g.EachNonTerminal(mapper)...)
}

// EachNonTerminal iterates over all non-terminals of the grammar.
func (g *Grammar) EachNonTerminal(mapper func(N *Symbol) interface{}) []interface{} {
	var r []interface{}
	for _, N := range g.nonterminals {
		if x := mapper(N); x != nil {
			r = append(r, x)
		}
	}
	return r
}

// IsAugmented is true if the start symbol has been introduced by Normalize.
func (g *Grammar) IsAugmented() bool {
	return g.augmented
}

// IsNormalized is true if the start symbol has exactly one rule and does not
// appear on any right hand side.
func (g *Grammar) IsNormalized() bool {
	if len(g.rulesFor[g.start]) != 1 {
		return false
	}
	for _, r := range g.rules {
		for _, A := range r.rhs {
			if A == g.start {
				return false
			}
		}
	}
	return true
}

// Normalize returns g if it is normalized. Otherwise it returns a new grammar
// with a fresh start symbol S', carrying a single rule S' ::= S. The new
// symbol is called "S", with apostrophes appended until the name is not taken.
// The new rule is appended after the rules of g, all other rules are shared.
func (g *Grammar) Normalize() *Grammar {
	if g.IsNormalized() {
		return g
	}
	name := "S"
	for g.symbols[name] != nil {
		name += "'"
	}
	start := NewNonTerminal(name)
	rules := append(g.Rules(), NewRule(len(g.rules), start, g.start))
	ng, err := NewGrammar(g.Name, start, rules)
	if err != nil { // cannot happen, g has been checked before
		panic(err)
	}
	ng.augmented = true
	tracer().Debugf("normalized grammar %q with new start rule %v", g.Name, rules[len(rules)-1])
	return ng
}

// ReachableNonTerminals returns all non-terminals reachable from the start symbol.
func (g *Grammar) ReachableNonTerminals() []*Symbol {
	seen := map[*Symbol]bool{g.start: true}
	queue := []*Symbol{g.start}
	for len(queue) > 0 {
		N := queue[0]
		queue = queue[1:]
		for _, r := range g.rulesFor[N] {
			for _, A := range r.rhs {
				if !A.IsTerminal() && !seen[A] {
					seen[A] = true
					queue = append(queue, A)
				}
			}
		}
	}
	var r []*Symbol
	for _, N := range g.nonterminals {
		if seen[N] {
			r = append(r, N)
		}
	}
	return r
}

// UnreachableNonTerminals returns all non-terminals not reachable from the
// start symbol. Rules for these will never be used by a parser.
func (g *Grammar) UnreachableNonTerminals() []*Symbol {
	reach := make(map[*Symbol]bool)
	for _, N := range g.ReachableNonTerminals() {
		reach[N] = true
	}
	var r []*Symbol
	for _, N := range g.nonterminals {
		if !reach[N] {
			r = append(r, N)
		}
	}
	return r
}

// Dump is a debugging helper, tracing all the rules of g.
func (g *Grammar) Dump() {
	tracer().Debugf("--- %s --------------------------------------------", g.Name)
	for _, r := range g.rules {
		tracer().Debugf("%3d: %s", r.Serial, r)
	}
	tracer().Debugf("-------------------------------------------------------")
}

func (g *Grammar) String() string {
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("grammar %s, start = %s\n", g.Name, g.start))
	for _, r := range g.rules {
		b.WriteString(fmt.Sprintf("%3d: %s\n", r.Serial, r))
	}
	return b.String()
}

// === Grammar Builder =======================================================

// GrammarBuilder is a builder type for grammars. The LHS of the first rule
// will be the start symbol of the grammar.
//
//    b := NewGrammarBuilder("G")
//    b.LHS("S").N("A").T("a", 1).End()
//
type GrammarBuilder struct {
	name    string
	rules   []*Rule
	symbols map[string]*Symbol
	start   *Symbol
	err     error
}

// NewGrammarBuilder gets a new grammar builder, given the name of the grammar to build.
func NewGrammarBuilder(gname string) *GrammarBuilder {
	return &GrammarBuilder{
		name:    gname,
		symbols: make(map[string]*Symbol),
	}
}

// RuleBuilder is a builder type for a single rule. Rule builders are created
// by GrammarBuilder.LHS(…).
type RuleBuilder struct {
	gb  *GrammarBuilder
	lhs *Symbol
	rhs []*Symbol
}

func (gb *GrammarBuilder) nonTerminal(name string) *Symbol {
	if A, ok := gb.symbols[name]; ok {
		if A.IsTerminal() && gb.err == nil {
			gb.err = fmt.Errorf("symbol %q used as terminal and as non-terminal", name)
		}
		return A
	}
	A := NewNonTerminal(name)
	gb.symbols[name] = A
	return A
}

func (gb *GrammarBuilder) terminal(name string, tokval int) *Symbol {
	if A, ok := gb.symbols[name]; ok {
		if !A.IsTerminal() && gb.err == nil {
			gb.err = fmt.Errorf("symbol %q used as non-terminal and as terminal", name)
		} else if A.IsTerminal() && A.Value != lrgen.TokType(tokval) && gb.err == nil {
			gb.err = fmt.Errorf("terminal %q used with token types %d and %d", name, A.Value, tokval)
		}
		return A
	}
	A := NewTerminal(name, lrgen.TokType(tokval))
	gb.symbols[name] = A
	return A
}

// LHS starts a new rule with left hand side non-terminal s.
func (gb *GrammarBuilder) LHS(s string) *RuleBuilder {
	A := gb.nonTerminal(s)
	if gb.start == nil {
		gb.start = A
	}
	return &RuleBuilder{gb: gb, lhs: A}
}

// N appends a non-terminal to the right hand side.
func (rb *RuleBuilder) N(s string) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.gb.nonTerminal(s))
	return rb
}

// T appends a terminal with token type tokval to the right hand side.
func (rb *RuleBuilder) T(s string, tokval int) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.gb.terminal(s, tokval))
	return rb
}

// End finishes a rule.
func (rb *RuleBuilder) End() *Rule {
	r := NewRule(len(rb.gb.rules), rb.lhs, rb.rhs...)
	rb.gb.rules = append(rb.gb.rules, r)
	return r
}

// Epsilon finishes a rule with an empty right hand side. Any symbols
// appended before are an error.
func (rb *RuleBuilder) Epsilon() *Rule {
	if len(rb.rhs) > 0 && rb.gb.err == nil {
		rb.gb.err = fmt.Errorf("epsilon rule for %q has symbols on the right hand side", rb.lhs)
	}
	rb.rhs = nil
	return rb.End()
}

// Grammar returns the grammar built so far, or the first error encountered.
func (gb *GrammarBuilder) Grammar() (*Grammar, error) {
	if gb.err != nil {
		return nil, gb.err
	}
	if gb.start == nil {
		return nil, fmt.Errorf("grammar %q has no rules", gb.name)
	}
	return NewGrammar(gb.name, gb.start, gb.rules)
}
