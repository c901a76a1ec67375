package lr

import (
	"fmt"
	"html"
	"io"
	"sort"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr/sparse"
	"github.com/npillmayer/schuko/gconf"
)

// === Actions ===============================================================

// ActionKind is the kind of a parser action. The ordinal values are part of
// the binary cache format and must not be changed.
type ActionKind int8

// Kinds of parser actions.
const (
	ShiftAction ActionKind = iota
	ReduceAction
	FinishAction
	ErrorAction
)

func (k ActionKind) String() string {
	switch k {
	case ShiftAction:
		return "shift"
	case ReduceAction:
		return "reduce"
	case FinishAction:
		return "finish"
	}
	return "error"
}

// Action is an entry of the ACTION table. Reduce and Finish actions carry
// the rule to reduce. A Finish action with DropStart set belongs to a grammar
// with a start symbol introduced by normalization; the parser then drops the
// node for this symbol.
type Action struct {
	Kind      ActionKind
	Rule      *Rule
	DropStart bool
}

// Error is the action for absent table entries.
var Error = Action{Kind: ErrorAction}

// Equals compares two actions.
func (a Action) Equals(b Action) bool {
	return a.Kind == b.Kind && a.Rule == b.Rule && a.DropStart == b.DropStart
}

func (a Action) String() string {
	switch a.Kind {
	case ReduceAction:
		return fmt.Sprintf("<reduce %v>", a.Rule)
	case FinishAction:
		if a.DropStart {
			return fmt.Sprintf("<finish %v, drop>", a.Rule)
		}
		return fmt.Sprintf("<finish %v>", a.Rule)
	}
	return "<" + a.Kind.String() + ">"
}

// Actions are stored in a sparse matrix of int32. Shift is -1, reduce is the
// (non-negative) index of the rule, finish is encoded as -2-2·index with
// DropStart adding -1.
const shiftCode = -1

// === Tables ================================================================

// Tables are the GOTO and ACTION tables of an LR(k) parser. The GOTO table
// maps (state, symbol) to states, the ACTION table maps (state, word) to
// actions, with words of length k. State 0 is the start state.
//
// Symbols have IDs: terminals first, beginning with EOF = 0, then
// non-terminals, beginning with the start symbol.
//
// Tables are immutable and may be shared between concurrent parsers.
type Tables struct {
	k            int
	augmented    bool
	terminals    []*Symbol
	nonterminals []*Symbol
	ids          map[*Symbol]int
	tokens       map[lrgen.TokType]*Symbol
	rules        []*Rule
	ruleIndex    map[*Rule]int
	words        []Word // interned lookahead words, column index of ACTION
	wordIndex    map[string]int
	gotoT        *sparse.IntMatrix
	actionT      *sparse.IntMatrix
	stateCnt     int
}

// K returns the lookahead length.
func (t *Tables) K() int {
	return t.k
}

// Augmented is true if the start symbol has been introduced by normalization.
func (t *Tables) Augmented() bool {
	return t.augmented
}

// Start returns the start symbol.
func (t *Tables) Start() *Symbol {
	return t.nonterminals[0]
}

// StateCount returns the number of states.
func (t *Tables) StateCount() int {
	return t.stateCnt
}

// Terminals returns all terminals, EOF first.
func (t *Tables) Terminals() []*Symbol {
	return append([]*Symbol(nil), t.terminals...)
}

// NonTerminals returns all non-terminals, the start symbol first.
func (t *Tables) NonTerminals() []*Symbol {
	return append([]*Symbol(nil), t.nonterminals...)
}

// SymbolID returns the ID of a symbol, or -1.
func (t *Tables) SymbolID(A *Symbol) int {
	if id, ok := t.ids[A]; ok {
		return id
	}
	return -1
}

// Symbol returns the symbol for an ID, or nil.
func (t *Tables) Symbol(id int) *Symbol {
	if id < 0 {
		return nil
	}
	if id < len(t.terminals) {
		return t.terminals[id]
	}
	if id -= len(t.terminals); id < len(t.nonterminals) {
		return t.nonterminals[id]
	}
	return nil
}

// TerminalFor returns the terminal for a token type, or nil.
func (t *Tables) TerminalFor(tt lrgen.TokType) *Symbol {
	return t.tokens[tt]
}

// Goto returns the state reached from a state with symbol A.
func (t *Tables) Goto(state int, A *Symbol) (int, bool) {
	id, ok := t.ids[A]
	if !ok {
		return 0, false
	}
	v := t.gotoT.Value(state, id)
	if v == t.gotoT.NullValue() {
		return 0, false
	}
	return int(v), true
}

// Action returns the action for a state and a lookahead word, or Error.
func (t *Tables) Action(state int, w Word) Action {
	return t.ActionByKey(state, w.Key())
}

// ActionByKey returns the action for a state and the key of a lookahead
// word (see WordKey), or Error.
func (t *Tables) ActionByKey(state int, key string) Action {
	col, ok := t.wordIndex[key]
	if !ok {
		return Error
	}
	return t.decode(t.actionT.Value(state, col))
}

// EachGoto calls f for every GOTO entry of a state, ordered by symbol ID.
func (t *Tables) EachGoto(state int, f func(A *Symbol, to int)) {
	t.gotoT.EachInRow(state, func(j int, v int32) {
		f(t.Symbol(j), int(v))
	})
}

// EachAction calls f for every ACTION entry of a state. Words are visited in
// the order they have been entered into the table.
func (t *Tables) EachAction(state int, f func(w Word, a Action)) {
	t.actionT.EachInRow(state, func(j int, v int32) {
		f(t.words[j], t.decode(v))
	})
}

// Expected returns the lookahead words with an action in a state, sorted.
func (t *Tables) Expected(state int) []Word {
	var r []Word
	t.EachAction(state, func(w Word, a Action) {
		r = append(r, w)
	})
	sort.Slice(r, func(i, j int) bool {
		return wordComparator(r[i], r[j]) < 0
	})
	return r
}

// ActionCount returns the number of entries in the ACTION table.
func (t *Tables) ActionCount() int {
	return t.actionT.ValueCount()
}

// GotoCount returns the number of entries in the GOTO table.
func (t *Tables) GotoCount() int {
	return t.gotoT.ValueCount()
}

func (t *Tables) decode(v int32) Action {
	switch {
	case v == t.actionT.NullValue():
		return Error
	case v == shiftCode:
		return Action{Kind: ShiftAction}
	case v >= 0:
		return Action{Kind: ReduceAction, Rule: t.rules[v]}
	}
	x := int(-2 - v)
	return Action{Kind: FinishAction, Rule: t.rules[x/2], DropStart: x%2 == 1}
}

// --- Table builder ---------------------------------------------------------

// TableBuilder assembles parser tables. It is used by the table generator
// and for restoring tables from a serialized form.
type TableBuilder struct {
	t *Tables
}

// NewTableBuilder creates a builder for tables with lookahead k. terminals
// have to start with EOF, nonterminals with the start symbol.
func NewTableBuilder(k int, augmented bool, terminals, nonterminals []*Symbol) (*TableBuilder, error) {
	if len(terminals) == 0 || terminals[0] != EOF {
		return nil, fmt.Errorf("table terminals must start with EOF")
	}
	if len(nonterminals) == 0 {
		return nil, fmt.Errorf("tables need a start symbol")
	}
	t := &Tables{
		k:            k,
		augmented:    augmented,
		terminals:    append([]*Symbol(nil), terminals...),
		nonterminals: append([]*Symbol(nil), nonterminals...),
		ids:          make(map[*Symbol]int),
		tokens:       make(map[lrgen.TokType]*Symbol),
		ruleIndex:    make(map[*Rule]int),
		wordIndex:    make(map[string]int),
	}
	for i, A := range t.terminals {
		if !A.IsTerminal() {
			return nil, fmt.Errorf("symbol %v is not a terminal", A)
		}
		t.ids[A] = i
		t.tokens[A.Value] = A
	}
	for i, A := range t.nonterminals {
		if A.IsTerminal() {
			return nil, fmt.Errorf("symbol %v is not a non-terminal", A)
		}
		t.ids[A] = len(t.terminals) + i
	}
	symcnt := len(t.terminals) + len(t.nonterminals)
	t.gotoT = sparse.NewIntMatrix(0, symcnt, sparse.DefaultNullValue)
	t.actionT = sparse.NewIntMatrix(0, 0, sparse.DefaultNullValue)
	return &TableBuilder{t: t}, nil
}

func (tb *TableBuilder) touchState(state int) {
	if state >= tb.t.stateCnt {
		tb.t.stateCnt = state + 1
	}
}

// SetStateCount declares the number of states. States without any table
// entries are legal.
func (tb *TableBuilder) SetStateCount(n int) {
	tb.touchState(n - 1)
}

// SetGoto enters a GOTO entry.
func (tb *TableBuilder) SetGoto(from int, A *Symbol, to int) error {
	id, ok := tb.t.ids[A]
	if !ok {
		return fmt.Errorf("goto for unknown symbol %v", A)
	}
	if from < 0 || to < 0 {
		return fmt.Errorf("goto with negative state %d -> %d", from, to)
	}
	tb.touchState(from)
	tb.touchState(to)
	tb.t.gotoT.Set(from, id, int32(to))
	return nil
}

// ActionAt returns the action already entered for (state, w), or Error.
func (tb *TableBuilder) ActionAt(state int, w Word) Action {
	return tb.t.Action(state, w)
}

// SetAction enters an ACTION entry. It is an error to enter a different
// action for an occupied (state, w) or to enter Error.
func (tb *TableBuilder) SetAction(state int, w Word, a Action) error {
	if a.Kind == ErrorAction {
		return fmt.Errorf("error actions are not entered into tables")
	}
	if w.Len() != tb.t.k {
		return fmt.Errorf("lookahead %v does not have length %d", w, tb.t.k)
	}
	for _, t := range w.syms {
		if _, ok := tb.t.ids[t]; !ok || !t.IsTerminal() {
			return fmt.Errorf("lookahead %v contains unknown terminal %v", w, t)
		}
	}
	if old := tb.ActionAt(state, w); old.Kind != ErrorAction && !old.Equals(a) {
		return fmt.Errorf("state %d already has action %v for %v", state, old, w)
	}
	var v int32 = shiftCode
	if a.Kind == ReduceAction || a.Kind == FinishAction {
		r := tb.internRule(a.Rule)
		if a.Kind == ReduceAction {
			v = int32(r)
		} else if a.DropStart {
			v = int32(-3 - 2*r)
		} else {
			v = int32(-2 - 2*r)
		}
	}
	tb.touchState(state)
	tb.t.actionT.Set(state, tb.internWord(w), v)
	return nil
}

func (tb *TableBuilder) internRule(r *Rule) int {
	if x, ok := tb.t.ruleIndex[r]; ok {
		return x
	}
	x := len(tb.t.rules)
	tb.t.rules = append(tb.t.rules, r)
	tb.t.ruleIndex[r] = x
	return x
}

func (tb *TableBuilder) internWord(w Word) int {
	key := w.Key()
	if x, ok := tb.t.wordIndex[key]; ok {
		return x
	}
	x := len(tb.t.words)
	tb.t.words = append(tb.t.words, w)
	tb.t.wordIndex[key] = x
	return x
}

// Tables returns the tables built so far. The builder must not be used
// afterwards.
func (tb *TableBuilder) Tables() *Tables {
	t := tb.t
	tb.t = nil
	return t
}

// === Table Generator =======================================================

// TableGenerator is a generator object to construct LR(k) parser tables.
// Clients usually create a Grammar G and then a table generator.
// TableGenerator.CreateTables() constructs the CFSM and parser tables for
// an LR(k)-parser recognizing grammar G.
type TableGenerator struct {
	g      *Grammar // normalized grammar
	k      int
	fk     *FirstK
	dfa    *CFSM
	tables *Tables
}

// NewTableGenerator creates a new TableGenerator for a grammar and lookahead k.
// The grammar will be normalized.
func NewTableGenerator(g *Grammar, k int) *TableGenerator {
	return &TableGenerator{g: g.Normalize(), k: k}
}

// GenerateTables creates LR(k) parser tables for a grammar. It returns an
// *UnproductiveError if the grammar has unproductive non-terminals and a
// *GenerationConflict if the grammar is not LR(k).
func GenerateTables(g *Grammar, k int) (*Tables, error) {
	lrgen := NewTableGenerator(g, k)
	if err := lrgen.CreateTables(); err != nil {
		return nil, err
	}
	return lrgen.Tables(), nil
}

// Grammar returns the normalized grammar the tables are created for.
func (lrgen *TableGenerator) Grammar() *Grammar {
	return lrgen.g
}

// CFSM returns the characteristic finite state machine (CFSM) for a grammar.
// Clients have to call CreateTables() first.
func (lrgen *TableGenerator) CFSM() *CFSM {
	if lrgen.dfa == nil {
		tracer().P("lr", "gen").Errorf("CFSM not yet built")
	}
	return lrgen.dfa
}

// FirstK returns the FIRST_k sets computed for the grammar.
func (lrgen *TableGenerator) FirstK() *FirstK {
	return lrgen.fk
}

// Tables returns the parser tables, or nil if they have not been created.
func (lrgen *TableGenerator) Tables() *Tables {
	if lrgen.tables == nil {
		tracer().P("lr", "gen").Errorf("tables not yet initialized")
	}
	return lrgen.tables
}

// CreateTables computes FIRST_k, the CFSM and the parser tables.
func (lrgen *TableGenerator) CreateTables() error {
	if lrgen.k < 0 {
		return fmt.Errorf("lookahead must not be negative: %d", lrgen.k)
	}
	var err error
	if lrgen.fk, err = ComputeFirstK(lrgen.g, lrgen.k); err != nil {
		return err
	}
	lrgen.dfa = lrgen.fk.buildCFSM()
	if lrgen.tables, err = lrgen.buildTables(); err != nil {
		return err
	}
	tracer().Infof("LR(%d) tables for %q: %d states, %d actions, %d gotos", lrgen.k, lrgen.g.Name,
		lrgen.tables.StateCount(), lrgen.tables.ActionCount(), lrgen.tables.GotoCount())
	if gconf.GetBool("lrgen.dump-tables") {
		DumpTables(lrgen.tables)
	}
	return nil
}

// For building an ACTION table we iterate over all the states of the CFSM.
// An inner loop iterates over all the lookahead items within a CFSM-state.
// If an item is finished, we produce a reduce entry (or a finish entry for
// the start rule) for every lookahead word of the item. If an item has a
// terminal after the dot, we produce a shift entry for each word of
// FIRST_k(rhs after the dot) · lookahead. A second, different action for a
// (state, word) is a conflict.
func (lrgen *TableGenerator) buildTables() (*Tables, error) {
	g, k := lrgen.g, lrgen.k
	tb, err := NewTableBuilder(k, g.augmented, g.terminals, g.nonterminals)
	if err != nil {
		return nil, err
	}
	for _, r := range g.rules { // rule index = serial
		tb.internRule(r)
	}
	tb.SetStateCount(len(lrgen.dfa.states))
	for _, s := range lrgen.dfa.states {
		for _, e := range lrgen.dfa.allEdges(s) {
			if err := tb.SetGoto(s.ID, e.label, e.to.ID); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range lrgen.dfa.states {
		tracer().Debugf("--- state %d --------------------------------", s.ID)
		for _, li := range s.items {
			a, W := lrgen.itemActions(li)
			if W == nil {
				continue
			}
			for _, w := range W.Words() {
				if old := tb.ActionAt(s.ID, w); old.Kind != ErrorAction && !old.Equals(a) {
					return nil, lrgen.conflict(s, w, old, a)
				}
				tracer().Debugf("    action(%d, %v) = %v", s.ID, w, a)
				if err := tb.SetAction(s.ID, w, a); err != nil {
					return nil, err
				}
			}
		}
	}
	return tb.Tables(), nil
}

// itemActions returns the action of an item together with the lookahead words
// it applies to. Items with a non-terminal after the dot have no action.
func (lrgen *TableGenerator) itemActions(li LookaheadItem) (Action, *WordSet) {
	if li.IsFinished() {
		if li.rule.LHS == lrgen.g.start {
			return Action{Kind: FinishAction, Rule: li.rule, DropStart: lrgen.g.augmented}, li.Lookahead
		}
		return Action{Kind: ReduceAction, Rule: li.rule}, li.Lookahead
	}
	if li.PeekSymbol().IsTerminal() {
		return Action{Kind: ShiftAction}, ConcatK(lrgen.fk.suffix(li.Item), li.Lookahead, lrgen.k)
	}
	return Error, nil
}

// --- Export ----------------------------------------------------------------

// DumpTables traces all GOTO and ACTION entries.
func DumpTables(t *Tables) {
	for s := 0; s < t.StateCount(); s++ {
		tracer().Infof("--- state %d ---", s)
		t.EachGoto(s, func(A *Symbol, to int) {
			tracer().Infof("    goto(%v) = %d", A, to)
		})
		t.EachAction(s, func(w Word, a Action) {
			tracer().Infof("    action(%v) = %v", w, a)
		})
	}
}

// GotoTableAsHTML exports a GOTO-table in HTML-format.
func GotoTableAsHTML(t *Tables, w io.Writer) error {
	var cols []string
	var symbols []*Symbol
	for _, A := range append(t.Terminals(), t.NonTerminals()...) {
		cols = append(cols, A.Name)
		symbols = append(symbols, A)
	}
	return parserTableAsHTML(w, "GOTO", t, cols, func(state, col int) string {
		if to, ok := t.Goto(state, symbols[col]); ok {
			return fmt.Sprintf("%d", to)
		}
		return ""
	})
}

// ActionTableAsHTML exports an ACTION-table in HTML-format.
func ActionTableAsHTML(t *Tables, w io.Writer) error {
	var cols []string
	for _, word := range t.words {
		cols = append(cols, word.String())
	}
	return parserTableAsHTML(w, "ACTION", t, cols, func(state, col int) string {
		a := t.Action(state, t.words[col])
		switch a.Kind {
		case ShiftAction:
			return "s"
		case ReduceAction:
			return fmt.Sprintf("r%d", a.Rule.Serial)
		case FinishAction:
			return fmt.Sprintf("acc%d", a.Rule.Serial)
		}
		return ""
	})
}

func parserTableAsHTML(w io.Writer, tname string, t *Tables, cols []string, cell func(int, int) string) error {
	ew := &errWriter{w: w}
	ew.printf("<html><body>\n")
	ew.printf("%s table for LR(%d), %d states<p>", tname, t.k, t.StateCount())
	ew.printf("<table border=1 cellspacing=0 cellpadding=5>\n")
	ew.printf("<tr bgcolor=#cccccc><td></td>\n")
	for _, c := range cols {
		ew.printf("<td>%s</td>", html.EscapeString(c))
	}
	ew.printf("</tr>\n")
	for s := 0; s < t.StateCount(); s++ {
		ew.printf("<tr><td>state %d</td>\n", s)
		for j := range cols {
			td := cell(s, j)
			if td == "" {
				td = "&nbsp;"
			}
			ew.printf("<td>%s</td>\n", td)
		}
		ew.printf("</tr>\n")
	}
	ew.printf("</table></body></html>\n")
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
