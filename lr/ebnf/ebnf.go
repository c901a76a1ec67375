/*
Package ebnf converts grammars in the EBNF dialect of package
golang.org/x/exp/ebnf (the notation of the Go language specification) to
context-free grammars for the LR(k) table generator.

	Expr   = Term { ( "+" | "-" ) Term } .
	Term   = [ "-" ] Factor .
	Factor = "(" Expr ")" | int .
	int    = "0" … "9" { "0" … "9" } .

Productions with upper-case names become non-terminals. Productions with
lower-case names are lexical; they become terminals and are not looked
into. Tokens become terminals named by their literal text.

Groups, options and repetitions are replaced by fresh non-terminals:

	( x | y )   G   with G → x | y
	[ x ]       O   with O → x | ε
	{ x }       R   with R → R x | ε

Repetitions are left-recursive, which suits LR-parsers.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ebnf

import (
	"fmt"
	"io"
	"os"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/bnf"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/exp/ebnf"
)

// tracer traces with key 'lrgen.bnf'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.bnf")
}

// Parse reads an EBNF grammar and converts it, starting at production start.
// Token types for terminals are assigned as with bnf.Parse.
func Parse(filename string, src io.Reader, start string, tokens map[string]lrgen.TokType) (*lr.Grammar, error) {
	grammar, err := ebnf.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	return Convert(filename, grammar, start, tokens)
}

// ParseFile reads an EBNF grammar from a file and converts it.
func ParseFile(path string, start string, tokens map[string]lrgen.TokType) (*lr.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(path, f, start, tokens)
}

// Convert creates a grammar from productions of an EBNF grammar. The grammar is
// verified first, which asserts that every production is reachable from start.
// Start must not be lexical.
func Convert(name string, grammar ebnf.Grammar, start string, tokens map[string]lrgen.TokType) (*lr.Grammar, error) {
	if err := ebnf.Verify(grammar, start); err != nil {
		return nil, err
	}
	if isLexical(start) {
		return nil, fmt.Errorf("start production %s is lexical", start)
	}
	c := &converter{
		ebnf:    grammar,
		b:       lr.NewGrammarBuilder(name),
		tokens:  bnf.NewTokenTypes(tokens),
		visited: make(map[string]bool),
		fresh:   make(map[string]int),
	}
	c.queue = append(c.queue, start)
	c.visited[start] = true
	for len(c.queue) > 0 {
		pname := c.queue[0]
		c.queue = c.queue[1:]
		p := grammar[pname]
		if err := c.rules(pname, pname, p.Expr); err != nil {
			return nil, err
		}
		for len(c.pending) > 0 { // fresh non-terminals of this production
			d := c.pending[0]
			c.pending = c.pending[1:]
			if err := c.define(pname, d); err != nil {
				return nil, err
			}
		}
	}
	g, err := c.b.Grammar()
	if err != nil {
		return nil, err
	}
	tracer().Infof("converted EBNF grammar %q to %d rules", name, g.Size())
	return g, nil
}

// isLexical is true for names of lexical productions, as defined by package
// x/exp/ebnf.
func isLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

type symbol struct {
	name     string
	terminal bool
}

// freshDef is a fresh non-terminal waiting for its rules.
type freshDef struct {
	name string
	body ebnf.Expression
	kind byte // 'G', 'O' or 'R'
}

type converter struct {
	ebnf    ebnf.Grammar
	b       *lr.GrammarBuilder
	tokens  *bnf.TokenTypes
	queue   []string // productions to convert
	visited map[string]bool
	pending []freshDef
	fresh   map[string]int // counters per production
}

// rules adds the rules for a non-terminal lhs deriving expr.
func (c *converter) rules(prod, lhs string, expr ebnf.Expression) error {
	alts, err := c.alternatives(prod, expr)
	if err != nil {
		return err
	}
	for _, alt := range alts {
		c.rule(lhs, alt)
	}
	return nil
}

func (c *converter) rule(lhs string, rhs []symbol) {
	rb := c.b.LHS(lhs)
	for _, sym := range rhs {
		if sym.terminal {
			rb.T(sym.name, int(c.tokens.TypeFor(sym.name)))
		} else {
			rb.N(sym.name)
		}
	}
	if len(rhs) == 0 {
		rb.Epsilon()
	} else {
		rb.End()
	}
}

// define adds the rules for a fresh non-terminal.
func (c *converter) define(prod string, d freshDef) error {
	switch d.kind {
	case 'G':
		return c.rules(prod, d.name, d.body)
	case 'O':
		if err := c.rules(prod, d.name, d.body); err != nil {
			return err
		}
		c.rule(d.name, nil)
	case 'R':
		alts, err := c.alternatives(prod, d.body)
		if err != nil {
			return err
		}
		self := symbol{name: d.name}
		for _, alt := range alts {
			c.rule(d.name, append([]symbol{self}, alt...))
		}
		c.rule(d.name, nil)
	}
	return nil
}

// alternatives lowers an expression to a list of symbol sequences.
func (c *converter) alternatives(prod string, expr ebnf.Expression) ([][]symbol, error) {
	switch x := expr.(type) {
	case nil:
		return [][]symbol{{}}, nil
	case ebnf.Alternative:
		var alts [][]symbol
		for _, e := range x {
			a, err := c.alternatives(prod, e)
			if err != nil {
				return nil, err
			}
			alts = append(alts, a...)
		}
		return alts, nil
	case ebnf.Sequence:
		seq := make([]symbol, 0, len(x))
		for _, e := range x {
			sym, err := c.symbol(prod, e)
			if err != nil {
				return nil, err
			}
			seq = append(seq, sym)
		}
		return [][]symbol{seq}, nil
	}
	sym, err := c.symbol(prod, expr)
	if err != nil {
		return nil, err
	}
	return [][]symbol{{sym}}, nil
}

// symbol lowers an expression to a single symbol.
func (c *converter) symbol(prod string, expr ebnf.Expression) (symbol, error) {
	switch x := expr.(type) {
	case *ebnf.Name:
		if isLexical(x.String) {
			return symbol{name: x.String, terminal: true}, nil
		}
		if !c.visited[x.String] {
			c.visited[x.String] = true
			c.queue = append(c.queue, x.String)
		}
		return symbol{name: x.String}, nil
	case *ebnf.Token:
		if x.String == "" {
			return symbol{}, fmt.Errorf("%v: empty token in production %s", x.Pos(), prod)
		}
		return symbol{name: x.String, terminal: true}, nil
	case *ebnf.Group:
		return c.freshSymbol(prod, x.Body, 'G'), nil
	case *ebnf.Option:
		return c.freshSymbol(prod, x.Body, 'O'), nil
	case *ebnf.Repetition:
		return c.freshSymbol(prod, x.Body, 'R'), nil
	case ebnf.Alternative, ebnf.Sequence:
		return c.freshSymbol(prod, x, 'G'), nil
	case *ebnf.Range:
		return symbol{}, fmt.Errorf("%v: range in non-lexical production %s", x.Pos(), prod)
	}
	return symbol{}, fmt.Errorf("production %s: unexpected expression %T", prod, expr)
}

// freshSymbol creates a non-terminal named after the production it occurs in.
func (c *converter) freshSymbol(prod string, body ebnf.Expression, kind byte) symbol {
	var name string
	for {
		c.fresh[prod]++
		name = fmt.Sprintf("%s_%c%d", prod, kind, c.fresh[prod])
		if _, clash := c.ebnf[name]; !clash {
			break
		}
	}
	c.pending = append(c.pending, freshDef{name: name, body: body, kind: kind})
	return symbol{name: name}
}
