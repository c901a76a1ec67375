package ast

import (
	"strings"
	"testing"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// Builds the tree for "x + y" with rules E -> E + E | id.
func makeTree() *Inner {
	E := lr.NewNonTerminal("E")
	plus, id := lr.NewTerminal("+", '+'), lr.NewTerminal("id", scanner.Ident)
	add := lr.NewRule(0, E, E, plus, E)
	leaf := lr.NewRule(1, E, id)
	tok := func(tt lrgen.TokType, lexeme string, pos uint64) lrgen.Token {
		return scanner.MakeDefaultToken(tt, lexeme, lrgen.Span{pos, pos + 1})
	}
	root := &Inner{Rule: add, Children: []Node{
		&Inner{Rule: leaf, Children: []Node{&Leaf{Terminal: id, Token: tok(scanner.Ident, "x", 0)}}},
		&Leaf{Terminal: plus, Token: tok('+', "+", 2)},
		&Inner{Rule: leaf, Children: []Node{&Leaf{Terminal: id, Token: tok(scanner.Ident, "y", 4)}}},
	}}
	return root
}

type printer struct {
	b strings.Builder
}

func (p *printer) Reduce(node *Inner, children []interface{}, level int) interface{} {
	p.b.WriteString(node.Rule.LHS.Name)
	var s []string
	for _, ch := range children {
		s = append(s, ch.(string))
	}
	return strings.Join(s, "")
}

func (p *printer) Terminal(leaf *Leaf, level int) interface{} {
	return leaf.Token.Lexeme()
}

func TestWalk(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	root := makeTree()
	p := &printer{}
	if v := Walk(root, p); v != "x+y" {
		t.Errorf("expected walk to return x+y, is %v", v)
	}
	if p.b.String() != "EEE" {
		t.Errorf("expected reductions to be visited bottom-up, have %s", p.b.String())
	}
	if root.String() != "E(E(id), +, E(id))" {
		t.Errorf("unexpected string representation %v", root)
	}
	if span := root.Span(); span != (lrgen.Span{0, 5}) {
		t.Errorf("expected span (0…5), have %v", span)
	}
}

func TestEqual(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	a := makeTree()
	b := makeTree()
	if !Equal(a, b) {
		t.Errorf("expected trees built from equal rules to be equal")
	}
	b.Children[2].(*Inner).Children[0].(*Leaf).Token = scanner.MakeDefaultToken(scanner.Ident, "z", lrgen.Span{})
	if Equal(a, b) {
		t.Errorf("expected trees with different lexemes to differ")
	}
	if Equal(a, a.Children[1]) {
		t.Errorf("inner node must not equal leaf")
	}
}

func TestIndented(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	root := makeTree()
	lines := Indented(root)
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, have %d", len(lines))
	}
	if lines[2].Level != 2 || lines[2].Text != "id x" {
		t.Errorf("unexpected line %v", lines[2])
	}
	if lines[3].Level != 1 || lines[3].Text != "+" {
		t.Errorf("unexpected line %v", lines[3])
	}
}
