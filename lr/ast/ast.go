/*
Package ast defines the abstract syntax trees produced by LR(k) parsers.

An AST has two kinds of nodes: inner nodes carry the grammar rule which
has been reduced and the child nodes for the symbols of the rule's right
hand side; leaves carry a terminal and the input token.

Clients usually walk an AST with a Listener, which is called bottom-up for
every leaf and every inner node. Values returned by the listener are handed
to the listener calls for parent nodes, which makes it easy to evaluate
synthesized attributes:

    value := ast.Walk(root, myListener)

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ast

import (
	"strings"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr"
)

// Node is a node of an AST, either an *Inner or a *Leaf.
type Node interface {
	Symbol() *lr.Symbol
	Span() lrgen.Span
	String() string
}

// Inner is a node for a reduced rule.
type Inner struct {
	Rule     *lr.Rule
	Children []Node
}

// Leaf is a node for a terminal.
type Leaf struct {
	Terminal *lr.Symbol
	Token    lrgen.Token // may be nil
}

var _ Node = (*Inner)(nil)
var _ Node = (*Leaf)(nil)

// Symbol returns the LHS of the node's rule.
func (n *Inner) Symbol() *lr.Symbol {
	return n.Rule.LHS
}

// Span returns the input span covered by the node's children.
func (n *Inner) Span() lrgen.Span {
	var span lrgen.Span
	for _, ch := range n.Children {
		span = span.Extend(ch.Span())
	}
	return span
}

func (n *Inner) String() string {
	var b strings.Builder
	b.WriteString(n.Rule.LHS.Name)
	b.WriteString("(")
	for i, ch := range n.Children {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ch.String())
	}
	b.WriteString(")")
	return b.String()
}

// Symbol returns the terminal of the leaf.
func (l *Leaf) Symbol() *lr.Symbol {
	return l.Terminal
}

// Span returns the input span of the token.
func (l *Leaf) Span() lrgen.Span {
	if l.Token == nil {
		return lrgen.Span{}
	}
	return l.Token.Span()
}

// Value returns the value of the token, or nil.
func (l *Leaf) Value() interface{} {
	if l.Token == nil {
		return nil
	}
	return l.Token.Value()
}

func (l *Leaf) String() string {
	return l.Terminal.Name
}

// Equal compares two ASTs structurally: rules are compared by their LHS and
// RHS symbol names, leaves by terminal name and token lexeme.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Inner:
		y, ok := b.(*Inner)
		if !ok || x.Rule.String() != y.Rule.String() || len(x.Children) != len(y.Children) {
			return false
		}
		for i, ch := range x.Children {
			if !Equal(ch, y.Children[i]) {
				return false
			}
		}
		return true
	case *Leaf:
		y, ok := b.(*Leaf)
		return ok && x.Terminal.Name == y.Terminal.Name && lexeme(x) == lexeme(y)
	}
	return a == nil && b == nil
}

func lexeme(l *Leaf) string {
	if l.Token == nil {
		return ""
	}
	return l.Token.Lexeme()
}

// --- Walking ---------------------------------------------------------------

// Listener is a type for walking an AST.
type Listener interface {
	Reduce(node *Inner, children []interface{}, level int) interface{}
	Terminal(leaf *Leaf, level int) interface{}
}

// Walk walks an AST bottom-up, calling the listener for every node. The
// value returned for the root node is the result of the walk.
func Walk(root Node, listener Listener) interface{} {
	return walk(root, listener, 0)
}

func walk(node Node, listener Listener, level int) interface{} {
	switch n := node.(type) {
	case *Inner:
		values := make([]interface{}, len(n.Children))
		for i, ch := range n.Children {
			values[i] = walk(ch, listener, level+1)
		}
		return listener.Reduce(n, values, level)
	case *Leaf:
		return listener.Terminal(n, level)
	}
	return nil
}

// Indented returns an indented, multi-line representation of an AST,
// as pairs of (level, text).
func Indented(root Node) []IndentedLine {
	var lines []IndentedLine
	var rec func(Node, int)
	rec = func(n Node, level int) {
		switch x := n.(type) {
		case *Inner:
			lines = append(lines, IndentedLine{Level: level, Text: x.Rule.LHS.Name})
			for _, ch := range x.Children {
				rec(ch, level+1)
			}
		case *Leaf:
			text := x.Terminal.Name
			if lx := lexeme(x); lx != "" && lx != text {
				text += " " + lx
			}
			lines = append(lines, IndentedLine{Level: level, Text: text})
		}
	}
	rec(root, 0)
	return lines
}

// IndentedLine is a line of an indented AST dump.
type IndentedLine struct {
	Level int
	Text  string
}
