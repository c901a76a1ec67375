/*
Package lrk provides an LR(k)-parser for arbitrary lookahead lengths k ≥ 0.
Clients either use package lr to create the parse tables or let this package
create them from a grammar. The parser executes these tables for an input,
provided through a scanner interface, and produces an abstract syntax tree.

The parser is a classic shift-reduce parser. It keeps a stack of pairs
(state, AST-node) and a buffer of k lookahead tokens. The buffer is filled
lazily from the scanner. After the scanner has signalled end of input, the
buffer is padded with EOF tokens and the scanner will not be called again.

Usage

Clients construct a grammar, usually by using a grammar builder:

	b := lr.NewGrammarBuilder("Expressions")
	b.LHS("S").N("E").End()                               // S --> E
	b.LHS("E").N("E").T("+", '+').N("T").End()            // E --> E + T
	b.LHS("E").N("T").End()                               // E --> T
	b.LHS("T").T("int", scanner.Int).End()                // T --> int
	g, err := b.Grammar()

The grammar is subjected to table generation. Generation fails if the
grammar is not LR(k); the error will be of type *lr.GenerationConflict.

	parser, err := lrk.Generate(g, 1)

Finally parse some input:

	tokens := scanner.GoTokenizer("input", strings.NewReader("1 + 2"))
	root, err := parser.Parse(tokens)

A parser is immutable and may be used by concurrent goroutines. Every call
to Parse owns its stack and lookahead buffer.

Syntax errors are reported as *ParseError. If configuration flag
'panic-on-parse-error' is set, the parser will panic instead; this is
intended for debugging grammars only.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lrk

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.lr'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.lr")
}
