/*
Package bnf reads grammars from a BNF-like text format.

A grammar is a list of rules. Every rule names a non-terminal, followed by an
arrow and alternatives separated by '|'. A rule ends with a semicolon.

	// comments run to the end of the line
	Expr   -> Expr "+" Term | Term ;
	Term   -> Term "*" Factor | Factor ;
	Factor -> "(" Expr ")" | "int" ;
	List   -> List "," Expr | ;

Identifiers denote non-terminals, quoted strings denote terminals. An empty
alternative derives the empty word. The left hand side of the first rule is
the start symbol of the grammar.

Terminals need a token type. Parse looks up a terminal's name in a map
of token types (DefaultTokens, if clients pass nil). Terminals not found in
the map are assigned the rune value if they consist of a single rune, and a
synthetic token type otherwise.

The text format is itself parsed by an LR(1)-parser generated by package
lrk. This parser is created once, on first use.

Package bnf also creates lexmachine lexers for grammars it has read
(see Lexer). Such lexers recognize every terminal by its name, with the
exception of the terminals for identifiers, numbers and strings.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bnf

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.bnf'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.bnf")
}
