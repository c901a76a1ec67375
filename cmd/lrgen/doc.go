/*
Command lrgen generates LR(k) parse tables for grammars and runs parsers
for them.

	lrgen tables  expr.bnf -k 2 --yaml          # report of states and tables
	lrgen tables  expr.bnf --dot cfsm.dot       # export the automaton
	lrgen compile expr.bnf -o expr.lrk          # serialize the tables
	lrgen parse   expr.bnf "1 + 2 * 3"          # print the AST of an input
	lrgen repl    expr.bnf                      # parse lines interactively

Grammars are read from BNF files (see package lr/bnf) or, for files ending
in '.ebnf', from EBNF files (see package lr/ebnf), with the start production
given by flag --start. Input to parse is tokenized by a lexer derived from
the terminals of the grammar.

Commands parse and repl load the tables from a cache directory if they have
been generated before.


License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.cli'
func tracer() tracing.Trace {
	return tracing.Select("lrgen.cli")
}
