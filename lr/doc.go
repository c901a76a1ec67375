/*
Package lr implements the generator side of LR(k) parsing: grammars, FIRST_k
lookahead sets, the canonical automaton of lookahead items and the
ACTION/GOTO tables derived from it.

Building a Grammar

Grammars are specified using a grammar builder object. Clients add
rules, consisting of non-terminal symbols and terminals. Terminals
carry a token type. Grammars may contain epsilon-productions. The
left hand side of the first rule is the start symbol.

Example:

    b := lr.NewGrammarBuilder("G")
    b.LHS("S").N("A").T("a", 1).End()  // S  ->  A a
    b.LHS("A").N("B").N("D").End()     // A  ->  B D
    b.LHS("B").T("b", 2).End()         // B  ->  b
    b.LHS("B").Epsilon()               // B  ->
    b.LHS("D").T("d", 3).End()         // D  ->  d
    b.LHS("D").Epsilon()               // D  ->
    g, err := b.Grammar()

This results in the following trivial grammar:

   g.Dump()

   0: [S] ::= [A a]
   1: [A] ::= [B D]
   2: [B] ::= [b]
   3: [B] ::= []
   4: [D] ::= [d]
   5: [D] ::= []

The end of input is a distinguished terminal EOF, which is never part of a
right hand side.

Lookahead Sets

FIRST_k(X) is the set of terminal words of length ≤ k which may occur as a
prefix of a derivation of X. It is computed by a fixed point iteration:

    fk, err := lr.ComputeFirstK(g, 2)
    fk.First(g.SymbolByName("S"))    // {[a], [b a], [b d], [d a]}

Parser Construction

A grammar is first normalized, i.e. a fresh start symbol S' is introduced
if the original start symbol has more than one rule or is used on a right
hand side. Then the canonical automaton of LR(k) item sets (called CFSM
here, for characteristic finite state machine) is built from the grammar.
The CFSM is transformed into a GOTO table and an ACTION table, keyed by
lookahead words of length k.

    tables, err := lr.GenerateTables(g, 1)
    if err != nil {
        var conflict *lr.GenerationConflict
        if errors.As(err, &conflict) {
            ...                          // grammar is not LR(1)
        }
    }

The CFSM may be exported to Graphviz's Dot-format, the tables to HTML.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.lr'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.lr")
}
