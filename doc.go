/*
Package lrgen is an LR(k) parser generator toolbox.

LRGen generates deterministic shift-reduce parsers from context-free grammars,
using an arbitrary but fixed number k of lookahead tokens. Parser tables are
constructed at runtime, without a code generation step, and may be cached
in a compact binary format. Package structure is as follows:

■ lr: Package lr implements grammars, FIRST_k analysis, the canonical LR(k)
automaton and the ACTION/GOTO table generator.

■ lr/lrk: Package lrk is the table driven shift-reduce parser, producing
abstract syntax trees (package lr/ast).

■ lr/scanner: Package scanner defines the tokenizer interface and some default
tokenizers.

■ lr/cache: Package cache serializes parser tables and keeps them in a
file based store.

■ lr/bnf and lr/ebnf: Grammar loaders for textual grammar specifications.

■ cmd/lrgen: Command lrgen generates and inspects tables and parses input
from the command line.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lrgen
