/*
Package cache serializes LR(k) parse tables to a compact binary format and
restores them. Generating tables for large grammars with k > 1 may be
expensive; clients may store the tables and load them on program start.

Format

All integers are 32-bit big-endian values, booleans are a single byte.

	magic number 0xd1d7df10
	k, negated if the grammar has been augmented by a synthetic start symbol
	number of non-terminals (without the synthetic start symbol)
	number of terminals (without EOF)
	terminal definitions, then non-terminal definitions (see SymbolCodec)
	number of states
	for every state: number of GOTO entries, then (symbol-id, state-id) pairs
	for every state: number of ACTION entries, then for each entry
	    lookahead word: length, terminal ids
	    kind: shift 0, reduce 1, finish 2, error 3
	    reduce and finish: lhs non-terminal index, rhs length, rhs symbol ids
	    finish: flag for dropping the synthetic start symbol

Symbol ids are 0 for EOF, 1…n for the terminals, followed by the
non-terminals. Non-terminal indices count from 0, with the synthetic start
symbol (if present) at index 0. State 0 is the start state.

For k = 0 the sign of k cannot tell whether the grammar has been augmented.
In this case it is derived from the finish actions.

Package cache also provides a file store for tables, keyed by a fingerprint of
the grammar.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cache

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.cache'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.cache")
}

// Magic is the version number of the binary format.
const Magic uint32 = 0xd1d7df10

// maxCount guards against allocating huge slices for corrupt input.
const maxCount = 1 << 24

// ErrVersionMismatch is the sentinel error for blobs with a wrong magic number.
var ErrVersionMismatch = errors.New("cache version mismatch")

// VersionMismatchError is returned by Deserialize if the magic number of the
// input does not match.
type VersionMismatchError struct {
	Expected, Actual uint32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("parser version mismatch: expected magic %#08x, got %#08x", e.Expected, e.Actual)
}

// Unwrap lets errors.Is match ErrVersionMismatch.
func (e *VersionMismatchError) Unwrap() error {
	return ErrVersionMismatch
}

// --- Serialization ---------------------------------------------------------

// Serialize writes parse tables to w. Symbols are written by codec; if codec is
// nil, DefaultCodec is used.
func Serialize(w io.Writer, t *lr.Tables, codec SymbolCodec) error {
	if codec == nil {
		codec = DefaultCodec{}
	}
	bw := bufio.NewWriter(w)
	enc := &encoder{w: bw}
	enc.uint(Magic)
	k := t.K()
	if t.Augmented() {
		k = -k
	}
	enc.int(k)
	terminals := t.Terminals()[1:] // without EOF
	nonterminals := t.NonTerminals()
	if t.Augmented() {
		nonterminals = nonterminals[1:]
	}
	enc.int(len(nonterminals))
	enc.int(len(terminals))
	for _, A := range terminals {
		enc.check(codec.EncodeTerminal(bw, A))
	}
	for _, A := range nonterminals {
		enc.check(codec.EncodeNonTerminal(bw, A))
	}
	enc.int(t.StateCount())
	for s := 0; s < t.StateCount(); s++ {
		var entries [][2]int
		t.EachGoto(s, func(A *lr.Symbol, to int) {
			entries = append(entries, [2]int{t.SymbolID(A), to})
		})
		enc.int(len(entries))
		for _, e := range entries {
			enc.int(e[0])
			enc.int(e[1])
		}
	}
	tcnt := len(t.Terminals())
	for s := 0; s < t.StateCount(); s++ {
		var words []lr.Word
		var actions []lr.Action
		t.EachAction(s, func(w lr.Word, a lr.Action) {
			words = append(words, w)
			actions = append(actions, a)
		})
		enc.int(len(words))
		for i, w := range words {
			enc.int(w.Len())
			for _, a := range w.Symbols() {
				enc.int(t.SymbolID(a))
			}
			a := actions[i]
			enc.int(int(a.Kind))
			if a.Kind == lr.ReduceAction || a.Kind == lr.FinishAction {
				enc.int(t.SymbolID(a.Rule.LHS) - tcnt)
				rhs := a.Rule.RHS()
				enc.int(len(rhs))
				for _, A := range rhs {
					enc.int(t.SymbolID(A))
				}
			}
			if a.Kind == lr.FinishAction {
				enc.bool(a.DropStart)
			}
		}
	}
	if enc.err != nil {
		return enc.err
	}
	tracer().Debugf("serialized LR(%d) tables with %d states", t.K(), t.StateCount())
	return bw.Flush()
}

// --- Deserialization -------------------------------------------------------

type rawAction struct {
	state int
	word  []int
	kind  lr.ActionKind
	lhs   int
	rhs   []int
	drop  bool
}

// Deserialize reads parse tables from r. Symbols are read by codec; if codec is
// nil, DefaultCodec is used. If the magic number of the input does not match,
// a *VersionMismatchError is returned.
func Deserialize(r io.Reader, codec SymbolCodec) (*lr.Tables, error) {
	if codec == nil {
		codec = DefaultCodec{}
	}
	br := bufio.NewReader(r)
	dec := &decoder{r: br}
	if magic := dec.uint(); dec.err != nil {
		return nil, dec.err
	} else if magic != Magic {
		return nil, &VersionMismatchError{Expected: Magic, Actual: magic}
	}
	k := dec.int()
	augmented := k < 0
	if augmented {
		k = -k
	}
	ntcnt, tcnt := dec.count(), dec.count()
	if dec.err != nil {
		return nil, dec.err
	}
	terminals := []*lr.Symbol{lr.EOF}
	for i := 0; i < tcnt; i++ {
		A, err := codec.DecodeTerminal(br)
		if err != nil {
			return nil, err
		}
		terminals = append(terminals, A)
	}
	var nonterminals []*lr.Symbol
	for i := 0; i < ntcnt; i++ {
		A, err := codec.DecodeNonTerminal(br)
		if err != nil {
			return nil, err
		}
		nonterminals = append(nonterminals, A)
	}
	statecnt := dec.count()
	var gotos [][][2]int // grows with the input read, not with statecnt
	for s := 0; s < statecnt && dec.err == nil; s++ {
		var entries [][2]int
		n := dec.count()
		for i := 0; i < n && dec.err == nil; i++ {
			entries = append(entries, [2]int{dec.int(), dec.int()})
		}
		gotos = append(gotos, entries)
	}
	var actions []rawAction
	for s := 0; s < statecnt && dec.err == nil; s++ {
		n := dec.count()
		for i := 0; i < n && dec.err == nil; i++ {
			a := rawAction{state: s}
			a.word = dec.ints(dec.count())
			a.kind = lr.ActionKind(dec.int())
			if a.kind == lr.ReduceAction || a.kind == lr.FinishAction {
				a.lhs = dec.int()
				a.rhs = dec.ints(dec.count())
			}
			if a.kind == lr.FinishAction {
				a.drop = dec.bool()
				augmented = augmented || a.drop
			}
			actions = append(actions, a)
		}
	}
	if dec.err != nil {
		return nil, dec.err
	}
	if augmented {
		start := lr.NewNonTerminal(syntheticStartName(terminals, nonterminals))
		nonterminals = append([]*lr.Symbol{start}, nonterminals...)
	}
	tb, err := lr.NewTableBuilder(k, augmented, terminals, nonterminals)
	if err != nil {
		return nil, err
	}
	ds := &symbolResolver{terminals: terminals, nonterminals: nonterminals, rules: make(map[string]*lr.Rule)}
	tb.SetStateCount(statecnt)
	for s, entries := range gotos {
		for _, e := range entries {
			A, err := ds.symbol(e[0])
			if err != nil {
				return nil, err
			}
			if e[1] < 0 || e[1] >= statecnt {
				return nil, fmt.Errorf("goto to unknown state %d", e[1])
			}
			if err = tb.SetGoto(s, A, e[1]); err != nil {
				return nil, err
			}
		}
	}
	for _, ra := range actions {
		if ra.kind == lr.ErrorAction { // equivalent to a missing entry
			continue
		}
		a, w, err := ds.action(ra)
		if err != nil {
			return nil, err
		}
		if err = tb.SetAction(ra.state, w, a); err != nil {
			return nil, err
		}
	}
	tracer().Debugf("deserialized LR(%d) tables with %d states", k, statecnt)
	return tb.Tables(), nil
}

// syntheticStartName returns the first of S, S', S'', … not used by another
// symbol. This is the name Grammar.Normalize would have chosen.
func syntheticStartName(terminals, nonterminals []*lr.Symbol) string {
	used := make(map[string]bool, len(terminals)+len(nonterminals))
	for _, A := range terminals {
		used[A.Name] = true
	}
	for _, A := range nonterminals {
		used[A.Name] = true
	}
	name := "S"
	for used[name] {
		name += "'"
	}
	return name
}

type symbolResolver struct {
	terminals    []*lr.Symbol
	nonterminals []*lr.Symbol
	rules        map[string]*lr.Rule
}

func (ds *symbolResolver) symbol(id int) (*lr.Symbol, error) {
	if id >= 0 && id < len(ds.terminals) {
		return ds.terminals[id], nil
	}
	return ds.nonterminal(id - len(ds.terminals))
}

func (ds *symbolResolver) nonterminal(index int) (*lr.Symbol, error) {
	if index < 0 || index >= len(ds.nonterminals) {
		return nil, fmt.Errorf("cache references unknown non-terminal %d", index)
	}
	return ds.nonterminals[index], nil
}

// rule returns a rule for lhs and rhs, creating the same rule only once.
func (ds *symbolResolver) rule(lhs int, rhs []int) (*lr.Rule, error) {
	key := make([]string, len(rhs)+1)
	key[0] = strconv.Itoa(lhs)
	for i, id := range rhs {
		key[i+1] = strconv.Itoa(id)
	}
	k := strings.Join(key, ",")
	if r, ok := ds.rules[k]; ok {
		return r, nil
	}
	L, err := ds.nonterminal(lhs)
	if err != nil {
		return nil, err
	}
	syms := make([]*lr.Symbol, len(rhs))
	for i, id := range rhs {
		if syms[i], err = ds.symbol(id); err != nil {
			return nil, err
		}
	}
	r := lr.NewRule(len(ds.rules), L, syms...)
	ds.rules[k] = r
	return r, nil
}

func (ds *symbolResolver) action(ra rawAction) (lr.Action, lr.Word, error) {
	syms := make([]*lr.Symbol, len(ra.word))
	for i, id := range ra.word {
		if id < 0 || id >= len(ds.terminals) {
			return lr.Error, lr.Epsilon, fmt.Errorf("lookahead contains unknown terminal %d", id)
		}
		syms[i] = ds.terminals[id]
	}
	w := lr.NewWord(syms...)
	a := lr.Action{Kind: ra.kind}
	switch ra.kind {
	case lr.ShiftAction:
	case lr.ReduceAction, lr.FinishAction:
		r, err := ds.rule(ra.lhs, ra.rhs)
		if err != nil {
			return lr.Error, w, err
		}
		a.Rule, a.DropStart = r, ra.drop
	default:
		return lr.Error, w, fmt.Errorf("cache contains invalid action kind %d", ra.kind)
	}
	return a, w, nil
}
