package lr

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"golang.org/x/tools/container/intsets"
)

// ErrUnproductive is the sentinel error for non-terminals which do not derive
// any terminal word.
var ErrUnproductive = errors.New("unproductive non-terminal")

// UnproductiveError reports a non-terminal without rules, or one which does
// not derive any terminal word.
type UnproductiveError struct {
	Symbol *Symbol
	NoRule bool // true if Symbol has no rules at all
}

func (e *UnproductiveError) Error() string {
	if e.NoRule {
		return fmt.Sprintf("non-terminal %s has no rules", e.Symbol)
	}
	return fmt.Sprintf("non-terminal %s derives no terminal word", e.Symbol)
}

// Unwrap lets errors.Is match ErrUnproductive.
func (e *UnproductiveError) Unwrap() error {
	return ErrUnproductive
}

// FirstK holds the FIRST_k sets for all symbols of a grammar.
// The sets must not be modified by clients.
type FirstK struct {
	g     *Grammar
	k     int
	first []*WordSet        // indexed by symbol ID
	rest  map[Item]*WordSet // memo for Symbols(rhs[dot:])
}

// ComputeFirstK computes FIRST_k for every symbol of g. For a terminal t it is
// {t}, for non-terminals it is the set of terminal words of length ≤ k which
// are prefixes of words derivable from the non-terminal.
//
// The sets are computed by a worklist fixed point iteration. Initially the
// worklist contains all terminals and all non-terminals with an epsilon rule.
// Whenever the FIRST_k set of a symbol changes, all non-terminals with a rule
// referencing this symbol are re-computed.
func ComputeFirstK(g *Grammar, k int) (*FirstK, error) {
	if k < 0 {
		return nil, fmt.Errorf("lookahead must not be negative: %d", k)
	}
	for _, N := range g.nonterminals {
		if len(g.rulesFor[N]) == 0 {
			return nil, &UnproductiveError{Symbol: N, NoRule: true}
		}
	}
	if N := firstUnproductive(g); N != nil {
		return nil, &UnproductiveError{Symbol: N}
	}
	fk := &FirstK{
		g:     g,
		k:     k,
		first: make([]*WordSet, g.SymbolCount()),
		rest:  make(map[Item]*WordSet),
	}
	users := make([]intsets.Sparse, g.SymbolCount()) // symbol → non-terminals referencing it
	for _, r := range g.rules {
		lhs := g.ids[r.LHS]
		for _, A := range r.rhs {
			users[g.ids[A]].Insert(lhs)
		}
	}
	queue := doublylinkedlist.New()
	var queued intsets.Sparse
	enqueue := func(id int) {
		if queued.Insert(id) {
			queue.Add(id)
		}
	}
	for _, t := range g.terminals {
		fk.first[g.ids[t]] = NewWordSet(NewWord(t).Prefix(k))
		enqueue(g.ids[t])
	}
	for _, N := range g.nonterminals {
		fk.first[g.ids[N]] = NewWordSet()
	}
	for _, r := range g.rules {
		if r.IsEpsilon() {
			fk.first[g.ids[r.LHS]].Add(Epsilon)
			enqueue(g.ids[r.LHS])
		}
	}
	for !queue.Empty() {
		x, _ := queue.Get(0)
		queue.Remove(0)
		id := x.(int)
		queued.Remove(id)
		for _, user := range users[id].AppendTo(nil) {
			N := g.Symbol(user)
			grown := false
			for _, r := range g.rulesFor[N] {
				if fk.first[user].AddAll(fk.symbols(r.rhs)) {
					grown = true
				}
			}
			if grown {
				tracer().Debugf("FIRST_%d(%s) = %v", k, N, fk.first[user])
				enqueue(user)
			}
		}
	}
	return fk, nil
}

// firstUnproductive returns the first non-terminal which does not derive a
// finite terminal word, or nil. A non-terminal is productive if one of its
// rules consists of productive symbols only. This does not depend on k.
func firstUnproductive(g *Grammar) *Symbol {
	var productive intsets.Sparse
	for changed := true; changed; {
		changed = false
		for _, r := range g.rules {
			lhs := g.ids[r.LHS]
			if productive.Has(lhs) {
				continue
			}
			ok := true
			for _, A := range r.rhs {
				if !A.IsTerminal() && !productive.Has(g.ids[A]) {
					ok = false
					break
				}
			}
			if ok {
				productive.Insert(lhs)
				changed = true
			}
		}
	}
	for _, N := range g.nonterminals {
		if !productive.Has(g.ids[N]) {
			return N
		}
	}
	return nil
}

// K returns the lookahead length.
func (fk *FirstK) K() int {
	return fk.k
}

// First returns FIRST_k(A).
func (fk *FirstK) First(A *Symbol) *WordSet {
	id := fk.g.SymbolID(A)
	if id < 0 {
		return NewWordSet()
	}
	return fk.first[id]
}

// Symbols returns FIRST_k of a sequence of symbols, i.e. the left fold of
// ConcatK over the FIRST_k sets of the symbols. For an empty sequence it
// is {ε}.
func (fk *FirstK) Symbols(seq []*Symbol) *WordSet {
	return fk.symbols(seq)
}

func (fk *FirstK) symbols(seq []*Symbol) *WordSet {
	W := NewWordSet(Epsilon)
	for _, A := range seq {
		W = ConcatK(W, fk.first[fk.g.ids[A]], fk.k)
		if W.Empty() || minLen(W) >= fk.k {
			break
		}
	}
	return W
}

// suffix returns FIRST_k(rhs[dot:]) for an item, memoized.
func (fk *FirstK) suffix(i Item) *WordSet {
	if W, ok := fk.rest[i]; ok {
		return W
	}
	W := fk.symbols(i.rule.rhs[i.dot:])
	fk.rest[i] = W
	return W
}

func minLen(W *WordSet) int {
	m := -1
	for _, w := range W.Words() {
		if m < 0 || w.Len() < m {
			m = w.Len()
		}
	}
	return m
}

// ConcatK is the k-bounded concatenation of two word sets: for each a in A,
// if |a| ≥ k the k-prefix of a is kept, otherwise a is concatenated with the
// (k-|a|)-prefix of every word in B.
func ConcatK(A, B *WordSet, k int) *WordSet {
	R := NewWordSet()
	var bwords []Word
	for _, a := range A.Words() {
		if a.Len() >= k {
			R.Add(a.Prefix(k))
			continue
		}
		if bwords == nil {
			bwords = B.Words()
		}
		for _, b := range bwords {
			R.Add(a.Concat(b.Prefix(k - a.Len())))
		}
	}
	return R
}
