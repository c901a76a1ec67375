package lr

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"golang.org/x/tools/container/intsets"
)

// === Closure ===============================================================

// Refer to "Parsing Techniques" by Dick Grune and Ceriel J.H. Jacobs,
// Section 9.6 LR(k) parsing.

// closure computes the closure of a set of lookahead items in two steps.
//
// Item expansion adds [N ::= • …] for every item with N after the dot and
// records which items inherit lookahead words from which other items.
//
// Lookahead propagation then pushes words from an item [A ::= … • N β] with
// lookahead L to the inheriting items of N as ConcatK(FIRST_k(β), L), until
// no lookahead set grows any more.
func (fk *FirstK) closure(seed []LookaheadItem) []LookaheadItem {
	g := fk.g
	var items []Item
	index := make(map[Item]int)
	var inherit []*intsets.Sparse // item → items inheriting from it
	add := func(i Item) int {
		if x, ok := index[i]; ok {
			return x
		}
		index[i] = len(items)
		items = append(items, i)
		inherit = append(inherit, &intsets.Sparse{})
		return len(items) - 1
	}
	for _, li := range seed {
		add(li.Item)
	}
	for x := 0; x < len(items); x++ { // items grows while iterating
		N := items[x].PeekSymbol()
		if N == nil || N.IsTerminal() {
			continue
		}
		for _, r := range g.rulesFor[N] {
			y := add(StartItem(r))
			inherit[x].Insert(y)
		}
	}
	la := make([]*WordSet, len(items))
	for x := range la {
		la[x] = NewWordSet()
	}
	queue := doublylinkedlist.New()
	var queued intsets.Sparse
	enqueue := func(x int) {
		if queued.Insert(x) {
			queue.Add(x)
		}
	}
	for _, li := range seed {
		x := index[li.Item]
		la[x].AddAll(li.Lookahead)
		enqueue(x)
	}
	for !queue.Empty() {
		v, _ := queue.Get(0)
		queue.Remove(0)
		x := v.(int)
		queued.Remove(x)
		if inherit[x].IsEmpty() {
			continue
		}
		W := ConcatK(fk.symbols(items[x].Rest()), la[x], fk.k)
		for _, y := range inherit[x].AppendTo(nil) {
			if la[y].AddAll(W) {
				enqueue(y)
			}
		}
	}
	result := make([]LookaheadItem, len(items))
	for x, i := range items {
		result[x] = LookaheadItem{Item: i, Lookahead: la[x]}
	}
	sortItems(result)
	return result
}

// gotoItems advances all items of a state with symbol A after the dot.
func gotoItems(items []LookaheadItem, A *Symbol) []LookaheadItem {
	var r []LookaheadItem
	for _, li := range items {
		if li.PeekSymbol() == A {
			r = append(r, LookaheadItem{Item: li.Advance(), Lookahead: li.Lookahead})
		}
	}
	return r
}
