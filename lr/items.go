package lr

import (
	"fmt"
	"sort"
	"strings"
)

// Item is an LR item, i.e. a rule with a marker position (the dot). Items
// are values and may be used as map keys.
type Item struct {
	rule *Rule
	dot  int
}

// StartItem returns the item [A ::= • X Y …] for a rule.
func StartItem(r *Rule) Item {
	return Item{rule: r}
}

// Rule returns the rule of an item.
func (i Item) Rule() *Rule {
	return i.rule
}

// Dot returns the marker position of an item.
func (i Item) Dot() int {
	return i.dot
}

// IsFinished is true if the dot is behind the complete right hand side.
func (i Item) IsFinished() bool {
	return i.dot >= len(i.rule.rhs)
}

// PeekSymbol returns the symbol after the dot, or nil for finished items.
func (i Item) PeekSymbol() *Symbol {
	if i.IsFinished() {
		return nil
	}
	return i.rule.rhs[i.dot]
}

// Advance returns the item with the dot moved one symbol to the right.
func (i Item) Advance() Item {
	if i.IsFinished() {
		return i
	}
	return Item{rule: i.rule, dot: i.dot + 1}
}

// Prefix returns the symbols before the dot.
func (i Item) Prefix() []*Symbol {
	return i.rule.rhs[:i.dot:i.dot]
}

// Rest returns the symbols following the symbol after the dot.
func (i Item) Rest() []*Symbol {
	if i.IsFinished() {
		return nil
	}
	return i.rule.rhs[i.dot+1:]
}

func (i Item) String() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(i.rule.LHS.Name)
	b.WriteString(" ::=")
	for k, A := range i.rule.rhs {
		if k == i.dot {
			b.WriteString(" •")
		}
		b.WriteString(" ")
		b.WriteString(A.Name)
	}
	if i.IsFinished() {
		b.WriteString(" •")
	}
	b.WriteString("]")
	return b.String()
}

func itemLess(a, b Item) bool {
	if a.rule.Serial != b.rule.Serial {
		return a.rule.Serial < b.rule.Serial
	}
	return a.dot < b.dot
}

// LookaheadItem is an item together with its admissible lookahead words.
type LookaheadItem struct {
	Item
	Lookahead *WordSet
}

// Equals checks if two lookahead items have the same item and the same
// lookahead words.
func (li LookaheadItem) Equals(other LookaheadItem) bool {
	return li.Item == other.Item && li.Lookahead.Equals(other.Lookahead)
}

func (li LookaheadItem) String() string {
	return fmt.Sprintf("%v %v", li.Item, li.Lookahead)
}

// sortItems sorts lookahead items by rule serial and dot position.
func sortItems(items []LookaheadItem) {
	sort.Slice(items, func(x, y int) bool {
		return itemLess(items[x].Item, items[y].Item)
	})
}
