package lr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConflict is the sentinel error for grammars which are not LR(k).
var ErrConflict = errors.New("grammar is not LR(k)")

// GenerationConflict is returned by the table generator if two different
// actions compete for the same state and lookahead word.
type GenerationConflict struct {
	K         int
	State     int             // CFSM state with the conflict
	Lookahead Word            // lookahead word with the conflict
	Actions   [2]Action       // the competing actions
	Items     []LookaheadItem // items of the state which admit Lookahead
	Path      []*Symbol       // example path of symbols from the start state to State
}

func (c *GenerationConflict) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("LR(%d) conflict in state %d for lookahead %v: %v / %v",
		c.K, c.State, c.Lookahead, c.Actions[0], c.Actions[1]))
	for _, li := range c.Items {
		b.WriteString("\n    ")
		b.WriteString(li.String())
	}
	b.WriteString("\n    path: ")
	b.WriteString(pathString(c.Path))
	return b.String()
}

// Unwrap lets errors.Is match ErrConflict.
func (c *GenerationConflict) Unwrap() error {
	return ErrConflict
}

// pathString formats a sequence of symbols.
func pathString(path []*Symbol) string {
	names := make([]string, len(path))
	for i, A := range path {
		names[i] = A.Name
	}
	return "[" + strings.Join(names, " ") + "]"
}

func (lrgen *TableGenerator) conflict(s *CFSMState, w Word, a1, a2 Action) *GenerationConflict {
	c := &GenerationConflict{
		K:         lrgen.k,
		State:     s.ID,
		Lookahead: w,
		Actions:   [2]Action{a1, a2},
		Path:      lrgen.dfa.ExamplePath(s),
	}
	for _, li := range s.items {
		if a, W := lrgen.itemActions(li); W != nil && a.Kind != ErrorAction && W.Contains(w) {
			c.Items = append(c.Items, li)
		}
	}
	tracer().Errorf("%v", c)
	return c
}

// ExamplePath finds a sequence of symbols leading from the start state to
// a target state. The search is an iterative deepening depth-first search over
// the transitions, visiting transitions in order of symbol IDs. The path
// returned therefore has minimal length, but of several shortest paths the
// first one found wins.
//
// Within one depth bound a state is not explored again if it has already
// failed with at least the same remaining depth.
func (c *CFSM) ExamplePath(target *CFSMState) []*Symbol {
	for depth := 1; depth <= len(c.states)+1; depth++ {
		search := pathSearch{
			cfsm:   c,
			target: target,
			onPath: make(map[*CFSMState]bool),
			failed: make(map[*CFSMState]int),
		}
		if path, ok := search.searchState(c.S0, depth); ok {
			return path
		}
	}
	return nil // target is not reachable
}

type pathSearch struct {
	cfsm   *CFSM
	target *CFSMState
	onPath map[*CFSMState]bool
	failed map[*CFSMState]int // largest remaining depth a state failed with
}

func (ps *pathSearch) searchState(s *CFSMState, depth int) ([]*Symbol, bool) {
	if depth <= 0 {
		return nil, false
	}
	if s == ps.target {
		return []*Symbol{}, true
	}
	if ps.onPath[s] || ps.failed[s] >= depth {
		return nil, false
	}
	ps.onPath[s] = true
	for _, e := range ps.cfsm.allEdges(s) {
		if path, ok := ps.searchState(e.to, depth-1); ok {
			return append([]*Symbol{e.label}, path...), true
		}
	}
	ps.onPath[s] = false
	ps.failed[s] = depth
	return nil, false
}
