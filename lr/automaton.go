package lr

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/lists/doublylinkedlist"
)

// === CFSM Construction =====================================================

// CFSMState is a state within the CFSM for a grammar. A state is identified
// by its set of lookahead items.
type CFSMState struct {
	ID     int             // serial ID of this state, 0 for the start state
	items  []LookaheadItem // sorted by rule and dot
	hash   string          // content hash of items
	Accept bool            // does this state contain the finished start rule?
}

// NewCFSMState creates a state from a set of lookahead items. The items will
// be sorted.
func NewCFSMState(id int, items []LookaheadItem) *CFSMState {
	s := &CFSMState{ID: id}
	s.items = append([]LookaheadItem(nil), items...)
	sortItems(s.items)
	s.hash = itemSetHash(s.items)
	return s
}

// Items returns the lookahead items of a state.
func (s *CFSMState) Items() []LookaheadItem {
	return append([]LookaheadItem(nil), s.items...)
}

// Equals is true if both states contain the same lookahead items.
func (s *CFSMState) Equals(other *CFSMState) bool {
	if s.hash != other.hash || len(s.items) != len(other.items) {
		return false
	}
	for i, li := range s.items {
		if !li.Equals(other.items[i]) {
			return false
		}
	}
	return true
}

func (s *CFSMState) String() string {
	return fmt.Sprintf("(state %d | [%d])", s.ID, len(s.items))
}

// Dump is a debugging helper
func (s *CFSMState) Dump() {
	tracer().Debugf("--- state %03d -----------", s.ID)
	for _, li := range s.items {
		tracer().Debugf("    %v", li)
	}
	tracer().Debugf("-------------------------")
}

// itemSetKey is the canonical form of an item set, used for hashing.
type itemSetKey struct {
	Items []itemKey
}

type itemKey struct {
	Rule      int
	Dot       int
	Lookahead []string
}

func itemSetHash(items []LookaheadItem) string {
	key := itemSetKey{Items: make([]itemKey, len(items))}
	for i, li := range items {
		ik := itemKey{Rule: li.rule.Serial, Dot: li.dot}
		for _, w := range li.Lookahead.Words() {
			ik.Lookahead = append(ik.Lookahead, w.Key())
		}
		key.Items[i] = ik
	}
	h, err := structhash.Hash(key, 1)
	if err != nil { // structhash fails only for unsupported types
		panic(err)
	}
	return h
}

// Transition is a directed edge between two CFSM states, labeled with a
// grammar symbol.
type Transition struct {
	From, To int
	Label    *Symbol
}

// CFSM edge between 2 states, directed and labeled with a symbol
type cfsmEdge struct {
	from  *CFSMState
	to    *CFSMState
	label *Symbol
}

// Create an edge
func edge(from, to *CFSMState, label *Symbol) *cfsmEdge {
	return &cfsmEdge{
		from:  from,
		to:    to,
		label: label,
	}
}

// CFSM is the characteristic finite state machine for an LR(k) grammar, i.e. the
// canonical automaton of lookahead item sets. Will be constructed by a TableGenerator.
// Clients normally do not use it directly. Nevertheless, there are some methods
// defined on it, e.g, for debugging purposes.
type CFSM struct {
	g      *Grammar                             // this CFSM is for Grammar g
	states []*CFSMState                         // all the states, indexed by ID
	edges  *arraylist.List                      // all the edges between states
	S0     *CFSMState                           // start state
	index  map[string][]*CFSMState              // states by content hash
	out    map[*CFSMState]map[*Symbol]*cfsmEdge // outgoing edges
}

// create an empty (initial) CFSM automata.
func emptyCFSM(g *Grammar) *CFSM {
	return &CFSM{
		g:     g,
		edges: arraylist.New(),
		index: make(map[string][]*CFSMState),
		out:   make(map[*CFSMState]map[*Symbol]*cfsmEdge),
	}
}

// NewCFSM creates a CFSM from a list of states and transitions. State IDs
// have to be 0…n-1, with state 0 being the start state. NewCFSM returns an
// error if two states contain the same item set, if there is more than one
// transition for a pair (state, symbol), or if a transition refers to an
// unknown state.
func NewCFSM(g *Grammar, states []*CFSMState, transitions []Transition) (*CFSM, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("CFSM needs a start state")
	}
	c := emptyCFSM(g)
	for i, s := range states {
		if s.ID != i {
			return nil, fmt.Errorf("CFSM state at position %d has ID %d", i, s.ID)
		}
		if other := c.findStateByItems(s); other != nil {
			return nil, fmt.Errorf("CFSM states %d and %d have equal item sets", other.ID, s.ID)
		}
		c.insert(s)
	}
	c.S0 = c.states[0]
	for _, t := range transitions {
		if t.From < 0 || t.From >= len(c.states) || t.To < 0 || t.To >= len(c.states) {
			return nil, fmt.Errorf("transition %d -%v-> %d refers to unknown state", t.From, t.Label, t.To)
		}
		if _, err := c.addEdge(c.states[t.From], c.states[t.To], t.Label); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *CFSM) insert(s *CFSMState) {
	c.states = append(c.states, s)
	c.index[s.hash] = append(c.index[s.hash], s)
	for _, li := range s.items {
		if li.IsFinished() && li.rule.LHS == c.g.start {
			s.Accept = true
		}
	}
}

// addState adds a state for an item set to the CFSM. If a state with an equal
// item set is already present, this state is returned instead and the flag
// will be false.
func (c *CFSM) addState(items []LookaheadItem) (*CFSMState, bool) {
	s := NewCFSMState(len(c.states), items)
	if other := c.findStateByItems(s); other != nil {
		return other, false
	}
	c.insert(s)
	return s, true
}

// Find a CFSM state by the contained item set.
func (c *CFSM) findStateByItems(s *CFSMState) *CFSMState {
	for _, other := range c.index[s.hash] {
		if other.Equals(s) {
			return other
		}
	}
	return nil
}

func (c *CFSM) addEdge(s0, s1 *CFSMState, sym *Symbol) (*cfsmEdge, error) {
	out := c.out[s0]
	if out == nil {
		out = make(map[*Symbol]*cfsmEdge)
		c.out[s0] = out
	}
	if e, ok := out[sym]; ok {
		return nil, fmt.Errorf("duplicate transition %d -%v-> (%d|%d)", s0.ID, sym, e.to.ID, s1.ID)
	}
	e := edge(s0, s1, sym)
	out[sym] = e
	c.edges.Add(e)
	return e, nil
}

// allEdges returns the outgoing edges of a state, ordered by symbol ID.
func (c *CFSM) allEdges(s *CFSMState) []*cfsmEdge {
	r := make([]*cfsmEdge, 0, len(c.out[s]))
	for _, e := range c.out[s] {
		r = append(r, e)
	}
	sort.Slice(r, func(i, j int) bool {
		return c.g.SymbolID(r[i].label) < c.g.SymbolID(r[j].label)
	})
	return r
}

// States returns all states of the CFSM, ordered by ID.
func (c *CFSM) States() []*CFSMState {
	return append([]*CFSMState(nil), c.states...)
}

// Transitions returns all transitions of the CFSM.
func (c *CFSM) Transitions() []Transition {
	r := make([]Transition, 0, c.edges.Size())
	it := c.edges.Iterator()
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		r = append(r, Transition{From: e.from.ID, To: e.to.ID, Label: e.label})
	}
	return r
}

// Successor returns the state reached from s with symbol A, or nil.
func (c *CFSM) Successor(s *CFSMState, A *Symbol) *CFSMState {
	if e, ok := c.out[s][A]; ok {
		return e.to
	}
	return nil
}

// Construct the characteristic finite state machine CFSM for a normalized grammar.
func (fk *FirstK) buildCFSM() *CFSM {
	tracer().Debugf("=== build CFSM ==================================================")
	g := fk.g
	cfsm := emptyCFSM(g)
	startRule := g.RulesFor(g.start)[0]
	seed := []LookaheadItem{{
		Item:      StartItem(startRule),
		Lookahead: NewWordSet(RepeatWord(EOF, fk.k)),
	}}
	cfsm.S0, _ = cfsm.addState(fk.closure(seed))
	cfsm.S0.Dump()
	worklist := doublylinkedlist.New()
	worklist.Add(cfsm.S0)
	for !worklist.Empty() {
		x, _ := worklist.Get(0)
		worklist.Remove(0)
		s := x.(*CFSMState)
		for _, A := range nextSymbols(g, s) {
			items := fk.closure(gotoItems(s.items, A))
			snew, isNew := cfsm.addState(items)
			if isNew {
				snew.Dump()
				worklist.Add(snew)
			}
			if _, err := cfsm.addEdge(s, snew, A); err != nil {
				panic(err) // nextSymbols is duplicate free
			}
			tracer().Debugf("goto(%d) --%s--> %d", s.ID, A, snew.ID)
		}
	}
	tracer().Infof("CFSM for %q has %d states", g.Name, len(cfsm.states))
	return cfsm
}

// nextSymbols returns the symbols after the dot of all unfinished items of a
// state, ordered by symbol ID.
func nextSymbols(g *Grammar, s *CFSMState) []*Symbol {
	seen := make(map[*Symbol]bool)
	var r []*Symbol
	for _, li := range s.items {
		if A := li.PeekSymbol(); A != nil && !seen[A] {
			seen[A] = true
			r = append(r, A)
		}
	}
	sort.Slice(r, func(i, j int) bool {
		return g.SymbolID(r[i]) < g.SymbolID(r[j])
	})
	return r
}

// --- Export ----------------------------------------------------------------

// CFSM2GraphViz exports a CFSM to the Graphviz Dot format.
func (c *CFSM) CFSM2GraphViz(w io.Writer) error {
	var b strings.Builder
	b.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	for _, s := range c.states {
		b.WriteString(fmt.Sprintf("s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n",
			s.ID, nodecolor(s), s.ID, forGraphviz(s.items)))
	}
	it := c.edges.Iterator()
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		b.WriteString(fmt.Sprintf("s%03d -> s%03d [label=\"%s\"]\n", e.from.ID, e.to.ID,
			escapeGraphviz(e.label.Name)))
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func nodecolor(state *CFSMState) string {
	if state.Accept {
		return "lightgray"
	}
	return "white"
}

func forGraphviz(items []LookaheadItem) string {
	var lines []string
	for _, li := range items {
		lines = append(lines, escapeGraphviz(li.String()))
	}
	return strings.Join(lines, "\\l") + "\\l"
}

var graphvizEscaper = strings.NewReplacer(
	`"`, `\"`, `{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

func escapeGraphviz(s string) string {
	return graphvizEscaper.Replace(s)
}
