package lr

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"text/scanner"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// S -> E ; E -> E + T | T ; T -> int
func makeExprGrammar(t *testing.T) *Grammar {
	b := NewGrammarBuilder("Expr")
	b.LHS("S").N("E").End()
	b.LHS("E").N("E").T("+", '+').N("T").End()
	b.LHS("E").N("T").End()
	b.LHS("T").T("int", scanner.Int).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestExprTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	g := makeExprGrammar(t)
	lrgen := NewTableGenerator(g, 1)
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	if lrgen.Grammar() != g {
		t.Errorf("normalized grammar must not be augmented")
	}
	tables := lrgen.Tables()
	if tables.Augmented() || tables.K() != 1 {
		t.Errorf("expected non-augmented LR(1) tables")
	}
	intT := g.SymbolByName("int")
	if a := tables.Action(0, NewWord(intT)); a.Kind != ShiftAction {
		t.Errorf("expected shift on int in state 0, got %v", a)
	}
	if a := tables.Action(0, NewWord(EOF)); a.Kind != ErrorAction {
		t.Errorf("expected error on EOF in state 0, got %v", a)
	}
	sE, ok := tables.Goto(0, g.SymbolByName("E"))
	if !ok {
		t.Fatalf("expected goto on E from state 0")
	}
	if a := tables.Action(sE, NewWord(EOF)); a.Kind != FinishAction || a.DropStart || a.Rule != g.Rule(0) {
		t.Errorf("expected finish with S ::= E in state %d, got %v", sE, a)
	}
	if exp := tables.Expected(sE); len(exp) != 2 || !exp[0].Equals(NewWord(EOF)) {
		t.Errorf("expected lookaheads [#eof] and [+] in state %d, got %v", sE, exp)
	}
	for _, s := range lrgen.CFSM().States() {
		if s.Accept != (s.ID == sE) {
			t.Errorf("state %d has accept flag %v", s.ID, s.Accept)
		}
	}
}

func TestSingleActionPerLookahead(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	for _, g := range []*Grammar{makeExprGrammar(t), makeGrammar1(t), makeGrammar2(t)} {
		for k := 1; k <= 3; k++ {
			tables, err := GenerateTables(g, k)
			if err != nil {
				t.Fatalf("%s, k=%d: %v", g.Name, k, err)
			}
			for s := 0; s < tables.StateCount(); s++ {
				seen := make(map[string]bool)
				tables.EachAction(s, func(w Word, a Action) {
					if w.Len() != k {
						t.Errorf("lookahead %v has wrong length", w)
					}
					if seen[w.Key()] {
						t.Errorf("%s: two actions for state %d and %v", g.Name, s, w)
					}
					seen[w.Key()] = true
				})
			}
		}
	}
}

func TestConflict(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("Ambig")
	b.LHS("S").N("A").End()
	b.LHS("S").N("B").End()
	b.LHS("A").T("x", 'x').End()
	b.LHS("B").T("x", 'x').End()
	g, _ := b.Grammar()
	_, err := GenerateTables(g, 1)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected a conflict, got %v", err)
	}
	var conflict *GenerationConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected a GenerationConflict")
	}
	t.Logf("%v", conflict)
	if pathString(conflict.Path) != "[x]" {
		t.Errorf("expected example path [x], got %v", pathString(conflict.Path))
	}
	// both reductions compete for end of input
	if !conflict.Lookahead.Equals(NewWord(EOF)) {
		t.Errorf("expected conflict for lookahead [#eof], got %v", conflict.Lookahead)
	}
	if len(conflict.Items) != 2 {
		t.Errorf("expected 2 conflicting items, got %v", conflict.Items)
	}
	for _, a := range conflict.Actions {
		if a.Kind != ReduceAction {
			t.Errorf("expected reduce/reduce conflict, have %v", a)
		}
	}
}

// S -> B y c | D y d ; B -> x ; D -> x needs two tokens of lookahead after x.
func TestLR2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("LR2")
	b.LHS("S").N("B").T("y", 'y').T("c", 'c').End()
	b.LHS("S").N("D").T("y", 'y').T("d", 'd').End()
	b.LHS("B").T("x", 'x').End()
	b.LHS("D").T("x", 'x').End()
	g, _ := b.Grammar()
	if _, err := GenerateTables(g, 1); !errors.Is(err, ErrConflict) {
		t.Errorf("expected grammar not to be LR(1), got %v", err)
	}
	tables, err := GenerateTables(g, 2)
	if err != nil {
		t.Fatalf("expected grammar to be LR(2), got %v", err)
	}
	if !tables.Augmented() {
		t.Errorf("expected augmented tables")
	}
}

func TestLR0(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("LR0")
	b.LHS("S").T("(", '(').N("L").T(")", ')').End()
	b.LHS("L").N("L").T("a", 'a').End()
	b.LHS("L").T("a", 'a').End()
	g, _ := b.Grammar()
	tables, err := GenerateTables(g, 0)
	if err != nil {
		t.Fatal(err)
	}
	tables.EachAction(0, func(w Word, a Action) {
		if !w.IsEpsilon() {
			t.Errorf("LR(0) lookahead must be ε, is %v", w)
		}
	})
	if _, err = GenerateTables(g, -1); err == nil {
		t.Errorf("expected error for negative k")
	}
}

func TestCFSMValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	g := makeExprGrammar(t)
	lrgen := NewTableGenerator(g, 1)
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	cfsm := lrgen.CFSM()
	states := cfsm.States()
	if _, err := NewCFSM(g, states, cfsm.Transitions()); err != nil {
		t.Errorf("re-creating the CFSM failed: %v", err)
	}
	dup := NewCFSMState(len(states), states[1].Items())
	if _, err := NewCFSM(g, append(states, dup), nil); err == nil {
		t.Errorf("expected error for states with equal item sets")
	}
	tr := cfsm.Transitions()
	if _, err := NewCFSM(g, states, append(tr, tr[0])); err == nil {
		t.Errorf("expected error for duplicate transition")
	}
	if s := cfsm.Successor(cfsm.S0, g.SymbolByName("T")); s == nil {
		t.Errorf("expected transition on T from start state")
	}
}

func TestExport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	lrgen := NewTableGenerator(makeExprGrammar(t), 1)
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	var dot, html bytes.Buffer
	if err := lrgen.CFSM().CFSM2GraphViz(&dot); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dot.String(), "digraph {") || !strings.Contains(dot.String(), "s000 -> ") {
		t.Errorf("unexpected Graphviz output:\n%s", dot.String())
	}
	if err := ActionTableAsHTML(lrgen.Tables(), &html); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html.String(), "<td>[#eof]</td>") {
		t.Errorf("expected ACTION table to contain column for EOF")
	}
	html.Reset()
	if err := GotoTableAsHTML(lrgen.Tables(), &html); err != nil {
		t.Fatal(err)
	}
}
