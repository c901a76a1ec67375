package lrk

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/ast"
	"github.com/npillmayer/lrgen/lr/scanner"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// S -> E ; E -> E + T | T ; T -> int
func makeExprGrammar(t *testing.T) *lr.Grammar {
	b := lr.NewGrammarBuilder("Expr")
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

func TestExprParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	g := makeExprGrammar(t)
	parser, err := Generate(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	var trace []string
	hook := OnAction(func(state int, a lr.Action) {
		switch a.Kind {
		case lr.ShiftAction:
			trace = append(trace, "shift")
		default:
			trace = append(trace, fmt.Sprintf("%s %d", a.Kind, a.Rule.Serial))
		}
	})
	root, err := parser.Parse(scanner.TokenTypes(scanner.Int, '+', scanner.Int), hook)
	if err != nil {
		t.Fatal(err)
	}
	if root.String() != "S(E(E(T(int)), +, T(int)))" {
		t.Errorf("unexpected AST %v", root)
	}
	expected := []string{"shift", "reduce 3", "reduce 2", "shift", "shift", "reduce 3", "reduce 1", "finish 0"}
	if fmt.Sprint(trace) != fmt.Sprint(expected) {
		t.Errorf("expected actions %v, have %v", expected, trace)
	}
	if span := root.Span(); span.From() != 0 || span.To() != 3 {
		t.Errorf("expected AST to span all 3 tokens, spans %v", span)
	}
}

func TestEmptyInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	parser, err := Generate(makeExprGrammar(t), 1)
	if err != nil {
		t.Fatal(err)
	}
	_, err = parser.Parse(scanner.TokenTypes())
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a ParseError")
	}
	if perr.Token.TokType() != scanner.EOF {
		t.Errorf("expected error to cite EOF, cites %v", perr.Token)
	}
	if len(perr.Expected) != 1 || perr.Expected[0].String() != "[int]" {
		t.Errorf("expected [int] to be expected, have %v", perr.Expected)
	}
	t.Logf("error message: %v", err)
}

func TestSyntaxErrorLocation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	parser, err := Generate(makeExprGrammar(t), 1)
	if err != nil {
		t.Fatal(err)
	}
	_, err = parser.Parse(scanner.TokenTypes(scanner.Int, '+', '+', scanner.Int))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a ParseError, got %v", err)
	}
	if perr.Token.TokType() != '+' || perr.Location != "token #3" {
		t.Errorf("expected error for second '+' at token #3, got %v", err)
	}
	_, err = parser.Parse(scanner.TokenTypes(scanner.Int, scanner.Ident))
	if !errors.As(err, &perr) {
		t.Errorf("expected unknown token type to be a syntax error, got %v", err)
	}
}

// countingTokenizer fails the test if it is called after having reported EOF.
type countingTokenizer struct {
	*scanner.TokenSlice
	t    *testing.T
	eof  bool
	call int
}

func (ct *countingTokenizer) NextToken() lrgen.Token {
	if ct.eof {
		ct.t.Errorf("tokenizer called after EOF")
	}
	ct.call++
	token := ct.TokenSlice.NextToken()
	ct.eof = token.TokType() == scanner.EOF
	return token
}

// S -> a P ; P -> + : after a, the only lookahead to shift is [+ #eof].
func TestEOFPadding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("Pad")
	b.LHS("S").T("a", 'a').N("P").End()
	b.LHS("P").T("+", '+').End()
	g, _ := b.Grammar()
	parser, err := Generate(g, 2)
	if err != nil {
		t.Fatal(err)
	}
	a, plus := g.SymbolByName("a"), g.SymbolByName("+")
	sA, _ := parser.Tables().Goto(0, a)
	exp := parser.Tables().Expected(sA)
	if len(exp) != 1 || !exp[0].Equals(lr.NewWord(plus, lr.EOF)) {
		t.Fatalf("expected [+ #eof] to be the only lookahead after a, have %v", exp)
	}
	tokens := &countingTokenizer{TokenSlice: scanner.TokenTypes('a', '+'), t: t}
	root, err := parser.Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	if root.String() != "S(a, P(+))" {
		t.Errorf("unexpected AST %v", root)
	}
	if tokens.call != 3 {
		t.Errorf("expected tokenizer to be called 3 times, was called %d times", tokens.call)
	}
}

func TestLR2Parse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("LR2")
	b.LHS("S").N("B").T("y", 'y').T("c", 'c').End()
	b.LHS("S").N("D").T("y", 'y').T("d", 'd').End()
	b.LHS("B").T("x", 'x').End()
	b.LHS("D").T("x", 'x').End()
	g, _ := b.Grammar()
	parser, err := Generate(g, 2)
	if err != nil {
		t.Fatal(err)
	}
	for input, output := range map[string]string{
		"xyc": "S(B(x), y, c)",
		"xyd": "S(D(x), y, d)",
	} {
		var types []lrgen.TokType
		for _, r := range input {
			types = append(types, lrgen.TokType(r))
		}
		root, err := parser.Parse(scanner.TokenTypes(types...))
		if err != nil {
			t.Errorf("%s: %v", input, err)
			continue
		}
		if root.String() != output {
			t.Errorf("%s: expected %s, have %v", input, output, root)
		}
	}
}

// S -> S a | a is left recursive in its start symbol, so the grammar will be
// augmented.
func TestDropStart(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("List")
	b.LHS("S").N("S").T("a", 'a').End()
	b.LHS("S").T("a", 'a').End()
	g, _ := b.Grammar()
	parser, err := Generate(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !parser.Tables().Augmented() {
		t.Fatalf("expected tables for augmented grammar")
	}
	var finish lr.Action
	root, err := parser.Parse(scanner.TokenTypes('a', 'a', 'a'), OnAction(func(_ int, a lr.Action) {
		finish = a
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !finish.DropStart || finish.Kind != lr.FinishAction {
		t.Errorf("expected last action to be finish with dropped start symbol, is %v", finish)
	}
	if root.String() != "S(S(S(a), a), a)" {
		t.Errorf("unexpected AST %v", root)
	}
}

// S -> ( L ) ; L -> L a | a
func TestLR0Parse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("LR0")
	b.LHS("S").T("(", '(').N("L").T(")", ')').End()
	b.LHS("L").N("L").T("a", 'a').End()
	b.LHS("L").T("a", 'a').End()
	g, _ := b.Grammar()
	parser, err := Generate(g, 0)
	if err != nil {
		t.Fatal(err)
	}
	root, err := parser.Parse(scanner.TokenTypes('(', 'a', 'a', ')'))
	if err != nil {
		t.Fatal(err)
	}
	if root.String() != "S((, L(L(a), a), ))" {
		t.Errorf("unexpected AST %v", root)
	}
	_, err = parser.Parse(scanner.TokenTypes('(', 'a', ')', 'a'))
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Token.TokType() != 'a' {
		t.Errorf("expected trailing input to be a syntax error, got %v", err)
	}
	if _, err = parser.Parse(scanner.TokenTypes('(', ')')); !errors.Is(err, ErrSyntax) {
		t.Errorf("expected syntax error for missing list, got %v", err)
	}
}

type sumListener struct{}

func (sumListener) Reduce(node *ast.Inner, children []interface{}, level int) interface{} {
	sum := 0
	for _, ch := range children {
		if n, ok := ch.(int); ok {
			sum += n
		}
	}
	return sum
}

func (sumListener) Terminal(leaf *ast.Leaf, level int) interface{} {
	return leaf.Value()
}

func numbers(values ...int) scanner.Tokenizer {
	var tokens []lrgen.Token
	for i, v := range values {
		if i > 0 {
			tokens = append(tokens, scanner.MakeDefaultToken('+', "+", lrgen.Span{}))
		}
		token := scanner.MakeDefaultToken(scanner.Int, strconv.Itoa(v), lrgen.Span{})
		token.Val = v
		tokens = append(tokens, token)
	}
	return scanner.NewTokenSlice(tokens...)
}

func TestConcurrentParses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.lr")
	defer teardown()
	//
	parser, err := Generate(makeExprGrammar(t), 2)
	if err != nil {
		t.Fatal(err)
	}
	// the test tracer is not safe for concurrent use
	tracer().SetTraceLevel(tracing.LevelError)
	tracing.Select("lrgen.scanner").SetTraceLevel(tracing.LevelError)
	var wg sync.WaitGroup
	results := make([]interface{}, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values := make([]int, i+1)
			for j := range values {
				values[j] = j + 1
			}
			root, err := parser.Parse(numbers(values...))
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = ast.Walk(root, sumListener{})
		}(i)
	}
	wg.Wait()
	for i := 0; i < 8; i++ {
		if errs[i] != nil {
			t.Errorf("parse #%d failed: %v", i, errs[i])
		} else if results[i] != (i+1)*(i+2)/2 {
			t.Errorf("parse #%d: expected sum %d, have %v", i, (i+1)*(i+2)/2, results[i])
		}
	}
}
