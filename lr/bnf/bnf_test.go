package bnf

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr/lrk"
	"github.com/npillmayer/lrgen/lr/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const exprGrammar = `
// arithmetic expressions
S -> E ;
E -> E "+" T | T ;
T -> T "*" F | F ;
F -> "(" E ")" | "int" ;
`

func TestParseGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.bnf")
	defer teardown()
	//
	g, err := Parse("Expr", exprGrammar, nil)
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 7 {
		t.Errorf("expected grammar to have 7 rules, has %d", g.Size())
	}
	if g.Start().Name != "S" {
		t.Errorf("expected start symbol S, is %v", g.Start())
	}
	if r := g.Rule(1).String(); r != "[E] ::= [E + T]" {
		t.Errorf("unexpected rule %s", r)
	}
	if A := g.SymbolByName("+"); A == nil || A.TokenType() != '+' {
		t.Errorf("expected terminal + with token type '+', is %v", A)
	}
	if A := g.SymbolByName("int"); A == nil || A.TokenType() != scanner.Int {
		t.Errorf("expected terminal int with token type scanner.Int, is %v", A)
	}
}

func TestEpsilonAlternatives(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.bnf")
	defer teardown()
	//
	g, err := Parse("List", `S -> "(" L ")" ; L -> L "a" | ; Empty -> ;`, nil)
	if err != nil {
		t.Fatal(err)
	}
	eps := 0
	for _, r := range g.Rules() {
		if r.IsEpsilon() {
			eps++
		}
	}
	if eps != 2 {
		t.Errorf("expected 2 epsilon rules, have %d", eps)
	}
}

func TestTokenTypes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.bnf")
	defer teardown()
	//
	tokens := map[string]lrgen.TokType{"id": scanner.Ident}
	g, err := Parse("Stmt", `S -> "if" "id" "then" S | "id" ;`, tokens)
	if err != nil {
		t.Fatal(err)
	}
	if A := g.SymbolByName("id"); A.TokenType() != scanner.Ident {
		t.Errorf("expected id to have token type from map, has %d", A.TokenType())
	}
	kwIf, kwThen := g.SymbolByName("if"), g.SymbolByName("then")
	if kwIf.TokenType() != SyntheticTokenBase || kwThen.TokenType() != SyntheticTokenBase+1 {
		t.Errorf("expected keywords to have synthetic token types, have %d and %d",
			kwIf.TokenType(), kwThen.TokenType())
	}
}

func TestGrammarErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.bnf")
	defer teardown()
	//
	_, err := Parse("Broken", `S -> "a" B ;`, nil)
	if err == nil || !strings.Contains(err.Error(), "B has no rules") {
		t.Errorf("expected error for undefined non-terminal, got %v", err)
	}
	_, err = Parse("Broken", `S -> "a" | ; T "b" ;`, nil)
	if !errors.Is(err, lrk.ErrSyntax) {
		t.Errorf("expected syntax error, got %v", err)
	}
	var perr *lrk.ParseError
	if !errors.As(err, &perr) || perr.Token.Lexeme() != `"b"` {
		t.Errorf("expected syntax error at terminal \"b\", got %v", err)
	}
	_, err = Parse("Broken", `S -> "" ;`, nil)
	if err == nil {
		t.Errorf("expected error for empty terminal")
	}
}

func TestLexer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.bnf")
	defer teardown()
	//
	g, err := Parse("Expr", exprGrammar, nil)
	if err != nil {
		t.Fatal(err)
	}
	parser, err := lrk.Generate(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	lm, err := Lexer(g)
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := Lexer(g); again != lm {
		t.Errorf("expected lexer to be created once per grammar")
	}
	scan, err := lm.Scanner("1 + 2 * (3)")
	if err != nil {
		t.Fatal(err)
	}
	root, err := parser.Parse(scan)
	if err != nil {
		t.Fatal(err)
	}
	expected := "S(E(E(T(F(int))), +, T(T(F(int)), *, F((, E(T(F(int))), )))))"
	if root.String() != expected {
		t.Errorf("unexpected AST %v", root)
	}
}

func TestKeywordsBeforeIdentifiers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.bnf")
	defer teardown()
	//
	g, err := Parse("Stmt", `S -> "if" "ident" "then" S | "ident" ;`, nil)
	if err != nil {
		t.Fatal(err)
	}
	lm, err := Lexer(g)
	if err != nil {
		t.Fatal(err)
	}
	scan, _ := lm.Scanner("if x then y")
	var types []lrgen.TokType
	for token := scan.NextToken(); token.TokType() != scanner.EOF; token = scan.NextToken() {
		types = append(types, token.TokType())
	}
	kwIf, kwThen := g.SymbolByName("if").TokenType(), g.SymbolByName("then").TokenType()
	expected := []lrgen.TokType{kwIf, scanner.Ident, kwThen, scanner.Ident}
	if len(types) != len(expected) {
		t.Fatalf("expected token types %v, have %v", expected, types)
	}
	for i := range expected {
		if types[i] != expected[i] {
			t.Errorf("expected token types %v, have %v", expected, types)
			break
		}
	}
	if _, err := lrk.Generate(g, 1); err != nil {
		t.Error(err)
	}
}
