package scanner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var inputStrings = []string{
	"1",
	"1+12",
	"Hello #World",
	`x="mystring" // commented `,
	"1,22,333",
}

var tokenCounts = []int{1, 3, 3, 3, 5}

func TestScan1(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.scanner")
	defer teardown()
	//
	for i, input := range inputStrings {
		t.Logf("------+-----------------+--------")
		reader := strings.NewReader(input)
		name := fmt.Sprintf("input #%d", i)
		scanner := GoTokenizer(name, reader)
		token := scanner.NextToken()
		count := 0
		for token.TokType() != EOF {
			t.Logf(" %4d | %15s | @%5d", token.TokType(), token.Lexeme(), token.Span().From())
			token = scanner.NextToken()
			count++
		}
		if count != tokenCounts[i] {
			t.Errorf("Expected token count for #%d to be %d, is %d", i, tokenCounts[i], count)
		}
	}
	t.Logf("------+-----------------+--------")
}

func TestGoTokenizerLocation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.scanner")
	defer teardown()
	//
	scanner := GoTokenizer("test", strings.NewReader("a\n  b"))
	scanner.NextToken()
	token := scanner.NextToken()
	if token.Lexeme() != "b" {
		t.Fatalf("expected second token to be b, is %q", token.Lexeme())
	}
	if loc := scanner.Location(); loc != "test:2:3" {
		t.Errorf("expected location test:2:3, is %s", loc)
	}
}

func TestUnifyStrings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.scanner")
	defer teardown()
	//
	scanner := GoTokenizer("test", strings.NewReader("'c' `raw`"), UnifyStrings(true))
	for i := 0; i < 2; i++ {
		if token := scanner.NextToken(); token.TokType() != String {
			t.Errorf("expected token %q to be a string", token.Lexeme())
		}
	}
}

func TestTokenSlice(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.scanner")
	defer teardown()
	//
	ts := TokenTypes(Int, '+', Int)
	var types []lrgen.TokType
	for token := ts.NextToken(); token.TokType() != EOF; token = ts.NextToken() {
		types = append(types, token.TokType())
	}
	if len(types) != 3 || types[1] != '+' {
		t.Errorf("unexpected token types %v", types)
	}
	for i := 0; i < 3; i++ {
		if token := ts.NextToken(); token.TokType() != EOF {
			t.Errorf("expected EOF to repeat, got %v", token)
		}
	}
	if ts.Location() != "token #4" {
		t.Errorf("unexpected location %s", ts.Location())
	}
}
