package scanner

import (
	"io"
	"strings"
	"testing"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestLexerPeek(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.scanner")
	defer teardown()
	//
	input := "test!"
	stream := NewCatSeqReader(strings.NewReader(input))
	for i := 0; i < 5; i++ {
		r, err := stream.lookahead()
		if err != nil {
			t.Error(err)
		}
		if r != []rune(input)[i] {
			t.Errorf("expected rune #%d to be %#U, is %#U", i, input[i], r)
		}
		stream.match(r)
	}
	_, err := stream.lookahead()
	if err != io.EOF {
		t.Error("expected error to be EOF; isn't")
	}
}

func TestLexerCatSeq(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.scanner")
	defer teardown()
	//
	for i, test := range []struct {
		input string
		cat   CatCode
		l     int
	}{
		{input: "abc ;", cat: 1, l: 3},
		{input: "123 ;", cat: 2, l: 3},
		{input: ">= ;", cat: 3, l: 2},
		{input: "+-+ ;", cat: 4, l: 3},
		{input: "();", cat: 5, l: 1},
	} {
		strm := NewCatSeqReader(strings.NewReader(test.input))
		csq, err := strm.Next(CharGroups{"abcdef", "1234567890", "<>=", "+-", "("})
		if err != nil {
			t.Error(err)
		}
		if csq.Length != test.l || csq.Cat != test.cat {
			t.Errorf("test %d failed: exepected %d|%d, have %d|%d", i+1, test.cat, test.l, csq.Cat, csq.Length)
		}
	}
}

func TestCatTokenizer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.scanner")
	defer teardown()
	//
	groups := CharGroups{"abcdefghijklmnopqrstuvwxyz", "0123456789", "+", " \n"}
	types := map[CatCode]lrgen.TokType{1: Ident, 2: Int, 3: '+'}
	ct := NewCatTokenizer(strings.NewReader("ab  12+x\n?"), groups, types)
	var errs []error
	ct.SetErrorHandler(func(err error) { errs = append(errs, err) })
	var lexemes []string
	for token := ct.NextToken(); token.TokType() != EOF; token = ct.NextToken() {
		lexemes = append(lexemes, token.Lexeme())
	}
	if strings.Join(lexemes, "|") != "ab|12|+|x" {
		t.Errorf("unexpected tokens %v", lexemes)
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "line 2|1") {
		t.Errorf("expected one error for '?' at line 2|1, got %v", errs)
	}
	if ct.Location() != "line 2|2" {
		t.Errorf("unexpected location at end of input: %s", ct.Location())
	}
	if token := ct.NextToken(); token.TokType() != EOF {
		t.Errorf("expected EOF to repeat")
	}
}
