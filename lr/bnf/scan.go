package bnf

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/scanner"
	"github.com/npillmayer/lrgen/lr/scanner/lexmach"
	"github.com/timtadh/lexmachine"
)

// --- Lexer for the grammar format ------------------------------------------

// Token type for "->". '|' and ';' use their rune values.
const arrowTok = 1

var literals = []string{"->", "|", ";"}

// tokenIds maps token names of the grammar format to their token types.
var tokenIds = map[string]int{
	"ID":       scanner.Ident,
	"TERMINAL": scanner.String,
	"->":       arrowTok,
	"|":        '|',
	";":        ';',
}

// Token returns a token name and its token type, ready to be used with a
// rule builder.
func Token(t string) (string, int) {
	id, ok := tokenIds[t]
	if !ok {
		panic(fmt.Errorf("unknown token: %s", t))
	}
	return t, id
}

func makeToken(s string) lexmachine.Action {
	_, id := Token(s)
	return lexmach.MakeToken(s, id)
}

// dslLexer creates the lexer for the grammar format.
func dslLexer() (*lexmach.LMAdapter, error) {
	init := func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`//[^\n]*\n?`), lexmach.Skip)
		lexer.Add([]byte(`\"[^"]*\"`), makeToken("TERMINAL"))
		lexer.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_|\')*`), makeToken("ID"))
		lexer.Add([]byte(`( |\t|\n|\r)+`), lexmach.Skip)
	}
	return lexmach.NewLMAdapter(init, literals, nil, tokenIds)
}

// --- Token types for terminals ---------------------------------------------

// DefaultTokens maps the names of terminals for identifiers, numbers and
// strings to the token types of package scanner.
var DefaultTokens = map[string]lrgen.TokType{
	"ident":  scanner.Ident,
	"int":    scanner.Int,
	"float":  scanner.Float,
	"string": scanner.String,
}

// SyntheticTokenBase is the first token type assigned to terminals which are
// neither found in the token map nor consist of a single rune. It is beyond
// the range of Unicode code points.
const SyntheticTokenBase lrgen.TokType = utf8.MaxRune + 1

// TokenTypes assigns token types to terminal names. Names are looked up in
// a map of known token types first. Single runes are their own token types,
// other names get synthetic token types, starting at SyntheticTokenBase.
type TokenTypes struct {
	known map[string]lrgen.TokType
	next  lrgen.TokType
	used  map[string]lrgen.TokType
}

// NewTokenTypes creates an assignment of token types, given a map of known
// token types. If known is nil, DefaultTokens is used.
func NewTokenTypes(known map[string]lrgen.TokType) *TokenTypes {
	if known == nil {
		known = DefaultTokens
	}
	return &TokenTypes{
		known: known,
		next:  SyntheticTokenBase,
		used:  make(map[string]lrgen.TokType),
	}
}

// TypeFor returns the token type for a terminal name. Repeated calls for the
// same name return the same token type.
func (tt *TokenTypes) TypeFor(name string) lrgen.TokType {
	if t, ok := tt.used[name]; ok {
		return t
	}
	t, ok := tt.known[name]
	if !ok {
		if r, size := utf8.DecodeRuneInString(name); size == len(name) && r != utf8.RuneError {
			t = lrgen.TokType(r)
		} else {
			t = tt.next
			tt.next++
		}
	}
	tt.used[name] = t
	return t
}

// --- Lexers for grammars ---------------------------------------------------

// classes holds the patterns for terminals which do not stand for themselves.
var classes = map[lrgen.TokType]string{
	scanner.Ident:  `([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`,
	scanner.Int:    `[0-9]+`,
	scanner.Float:  `[0-9]+\.[0-9]+`,
	scanner.String: `\"[^"]*\"`,
}

var lexers sync.Map // *lr.Grammar -> *lexmach.LMAdapter

// Lexer returns a lexmachine lexer for the terminals of a grammar. Terminals
// with token types scanner.Ident, Int, Float or String match identifiers,
// numbers and double-quoted strings. Every other terminal matches its name.
// White space is skipped.
//
// Lexers are created once per grammar.
func Lexer(g *lr.Grammar) (*lexmach.LMAdapter, error) {
	if lm, ok := lexers.Load(g); ok {
		return lm.(*lexmach.LMAdapter), nil
	}
	terminals := append([]*lr.Symbol(nil), g.Terminals()[1:]...) // without EOF
	// literals are added before classes, so keywords win over identifiers
	sort.SliceStable(terminals, func(i, j int) bool {
		_, ci := classes[terminals[i].TokenType()]
		_, cj := classes[terminals[j].TokenType()]
		return !ci && cj
	})
	init := func(lexer *lexmachine.Lexer) {
		for _, A := range terminals {
			pattern, ok := classes[A.TokenType()]
			if !ok {
				pattern = quoteLiteral(A.Name)
			}
			tracer().Debugf("lexer: terminal %s matches %s", A.Name, pattern)
			lexer.Add([]byte(pattern), lexmach.MakeToken(A.Name, int(A.TokenType())))
		}
		lexer.Add([]byte(`( |\t|\n|\r)+`), lexmach.Skip)
	}
	lm, err := lexmach.NewLMAdapter(init, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create lexer for grammar %q: %w", g.Name, err)
	}
	actual, _ := lexers.LoadOrStore(g, lm)
	return actual.(*lexmach.LMAdapter), nil
}

// quoteLiteral creates a lexmachine pattern matching s literally.
func quoteLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r >= utf8.RuneSelf:
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
