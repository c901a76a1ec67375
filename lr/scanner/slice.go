package scanner

import (
	"fmt"

	"github.com/npillmayer/lrgen"
)

// TokenSlice is a tokenizer for pre-scanned input. After the last token it
// returns EOF tokens.
type TokenSlice struct {
	tokens []lrgen.Token
	pos    int
}

var _ Tokenizer = (*TokenSlice)(nil)
var _ Locator = (*TokenSlice)(nil)

// NewTokenSlice creates a tokenizer over a sequence of tokens. Tokens of type
// EOF within the sequence end the input.
func NewTokenSlice(tokens ...lrgen.Token) *TokenSlice {
	return &TokenSlice{tokens: tokens}
}

// TokenTypes is a convenience function to create a tokenizer over a sequence
// of token types. Lexemes are the %v representations of the types, spans are
// the positions within the sequence.
func TokenTypes(types ...lrgen.TokType) *TokenSlice {
	tokens := make([]lrgen.Token, len(types))
	for i, tt := range types {
		tokens[i] = MakeDefaultToken(tt, fmt.Sprintf("%v", tt), lrgen.Span{uint64(i), uint64(i + 1)})
	}
	return NewTokenSlice(tokens...)
}

// NextToken is part of the Tokenizer interface.
func (ts *TokenSlice) NextToken() lrgen.Token {
	if ts.pos >= len(ts.tokens) {
		end := uint64(len(ts.tokens))
		ts.pos = len(ts.tokens) + 1
		return MakeDefaultToken(EOF, "", lrgen.Span{end, end})
	}
	token := ts.tokens[ts.pos]
	ts.pos++
	return token
}

// SetErrorHandler is part of the Tokenizer interface. A token slice never
// reports errors.
func (ts *TokenSlice) SetErrorHandler(func(error)) {}

// Location is part of the Locator interface.
func (ts *TokenSlice) Location() string {
	return fmt.Sprintf("token #%d", ts.pos)
}
