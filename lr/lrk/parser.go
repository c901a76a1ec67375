package lrk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/ast"
	"github.com/npillmayer/lrgen/lr/scanner"
	"github.com/npillmayer/schuko/gconf"
)

// Parser is an LR(k)-parser type. Create one with Generate or NewParser.
type Parser struct {
	tables *lr.Tables
}

// Generate creates parse tables for a grammar and returns a parser for them.
// If the grammar is not LR(k), an error of type *lr.GenerationConflict is
// returned. If the grammar contains unproductive non-terminals, the error is
// of type *lr.UnproductiveError.
func Generate(g *lr.Grammar, k int) (*Parser, error) {
	tables, err := lr.GenerateTables(g, k)
	if err != nil {
		return nil, err
	}
	return NewParser(tables), nil
}

// NewParser creates a parser for a set of parse tables.
func NewParser(tables *lr.Tables) *Parser {
	return &Parser{tables: tables}
}

// Tables returns the parse tables of the parser.
func (p *Parser) Tables() *lr.Tables {
	return p.tables
}

// K returns the lookahead length of the parser.
func (p *Parser) K() int {
	return p.tables.K()
}

// Option configures a single parse run.
type Option func(*run)

// OnAction sets a function which is called for every action the parser
// performs, with the current state.
func OnAction(f func(state int, a lr.Action)) Option {
	return func(r *run) {
		r.onAction = f
	}
}

// We store pairs of state-IDs and AST nodes on the parse stack.
type stackitem struct {
	state int
	node  ast.Node
}

// run holds the state of a single parse.
type run struct {
	tables   *lr.Tables
	tokens   scanner.Tokenizer
	stack    []stackitem   // parser stack
	la       []lrgen.Token // lookahead buffer
	types    []lrgen.TokType
	eof      lrgen.Token // EOF token, once the scanner has reported it
	onAction func(int, lr.Action)
}

// Parse parses the input provided by a tokenizer. It returns the root node of
// the AST, which represents the start symbol of the grammar (the original
// one, if the grammar has been augmented for table generation).
//
// If the input contains a syntax error, Parse returns an error of type
// *ParseError.
func (p *Parser) Parse(tokens scanner.Tokenizer, opts ...Option) (*ast.Inner, error) {
	tracer().Debugf("~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~")
	if p == nil || p.tables == nil {
		return nil, errors.New("LR(k)-parser not initialized")
	}
	r := &run{
		tables: p.tables,
		tokens: tokens,
		stack:  make([]stackitem, 1, 64),
		la:     make([]lrgen.Token, 0, p.tables.K()+1),
		types:  make([]lrgen.TokType, 0, p.tables.K()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r.parse()
}

func (r *run) parse() (*ast.Inner, error) {
	k := r.tables.K()
	for {
		r.fill(k)
		state := r.stack[len(r.stack)-1].state // TOS
		action := r.tables.ActionByKey(state, lr.WordKey(r.lookaheadTypes(k)))
		tracer().Debugf("action(%d, %v) = %v", state, r.lookaheadTypes(k), action)
		if r.onAction != nil {
			r.onAction(state, action)
		}
		switch action.Kind {
		case lr.ShiftAction:
			if err := r.shift(state); err != nil {
				return nil, err
			}
		case lr.ReduceAction:
			node := r.reduce(action.Rule)
			next, ok := r.tables.Goto(r.stack[len(r.stack)-1].state, action.Rule.LHS)
			if !ok {
				panic(fmt.Sprintf("LR(k) tables corrupt: no goto for %v in state %d",
					action.Rule.LHS, r.stack[len(r.stack)-1].state))
			}
			r.stack = append(r.stack, stackitem{state: next, node: node})
		case lr.FinishAction:
			var root *ast.Inner
			if action.DropStart {
				root = r.stack[len(r.stack)-1].node.(*ast.Inner)
			} else {
				root = r.reduce(action.Rule)
			}
			if k == 0 {
				if err := r.expectEOF(state); err != nil {
					return nil, err
				}
			}
			tracer().Infof("accept %v", root.Symbol())
			return root, nil
		default:
			return nil, r.syntaxError(state, nil, nil)
		}
	}
}

// fill makes sure that the lookahead buffer holds k tokens. Past end of
// input it is padded with EOF.
func (r *run) fill(k int) {
	for len(r.la) < k {
		r.la = append(r.la, r.next())
	}
}

func (r *run) next() lrgen.Token {
	if r.eof != nil {
		return r.eof
	}
	token := r.tokens.NextToken()
	tracer().Debugf("got token %q/%d from scanner", token.Lexeme(), token.TokType())
	if token.TokType() == scanner.EOF {
		r.eof = token
	}
	return token
}

func (r *run) lookaheadTypes(k int) []lrgen.TokType {
	r.types = r.types[:0]
	for _, token := range r.la[:k] {
		r.types = append(r.types, token.TokType())
	}
	return r.types
}

// shift consumes one token. For k = 0 the token is read from the scanner.
func (r *run) shift(state int) error {
	if len(r.la) == 0 {
		r.la = append(r.la, r.next())
	}
	token := r.la[0]
	t := r.tables.TerminalFor(token.TokType())
	next, ok := r.tables.Goto(state, t)
	if t == nil || !ok {
		return r.syntaxError(state, token, nil)
	}
	r.la = r.la[1:]
	tracer().Debugf("shifting %v, next state = %d", t, next)
	r.stack = append(r.stack, stackitem{state: next, node: &ast.Leaf{Terminal: t, Token: token}})
	return nil
}

// reduce pops the handle for a rule from the stack and builds an AST node.
//
//    LHS --> X1 ... Xn   (with X being terminals or non-terminals)
//
// Symbols X1 to Xn are represented on the stack as
//
//    [TOS]  Sn(node_n) ... S1(node_1)  ...
//
func (r *run) reduce(rule *lr.Rule) *ast.Inner {
	tracer().Debugf("reduce %v", rule)
	n := rule.Len()
	children := make([]ast.Node, n)
	for i, item := range r.stack[len(r.stack)-n:] {
		children[i] = item.node
	}
	r.stack = r.stack[:len(r.stack)-n]
	return &ast.Inner{Rule: rule, Children: children}
}

// expectEOF checks for end of input after an LR(0) parser has accepted.
func (r *run) expectEOF(state int) error {
	if len(r.la) == 0 {
		r.la = append(r.la, r.next())
	}
	if r.la[0].TokType() == scanner.EOF {
		return nil
	}
	return r.syntaxError(state, r.la[0], []lr.Word{lr.NewWord(lr.EOF)})
}

// --- Errors ----------------------------------------------------------------

// ErrSyntax is the sentinel error for syntax errors.
var ErrSyntax = errors.New("syntax error")

// ParseError is returned by the parser for input which is not a sentence
// of the grammar.
type ParseError struct {
	Token     lrgen.Token // offending token, of type EOF at end of input
	Lookahead []lrgen.Token
	State     int       // parser state
	Location  string    // location of the tokenizer, if it implements scanner.Locator
	Expected  []lr.Word // lookahead words the parser would have accepted
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("syntax error")
	if e.Location != "" {
		b.WriteString(" at ")
		b.WriteString(e.Location)
	}
	b.WriteString(": got ")
	b.WriteString(tokenString(e.Token))
	b.WriteString(", expected any of [")
	for i, w := range e.Expected {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(w.String())
	}
	b.WriteString("]")
	return b.String()
}

// Unwrap lets errors.Is match ErrSyntax.
func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

func tokenString(token lrgen.Token) string {
	if token == nil || token.TokType() == scanner.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", token.Lexeme())
}

// syntaxError creates a parse error for a state. If token is nil, the first
// lookahead token is the offending one. If expected is nil, the lookaheads
// of the state are expected.
func (r *run) syntaxError(state int, token lrgen.Token, expected []lr.Word) *ParseError {
	if token == nil {
		if len(r.la) == 0 { // k = 0
			r.la = append(r.la, r.next())
		}
		token = r.la[0]
	}
	err := &ParseError{
		Token:     token,
		Lookahead: append([]lrgen.Token(nil), r.la...),
		State:     state,
		Expected:  expected,
	}
	if expected == nil {
		err.Expected = r.tables.Expected(state)
	}
	if loc, ok := r.tokens.(scanner.Locator); ok {
		err.Location = loc.Location()
	}
	tracer().Errorf("%v", err)
	if gconf.GetBool("panic-on-parse-error") {
		panic(`LR(k)-parser found a syntax error.

Configuration flag panic-on-parse-error is set to true. It is aimed at helping
to debug a grammar and do a post-mortem of a failed parse. However, if this is
a production environment and you did not expect this to panic, please unset
panic-on-parse-error to its default (false).

` + err.Error())
	}
	return err
}
