package bnf

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/ast"
	"github.com/npillmayer/lrgen/lr/lrk"
	"github.com/npillmayer/lrgen/lr/scanner/lexmach"
)

// --- Grammar ---------------------------------------------------------------

// Grammar      ::=  Grammar Rule
// Grammar      ::=  Rule
// Rule         ::=  ID '->' Alternatives ';'
// Alternatives ::=  Alternatives '|' Sequence
// Alternatives ::=  Sequence
// Sequence     ::=  Sequence Symbol
// Sequence     ::=  ε
// Symbol       ::=  ID
// Symbol       ::=  TERMINAL
//
func makeBNFGrammar() (*lr.Grammar, error) {
	b := lr.NewGrammarBuilder("BNF")
	b.LHS("Grammar").N("Grammar").N("Rule").End()
	b.LHS("Grammar").N("Rule").End()
	b.LHS("Rule").T(Token("ID")).T(Token("->")).N("Alternatives").T(Token(";")).End()
	b.LHS("Alternatives").N("Alternatives").T(Token("|")).N("Sequence").End()
	b.LHS("Alternatives").N("Sequence").End()
	b.LHS("Sequence").N("Sequence").N("Symbol").End()
	b.LHS("Sequence").Epsilon()
	b.LHS("Symbol").T(Token("ID")).End()
	b.LHS("Symbol").T(Token("TERMINAL")).End()
	return b.Grammar()
}

var parser *lrk.Parser
var lexer *lexmach.LMAdapter
var bootErr error

var startOnce sync.Once // monitors one-time creation of parser and lexer

func bootstrap() (*lrk.Parser, *lexmach.LMAdapter, error) {
	startOnce.Do(func() {
		tracer().Infof("Creating lexer")
		if lexer, bootErr = dslLexer(); bootErr != nil {
			return
		}
		tracer().Infof("Creating grammar")
		var g *lr.Grammar
		if g, bootErr = makeBNFGrammar(); bootErr != nil {
			return
		}
		parser, bootErr = lrk.Generate(g, 1)
	})
	if bootErr != nil {
		return nil, nil, fmt.Errorf("cannot create parser for grammar format: %w", bootErr)
	}
	return parser, lexer, nil
}

// Parse reads a grammar from its textual representation. Terminals get their
// token types from tokens, or from DefaultTokens if tokens is nil.
//
// Syntax errors are returned as (wrapped) *lrk.ParseError.
func Parse(name string, input string, tokens map[string]lrgen.TokType) (*lr.Grammar, error) {
	p, lm, err := bootstrap()
	if err != nil {
		return nil, err
	}
	scan, err := lm.Scanner(input)
	if err != nil {
		return nil, err
	}
	var scanErr error
	scan.SetErrorHandler(func(e error) {
		if scanErr == nil {
			scanErr = e
		}
	})
	root, err := p.Parse(scan)
	if scanErr != nil {
		return nil, fmt.Errorf("grammar %q: %w", name, scanErr)
	}
	if err != nil {
		return nil, fmt.Errorf("grammar %q: %w", name, err)
	}
	rules := ast.Walk(root, &ruleCollector{}).([]ruleDef)
	return build(name, rules, NewTokenTypes(tokens))
}

// ParseFile reads a grammar from a file. The grammar is named after the file.
func ParseFile(path string, tokens map[string]lrgen.TokType) (*lr.Grammar, error) {
	input, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(input), tokens)
}

// --- Building grammars -----------------------------------------------------

type symRef struct {
	name     string
	terminal bool
}

type ruleDef struct {
	lhs  string
	alts [][]symRef
}

// ruleCollector is an AST listener which collects rule definitions.
type ruleCollector struct{}

func (rc *ruleCollector) Terminal(leaf *ast.Leaf, level int) interface{} {
	return leaf.Token.Lexeme()
}

func (rc *ruleCollector) Reduce(node *ast.Inner, children []interface{}, level int) interface{} {
	switch node.Symbol().Name {
	case "Grammar":
		if len(children) == 1 {
			return []ruleDef{children[0].(ruleDef)}
		}
		return append(children[0].([]ruleDef), children[1].(ruleDef))
	case "Rule":
		return ruleDef{lhs: children[0].(string), alts: children[2].([][]symRef)}
	case "Alternatives":
		if len(children) == 1 {
			return [][]symRef{children[0].([]symRef)}
		}
		return append(children[0].([][]symRef), children[2].([]symRef))
	case "Sequence":
		if len(children) == 0 {
			return []symRef{}
		}
		return append(children[0].([]symRef), children[1].(symRef))
	case "Symbol":
		lexeme := children[0].(string)
		if node.Children[0].Symbol().Name == "TERMINAL" {
			return symRef{name: strings.Trim(lexeme, `"`), terminal: true}
		}
		return symRef{name: lexeme}
	}
	panic(fmt.Sprintf("unknown rule %v in grammar format", node.Rule))
}

func build(name string, rules []ruleDef, tokens *TokenTypes) (*lr.Grammar, error) {
	defined := make(map[string]bool)
	for _, r := range rules {
		defined[r.lhs] = true
	}
	b := lr.NewGrammarBuilder(name)
	for _, r := range rules {
		for _, alt := range r.alts {
			rb := b.LHS(r.lhs)
			for _, sym := range alt {
				switch {
				case sym.terminal && sym.name == "":
					return nil, fmt.Errorf("grammar %q: empty terminal in rule for %s", name, r.lhs)
				case sym.terminal:
					rb.T(sym.name, int(tokens.TypeFor(sym.name)))
				case !defined[sym.name]:
					return nil, fmt.Errorf("grammar %q: non-terminal %s has no rules", name, sym.name)
				default:
					rb.N(sym.name)
				}
			}
			if len(alt) == 0 {
				rb.Epsilon()
			} else {
				rb.End()
			}
		}
	}
	g, err := b.Grammar()
	if err != nil {
		return nil, err
	}
	tracer().Debugf("read grammar %q with %d rules", name, g.Size())
	return g, nil
}
