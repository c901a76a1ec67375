package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/ast"
	"github.com/npillmayer/lrgen/lr/bnf"
	"github.com/npillmayer/lrgen/lr/cache"
	"github.com/npillmayer/lrgen/lr/lrk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var parseFlags struct {
	cacheDir string
	noCache  bool
	actions  bool
}

func init() {
	parseCmd := &cobra.Command{
		Use:     "parse <grammar file> [input]",
		Short:   "Parse an input and print its syntax tree",
		Example: `  lrgen parse expr.bnf "1 + 2 * 3"`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runParse,
	}
	replCmd := &cobra.Command{
		Use:   "repl <grammar file>",
		Short: "Parse lines of input interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  runREPL,
	}
	for _, cmd := range []*cobra.Command{parseCmd, replCmd} {
		cmd.Flags().StringVar(&parseFlags.cacheDir, "cache-dir", "", "directory for cached tables (default from configuration)")
		cmd.Flags().BoolVar(&parseFlags.noCache, "no-cache", false, "always generate the tables")
		cmd.Flags().BoolVar(&parseFlags.actions, "actions", false, "print the actions of the parser")
		rootCmd.AddCommand(cmd)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	g, parser, err := prepareParser(args[0])
	if err != nil {
		return err
	}
	input := strings.Join(args[1:], " ")
	if len(args) == 1 {
		in, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		input = string(in)
	}
	root, err := parse(g, parser, input)
	if err != nil {
		return err
	}
	printTree(root)
	return nil
}

func runREPL(cmd *cobra.Command, args []string) error {
	g, parser, err := prepareParser(args[0])
	if err != nil {
		return err
	}
	repl, err := readline.New("lrgen> ")
	if err != nil {
		return err
	}
	defer repl.Close()
	pterm.Info.Println(fmt.Sprintf("Parsing with LR(%d) grammar %s. Quit with <ctrl>D", parser.K(), g.Name))
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		root, err := parse(g, parser, line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		printTree(root)
	}
	println("Good bye!")
	return nil
}

// prepareParser loads a grammar and creates a parser for it. Tables are
// taken from the cache, if possible.
func prepareParser(path string) (*lr.Grammar, *lrk.Parser, error) {
	g, err := loadGrammar(path)
	if err != nil {
		return nil, nil, err
	}
	if parseFlags.noCache {
		parser, err := lrk.Generate(g, *rootFlags.k)
		return g, parser, err
	}
	store := cache.NewStore(parseFlags.cacheDir)
	tables, err := store.LoadOrGenerate(g, *rootFlags.k)
	if err != nil {
		return nil, nil, err
	}
	return g, lrk.NewParser(tables), nil
}

func parse(g *lr.Grammar, parser *lrk.Parser, input string) (*ast.Inner, error) {
	lm, err := bnf.Lexer(g)
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
	var opts []lrk.Option
	if parseFlags.actions {
		opts = append(opts, lrk.OnAction(func(state int, a lr.Action) {
			pterm.Println(fmt.Sprintf("%4d  %v", state, a))
		}))
	}
	root, err := parser.Parse(scan, opts...)
	if scanErr != nil {
		return nil, scanErr
	}
	return root, err
}

// printTree renders an AST as a tree on the terminal.
func printTree(root ast.Node) {
	pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(leveledList(root))).Render()
}

func leveledList(root ast.Node) pterm.LeveledList {
	var ll pterm.LeveledList
	for _, line := range ast.Indented(root) {
		ll = append(ll, pterm.LeveledListItem{Level: line.Level, Text: line.Text})
	}
	return ll
}
