package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/bnf"
	"github.com/npillmayer/lrgen/lr/ebnf"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	trace *string
	k     *int
	start *string
}{}

var rootCmd = &cobra.Command{
	Use:   "lrgen",
	Short: "Generate LR(k) parse tables and parse input",
	Long: `lrgen creates canonical LR(k) parse tables for context-free grammars,
for arbitrary lookahead lengths k. Grammars which are not LR(k) are
reported together with the conflicting items and an example input prefix.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
	rootFlags.k = rootCmd.PersistentFlags().IntP("lookahead", "k", 1, "length of lookahead")
	rootFlags.start = rootCmd.PersistentFlags().String("start", "", "start production of EBNF grammars")
}

// Trace keys of the lrgen packages.
var traceKeys = []string{"lrgen.cli", "lrgen.lr", "lrgen.bnf", "lrgen.cache", "lrgen.scanner"}

func setup(cmd *cobra.Command, args []string) error {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	level := tracing.TraceLevelFromString(*rootFlags.trace)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	tracer().Infof("Trace level is %s", *rootFlags.trace)
	if *rootFlags.k < 0 {
		return fmt.Errorf("lookahead must not be negative: %d", *rootFlags.k)
	}
	return nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// loadGrammar reads a grammar file, either in BNF or (for suffix .ebnf)
// in EBNF format.
func loadGrammar(path string) (*lr.Grammar, error) {
	var g *lr.Grammar
	var err error
	if strings.EqualFold(filepath.Ext(path), ".ebnf") {
		if *rootFlags.start == "" {
			return nil, fmt.Errorf("EBNF grammar %s needs a start production (flag --start)", path)
		}
		g, err = ebnf.ParseFile(path, *rootFlags.start, nil)
	} else {
		g, err = bnf.ParseFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	tracer().Infof("grammar %s has %d rules", g.Name, g.Size())
	return g, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}
