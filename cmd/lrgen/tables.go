package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/lrgen/lr"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var tablesFlags = struct {
	yaml *bool
	dot  *string
	html *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "tables <grammar file>",
		Short:   "Generate parse tables and report on them",
		Example: `  lrgen tables expr.bnf -k 2 --yaml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTables,
	}
	tablesFlags.yaml = cmd.Flags().Bool("yaml", false, "print a report of all states and table entries as YAML")
	tablesFlags.dot = cmd.Flags().String("dot", "", "export the automaton to a Graphviz file")
	tablesFlags.html = cmd.Flags().String("html", "", "export the GOTO and ACTION tables to an HTML file")
	rootCmd.AddCommand(cmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	g, err := loadGrammar(args[0])
	if err != nil {
		return err
	}
	gen := lr.NewTableGenerator(g, *rootFlags.k)
	genErr := gen.CreateTables()
	if *tablesFlags.dot != "" && gen.CFSM() != nil { // automaton helps to understand conflicts
		if err = writeFile(*tablesFlags.dot, gen.CFSM().CFSM2GraphViz); err != nil {
			return err
		}
	}
	if genErr != nil {
		var conflict *lr.GenerationConflict
		if errors.As(genErr, &conflict) {
			pterm.Error.Println(conflict.Error())
			return fmt.Errorf("grammar %s is not LR(%d)", g.Name, *rootFlags.k)
		}
		return genErr
	}
	tables := gen.Tables()
	if *tablesFlags.html != "" {
		err = writeFile(*tablesFlags.html, func(w io.Writer) error {
			if err := lr.GotoTableAsHTML(tables, w); err != nil {
				return err
			}
			return lr.ActionTableAsHTML(tables, w)
		})
		if err != nil {
			return err
		}
	}
	if *tablesFlags.yaml {
		return writeReport(cmd.OutOrStdout(), g.Name, tables)
	}
	pterm.Info.Println(fmt.Sprintf("LR(%d) tables for %s: %d states, %d actions, %d gotos",
		tables.K(), g.Name, tables.StateCount(), tables.ActionCount(), tables.GotoCount()))
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --- YAML report -----------------------------------------------------------

type tablesReport struct {
	Grammar   string        `yaml:"grammar"`
	K         int           `yaml:"k"`
	Augmented bool          `yaml:"augmented"`
	States    []stateReport `yaml:"states"`
}

type stateReport struct {
	ID      int            `yaml:"id"`
	Actions []actionReport `yaml:"actions,omitempty"`
	Gotos   map[string]int `yaml:"gotos,omitempty"`
}

type actionReport struct {
	Lookahead string `yaml:"lookahead"`
	Action    string `yaml:"action"`
	Rule      string `yaml:"rule,omitempty"`
}

func makeReport(name string, t *lr.Tables) *tablesReport {
	report := &tablesReport{Grammar: name, K: t.K(), Augmented: t.Augmented()}
	for s := 0; s < t.StateCount(); s++ {
		sr := stateReport{ID: s}
		t.EachAction(s, func(w lr.Word, a lr.Action) {
			ar := actionReport{Lookahead: w.String(), Action: a.Kind.String()}
			if a.Rule != nil {
				ar.Rule = a.Rule.String()
			}
			sr.Actions = append(sr.Actions, ar)
		})
		t.EachGoto(s, func(A *lr.Symbol, to int) {
			if sr.Gotos == nil {
				sr.Gotos = make(map[string]int)
			}
			sr.Gotos[A.Name] = to
		})
		report.States = append(report.States, sr)
	}
	return report
}

func writeReport(w io.Writer, name string, t *lr.Tables) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(makeReport(name, t)); err != nil {
		return err
	}
	return enc.Close()
}
