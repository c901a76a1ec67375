package main

import (
	"io"

	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/cache"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <grammar file>",
		Short:   "Serialize the parse tables of a grammar",
		Example: `  lrgen compile expr.bnf -k 2 -o expr.lrk`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	g, err := loadGrammar(args[0])
	if err != nil {
		return err
	}
	tables, err := lr.GenerateTables(g, *rootFlags.k)
	if err != nil {
		return err
	}
	serialize := func(w io.Writer) error {
		return cache.Serialize(w, tables, nil)
	}
	if *compileFlags.output == "" {
		return serialize(cmd.OutOrStdout())
	}
	if err = writeFile(*compileFlags.output, serialize); err != nil {
		return err
	}
	pterm.Info.Println("wrote tables to " + *compileFlags.output)
	return nil
}
