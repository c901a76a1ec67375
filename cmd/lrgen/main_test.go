package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/lrgen/lr/bnf"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"gopkg.in/yaml.v3"
)

const listGrammar = `S -> "(" L ")" ; L -> L "a" | "a" ;`

func TestReport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.cli")
	defer teardown()
	//
	g, err := bnf.Parse("List", listGrammar, nil)
	if err != nil {
		t.Fatal(err)
	}
	tables, err := lr.GenerateTables(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err = writeReport(&buf, g.Name, tables); err != nil {
		t.Fatal(err)
	}
	var report tablesReport
	if err = yaml.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}
	if report.Grammar != "List" || report.K != 1 || len(report.States) != tables.StateCount() {
		t.Errorf("unexpected report header: %s, k=%d, %d states", report.Grammar, report.K, len(report.States))
	}
	if to, ok := report.States[0].Gotos["("]; !ok || to == 0 {
		t.Errorf("expected start state to have a transition for '('")
	}
	if !strings.Contains(buf.String(), "action: finish") {
		t.Errorf("expected report to contain a finish action")
	}
}

func TestLoadAndParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.cli")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "list.bnf")
	if err := os.WriteFile(path, []byte(listGrammar), 0o644); err != nil {
		t.Fatal(err)
	}
	parseFlags.cacheDir = t.TempDir()
	g, parser, err := prepareParser(path)
	if err != nil {
		t.Fatal(err)
	}
	root, err := parse(g, parser, "( a a a )")
	if err != nil {
		t.Fatal(err)
	}
	ll := leveledList(root)
	if len(ll) != 9 || ll[0].Text != "S" || ll[4].Level != 3 {
		t.Errorf("unexpected leveled list %v", ll)
	}
	if _, err = parse(g, parser, "( a"); err == nil {
		t.Errorf("expected syntax error for incomplete input")
	}
}
