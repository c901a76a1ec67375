package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cnf/structhash"
	"github.com/npillmayer/lrgen/lr"
	"github.com/npillmayer/schuko/gconf"
)

// Store is a directory of serialized parse tables. Files are named after a
// fingerprint of the grammar and k.
type Store struct {
	Dir string
}

// NewStore creates a store for directory dir. If dir is empty, the
// directory is taken from configuration key 'lrgen.cache-dir', with a
// sub-directory of the system's temp directory as a fallback.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = gconf.GetString("lrgen.cache-dir")
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "lrgen")
	}
	return &Store{Dir: dir}
}

type grammarKey struct {
	Name      string
	K         int
	Terminals []string
	Rules     []string
}

// Fingerprint returns a hash of a grammar and k. Grammars with equal names,
// terminals and rules have equal fingerprints.
func Fingerprint(g *lr.Grammar, k int) (string, error) {
	key := grammarKey{Name: g.Name, K: k}
	for _, A := range g.Terminals() {
		key.Terminals = append(key.Terminals, fmt.Sprintf("%s:%d", A.Name, A.TokenType()))
	}
	for _, r := range g.Rules() {
		key.Rules = append(key.Rules, r.String())
	}
	return structhash.Hash(key, 1)
}

// Path returns the file path for the tables of a grammar.
func (s *Store) Path(g *lr.Grammar, k int) (string, error) {
	fp, err := Fingerprint(g, k)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, fp+".lrk"), nil
}

// Load reads the tables for a grammar from the store. If the store does not
// contain them, the error matches os.ErrNotExist.
func (s *Store) Load(g *lr.Grammar, k int) (*lr.Tables, error) {
	path, err := s.Path(g, k)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tables, err := Deserialize(f, GrammarCodec{G: g})
	if err != nil {
		return nil, fmt.Errorf("cannot load tables from %s: %w", path, err)
	}
	tracer().Debugf("loaded tables for %q from %s", g.Name, path)
	return tables, nil
}

// Save writes the tables for a grammar to the store. The file is replaced
// atomically.
func (s *Store) Save(g *lr.Grammar, k int, tables *lr.Tables) error {
	path, err := s.Path(g, k)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.Dir, "tables-*.tmp")
	if err != nil {
		return err
	}
	if err = Serialize(f, tables, nil); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err = f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	tracer().Debugf("saved tables for %q to %s", g.Name, path)
	return os.Rename(f.Name(), path)
}

// LoadOrGenerate loads the tables for a grammar from the store. If they are
// missing or unreadable, the tables are generated and saved. Failing to save
// them is logged, but not an error.
func (s *Store) LoadOrGenerate(g *lr.Grammar, k int) (*lr.Tables, error) {
	tables, err := s.Load(g, k)
	if err == nil {
		return tables, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		tracer().Infof("regenerating tables: %v", err)
	}
	if tables, err = lr.GenerateTables(g, k); err != nil {
		return nil, err
	}
	if err = s.Save(g, k, tables); err != nil {
		tracer().Errorf("cannot cache tables for %q: %v", g.Name, err)
	}
	return tables, nil
}
