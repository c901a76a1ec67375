package lr

import (
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/lrgen"
)

// Word is an immutable sequence of terminals. Words are used as lookahead
// keys for parser actions and as elements of FIRST_k sets.
type Word struct {
	syms []*Symbol
}

// Epsilon is the empty word.
var Epsilon = Word{}

// NewWord creates a word from a sequence of terminals.
func NewWord(terminals ...*Symbol) Word {
	if len(terminals) == 0 {
		return Epsilon
	}
	return Word{syms: append([]*Symbol(nil), terminals...)}
}

// RepeatWord creates the word t^n.
func RepeatWord(t *Symbol, n int) Word {
	if n <= 0 {
		return Epsilon
	}
	syms := make([]*Symbol, n)
	for i := range syms {
		syms[i] = t
	}
	return Word{syms: syms}
}

// Len returns the number of terminals in w.
func (w Word) Len() int {
	return len(w.syms)
}

// IsEpsilon is true for the empty word.
func (w Word) IsEpsilon() bool {
	return len(w.syms) == 0
}

// At returns the i-th terminal of w.
func (w Word) At(i int) *Symbol {
	return w.syms[i]
}

// Symbols returns a copy of the terminals of w.
func (w Word) Symbols() []*Symbol {
	return append([]*Symbol(nil), w.syms...)
}

// Prefix returns the prefix of length n, or w if it is shorter.
func (w Word) Prefix(n int) Word {
	if n >= len(w.syms) {
		return w
	}
	if n <= 0 {
		return Epsilon
	}
	return Word{syms: w.syms[:n:n]}
}

// Suffix returns w without its first n terminals.
func (w Word) Suffix(n int) Word {
	if n >= len(w.syms) {
		return Epsilon
	}
	if n <= 0 {
		return w
	}
	return Word{syms: w.syms[n:]}
}

// Infix returns the terminals in [from, to).
func (w Word) Infix(from, to int) Word {
	return w.Prefix(to).Suffix(from)
}

// Concat returns the word w·v.
func (w Word) Concat(v Word) Word {
	if len(v.syms) == 0 {
		return w
	}
	if len(w.syms) == 0 {
		return v
	}
	syms := make([]*Symbol, 0, len(w.syms)+len(v.syms))
	syms = append(syms, w.syms...)
	return Word{syms: append(syms, v.syms...)}
}

// Append returns the word w·t.
func (w Word) Append(t *Symbol) Word {
	return w.Concat(Word{syms: []*Symbol{t}})
}

// Repeat returns the word w^n.
func (w Word) Repeat(n int) Word {
	r := Epsilon
	for i := 0; i < n; i++ {
		r = r.Concat(w)
	}
	return r
}

// Equals compares two words terminal by terminal.
func (w Word) Equals(v Word) bool {
	if len(w.syms) != len(v.syms) {
		return false
	}
	for i, t := range w.syms {
		if v.syms[i] != t {
			return false
		}
	}
	return true
}

// Key returns a string key for w, built from the token types of its terminals.
// Within a grammar the key identifies the word.
func (w Word) Key() string {
	tts := make([]lrgen.TokType, len(w.syms))
	for i, t := range w.syms {
		tts[i] = t.Value
	}
	return WordKey(tts)
}

// WordKey returns the key of a word of terminals with token types tts.
// It is used by parsers to look up actions for a sequence of input tokens.
func WordKey(tts []lrgen.TokType) string {
	var b strings.Builder
	for i, tt := range tts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(tt)))
	}
	return b.String()
}

func (w Word) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, t := range w.syms {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(t.Name)
	}
	b.WriteString("]")
	return b.String()
}

// wordComparator orders words lexicographically by token type, shorter
// words first.
func wordComparator(a, b interface{}) int {
	w1, w2 := a.(Word), b.(Word)
	for i := 0; i < len(w1.syms) && i < len(w2.syms); i++ {
		t1, t2 := w1.syms[i].Value, w2.syms[i].Value
		if t1 < t2 {
			return -1
		} else if t1 > t2 {
			return 1
		}
	}
	switch {
	case len(w1.syms) < len(w2.syms):
		return -1
	case len(w1.syms) > len(w2.syms):
		return 1
	}
	return 0
}

// --- Word sets -------------------------------------------------------------

// WordSet is an ordered set of words.
type WordSet struct {
	set *treeset.Set
}

// NewWordSet creates a set of words.
func NewWordSet(words ...Word) *WordSet {
	S := &WordSet{set: treeset.NewWith(wordComparator)}
	for _, w := range words {
		S.set.Add(w)
	}
	return S
}

// Add adds a word to S and returns true if S did not contain it before.
func (S *WordSet) Add(w Word) bool {
	if S.set.Contains(w) {
		return false
	}
	S.set.Add(w)
	return true
}

// AddAll adds all words of other to S and returns true if S has grown.
func (S *WordSet) AddAll(other *WordSet) bool {
	if other == nil {
		return false
	}
	grown := false
	it := other.set.Iterator()
	for it.Next() {
		if S.Add(it.Value().(Word)) {
			grown = true
		}
	}
	return grown
}

// Contains checks if w is an element of S.
func (S *WordSet) Contains(w Word) bool {
	return S.set.Contains(w)
}

// Size returns the number of words in S.
func (S *WordSet) Size() int {
	return S.set.Size()
}

// Empty is true for the empty set.
func (S *WordSet) Empty() bool {
	return S.set.Empty()
}

// Words returns the elements of S in order.
func (S *WordSet) Words() []Word {
	r := make([]Word, 0, S.set.Size())
	it := S.set.Iterator()
	for it.Next() {
		r = append(r, it.Value().(Word))
	}
	return r
}

// Copy returns a shallow copy of S.
func (S *WordSet) Copy() *WordSet {
	return NewWordSet(S.Words()...)
}

// Equals checks if S and other contain the same words.
func (S *WordSet) Equals(other *WordSet) bool {
	if S.Size() != other.Size() {
		return false
	}
	it1, it2 := S.set.Iterator(), other.set.Iterator()
	for it1.Next() && it2.Next() {
		if !it1.Value().(Word).Equals(it2.Value().(Word)) {
			return false
		}
	}
	return true
}

func (S *WordSet) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, w := range S.Words() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(w.String())
	}
	b.WriteString("}")
	return b.String()
}
