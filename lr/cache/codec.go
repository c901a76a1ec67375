package cache

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/lrgen"
	"github.com/npillmayer/lrgen/lr"
)

// SymbolCodec writes and reads the definitions of grammar symbols.
type SymbolCodec interface {
	EncodeTerminal(w io.Writer, A *lr.Symbol) error
	EncodeNonTerminal(w io.Writer, A *lr.Symbol) error
	DecodeTerminal(r io.Reader) (*lr.Symbol, error)
	DecodeNonTerminal(r io.Reader) (*lr.Symbol, error)
}

// DefaultCodec writes symbols as length-prefixed UTF-8 names, terminals
// followed by their token type. Decoding creates new symbols.
type DefaultCodec struct{}

var _ SymbolCodec = DefaultCodec{}

// EncodeTerminal is part of interface SymbolCodec.
func (DefaultCodec) EncodeTerminal(w io.Writer, A *lr.Symbol) error {
	if err := WriteString(w, A.Name); err != nil {
		return err
	}
	return WriteInt32(w, int32(A.TokenType()))
}

// EncodeNonTerminal is part of interface SymbolCodec.
func (DefaultCodec) EncodeNonTerminal(w io.Writer, A *lr.Symbol) error {
	return WriteString(w, A.Name)
}

// DecodeTerminal is part of interface SymbolCodec.
func (DefaultCodec) DecodeTerminal(r io.Reader) (*lr.Symbol, error) {
	name, err := ReadString(r)
	if err != nil {
		return nil, err
	}
	tt, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}
	return lr.NewTerminal(name, lrgen.TokType(tt)), nil
}

// DecodeNonTerminal is part of interface SymbolCodec.
func (DefaultCodec) DecodeNonTerminal(r io.Reader) (*lr.Symbol, error) {
	name, err := ReadString(r)
	if err != nil {
		return nil, err
	}
	return lr.NewNonTerminal(name), nil
}

// GrammarCodec uses the format of DefaultCodec, but resolves decoded symbols
// by name in a grammar. Tables restored with a GrammarCodec share their
// symbols with the grammar.
type GrammarCodec struct {
	DefaultCodec
	G *lr.Grammar
}

// DecodeTerminal is part of interface SymbolCodec. It is an error if the
// grammar does not have a terminal with the same name and token type.
func (gc GrammarCodec) DecodeTerminal(r io.Reader) (*lr.Symbol, error) {
	A, err := gc.DefaultCodec.DecodeTerminal(r)
	if err != nil {
		return nil, err
	}
	B := gc.G.SymbolByName(A.Name)
	if B == nil || !B.IsTerminal() || B.TokenType() != A.TokenType() {
		return nil, fmt.Errorf("terminal %v not found in grammar %q", A, gc.G.Name)
	}
	return B, nil
}

// DecodeNonTerminal is part of interface SymbolCodec.
func (gc GrammarCodec) DecodeNonTerminal(r io.Reader) (*lr.Symbol, error) {
	A, err := gc.DefaultCodec.DecodeNonTerminal(r)
	if err != nil {
		return nil, err
	}
	B := gc.G.SymbolByName(A.Name)
	if B == nil || B.IsTerminal() {
		return nil, fmt.Errorf("non-terminal %v not found in grammar %q", A, gc.G.Name)
	}
	return B, nil
}

// --- Primitives ------------------------------------------------------------

// WriteInt32 writes a big-endian 32-bit integer.
func WriteInt32(w io.Writer, n int32) error {
	return binary.Write(w, binary.BigEndian, n)
}

// ReadInt32 reads a big-endian 32-bit integer.
func ReadInt32(r io.Reader) (int32, error) {
	var n int32
	err := binary.Read(r, binary.BigEndian, &n)
	return n, err
}

// WriteString writes a string as its length in bytes, followed by its UTF-8
// encoding.
func WriteString(w io.Writer, s string) error {
	if err := WriteInt32(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a string written by WriteString.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > maxCount {
		return "", fmt.Errorf("invalid string length %d", n)
	}
	var sb strings.Builder // grows with the bytes actually read
	if _, err = io.CopyN(&sb, r, int64(n)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// encoder writes integers and remembers the first error.
type encoder struct {
	w   io.Writer
	err error
}

func (enc *encoder) check(err error) {
	if enc.err == nil {
		enc.err = err
	}
}

func (enc *encoder) int(n int) {
	if enc.err == nil {
		enc.err = WriteInt32(enc.w, int32(n))
	}
}

func (enc *encoder) uint(n uint32) {
	if enc.err == nil {
		enc.err = binary.Write(enc.w, binary.BigEndian, n)
	}
}

func (enc *encoder) bool(b bool) {
	if enc.err == nil {
		var v uint8
		if b {
			v = 1
		}
		enc.err = binary.Write(enc.w, binary.BigEndian, v)
	}
}

// decoder reads integers and remembers the first error. After an error all
// reads return zero values.
type decoder struct {
	r   io.Reader
	err error
}

func (dec *decoder) int() int {
	if dec.err != nil {
		return 0
	}
	n, err := ReadInt32(dec.r)
	dec.err = err
	return int(n)
}

// count reads a non-negative count.
func (dec *decoder) count() int {
	n := dec.int()
	if dec.err == nil && (n < 0 || n > maxCount) {
		dec.err = fmt.Errorf("invalid count %d in cache", n)
		return 0
	}
	return n
}

func (dec *decoder) ints(n int) []int {
	var r []int
	for i := 0; i < n && dec.err == nil; i++ {
		r = append(r, dec.int())
	}
	return r
}

func (dec *decoder) uint() uint32 {
	if dec.err != nil {
		return 0
	}
	var n uint32
	dec.err = binary.Read(dec.r, binary.BigEndian, &n)
	return n
}

func (dec *decoder) bool() bool {
	if dec.err != nil {
		return false
	}
	var v uint8
	dec.err = binary.Read(dec.r, binary.BigEndian, &v)
	return v != 0
}
