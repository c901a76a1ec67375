package scanner

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/npillmayer/lrgen"
)

// --- Category codes --------------------------------------------------------

// CatCode is a category code for runes.
type CatCode int16

// IllegalCatCode is the category of runes not allowed in the input.
const IllegalCatCode CatCode = 0

// RuneCategorizer assigns category codes to runes. Loners are runes which
// do not form sequences with neighbouring runes of the same category.
type RuneCategorizer interface {
	Cat(r rune) (cat CatCode, isLoner bool)
}

// CatSeq is a sequence of runes with identical category code.
type CatSeq struct {
	Cat    CatCode // catcode of all runes in this sequence
	Length int     // length of sequence in terms of runes
}

// --- Category sequence reader ----------------------------------------------

// CatSeqReader reads sequences of runes of identical category.
type CatSeqReader struct {
	isEof      bool
	next       rune
	hasNext    bool
	start, end uint64 // as bytes index
	line, col  int    // position of the next rune
	lastCR     bool
	reader     io.RuneReader
	writer     bytes.Buffer
}

// NewCatSeqReader creates a reader for an input.
func NewCatSeqReader(r io.RuneReader) *CatSeqReader {
	return &CatSeqReader{
		reader: r,
		line:   1,
		col:    1,
	}
}

// Next reads the next sequence of runes. At end of input it returns io.EOF.
func (rs *CatSeqReader) Next(rc RuneCategorizer) (csq CatSeq, err error) {
	var r rune
	r, err = rs.lookahead()
	if err == io.EOF {
		return csq, io.EOF
	} else if err != nil {
		return csq, fmt.Errorf("scanner cannot read sequence (%w)", err)
	}
	var isLoner bool
	csq.Cat, isLoner = rc.Cat(r)
	rs.match(r)
	csq.Length = 1
	if isLoner { // rune category is not allowed to form sequences
		return csq, nil
	}
	for {
		r, err = rs.lookahead()
		if err == io.EOF {
			return csq, nil
		} else if err != nil {
			return csq, err
		}
		if cc, loner := rc.Cat(r); cc != csq.Cat || loner {
			return csq, nil
		}
		rs.match(r)
		csq.Length++
	}
}

// OutputString returns the runes matched since the last call to ResetOutput.
func (rs *CatSeqReader) OutputString() string {
	return rs.writer.String()
}

// ResetOutput starts a new output sequence.
func (rs *CatSeqReader) ResetOutput() {
	if rs == nil {
		return
	}
	rs.writer.Reset()
	rs.start = rs.end
}

// Span returns the byte positions of the current output sequence.
func (rs *CatSeqReader) Span() lrgen.Span {
	return lrgen.Span{rs.start, rs.end}
}

// Location returns the line and column of the next rune, as "line l|c".
func (rs *CatSeqReader) Location() string {
	return fmt.Sprintf("line %d|%d", rs.line, rs.col)
}

func (rs *CatSeqReader) lookahead() (r rune, err error) {
	if rs == nil || rs.isEof {
		return utf8.RuneError, io.EOF
	}
	if rs.hasNext {
		return rs.next, nil
	}
	r, _, err = rs.reader.ReadRune()
	if err == io.EOF {
		tracer().Debugf("category reader reached end of input")
		rs.isEof = true
		return utf8.RuneError, io.EOF
	} else if err != nil {
		return 0, err
	}
	rs.next, rs.hasNext = r, true
	return
}

func (rs *CatSeqReader) match(r rune) {
	if rs == nil {
		return
	}
	rs.writer.WriteRune(r)
	rs.end += uint64(utf8.RuneLen(r))
	rs.hasNext = false
	switch {
	case r == '\r':
		rs.line++
		rs.col = 1
		rs.lastCR = true
	case r == '\n':
		if !rs.lastCR {
			rs.line++
			rs.col = 1
		}
		rs.lastCR = false
	default:
		rs.col++
		rs.lastCR = false
	}
}

// --- Category tokenizer ----------------------------------------------------

// CatTokenizer is a tokenizer which produces a token for every sequence of
// runes with identical category code (or for every single rune, for loner
// categories). Category codes are mapped to token types; sequences with a
// category not mapped are skipped (e.g., whitespace). Runes with category
// IllegalCatCode are reported to the error handler and skipped.
type CatTokenizer struct {
	reader *CatSeqReader
	cats   RuneCategorizer
	types  map[CatCode]lrgen.TokType
	Error  func(error)
	done   bool
}

var _ Tokenizer = (*CatTokenizer)(nil)
var _ Locator = (*CatTokenizer)(nil)

// NewCatTokenizer creates a category tokenizer for an input.
func NewCatTokenizer(input io.RuneReader, cats RuneCategorizer, types map[CatCode]lrgen.TokType) *CatTokenizer {
	return &CatTokenizer{
		reader: NewCatSeqReader(input),
		cats:   cats,
		types:  types,
		Error:  logError,
	}
}

// SetErrorHandler sets an error handler for the scanner.
func (ct *CatTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		ct.Error = logError
		return
	}
	ct.Error = h
}

// NextToken is part of the Tokenizer interface.
func (ct *CatTokenizer) NextToken() lrgen.Token {
	for !ct.done {
		ct.reader.ResetOutput()
		location := ct.reader.Location()
		csq, err := ct.reader.Next(ct.cats)
		if err == io.EOF {
			break
		} else if err != nil {
			ct.Error(err)
			break
		}
		if csq.Cat == IllegalCatCode {
			ct.Error(fmt.Errorf("%s: unexpected character %q", location, ct.reader.OutputString()))
			continue
		}
		tt, ok := ct.types[csq.Cat]
		if !ok {
			continue
		}
		return MakeDefaultToken(tt, ct.reader.OutputString(), ct.reader.Span())
	}
	ct.done = true
	return MakeDefaultToken(EOF, "", lrgen.Span{ct.reader.end, ct.reader.end})
}

// Location is part of the Locator interface.
func (ct *CatTokenizer) Location() string {
	return ct.reader.Location()
}

// CharGroups is a simple RuneCategorizer: every rune contained in a group
// string gets the category of the group (1 for the first group, 2 for the
// second, …). Groups of a single rune are loners.
type CharGroups []string

// Cat is part of interface RuneCategorizer.
func (cg CharGroups) Cat(r rune) (CatCode, bool) {
	for i, s := range cg {
		for _, c := range s {
			if c == r {
				return CatCode(i + 1), utf8.RuneCountInString(s) == 1
			}
		}
	}
	return IllegalCatCode, true
}
