// Copyright © 2025 The hissp authors

package token

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scanner facilitates construction of tokens from a character stream.  The
// stream is buffered in full; source units are small and the reader requires
// arbitrary rune lookahead for numeric and tag tokens.
type Scanner struct {
	file string
	src  string

	start     int // byte offset of the current token's first rune
	pos       int // byte offset of the next rune to scan
	startLine int // line number at start
	startCol  int // column number at start
	line      int // line number at pos
	col       int // column number at pos

	readErr error
}

// NewScanner initializes and returns a new Scanner reading from r.
func NewScanner(file string, r io.Reader) *Scanner {
	b, err := io.ReadAll(r)
	return &Scanner{
		file:      file,
		src:       string(b),
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
		readErr:   err,
	}
}

// NewScannerString initializes and returns a Scanner reading from s.
func NewScannerString(file, s string) *Scanner {
	return NewScanner(file, strings.NewReader(s))
}

// Err returns an error encountered reading the input stream.
func (s *Scanner) Err() error {
	return s.readErr
}

// EOF returns true once all input has been scanned.
func (s *Scanner) EOF() bool {
	return s.pos >= len(s.src)
}

// Peek returns the next rune to be scanned.  The second return is false at
// the end of input.
func (s *Scanner) Peek() (rune, bool) {
	if s.EOF() {
		return 0, false
	}
	c, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return c, true
}

// ScanRune consumes one rune for inclusion in the current token.
func (s *Scanner) ScanRune() bool {
	if s.EOF() {
		return false
	}
	c, n := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += n
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return true
}

// Accept consumes the next rune if fn approves it.
func (s *Scanner) Accept(fn func(rune) bool) bool {
	c, ok := s.Peek()
	if !ok || !fn(c) {
		return false
	}
	return s.ScanRune()
}

// AcceptRune consumes the next rune if it equals c.
func (s *Scanner) AcceptRune(c rune) bool {
	return s.Accept(func(r rune) bool { return r == c })
}

// AcceptAny consumes the next rune if it appears in charset.
func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(r rune) bool { return strings.ContainsRune(charset, r) })
}

// AcceptDigit consumes the next rune if it is a decimal digit.
func (s *Scanner) AcceptDigit() bool {
	return s.Accept(func(r rune) bool { return '0' <= r && r <= '9' })
}

// AcceptSpace consumes the next rune if it is whitespace.
func (s *Scanner) AcceptSpace() bool {
	return s.Accept(unicode.IsSpace)
}

// AcceptSeq consumes a run of runes approved by fn and returns its length.
func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

// AcceptSeqDigit consumes a run of decimal digits.
func (s *Scanner) AcceptSeqDigit() int {
	var n int
	for s.AcceptDigit() {
		n++
	}
	return n
}

// AcceptSeqSpace consumes a run of whitespace.
func (s *Scanner) AcceptSeqSpace() int {
	var n int
	for s.AcceptSpace() {
		n++
	}
	return n
}

// Text returns the text scanned since the last call to EmitToken or Ignore.
func (s *Scanner) Text() string {
	return s.src[s.start:s.pos]
}

// EmitToken returns a token containing the text scanned since the last call
// to either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore discards all text scanned since the last EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.pos
	s.startLine = s.line
	s.startCol = s.col
}

// LocStart returns a Location referencing the beginning of the current token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Pos:  s.start,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns a Location referencing the current scanner position.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Pos:  s.pos,
		Line: s.line,
		Col:  s.col,
	}
}
