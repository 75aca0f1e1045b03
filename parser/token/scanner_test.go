// Copyright © 2025 The hissp authors

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerAccept(t *testing.T) {
	s := NewScannerString("test", "abc 123")
	assert.True(t, s.AcceptRune('a'))
	assert.False(t, s.AcceptRune('a'))
	assert.Equal(t, 2, s.AcceptSeq(func(c rune) bool { return 'a' <= c && c <= 'z' }))
	assert.Equal(t, "abc", s.Text())

	tok := s.EmitToken(SYMBOL)
	assert.Equal(t, SYMBOL, tok.Type)
	assert.Equal(t, "abc", tok.Text)
	assert.Equal(t, "test:1:1", tok.Source.String())

	assert.Equal(t, 1, s.AcceptSeqSpace())
	s.Ignore()
	assert.Equal(t, 3, s.AcceptSeqDigit())
	tok = s.EmitToken(INT)
	assert.Equal(t, "123", tok.Text)
	assert.Equal(t, "test:1:5", tok.Source.String())
	assert.True(t, s.EOF())
}

func TestScannerLineTracking(t *testing.T) {
	s := NewScannerString("test", "a\nbc\nd")
	for !s.EOF() {
		require.True(t, s.ScanRune())
	}
	loc := s.Loc()
	assert.Equal(t, 3, loc.Line)
	assert.Equal(t, 2, loc.Col)
}

func TestScannerPeek(t *testing.T) {
	s := NewScannerString("test", "x")
	c, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, 'x', c)
	require.True(t, s.ScanRune())
	_, ok = s.Peek()
	assert.False(t, ok)
	assert.False(t, s.ScanRune())
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "f:2:3", (&Location{File: "f", Pos: 4, Line: 2, Col: 3}).String())
	assert.Equal(t, "f:2", (&Location{File: "f", Pos: 4, Line: 2}).String())
	assert.Equal(t, "f[4]", (&Location{File: "f", Pos: 4}).String())
	assert.Equal(t, "f", (&Location{File: "f", Pos: -1}).String())
}
