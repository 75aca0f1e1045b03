// Copyright © 2025 The hissp authors

// Package lexer produces hissp tokens from a character stream.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/vishalbelsare/hissp/parser/token"
)

type LexFn func(*Lexer) []*token.Token

const (
	miscWordRunes   = "0123456789" + miscWordSymbols
	miscWordSymbols = "_+-*/=<>!&~%?$"
)

type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
}

func New(s *token.Scanner) *Lexer {
	return &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
}

// ReadToken returns the next tokens from the input stream.  At the end of
// input it returns a token with type token.EOF.
func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

func (lex *Lexer) readToken() []*token.Token {
	lex.skipWhitespace()
	if !lex.scanner.Accept(func(c rune) bool { return true }) {
		// A failed read leaves a truncated buffer, so the error takes
		// precedence over the apparent end of input.
		if err := lex.scanner.Err(); err != nil {
			return lex.emitError(err)
		}
		return lex.emit(token.EOF, "")
	}
	switch lex.rune() {
	case '(':
		return lex.emitText(token.PAREN_L)
	case ')':
		return lex.emitText(token.PAREN_R)
	case '\'':
		return lex.emitText(token.QUOTE)
	case '`':
		return lex.emitText(token.QUASIQUOTE)
	case ',':
		if lex.scanner.AcceptRune('@') {
			return lex.emitText(token.UNQUOTE_SPLICE)
		}
		return lex.emitText(token.UNQUOTE)
	case ';':
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.emitText(token.COMMENT)
	case ':':
		return lex.readSymbol()
	case '#':
		switch {
		case lex.scanner.AcceptRune('!'):
			tok := lex.emitText(token.HASH_BANG)
			lex.lex = (*Lexer).readHashBang
			return tok
		case lex.scanner.AcceptAny("xX"):
			tok := lex.emitText(token.INT_HEX_MACRO)
			lex.lex = (*Lexer).readHexLiteral
			return tok
		case lex.scanner.AcceptAny("oO"):
			tok := lex.emitText(token.INT_OCTAL_MACRO)
			lex.lex = (*Lexer).readOctalLiteral
			return tok
		default:
			return lex.errorf("invalid dispatch macro character %q", lex.peekRune())
		}
	case '"':
		return lex.readString()
	case '-', '+':
		if isDigit(lex.peekRune()) {
			return lex.readNumber()
		}
		return lex.readSymbol()
	default:
		if isDigit(lex.rune()) {
			return lex.readNumber()
		}
		if isWordStart(lex.rune()) {
			return lex.readSymbol()
		}
		return lex.errorf("unexpected text starting with %q", lex.rune())
	}
}

func (lex *Lexer) resetState() {
	lex.lex = (*Lexer).readToken
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	tok := []*token.Token{{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	return []*token.Token{lex.scanner.EmitToken(typ)}
}

func (lex *Lexer) emitError(err error) []*token.Token {
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) []*token.Token {
	return lex.emitError(fmt.Errorf(format, v...))
}

func (lex *Lexer) readHashBang() []*token.Token {
	lex.resetState()
	lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
	return lex.emitText(token.COMMENT)
}

// readSymbol scans a symbol, possibly qualified with a single colon.  A
// symbol immediately followed by a hash is a reader tag.
func (lex *Lexer) readSymbol() []*token.Token {
	lex.scanner.AcceptSeq(isWord)
	if lex.scanner.AcceptRune(':') {
		// Any qualification problems are detected during parsing.
		return lex.readSymbol()
	}
	if lex.scanner.AcceptRune('#') {
		return lex.emitText(token.TAG)
	}
	return lex.emitText(token.SYMBOL)
}

func (lex *Lexer) readString() []*token.Token {
	for {
		lex.scanner.AcceptSeq(func(c rune) bool {
			return c != '"' && c != '\\' && c != '\n'
		})
		c, ok := lex.scanner.Peek()
		if !ok {
			return lex.errorf("unterminated string literal")
		}
		switch c {
		case '\n':
			return lex.errorf("unterminated string literal")
		case '\\':
			lex.scanner.ScanRune()
			if !lex.scanner.Accept(func(c rune) bool { return true }) {
				return lex.errorf("unterminated string literal")
			}
		case '"':
			lex.scanner.ScanRune()
			return lex.emitText(token.STRING)
		}
	}
}

func (lex *Lexer) readOctalLiteral() []*token.Token {
	lex.resetState()
	n := lex.scanner.AcceptSeq(func(c rune) bool {
		return '0' <= c && c <= '7'
	})
	if n == 0 || isWord(lex.peekRune()) {
		return lex.errorf("invalid octal literal character: %q", lex.peekRune())
	}
	return lex.emitText(token.INT_OCTAL)
}

func (lex *Lexer) readHexLiteral() []*token.Token {
	lex.resetState()
	n := lex.scanner.AcceptSeq(func(c rune) bool {
		return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
	})
	if n == 0 || isWord(lex.peekRune()) {
		return lex.errorf("invalid hexadecimal literal character: %q", lex.peekRune())
	}
	return lex.emitText(token.INT_HEX)
}

func (lex *Lexer) readNumber() []*token.Token {
	lex.scanner.AcceptSeqDigit() // the first digit already scanned
	switch {
	case lex.scanner.AcceptRune('.'):
		return lex.readFloatFraction()
	case lex.scanner.AcceptAny("eE"):
		return lex.readFloatExponent()
	default:
		if isWordStart(lex.peekRune()) {
			return lex.errorf("invalid number literal starting: %v%c", lex.scanner.Text(), lex.peekRune())
		}
		return lex.emitText(token.INT)
	}
}

func (lex *Lexer) readFloatFraction() []*token.Token {
	if lex.scanner.AcceptSeqDigit() == 0 {
		return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
	}
	if lex.scanner.AcceptAny("eE") {
		return lex.readFloatExponent()
	}
	return lex.emitText(token.FLOAT)
}

func (lex *Lexer) readFloatExponent() []*token.Token {
	lex.scanner.AcceptAny("+-") // optional sign
	if lex.scanner.AcceptSeqDigit() == 0 {
		return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
	}
	return lex.emitText(token.FLOAT)
}

func (lex *Lexer) skipWhitespace() {
	if lex.scanner.AcceptSeqSpace() > 0 {
		lex.scanner.Ignore()
	}
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

func (lex *Lexer) rune() rune {
	text := lex.scanner.Text()
	if text == "" {
		return 0
	}
	r := []rune(text)
	return r[len(r)-1]
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordSymbols, c)
}

func isWord(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordRunes, c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
