// Copyright © 2025 The hissp authors

// Package rdparser implements the hissp reader as a recursive descent parser.
// It converts a token stream into a sequence of Forms, expanding quoting
// shorthand, recognizing template markers, and dispatching reader tags.
// Template markers (quasiquote, unquote, unquote-splicing) and auto-gensym
// marks are recorded in the Form tree but not resolved; resolution happens at
// compile time.
package rdparser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vishalbelsare/hissp/parser/token"
	"github.com/vishalbelsare/hissp/sexp"
)

// TagFunc is a reader-tag callable.  It receives the form read immediately
// after the tag and returns its replacement.  Any error aborts the current
// top-level form.
type TagFunc func(form *sexp.Form) (*sexp.Form, error)

// ReadError describes malformed source text.  It is fatal to the current
// top-level form only; the token stream remains usable afterwards.
type ReadError struct {
	Msg    string
	Source *token.Location
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: read error: %s", e.Source, e.Msg)
}

type reader struct {
	tags map[string]TagFunc
}

// Option configures a reader or parser.
type Option func(*reader)

// WithTag registers fn as the reader tag name, invoked for occurrences of
// ``name#`` in source text.
func WithTag(name string, fn TagFunc) Option {
	return func(r *reader) {
		r.tags[name] = fn
	}
}

// NewReader returns a sexp.Reader.
func NewReader(opts ...Option) sexp.Reader {
	r := &reader{tags: make(map[string]TagFunc)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read implements sexp.Reader.
func (rd *reader) Read(name string, r io.Reader) ([]*sexp.Form, error) {
	s := token.NewScanner(name, r)
	p := New(s)
	p.tags = rd.tags
	return p.ParseProgram()
}

// Parser is a hissp reader over a token source.
type Parser struct {
	parsing bool
	src     *TokenSource
	tags    map[string]TagFunc
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src:  src,
		tags: make(map[string]TagFunc),
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// AddTag registers a reader tag on p.
func (p *Parser) AddTag(name string, fn TagFunc) {
	p.tags[name] = fn
}

// errDiscard signals a form consumed by the ``_#`` tag.  It never escapes
// the parser.
var errDiscard = errors.New("discarded form")

// Parse is a generic entry point that is similar to ParseExpression but is
// capable of handling EOF before reading an expression.  Discarded top-level
// forms are skipped.
func (p *Parser) Parse() (*sexp.Form, error) {
	for {
		p.ignoreComments()
		if p.src.IsEOF() {
			return nil, io.EOF
		}
		expr, err := p.ParseExpression()
		if err == errDiscard {
			continue
		}
		return expr, err
	}
}

// ParseProgram parses a series of expressions potentially preceded by a
// hash-bang, `#!`.
func (p *Parser) ParseProgram() ([]*sexp.Form, error) {
	var exprs []*sexp.Form

	p.ignoreHashBang()

	for {
		expr, err := p.Parse()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}

	return exprs, nil
}

// ParseExpression parses a single expression.  Unlike Parse, ParseExpression
// requires an expression to be present in the input stream and reports
// unexpected EOF tokens encountered.
func (p *Parser) ParseExpression() (*sexp.Form, error) {
	// Flag that we are in the middle of an expression while we finish
	// parsing it so that an Interactive parser can determine what state we
	// are in (and thus what the REPL prompt should be).
	if !p.parsing {
		p.parsing = true
		defer func() { p.parsing = false }()
	}
	return p.parseExpression()
}

func (p *Parser) ignoreHashBang() {
	if p.PeekType() != token.HASH_BANG {
		return
	}
	p.src.Scan()
	p.src.AcceptType(token.COMMENT)
}

func (p *Parser) parseExpression() (*sexp.Form, error) {
	p.ignoreComments()
	switch p.PeekType() {
	case token.INT:
		return p.parseLiteralInt()
	case token.INT_OCTAL_MACRO:
		return p.parseLiteralIntBase(token.INT_OCTAL_MACRO, token.INT_OCTAL, 8)
	case token.INT_HEX_MACRO:
		return p.parseLiteralIntBase(token.INT_HEX_MACRO, token.INT_HEX, 16)
	case token.FLOAT:
		return p.parseLiteralFloat()
	case token.STRING:
		return p.parseLiteralString()
	case token.SYMBOL:
		return p.parseSymbol()
	case token.QUOTE:
		return p.parseShorthand(token.QUOTE, "quote")
	case token.QUASIQUOTE:
		return p.parseShorthand(token.QUASIQUOTE, "quasiquote")
	case token.UNQUOTE:
		return p.parseShorthand(token.UNQUOTE, "unquote")
	case token.UNQUOTE_SPLICE:
		return p.parseShorthand(token.UNQUOTE_SPLICE, "unquote-splicing")
	case token.TAG:
		return p.parseTag()
	case token.PAREN_L:
		return p.parseTuple()
	case token.ERROR, token.INVALID:
		p.ReadToken()
		return nil, p.errorf("%s", p.TokenText())
	default:
		p.ReadToken()
		return nil, p.errorf("unexpected token: %v", p.TokenType())
	}
}

func (p *Parser) parseLiteralInt() (*sexp.Form, error) {
	p.Accept(token.INT)
	text := p.TokenText()
	x, err := strconv.Atoi(text)
	if err != nil {
		return nil, p.errorf("integer literal overflows int: %v", text)
	}
	return p.form(sexp.NewInt(x)), nil
}

func (p *Parser) parseLiteralIntBase(macro, lit token.Type, base int) (*sexp.Form, error) {
	p.Accept(macro)
	if !p.Accept(lit) {
		p.ReadToken()
		return nil, p.errorf("invalid base-%d literal: %v", base, p.TokenText())
	}
	text := p.TokenText()
	x, err := strconv.ParseInt(text, base, 0)
	if err != nil {
		return nil, p.errorf("base-%d literal overflows int: %v", base, text)
	}
	return p.form(sexp.NewInt(int(x))), nil
}

func (p *Parser) parseLiteralFloat() (*sexp.Form, error) {
	p.Accept(token.FLOAT)
	x, err := strconv.ParseFloat(p.TokenText(), 64)
	if err != nil {
		return nil, p.errorf("invalid floating point literal: %v", p.TokenText())
	}
	return p.form(sexp.NewFloat(x)), nil
}

func (p *Parser) parseLiteralString() (*sexp.Form, error) {
	p.Accept(token.STRING)
	s, err := strconv.Unquote(p.TokenText())
	if err != nil {
		return nil, p.errorf("invalid string literal: %v", p.TokenText())
	}
	return p.form(sexp.NewString(s)), nil
}

func (p *Parser) parseSymbol() (*sexp.Form, error) {
	p.Accept(token.SYMBOL)
	text := p.TokenText()
	switch text {
	case "true":
		return p.form(sexp.NewBool(true)), nil
	case "false":
		return p.form(sexp.NewBool(false)), nil
	}
	if !strings.HasPrefix(text, ":") && strings.Count(text, ":") > 0 {
		if _, _, err := sexp.SplitQualified(text); err != nil {
			return nil, p.errorf("invalid symbol %q", text)
		}
	}
	return p.form(sexp.NewSymbol(text)), nil
}

// parseShorthand reads the form following a quoting shorthand token and wraps
// it in a two-element tuple headed by sym.
func (p *Parser) parseShorthand(typ token.Type, sym string) (*sexp.Form, error) {
	p.Accept(typ)
	head := p.form(sexp.NewSymbol(sym))
	expr, err := p.ParseExpression()
	if err == errDiscard {
		return nil, p.errorf("missing form after %s shorthand", sym)
	}
	if err != nil {
		return nil, err
	}
	return p.form(sexp.NewTuple(head, expr)), nil
}

// parseTag dispatches a reader tag.  The builtin tags ``$#`` (auto-gensym
// mark) and ``_#`` (discard) are handled directly; all other tags resolve
// through the tag registry and fail the read when absent.
func (p *Parser) parseTag() (*sexp.Form, error) {
	p.Accept(token.TAG)
	name := strings.TrimSuffix(p.TokenText(), "#")
	loc := p.Location()
	if name == "_" {
		// Consume and discard the tagged form.
		_, err := p.ParseExpression()
		if err != nil && err != errDiscard {
			return nil, err
		}
		return nil, errDiscard
	}
	expr, err := p.ParseExpression()
	if err == errDiscard {
		return nil, &ReadError{
			Msg:    fmt.Sprintf("reader tag %q applied to a discarded form", name),
			Source: loc,
		}
	}
	if err != nil {
		return nil, err
	}
	switch name {
	case "$":
		if expr.Type != sexp.Symbol || expr.IsControl() {
			return nil, &ReadError{
				Msg:    fmt.Sprintf("auto-gensym mark requires a symbol: %v", expr),
				Source: loc,
			}
		}
		mark := sexp.NewSymbol(expr.Str)
		mark.GensymMark = true
		mark.Source = expr.Source
		return mark, nil
	}
	fn, ok := p.tags[name]
	if !ok {
		return nil, &ReadError{
			Msg:    fmt.Sprintf("unknown reader tag %q", name),
			Source: loc,
		}
	}
	res, err := fn(expr)
	if err != nil {
		return nil, &ReadError{
			Msg:    fmt.Sprintf("reader tag %q: %v", name, err),
			Source: loc,
		}
	}
	if res.Source == nil {
		res.Source = loc
	}
	return res, nil
}

func (p *Parser) parseTuple() (*sexp.Form, error) {
	p.Accept(token.PAREN_L)
	open := p.src.Token
	expr := p.form(sexp.NewTuple())
	for {
		p.ignoreComments()
		if p.src.IsEOF() {
			return nil, p.errorf("unmatched %s", open.Text)
		}
		if p.Accept(token.PAREN_R) {
			break
		}
		x, err := p.ParseExpression()
		if err == errDiscard {
			continue
		}
		if err != nil {
			return nil, err
		}
		expr.Cells = append(expr.Cells, x)
	}
	return expr, nil
}

func (p *Parser) ignoreComments() {
	for p.Accept(token.COMMENT) {
	}
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) TokenText() string {
	return p.src.Token.Text
}

func (p *Parser) TokenType() token.Type {
	return p.src.Token.Type
}

func (p *Parser) Location() *token.Location {
	return p.src.Token.Source
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

func (p *Parser) form(v *sexp.Form) *sexp.Form {
	v.Source = p.Location()
	return v
}

func (p *Parser) errorf(format string, v ...interface{}) error {
	return &ReadError{
		Msg:    fmt.Sprintf(format, v...),
		Source: p.Location(),
	}
}
