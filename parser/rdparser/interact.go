// Copyright © 2025 The hissp authors

package rdparser

import (
	"sync"

	"github.com/vishalbelsare/hissp/parser/token"
	"github.com/vishalbelsare/hissp/sexp"
)

// Interactive implements a reader that parses a single expression at a time
// and defers to a TokenGenerator function when it needs more tokens.  A REPL
// uses it to prompt for continuation lines in the middle of a form.
type Interactive struct {
	prompt     string
	promptCont string
	Read       TokenGenerator
	buf        []*token.Token
	mut        sync.RWMutex
	p          *Parser
}

// NewInteractive initializes and returns a new Interactive parser.
func NewInteractive(read TokenGenerator) *Interactive {
	p := &Interactive{
		Read: read,
	}
	src := NewTokenStreamSource(TokenGenerator(p.read))
	p.p = NewFromSource(src)
	return p
}

// AddTag registers a reader tag on the underlying parser.
func (p *Interactive) AddTag(name string, fn TagFunc) {
	p.p.AddTag(name, fn)
}

// SetPrompts configures the strings returned by p.Prompt().  The cont string
// is used while the parser is in the middle of an expression at the start of
// a line.
func (p *Interactive) SetPrompts(prompt, cont string) {
	p.prompt = prompt
	p.promptCont = cont
}

// Prompt returns a prompt reflecting the parser state, for use by a REPL
// token generator.
func (p *Interactive) Prompt() string {
	if p.IsParsing() {
		return p.promptCont
	}
	return p.prompt
}

// IsParsing returns true if p is in the middle of parsing an expression.  It
// may be called at any time, potentially by concurrent goroutines.
func (p *Interactive) IsParsing() bool {
	if p == nil {
		return false
	}
	p.mut.RLock()
	defer p.mut.RUnlock()
	return p.p.parsing
}

func (p *Interactive) read() []*token.Token {
	tok := p.readBuffer()
	if len(tok) != 0 {
		return tok
	}

	// Release the parser lock while blocking on the token generator so that
	// Prompt() can inspect the parser state from within the generator.
	p.mut.Unlock()
	defer p.mut.Lock()
	if p.Read == nil {
		panic("nil read func")
	}
	p.buf = p.Read()
	if len(p.buf) == 0 {
		panic("no tokens read")
	}
	return p.readBuffer()
}

// readBuffer may return an empty list.
func (p *Interactive) readBuffer() []*token.Token {
	if len(p.buf) > 0 {
		tok := p.buf[0]
		p.buf = p.buf[1:]
		return []*token.Token{tok}
	}
	return nil
}

// Parse parses one expression from the interactive token stream and returns
// it, or any error encountered.  A REPL calls this in its main runloop.  If a
// parse error is encountered, any buffered tokens (presumably from the
// current tty line) are discarded so corrected source can be re-read.
func (p *Interactive) Parse() (*sexp.Form, error) {
	p.mut.Lock()
	defer p.mut.Unlock()
	form, err := p.p.Parse()
	if err != nil {
		p.buf = nil
		return nil, err
	}
	return form, nil
}
