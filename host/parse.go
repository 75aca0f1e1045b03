// Copyright © 2025 The hissp authors

package host

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/vishalbelsare/hissp/sexp"
)

// The host grammar is the expression subset the code generator emits:
//
//	expr    := primary postfix*
//	primary := NAME | NUMBER | STRING | lambda | '(' expr ')'
//	lambda  := '(' 'lambda' [params] ':' expr ')'
//	postfix := '.' NAME | '(' args ')'
//	arg     := '*' expr | NAME '=' expr | expr
//	param   := NAME | '*' [NAME] | '**' NAME
//
// A lambda is a primary, so postfix operators apply to it: the generator
// emits immediately invoked lambdas for multi-form bodies and templates.
//
// The reserved names True, False, and None are literals.

type expr interface {
	eval(env *Env) (*sexp.Form, error)
}

type litNode struct{ val *sexp.Form }

type nameNode struct{ name string }

type attrNode struct {
	x    expr
	name string
}

type argMode int

const (
	argPos argMode = iota
	argSplat
	argKeyword
)

type argNode struct {
	mode argMode
	name string // keyword arguments only
	x    expr
}

type callNode struct {
	fn   expr
	args []argNode
}

// ParamSpec describes a lambda parameter list.
type ParamSpec struct {
	Positional []string
	HasStar    bool   // a * appeared, ending the positional section
	Rest       string // variadic rest collector ("" when * was bare)
	KwOnly     []string
	KwVariadic string // ** collector ("" when absent)
}

type lambdaNode struct {
	params *ParamSpec
	body   expr
}

// SyntaxError reports malformed generated source text.  Seeing one outside
// the host package's own tests indicates a code generator bug.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("host syntax error at offset %d: %s", e.Pos, e.Msg)
}

// ParseExpr parses one host expression from text.  Trailing input is an
// error.
func ParseExpr(text string) (expr, error) {
	p := &hostParser{src: text}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected trailing text %q", p.rest())
	}
	return x, nil
}

type hostParser struct {
	src string
	pos int
}

func (p *hostParser) errorf(format string, v ...interface{}) error {
	return &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf(format, v...)}
}

func (p *hostParser) rest() string {
	r := p.src[p.pos:]
	if len(r) > 16 {
		r = r[:16] + "..."
	}
	return r
}

func (p *hostParser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		break
	}
}

func (p *hostParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *hostParser) accept(c byte) bool {
	p.skipSpace()
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *hostParser) expect(c byte) error {
	if !p.accept(c) {
		return p.errorf("expected %q", string(c))
	}
	return nil
}

func isNameByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// name scans an identifier, returning "" when none is present.
func (p *hostParser) name() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	text := p.src[start:p.pos]
	if text != "" && unicode.IsDigit(rune(text[0])) {
		p.pos = start
		return ""
	}
	return text
}

func (p *hostParser) parseExpr() (expr, error) {
	return p.parsePostfix()
}

// acceptLambda consumes the lambda keyword after an open parenthesis.
func (p *hostParser) acceptLambda() bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], "lambda") &&
		(p.pos+6 >= len(p.src) || !isNameByte(p.src[p.pos+6])) {
		p.pos += 6
		return true
	}
	return false
}

func (p *hostParser) parseLambda() (expr, error) {
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if err := p.expect(':'); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &lambdaNode{params: params, body: body}, nil
}

func (p *hostParser) parseParams() (*ParamSpec, error) {
	spec := &ParamSpec{}
	for {
		p.skipSpace()
		if p.peek() == ':' {
			return spec, nil
		}
		switch {
		case p.accept('*'):
			if p.accept('*') {
				name := p.name()
				if name == "" {
					return nil, p.errorf("expected a ** parameter name")
				}
				spec.KwVariadic = name
			} else if spec.HasStar {
				return nil, p.errorf("duplicate * in parameter list")
			} else {
				spec.HasStar = true
				spec.Rest = p.name() // may be empty: a bare *
			}
		default:
			name := p.name()
			if name == "" {
				return nil, p.errorf("expected a parameter name")
			}
			if spec.KwVariadic != "" {
				return nil, p.errorf("parameter after ** collector")
			}
			if spec.HasStar {
				spec.KwOnly = append(spec.KwOnly, name)
			} else {
				spec.Positional = append(spec.Positional, name)
			}
		}
		if !p.accept(',') {
			return spec, nil
		}
	}
}

func (p *hostParser) parsePostfix() (expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept('.'):
			name := p.name()
			if name == "" {
				return nil, p.errorf("expected an attribute name")
			}
			x = &attrNode{x: x, name: name}
		case p.accept('('):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			x = &callNode{fn: x, args: args}
		default:
			return x, nil
		}
	}
}

func (p *hostParser) parseArgs() ([]argNode, error) {
	var args []argNode
	for {
		p.skipSpace()
		if p.accept(')') {
			return args, nil
		}
		if p.accept('*') {
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, argNode{mode: argSplat, x: x})
		} else {
			// A name followed by = introduces a keyword argument.
			save := p.pos
			if name := p.name(); name != "" && p.accept('=') {
				x, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, argNode{mode: argKeyword, name: name, x: x})
			} else {
				p.pos = save
				x, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, argNode{mode: argPos, x: x})
			}
		}
		if !p.accept(',') {
			if err := p.expect(')'); err != nil {
				return nil, err
			}
			return args, nil
		}
	}
}

func (p *hostParser) parsePrimary() (expr, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		if p.acceptLambda() {
			return p.parseLambda()
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return x, nil
	case c == '\'':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return &litNode{val: sexp.NewString(s)}, nil
	case c == '-' || '0' <= c && c <= '9':
		return p.parseNumber()
	default:
		name := p.name()
		if name == "" {
			return nil, p.errorf("unexpected text %q", p.rest())
		}
		switch name {
		case "True":
			return &litNode{val: sexp.NewBool(true)}, nil
		case "False":
			return &litNode{val: sexp.NewBool(false)}, nil
		case "None":
			return &litNode{val: sexp.NewTuple()}, nil
		}
		return &nameNode{name: name}, nil
	}
}

func (p *hostParser) parseNumber() (expr, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digits := 0
	for p.pos < len(p.src) && '0' <= p.src[p.pos] && p.src[p.pos] <= '9' {
		p.pos++
		digits++
	}
	if digits == 0 {
		return nil, p.errorf("expected a number")
	}
	isFloat := false
	if p.peek() == '.' {
		isFloat = true
		p.pos++
		for p.pos < len(p.src) && '0' <= p.src[p.pos] && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		isFloat = true
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		for p.pos < len(p.src) && '0' <= p.src[p.pos] && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	text := p.src[start:p.pos]
	if isFloat {
		x, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("bad float literal %q", text)
		}
		return &litNode{val: sexp.NewFloat(x)}, nil
	}
	x, err := strconv.Atoi(text)
	if err != nil {
		return nil, p.errorf("bad int literal %q", text)
	}
	return &litNode{val: sexp.NewInt(x)}, nil
}

func (p *hostParser) parseString() (string, error) {
	if p.peek() != '\'' {
		return "", p.errorf("expected a string")
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\'':
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated string")
			}
			switch e := p.src[p.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'':
				b.WriteByte(e)
			case 'x':
				if p.pos+2 >= len(p.src) {
					return "", p.errorf("truncated \\x escape")
				}
				n, err := strconv.ParseUint(p.src[p.pos+1:p.pos+3], 16, 8)
				if err != nil {
					return "", p.errorf("bad \\x escape")
				}
				b.WriteByte(byte(n))
				p.pos += 2
			default:
				return "", p.errorf("unknown escape \\%c", e)
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

// QuoteString renders s as a host string literal.  The code generator and
// the host parser agree on this encoding.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}
