// Copyright © 2025 The hissp authors

/*
Package parsecparser provides an alternate hissp reader built on parser
combinators.

	expr     := '(' <expr>* ')' | <shorthand> | <gensym> | <discard> | <term>
	shorthand := [',@'`] <expr>
	gensym   := '$#' <symbol>
	discard  := '_#' <expr>
	term     := <number> | <string> | <symbol>

The combinator reader accepts the same surface syntax as the recursive
descent reader except for custom reader tags, which require a tag registry,
and source location tracking, which the combinator scanner does not carry
through node construction.  It exists as a cross-check for the default
reader and as a benchmark baseline.
*/
package parsecparser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	parsec "github.com/prataprc/goparsec"
	"github.com/vishalbelsare/hissp/sexp"
)

// NewReader returns a sexp.Reader.
func NewReader() sexp.Reader {
	return &parsecReader{}
}

type parsecReader struct{}

func (p *parsecReader) Read(name string, r io.Reader) ([]*sexp.Form, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	forms, n, err := ParseForms(b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, io.ErrUnexpectedEOF
	}
	return forms, nil
}

// ParseForms parses forms from text.  The number of bytes read is returned
// along with any error encountered in parsing.
func ParseForms(text []byte) ([]*sexp.Form, int, error) {
	var forms []*sexp.Form
	s := parsec.NewScanner(text)
	s = s.TrackLineno()
	parser := newParsecParser()
	root, s := parser(s)
	for root != nil {
		form, err := getForm(root)
		if err != nil {
			return forms, s.GetCursor(), err
		}
		if form != nil {
			forms = append(forms, form)
		}
		root, s = parser(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		b, _ := s.Match(`.{1,16}`)
		if len(b) > 15 {
			b = append(b[:15:15], []byte("...")...)
		}
		return forms, s.GetCursor(), fmt.Errorf("%d: unexpected source text possibly starting: %s", s.Lineno(), b)
	}
	return forms, s.GetCursor(), nil
}

const (
	nodeInvalid nodeType = iota
	nodeTerm
	nodeSExpr
	nodeSExprOUnmatched
	nodeShorthand
	nodeGensym
	nodeDiscard
)

var nodeTypeStrings = []string{
	nodeInvalid:         "INVALID",
	nodeTerm:            "TERM",
	nodeSExpr:           "SEXPR",
	nodeSExprOUnmatched: "SEXPROPENUNMATCHED",
	nodeShorthand:       "SHORTHAND",
	nodeGensym:          "GENSYM",
	nodeDiscard:         "DISCARD",
}

type nodeType uint

func (t nodeType) String() string {
	if int(t) >= len(nodeTypeStrings) {
		return "INVALID"
	}
	return nodeTypeStrings[t]
}

// discarded marks the result of a ``_#`` tag so enclosing tuples can drop
// it.
type discarded struct{}

const symRune = `\pL|[_+\-*/=<>!&~%?$]`
const symTail = `(?:` + symRune + `|[0-9])*`

func newParsecParser() parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	quote := parsec.Atom("'", "QUOTE")
	quasiquote := parsec.Atom("`", "QUASIQUOTE")
	// ,@ must come before , in the choice below.
	unquoteSplice := parsec.Atom(",@", "UNQUOTESPLICE")
	unquote := parsec.Atom(",", "UNQUOTE")
	gensymMark := parsec.Atom("$#", "GENSYMMARK")
	discardMark := parsec.Atom("_#", "DISCARDMARK")
	comment := parsec.Token(`;([^\n]*[^\s])?`, "COMMENT")
	hex := parsec.Token(`#[xX][0-9a-fA-F]+`, "HEX")
	octal := parsec.Token(`#[oO][0-7]+`, "OCTAL")
	decimal := parsec.Token(`[+-]?[0-9]+([.][0-9]+)?([eE][+-]?[0-9]+)?`, "DECIMAL")
	symbol := parsec.Token(
		`(?:`+symRune+`)`+symTail+`(?::`+symTail+`)?`+`|:`+symTail,
		"SYMBOL")
	term := parsec.OrdChoice(astNode(nodeTerm),
		hex,
		octal,
		decimal,
		parsec.String(),
		symbol, // symbol comes last because it swallows anything
	)
	var expr parsec.Parser // forward declaration allows for recursive parsing
	exprList := parsec.Kleene(nil, &expr)
	sexpr := parsec.And(astNode(nodeSExpr), openP, exprList, closeP)
	sexprOUnmatched := parsec.And(astNode(nodeSExprOUnmatched), openP, exprList, parsec.End())
	shorthand := parsec.And(astNode(nodeShorthand),
		parsec.OrdChoice(nil, quote, quasiquote, unquoteSplice, unquote),
		&expr)
	gensym := parsec.And(astNode(nodeGensym), gensymMark, &expr)
	discard := parsec.And(astNode(nodeDiscard), discardMark, &expr)
	expr = parsec.OrdChoice(nil,
		comment,
		gensym,
		discard,
		shorthand,
		sexpr,
		term,
		// Error matching cases come last because they have the lowest
		// precedence.
		sexprOUnmatched,
	)
	return expr
}

var shorthandHeads = map[string]string{
	"QUOTE":         "quote",
	"QUASIQUOTE":    "quasiquote",
	"UNQUOTE":       "unquote",
	"UNQUOTESPLICE": "unquote-splicing",
}

func newAST(typ nodeType, nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes, ok := cleanParsecNodeList(nodes)
	if len(nodes) == 0 {
		return sexp.NewTuple()
	}
	if !ok {
		// There is an error in the first position.
		return nodes[0]
	}
	switch typ {
	case nodeTerm:
		return termForm(nodes[0])
	case nodeSExprOUnmatched:
		open := nodes[0].(*parsec.Terminal)
		rest := open.GetValue() + stringifyNodes(nodes[1:len(nodes)-1]) // Trim off the End node
		if len(rest) > 10 {
			rest = rest[:10] + "..."
		}
		return fmt.Errorf("unmatched %q starting: %v", open.GetValue(), rest)
	case nodeSExpr:
		// We don't want terminal parsec nodes '(' and ')'
		form := sexp.NewTuple()
		form.Cells = make([]*sexp.Form, 0, len(nodes)-2)
		for _, c := range nodes {
			if c, ok := c.(*sexp.Form); ok {
				form.Cells = append(form.Cells, c)
			}
		}
		return form
	case nodeShorthand:
		head := shorthandHeads[nodes[0].(*parsec.Terminal).GetName()]
		if len(nodes) < 2 {
			return fmt.Errorf("missing form after %s shorthand", head)
		}
		c, ok := nodes[1].(*sexp.Form)
		if !ok {
			return fmt.Errorf("missing form after %s shorthand", head)
		}
		return sexp.NewTuple(sexp.NewSymbol(head), c)
	case nodeGensym:
		if len(nodes) < 2 {
			return fmt.Errorf("auto-gensym mark requires a symbol")
		}
		c, ok := nodes[1].(*sexp.Form)
		if !ok || c.Type != sexp.Symbol || c.IsControl() {
			return fmt.Errorf("auto-gensym mark requires a symbol")
		}
		mark := sexp.NewSymbol(c.Str)
		mark.GensymMark = true
		return mark
	case nodeDiscard:
		if len(nodes) < 2 {
			return fmt.Errorf("missing form after discard tag")
		}
		return discarded{}
	default:
		panic(fmt.Sprintf("unknown nodeType: %s (%d)", typ, typ))
	}
}

func termForm(node parsec.ParsecNode) parsec.ParsecNode {
	switch term := node.(type) {
	case string:
		// goparsec's String() wraps its already-unescaped result in double
		// quotes.
		return sexp.NewString(term[1 : len(term)-1])
	case *parsec.Terminal:
		switch term.Name {
		case "HEX":
			x, err := strconv.ParseInt(term.Value[2:], 16, 0)
			if err != nil {
				return fmt.Errorf("bad hex literal: %s", term.Value)
			}
			return sexp.NewInt(int(x))
		case "OCTAL":
			x, err := strconv.ParseInt(term.Value[2:], 8, 0)
			if err != nil {
				return fmt.Errorf("bad octal literal: %s", term.Value)
			}
			return sexp.NewInt(int(x))
		case "DECIMAL":
			if strings.ContainsAny(term.Value, ".eE") {
				f, err := strconv.ParseFloat(term.Value, 64)
				if err != nil {
					return fmt.Errorf("bad number: %v (%s)", err, term.Value)
				}
				return sexp.NewFloat(f)
			}
			x, err := strconv.Atoi(term.Value)
			if err != nil {
				return fmt.Errorf("bad number: %v (%s)", err, term.Value)
			}
			return sexp.NewInt(x)
		case "SYMBOL":
			switch term.Value {
			case "true":
				return sexp.NewBool(true)
			case "false":
				return sexp.NewBool(false)
			}
			if !strings.HasPrefix(term.Value, ":") {
				if _, _, err := sexp.SplitQualified(term.Value); err != nil {
					return err
				}
			}
			return sexp.NewSymbol(term.Value)
		}
	}
	return fmt.Errorf("unexpected term %v", node)
}

func stringifyNodes(nodes []parsec.ParsecNode) string {
	var s []string
	for _, node := range nodes {
		switch node := node.(type) {
		case *parsec.Terminal:
			switch node.GetName() {
			case "OPENP", "CLOSEP":
				continue
			}
			s = append(s, node.GetValue())
		case []parsec.ParsecNode:
			s = append(s, "("+stringifyNodes(node)+")")
		case *sexp.Form:
			s = append(s, node.String())
		default:
			s = append(s, fmt.Sprint(node))
		}
	}
	return strings.Join(s, " ")
}

func cleanParsecNodeList(lis []parsec.ParsecNode) ([]parsec.ParsecNode, bool) {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case *parsec.Terminal:
			if node.Name == "COMMENT" {
				continue
			}
			nodes = append(nodes, node)
		case discarded:
			continue
		case error:
			return []parsec.ParsecNode{node}, false
		case []parsec.ParsecNode:
			clean, ok := cleanParsecNodeList(node)
			if !ok {
				return clean, false
			}
			nodes = append(nodes, clean...)
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes, true
}

func astNode(t nodeType) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		return newAST(t, nodes)
	}
}

func getForm(root parsec.ParsecNode) (*sexp.Form, error) {
	nodes, ok := cleanParsecNodeList([]parsec.ParsecNode{root})
	if len(nodes) == 0 {
		// we can be here for a discarded or comment-only form
		return nil, nil
	}
	if !ok {
		return nil, nodes[0].(error)
	}
	form, ok := nodes[0].(*sexp.Form)
	if !ok {
		return nil, nil
	}
	return form, nil
}
