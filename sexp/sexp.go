// Copyright © 2025 The hissp authors

// Package sexp defines the Form type, the tree representation shared by the
// reader, the macro expander, and the code generator.  A Form is either an
// atom (symbol, number, string, boolean) or an ordered tuple of Forms.  There
// is no separate AST; source code, macro arguments, and macro results are all
// Forms.
package sexp

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vishalbelsare/hissp/parser/token"
)

// Type is the type of a Form.
type Type uint

// Possible Form types.
const (
	// Invalid (0) is not a valid form type.
	Invalid Type = iota
	// Int forms store an int in the Form.Int field.
	Int
	// Float forms store a float64 in the Form.Float field.
	Float
	// String forms store a string in the Form.Str field.
	String
	// Bool forms store their value in the Form.Int field (0 or 1).
	Bool
	// Symbol forms store the symbol text in the Form.Str field.  A symbol
	// may carry a namespace qualifier, written ns:name.  A symbol whose
	// text begins with a colon is a control word and self-quotes.
	Symbol
	// Tuple forms store their elements in the Form.Cells field.
	Tuple
	// Fun forms represent host function values.  The Form.Native field
	// holds implementation data owned by the host package.
	Fun
	// Native forms store an arbitrary Go value in the Form.Native field.
	Native

	numTypes
)

var typeStrings = []string{
	Invalid: "INVALID",
	Int:     "int",
	Float:   "float",
	String:  "string",
	Bool:    "bool",
	Symbol:  "symbol",
	Tuple:   "tuple",
	Fun:     "function",
	Native:  "native",
}

func (t Type) String() string {
	if t >= numTypes {
		return typeStrings[Invalid]
	}
	return typeStrings[t]
}

// Form is the universal tree value.  Forms are structurally immutable by
// convention: the expander and the template engine always allocate new Forms
// and never modify Cells in place.
type Form struct {
	// Type is the form's type tag.
	Type Type

	// Str is used by Symbol and String forms.
	Str string

	// Int is used by Int forms and (as 0/1) by Bool forms.
	Int int

	// Float is used by Float forms.
	Float float64

	// Cells holds the elements of a Tuple form.
	Cells []*Form

	// Native is generic storage for data which cannot be represented as a
	// Form tree (host functions, namespaces, gensym tables).
	Native interface{}

	// Source is the form's originating location in source text.  The
	// reference may be shared between Forms and must not be modified.
	Source *token.Location

	// GensymMark is set by the reader on symbols marked with the auto-gensym
	// tag.  The template engine replaces marked symbols with minted symbols;
	// they are invalid anywhere else.
	GensymMark bool
}

// NewInt returns an Int form.
func NewInt(x int) *Form { return &Form{Type: Int, Int: x} }

// NewFloat returns a Float form.
func NewFloat(x float64) *Form { return &Form{Type: Float, Float: x} }

// NewString returns a String form.
func NewString(s string) *Form { return &Form{Type: String, Str: s} }

// NewBool returns a Bool form.
func NewBool(b bool) *Form {
	v := &Form{Type: Bool}
	if b {
		v.Int = 1
	}
	return v
}

// NewSymbol returns a Symbol form.
func NewSymbol(s string) *Form { return &Form{Type: Symbol, Str: s} }

// NewQSymbol returns a Symbol form qualified with a namespace.
func NewQSymbol(ns, name string) *Form {
	return &Form{Type: Symbol, Str: ns + ":" + name}
}

// NewTuple returns a Tuple form with the given elements.
func NewTuple(cells ...*Form) *Form { return &Form{Type: Tuple, Cells: cells} }

// NewNative returns a Native form wrapping v.
func NewNative(v interface{}) *Form { return &Form{Type: Native, Native: v} }

// Quote wraps v in a (quote v) tuple.
func Quote(v *Form) *Form {
	return NewTuple(NewSymbol("quote"), v)
}

// IsAtom returns true if v is not a Tuple.
func (v *Form) IsAtom() bool { return v.Type != Tuple }

// IsTrue reports host truthiness: false, 0, 0.0, "", and the empty tuple are
// falsey, everything else is truthy.
func (v *Form) IsTrue() bool {
	switch v.Type {
	case Bool:
		return v.Int != 0
	case Int:
		return v.Int != 0
	case Float:
		return v.Float != 0
	case String:
		return v.Str != ""
	case Tuple:
		return len(v.Cells) > 0
	default:
		return true
	}
}

// IsControl returns true if v is a control word, a symbol beginning with a
// colon.  Control words self-quote and are never macro heads.
func (v *Form) IsControl() bool {
	return v.Type == Symbol && strings.HasPrefix(v.Str, ":")
}

// IsSymbol returns true if v is the symbol name.
func (v *Form) IsSymbol(name string) bool {
	return v.Type == Symbol && v.Str == name
}

// Head returns the first element of a Tuple, or nil for atoms and the empty
// tuple.
func (v *Form) Head() *Form {
	if v.Type != Tuple || len(v.Cells) == 0 {
		return nil
	}
	return v.Cells[0]
}

// Tail returns the elements of a Tuple following its head.
func (v *Form) Tail() []*Form {
	if v.Type != Tuple || len(v.Cells) == 0 {
		return nil
	}
	return v.Cells[1:]
}

// SplitQualified splits a symbol's text into namespace and local name.  The
// namespace is empty for unqualified symbols and control words.  An error is
// returned for malformed qualifications such as a:b:c or ns:.
func SplitQualified(sym string) (ns, name string, err error) {
	if strings.HasPrefix(sym, ":") {
		return "", sym, nil
	}
	pieces := strings.Split(sym, ":")
	switch len(pieces) {
	case 1:
		return "", sym, nil
	case 2:
		if pieces[0] == "" || pieces[1] == "" {
			return "", "", fmt.Errorf("invalid symbol %q", sym)
		}
		return pieces[0], pieces[1], nil
	default:
		return "", "", fmt.Errorf("invalid symbol %q", sym)
	}
}

// Equal compares two Forms structurally.  Fun and Native forms compare by
// identity of their Native data.
func Equal(a, b *Form) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case Int, Bool:
		return a.Int == b.Int
	case Float:
		return a.Float == b.Float
	case String, Symbol:
		return a.Str == b.Str
	case Tuple:
		if len(a.Cells) != len(b.Cells) {
			return false
		}
		for i := range a.Cells {
			if !Equal(a.Cells[i], b.Cells[i]) {
				return false
			}
		}
		return true
	default:
		return a.Native == b.Native
	}
}

// Copy returns a shallow copy of v with a fresh Cells slice.  The elements
// themselves are shared; immutability makes sharing safe.
func (v *Form) Copy() *Form {
	if v == nil {
		return nil
	}
	cp := &Form{}
	*cp = *v
	if v.Cells != nil {
		cp.Cells = make([]*Form, len(v.Cells))
		copy(cp.Cells, v.Cells)
	}
	return cp
}

// Loc returns v's source location or a zero location when untracked.
func (v *Form) Loc() *token.Location {
	if v.Source != nil {
		return v.Source
	}
	return &token.Location{File: "<unknown>", Pos: -1}
}

func (v *Form) String() string {
	var buf bytes.Buffer
	v.write(&buf)
	return buf.String()
}

func (v *Form) write(buf *bytes.Buffer) {
	switch v.Type {
	case Int:
		buf.WriteString(strconv.Itoa(v.Int))
	case Float:
		buf.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
	case String:
		buf.WriteString(strconv.Quote(v.Str))
	case Bool:
		if v.Int != 0 {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Symbol:
		buf.WriteString(v.Str)
		if v.GensymMark {
			buf.WriteString("#?")
		}
	case Tuple:
		buf.WriteByte('(')
		for i, c := range v.Cells {
			if i > 0 {
				buf.WriteByte(' ')
			}
			c.write(buf)
		}
		buf.WriteByte(')')
	case Fun:
		fmt.Fprintf(buf, "#<function %s>", v.Str)
	case Native:
		fmt.Fprintf(buf, "#<native %T>", v.Native)
	default:
		buf.WriteString("#<invalid>")
	}
}

// Reader converts a named character stream into a sequence of Forms.
type Reader interface {
	Read(name string, r io.Reader) ([]*Form, error)
}
