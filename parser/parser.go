// Copyright © 2025 The hissp authors

// Package parser provides the default hissp reader.
package parser

import (
	"io"
	"strings"

	"github.com/vishalbelsare/hissp/parser/rdparser"
	"github.com/vishalbelsare/hissp/sexp"
)

// NewReader returns the default recursive descent reader.
func NewReader(opts ...rdparser.Option) sexp.Reader {
	return rdparser.NewReader(opts...)
}

// Read reads all forms from r.
func Read(name string, r io.Reader) ([]*sexp.Form, error) {
	return NewReader().Read(name, r)
}

// ReadString reads all forms from source text.
func ReadString(name, src string) ([]*sexp.Form, error) {
	return Read(name, strings.NewReader(src))
}
