// Copyright © 2025 The hissp authors

// Package template expands quasiquote templates into ordinary code.
//
// A template compiles to an immediately invoked lambda receiving a fresh
// gensym table:
//
//	(quasiquote T)  =>  ((lambda (tab#) T') (gensyms))
//
// so every evaluation of the template (every macro invocation whose
// expansion contains it) mints its own gensyms.  Within T', atoms quote
// themselves, gensym-marked symbols become table lookups, unquote splices an
// expression in, and tuples rebuild through the entuple constructor so
// unquote-splicing can flatten into them.  The table parameter's name
// contains a hash, which the reader never allows inside a symbol, so it
// cannot shadow anything a template author can write.
package template

import (
	"fmt"

	"github.com/vishalbelsare/hissp/parser/token"
	"github.com/vishalbelsare/hissp/sexp"
)

// TableName is the parameter binding the per-invocation gensym table inside
// an expanded template.
const TableName = "tab#"

// Expand rewrites the body of a quasiquote form.  body is the template
// itself, not the enclosing (quasiquote ...) tuple.
func Expand(body *sexp.Form) (*sexp.Form, error) {
	inner, err := expand(body)
	if err != nil {
		return nil, err
	}
	fn := sexp.NewTuple(
		sexp.NewSymbol("lambda"),
		sexp.NewTuple(sexp.NewSymbol(TableName)),
		inner,
	)
	return sexp.NewTuple(fn, sexp.NewTuple(sexp.NewSymbol("gensyms"))), nil
}

func expand(form *sexp.Form) (*sexp.Form, error) {
	switch form.Type {
	case sexp.Tuple:
		return expandTuple(form)
	case sexp.Symbol:
		if form.GensymMark {
			return sexp.NewTuple(
				sexp.NewSymbol("gensym"),
				sexp.NewSymbol(TableName),
				sexp.Quote(sexp.NewSymbol(form.Str)),
			), nil
		}
		return sexp.Quote(form), nil
	default:
		// Self-evaluating literals need no quoting.
		return form, nil
	}
}

func expandTuple(form *sexp.Form) (*sexp.Form, error) {
	if head := form.Head(); head != nil && head.Type == sexp.Symbol {
		switch head.Str {
		case "unquote":
			if len(form.Cells) != 2 {
				return nil, locErrorf(form, "unquote expects exactly 1 form")
			}
			return form.Cells[1], nil
		case "unquote-splicing":
			return nil, locErrorf(form, "unquote-splicing is only permitted inside a tuple")
		case "quasiquote":
			// A nested template shares the enclosing invocation's table.
			if len(form.Cells) != 2 {
				return nil, locErrorf(form, "quasiquote expects exactly 1 form")
			}
			return expand(form.Cells[1])
		}
	}
	cells := []*sexp.Form{sexp.NewSymbol("entuple"), sexp.NewSymbol(":")}
	for _, elem := range form.Cells {
		if isSplice(elem) {
			if len(elem.Cells) != 2 {
				return nil, locErrorf(elem, "unquote-splicing expects exactly 1 form")
			}
			cells = append(cells, sexp.NewSymbol(":*"), elem.Cells[1])
			continue
		}
		x, err := expand(elem)
		if err != nil {
			return nil, err
		}
		cells = append(cells, sexp.NewSymbol(":?"), x)
	}
	return sexp.NewTuple(cells...), nil
}

func isSplice(form *sexp.Form) bool {
	if form.Type != sexp.Tuple {
		return false
	}
	return form.Head() != nil && form.Head().IsSymbol("unquote-splicing")
}

func locErrorf(form *sexp.Form, format string, v ...interface{}) error {
	err := fmt.Errorf(format, v...)
	if form.Source != nil {
		return &token.LocationError{Err: err, Source: form.Source}
	}
	return err
}
