// Copyright © 2025 The hissp authors

// Package basic provides the bootstrap macro set: definition forms,
// sequencing, conditionals, and threading.  The macros are implemented as Go
// expanders so a program can define its first macro without already having
// macros.  They may be installed as the "basic" module or supplied to the
// compiler as an unqualified-name fallback.
package basic

import (
	"fmt"

	"github.com/vishalbelsare/hissp/host"
	"github.com/vishalbelsare/hissp/macro"
	"github.com/vishalbelsare/hissp/sexp"
)

func macroErrorf(format string, v ...interface{}) error {
	return fmt.Errorf(format, v...)
}

// ModuleName is the namespace the basic macros install into.
const ModuleName = "basic"

// Registry returns a fresh registry holding the basic macro set, suitable
// for compiler fallback resolution.
func Registry() *macro.Registry {
	r := macro.NewRegistry()
	register(r)
	return r
}

// Install registers the basic module in rt and returns its namespace.  Its
// macros are then reachable under qualified names such as basic:define.
func Install(rt *host.Runtime) *host.Namespace {
	ns := rt.NewModule(ModuleName)
	register(ns.EnsureMacros())
	return ns
}

func register(r *macro.Registry) {
	r.Put("defmacro", expandDefmacro,
		"(defmacro name (params...) doc? body...)\nDefine a macro in the current unit.")
	r.Put("define", expandDefine,
		"(define name value)\nBind a global in the current unit.")
	r.Put("progn", expandProgn,
		"(progn body...)\nEvaluate body forms in order, returning the last.")
	r.Put("if", expandIf,
		"(if test then else?)\nEvaluate then or else depending on test.")
	r.Put("when", expandWhen,
		"(when test body...)\nEvaluate body when test is truthy.")
	r.Put("unless", expandUnless,
		"(unless test body...)\nEvaluate body when test is falsey.")
	r.Put("and", expandAnd,
		"(and forms...)\nShort-circuit conjunction, returning the first falsey value.")
	r.Put("or", expandOr,
		"(or forms...)\nShort-circuit disjunction, returning the first truthy value.")
	r.Put("->", expandThread,
		"(-> x steps...)\nThread x through steps as the first argument of each.")
	r.Put("let", expandLet,
		"(let ((name value)...) body...)\nEvaluate body with sequential local bindings.")
}

func sym(s string) *sexp.Form { return sexp.NewSymbol(s) }

func tup(cells ...*sexp.Form) *sexp.Form { return sexp.NewTuple(cells...) }

// thunk wraps forms in a zero-parameter lambda.
func thunk(body ...*sexp.Form) *sexp.Form {
	cells := append([]*sexp.Form{sym("lambda"), tup()}, body...)
	return tup(cells...)
}

func expandDefmacro(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	if len(args) < 2 {
		return nil, macroErrorf("defmacro expects a name and a parameter tuple")
	}
	name, params, body := args[0], args[1], args[2:]
	if name.Type != sexp.Symbol || name.IsControl() {
		return nil, macroErrorf("defmacro name must be a symbol, got %v", name)
	}
	if params.Type != sexp.Tuple {
		return nil, macroErrorf("defmacro parameters must be a tuple, got %v", params)
	}
	var doc *sexp.Form
	if len(body) > 1 && body[0].Type == sexp.String {
		doc, body = body[0], body[1:]
	}
	fn := append([]*sexp.Form{sym("lambda"), params}, body...)
	cells := []*sexp.Form{
		sym("setmacro"),
		tup(sym("globals")),
		sexp.Quote(name),
		tup(fn...),
	}
	if doc != nil {
		cells = append(cells, doc)
	}
	return tup(cells...), nil
}

func expandDefine(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	if len(args) != 2 {
		return nil, macroErrorf("define expects a name and a value")
	}
	name := args[0]
	if name.Type != sexp.Symbol || name.IsControl() {
		return nil, macroErrorf("define name must be a symbol, got %v", name)
	}
	return tup(sym("setattr"), tup(sym("globals")), sexp.Quote(name), args[1]), nil
}

func expandProgn(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	return tup(thunk(args...)), nil
}

func expandIf(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	switch len(args) {
	case 2:
		return tup(sym("pick"), args[0], thunk(args[1]), thunk()), nil
	case 3:
		return tup(sym("pick"), args[0], thunk(args[1]), thunk(args[2])), nil
	}
	return nil, macroErrorf("if expects 2 or 3 forms, got %d", len(args))
}

func expandWhen(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	if len(args) < 1 {
		return nil, macroErrorf("when expects a test")
	}
	return tup(sym("pick"), args[0], thunk(args[1:]...), thunk()), nil
}

func expandUnless(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	if len(args) < 1 {
		return nil, macroErrorf("unless expects a test")
	}
	return tup(sym("pick"), args[0], thunk(), thunk(args[1:]...)), nil
}

func expandAnd(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	switch len(args) {
	case 0:
		return sexp.NewBool(true), nil
	case 1:
		return args[0], nil
	}
	rest, err := expandAnd(ctx, args[1:])
	if err != nil {
		return nil, err
	}
	x := ctx.Counter().Mint("and")
	return tup(
		tup(sym("lambda"), tup(x),
			tup(sym("pick"), x, thunk(rest), thunk(x))),
		args[0],
	), nil
}

func expandOr(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	switch len(args) {
	case 0:
		return sexp.NewBool(false), nil
	case 1:
		return args[0], nil
	}
	rest, err := expandOr(ctx, args[1:])
	if err != nil {
		return nil, err
	}
	x := ctx.Counter().Mint("or")
	return tup(
		tup(sym("lambda"), tup(x),
			tup(sym("pick"), x, thunk(x), thunk(rest))),
		args[0],
	), nil
}

func expandThread(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	if len(args) < 1 {
		return nil, macroErrorf("-> expects an initial form")
	}
	acc := args[0]
	for _, step := range args[1:] {
		switch {
		case step.Type == sexp.Tuple && len(step.Cells) > 0:
			cells := []*sexp.Form{step.Cells[0], acc}
			acc = tup(append(cells, step.Cells[1:]...)...)
		case step.Type == sexp.Symbol && !step.IsControl():
			acc = tup(step, acc)
		default:
			return nil, macroErrorf("cannot thread through %v", step)
		}
	}
	return acc, nil
}

func expandLet(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
	if len(args) < 1 || args[0].Type != sexp.Tuple {
		return nil, macroErrorf("let expects a binding tuple")
	}
	binds, body := args[0].Cells, args[1:]
	if len(binds) == 0 {
		return expandProgn(ctx, body)
	}
	var form *sexp.Form
	for i := len(binds) - 1; i >= 0; i-- {
		b := binds[i]
		if b.Type != sexp.Tuple || len(b.Cells) != 2 ||
			b.Cells[0].Type != sexp.Symbol || b.Cells[0].IsControl() {
			return nil, macroErrorf("invalid let binding %v", b)
		}
		name, value := b.Cells[0], b.Cells[1]
		inner := body
		if form != nil {
			inner = []*sexp.Form{form}
		}
		fn := append([]*sexp.Form{sym("lambda"), tup(name)}, inner...)
		form = tup(tup(fn...), value)
	}
	return form, nil
}
