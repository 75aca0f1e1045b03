// Copyright © 2025 The hissp authors

package compiler

import (
	"github.com/vishalbelsare/hissp/macro"
	"github.com/vishalbelsare/hissp/sexp"
	"github.com/vishalbelsare/hissp/template"
)

// maxExpansions bounds the number of rewrites applied to a single form so a
// macro expanding to itself fails instead of spinning.
const maxExpansions = 1000

// Expand rewrites form to its macro fixed point.  Each tuple is expanded
// head-first: the head is resolved against the macro registries, the
// expander (if any) is invoked on the unevaluated argument forms, and the
// replacement is expanded again until the head no longer names a macro.
// Argument forms are then expanded recursively, except under quote, which
// stops all descent, and in lambda parameter lists.
func (c *Compiler) Expand(form *sexp.Form) (*sexp.Form, error) {
	for n := 0; ; n++ {
		if n >= maxExpansions {
			return nil, errorf(form, "macro expansion did not terminate")
		}
		head := form.Head()
		if head == nil {
			break
		}
		if head.Type == sexp.Symbol && !head.IsControl() {
			switch head.Str {
			case "quote":
				return form, nil
			case "lambda":
				return c.expandLambda(form)
			case "quasiquote":
				if len(form.Cells) != 2 {
					return nil, errorf(form, "quasiquote expects exactly 1 form")
				}
				next, err := template.Expand(form.Cells[1])
				if err != nil {
					return nil, err
				}
				form = next
				continue
			}
		}
		m, err := c.macroForHead(head)
		if err != nil {
			return nil, err
		}
		if m == nil {
			break
		}
		next, err := m.Expand(macro.NewContext(c.unit.Gensyms()), form.Tail())
		if err != nil {
			// Macro errors belong to the macro, not the compiler.
			return nil, err
		}
		form = next
	}
	if form.Type != sexp.Tuple {
		return form, nil
	}
	cells := make([]*sexp.Form, len(form.Cells))
	for i, elem := range form.Cells {
		x, err := c.Expand(elem)
		if err != nil {
			return nil, err
		}
		cells[i] = x
	}
	out := form.Copy()
	out.Cells = cells
	return out, nil
}

// expandLambda expands the body forms of a lambda, leaving the parameter
// tuple untouched.
func (c *Compiler) expandLambda(form *sexp.Form) (*sexp.Form, error) {
	if len(form.Cells) < 2 {
		return nil, errorf(form, "lambda expects a parameter tuple")
	}
	cells := make([]*sexp.Form, len(form.Cells))
	copy(cells, form.Cells[:2])
	for i, elem := range form.Cells[2:] {
		x, err := c.Expand(elem)
		if err != nil {
			return nil, err
		}
		cells[i+2] = x
	}
	out := form.Copy()
	out.Cells = cells
	return out, nil
}

// macroForHead resolves a tuple head against the macro registries.  A nil
// result means the head is not a macro call and the tuple compiles to an
// ordinary call expression.
//
// Qualified heads consult only the named module's registry.  Unqualified
// heads consult the unit registry and then the fallback registry, if one was
// configured.  Lookup never creates a registry: a unit that has defined no
// macros has none, and resolution must not change that.
func (c *Compiler) macroForHead(head *sexp.Form) (*macro.Macro, error) {
	if head.Type != sexp.Symbol || head.IsControl() || head.GensymMark {
		return nil, nil
	}
	ns, name, err := sexp.SplitQualified(head.Str)
	if err != nil {
		return nil, errorf(head, "%v", err)
	}
	if ns != "" {
		mod, ok := c.rt.Module(ns)
		if !ok {
			return nil, nil
		}
		return mod.Macros().Get(name), nil
	}
	if m := c.unit.Macros().Get(name); m != nil {
		return m, nil
	}
	return c.fallback.Get(name), nil
}
