// Copyright © 2025 The hissp authors

package compiler

import (
	"strconv"
	"strings"

	"github.com/vishalbelsare/hissp/host"
	"github.com/vishalbelsare/hissp/munge"
	"github.com/vishalbelsare/hissp/sexp"
)

// Generate emits host source text for a fully expanded form.  The output
// grammar is the expression subset the host package evaluates: literals,
// munged identifiers, attribute access, lambdas, and calls.
func (c *Compiler) Generate(form *sexp.Form) (string, error) {
	var b strings.Builder
	if err := c.gen(&b, form); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (c *Compiler) gen(b *strings.Builder, form *sexp.Form) error {
	switch form.Type {
	case sexp.Int:
		b.WriteString(strconv.Itoa(form.Int))
	case sexp.Float:
		b.WriteString(formatFloat(form.Float))
	case sexp.String:
		b.WriteString(host.QuoteString(form.Str))
	case sexp.Bool:
		if form.Int != 0 {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case sexp.Symbol:
		return c.genSymbol(b, form)
	case sexp.Tuple:
		return c.genTuple(b, form)
	default:
		return errorf(form, "cannot compile %s form", form.Type)
	}
	return nil
}

// formatFloat renders a float so it reads back as a float, never an int.
func formatFloat(x float64) string {
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (c *Compiler) genSymbol(b *strings.Builder, form *sexp.Form) error {
	if form.GensymMark {
		return errorf(form, "auto-gensym marker outside of a template")
	}
	if form.IsControl() {
		// Control words self-quote.
		b.WriteString("symbol(")
		b.WriteString(host.QuoteString(form.Str))
		b.WriteString(")")
		return nil
	}
	ns, name, err := sexp.SplitQualified(form.Str)
	if err != nil {
		return errorf(form, "%v", err)
	}
	if ns != "" {
		b.WriteString("module(")
		b.WriteString(host.QuoteString(ns))
		b.WriteString(").")
		b.WriteString(munge.Munge(name))
		return nil
	}
	b.WriteString(munge.Munge(name))
	return nil
}

func (c *Compiler) genTuple(b *strings.Builder, form *sexp.Form) error {
	head := form.Head()
	if head == nil {
		b.WriteString("entuple()")
		return nil
	}
	if head.Type == sexp.Symbol && !head.IsControl() {
		switch head.Str {
		case "quote":
			if len(form.Cells) != 2 {
				return errorf(form, "quote expects exactly 1 form, got %d", len(form.Cells)-1)
			}
			return c.genQuoted(b, form.Cells[1])
		case "lambda":
			return c.genLambda(b, form)
		case "unquote", "unquote-splicing":
			return errorf(form, "%s outside of quasiquote", head.Str)
		}
	}
	return c.genCall(b, form)
}

// genQuoted emits an expression reconstructing form as data.  Literals are
// their own quotation; symbols and tuples rebuild through the symbol and
// entuple constructors.
func (c *Compiler) genQuoted(b *strings.Builder, form *sexp.Form) error {
	switch form.Type {
	case sexp.Int, sexp.Float, sexp.String, sexp.Bool:
		return c.gen(b, form)
	case sexp.Symbol:
		if form.GensymMark {
			return errorf(form, "auto-gensym marker outside of a template")
		}
		b.WriteString("symbol(")
		b.WriteString(host.QuoteString(form.Str))
		b.WriteString(")")
		return nil
	case sexp.Tuple:
		b.WriteString("entuple(")
		for i, elem := range form.Cells {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := c.genQuoted(b, elem); err != nil {
				return err
			}
		}
		b.WriteString(")")
		return nil
	default:
		return errorf(form, "cannot quote %s form", form.Type)
	}
}

func (c *Compiler) genLambda(b *strings.Builder, form *sexp.Form) error {
	if len(form.Cells) < 2 || form.Cells[1].Type != sexp.Tuple {
		return errorf(form, "lambda expects a parameter tuple")
	}
	b.WriteString("(lambda")
	params := form.Cells[1].Cells
	sep := " "
	for i := 0; i < len(params); i++ {
		p := params[i]
		if p.Type != sexp.Symbol {
			return errorf(p, "invalid parameter %v", p)
		}
		switch {
		case p.IsSymbol(":*"):
			b.WriteString(sep)
			b.WriteString("*")
			if i+1 < len(params) && !params[i+1].IsControl() {
				i++
				b.WriteString(munge.Munge(params[i].Str))
			}
		case p.IsSymbol(":**"):
			if i+1 >= len(params) {
				return errorf(p, ":** expects a parameter name")
			}
			i++
			b.WriteString(sep)
			b.WriteString("**")
			b.WriteString(munge.Munge(params[i].Str))
		case p.IsControl():
			return errorf(p, "invalid parameter %v", p)
		default:
			b.WriteString(sep)
			b.WriteString(munge.Munge(p.Str))
		}
		sep = ", "
	}
	b.WriteString(": ")
	if err := c.genBody(b, form.Cells[2:]); err != nil {
		return err
	}
	b.WriteString(")")
	return nil
}

// genBody emits a lambda body.  Multiple forms evaluate in order through
// last; an empty body evaluates to None.
func (c *Compiler) genBody(b *strings.Builder, body []*sexp.Form) error {
	switch len(body) {
	case 0:
		b.WriteString("None")
		return nil
	case 1:
		return c.gen(b, body[0])
	}
	b.WriteString("last(")
	for i, form := range body {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := c.gen(b, form); err != nil {
			return err
		}
	}
	b.WriteString(")")
	return nil
}

// genCall emits a call expression.  Argument forms before the : separator
// are positional.  After it, arguments come in marker/value pairs: a plain
// symbol marker names a keyword argument, :? marks a positional argument,
// and :* splices a tuple into the positional arguments.
func (c *Compiler) genCall(b *strings.Builder, form *sexp.Form) error {
	if err := c.gen(b, form.Cells[0]); err != nil {
		return err
	}
	b.WriteString("(")
	args := form.Cells[1:]
	sep := ""
	i := 0
	for ; i < len(args); i++ {
		if args[i].IsSymbol(":") {
			i++
			break
		}
		b.WriteString(sep)
		if err := c.gen(b, args[i]); err != nil {
			return err
		}
		sep = ", "
	}
	for ; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return errorf(args[i], "missing value for %v", args[i])
		}
		marker, value := args[i], args[i+1]
		if marker.Type != sexp.Symbol {
			return errorf(marker, "invalid argument marker %v", marker)
		}
		b.WriteString(sep)
		switch {
		case marker.IsSymbol(":?"):
		case marker.IsSymbol(":*"):
			b.WriteString("*")
		case marker.IsControl():
			return errorf(marker, "invalid argument marker %v", marker)
		default:
			b.WriteString(munge.Munge(marker.Str))
			b.WriteString("=")
		}
		if err := c.gen(b, value); err != nil {
			return err
		}
		sep = ", "
	}
	b.WriteString(")")
	return nil
}
