// Copyright © 2025 The hissp authors

// Package compiler turns read forms into host source text and, by default,
// evaluates each compiled form against the compilation unit's namespace
// before compiling the next.  Macros defined by one top-level form are
// thereby available to the forms after it, and nothing earlier.
package compiler

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vishalbelsare/hissp/host"
	"github.com/vishalbelsare/hissp/macro"
	"github.com/vishalbelsare/hissp/sexp"
)

// Compiler compiles one unit.  A Compiler is not safe for concurrent use;
// its namespace mutates in source order.
type Compiler struct {
	rt       *host.Runtime
	unit     *host.Namespace
	env      *host.Env
	evaluate bool
	fallback *macro.Registry
	tracer   trace.Tracer
	history  []Fragment
}

// Fragment is the compiled output of one top-level form.
type Fragment struct {
	Form   *sexp.Form
	Source string
	Value  *sexp.Form // nil when evaluation is disabled
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithoutEvaluation produces source text only.  Macros defined earlier in
// the unit are not available to later forms, since defining a macro requires
// evaluating its definition.
func WithoutEvaluation() Option {
	return func(c *Compiler) { c.evaluate = false }
}

// WithFallback resolves unqualified macro names missed by the unit registry
// against r.  The basic macro set is the usual argument.
func WithFallback(r *macro.Registry) Option {
	return func(c *Compiler) { c.fallback = r }
}

// WithTracer records a span per compiled form.
func WithTracer(tr trace.Tracer) Option {
	return func(c *Compiler) { c.tracer = tr }
}

// New returns a Compiler for the named unit, creating and registering the
// unit's namespace in rt if needed.
func New(rt *host.Runtime, unit string, opts ...Option) *Compiler {
	ns := rt.NewModule(unit)
	c := &Compiler{
		rt:       rt,
		unit:     ns,
		env:      host.NewEnv(ns),
		evaluate: true,
	}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

// Unit returns the compilation unit's namespace.
func (c *Compiler) Unit() *host.Namespace { return c.unit }

// Env returns the evaluation environment of the unit.
func (c *Compiler) Env() *host.Env { return c.env }

// History returns the fragments compiled so far, in order.  Fragments of
// failed forms are not recorded.
func (c *Compiler) History() []Fragment { return c.history }

// Source returns the concatenated source text of all compiled fragments.
func (c *Compiler) Source() string {
	var b strings.Builder
	for _, frag := range c.history {
		b.WriteString(frag.Source)
		b.WriteString("\n")
	}
	return b.String()
}

// CompileForm expands, generates, and (unless disabled) evaluates one
// top-level form.  On error the unit namespace retains all bindings
// installed by previously compiled forms.
func (c *Compiler) CompileForm(ctx context.Context, form *sexp.Form) (Fragment, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "compiler.CompileForm",
			trace.WithAttributes(attribute.String("hissp.unit", c.unit.Name())))
		defer span.End()
		frag, err := c.compileForm(ctx, form)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return frag, err
	}
	return c.compileForm(ctx, form)
}

func (c *Compiler) compileForm(ctx context.Context, form *sexp.Form) (Fragment, error) {
	expanded, err := c.Expand(form)
	if err != nil {
		return Fragment{Form: form}, err
	}
	src, err := c.Generate(expanded)
	if err != nil {
		return Fragment{Form: form}, err
	}
	frag := Fragment{Form: form, Source: src}
	if c.evaluate {
		val, err := host.EvalString(src, c.env)
		if err != nil {
			return frag, err
		}
		frag.Value = val
	}
	c.history = append(c.history, frag)
	return frag, nil
}

// CompileUnit compiles forms in order, stopping at the first error.  The
// fragments compiled before the failure are returned alongside it.
func (c *Compiler) CompileUnit(ctx context.Context, forms []*sexp.Form) ([]Fragment, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "compiler.CompileUnit",
			trace.WithAttributes(
				attribute.String("hissp.unit", c.unit.Name()),
				attribute.Int("hissp.forms", len(forms)),
			))
		defer span.End()
	}
	start := len(c.history)
	for _, form := range forms {
		if _, err := c.CompileForm(ctx, form); err != nil {
			return c.history[start:], err
		}
	}
	return c.history[start:], nil
}
