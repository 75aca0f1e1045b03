// Copyright © 2025 The hissp authors

// Package macro defines the per-compilation-unit macro registry and gensym
// counter, and the contract between the compiler and macro expanders.
package macro

import (
	"fmt"

	"github.com/vishalbelsare/hissp/sexp"
)

// Expander rewrites a tuple's unevaluated argument forms into a replacement
// form.  The replacement may itself be a macro call; the compiler expands
// head-first to a fixed point.  Errors raised by an expander propagate to the
// compiler unmodified.
type Expander func(ctx *Context, args []*sexp.Form) (*sexp.Form, error)

// Context carries per-invocation expansion state.  A fresh Context is
// created for every macro invocation so auto-gensym placeholders minted
// through it never leak between invocations.
type Context struct {
	counter *Gensyms
	minted  map[string]*sexp.Form
}

// NewContext returns an expansion context minting gensyms from counter.
func NewContext(counter *Gensyms) *Context {
	return &Context{
		counter: counter,
		minted:  make(map[string]*sexp.Form),
	}
}

// Gensym returns the minted symbol for the placeholder name, minting it on
// first use.  Repeated calls with the same name during one invocation return
// the identical symbol.
func (ctx *Context) Gensym(name string) *sexp.Form {
	if v, ok := ctx.minted[name]; ok {
		return v
	}
	v := ctx.counter.Mint(name)
	ctx.minted[name] = v
	return v
}

// Counter exposes the unit gensym counter backing ctx.
func (ctx *Context) Counter() *Gensyms {
	return ctx.counter
}

// Gensyms is a monotonic counter minting symbols unique within one
// compilation unit.  Minted names contain a hash, which the reader never
// allows inside a symbol, so they cannot collide with any user-written
// identifier.  The optional Tag (normally the owning unit name) keeps
// symbols minted by distinct units distinct when macros cross unit
// boundaries.
type Gensyms struct {
	// Tag qualifies minted names.  It may be empty.
	Tag string

	n int
}

// Mint returns a fresh symbol derived from name.
func (g *Gensyms) Mint(name string) *sexp.Form {
	g.n++
	if g.Tag != "" {
		return sexp.NewSymbol(fmt.Sprintf("%s#%s.%d", name, g.Tag, g.n))
	}
	return sexp.NewSymbol(fmt.Sprintf("%s#%d", name, g.n))
}

// Macro is a registered macro: an expander plus optional metadata.
type Macro struct {
	Name   string
	Doc    string
	Expand Expander
}

// Registry maps unqualified macro names to expanders.  One Registry exists
// per compilation unit, created on first definition through GetOrCreate on
// the owning namespace and never recreated.
type Registry struct {
	macros map[string]*Macro
}

// NewRegistry returns an empty macro registry.
func NewRegistry() *Registry {
	return &Registry{macros: make(map[string]*Macro)}
}

// Get returns the macro registered under name, or nil.
func (r *Registry) Get(name string) *Macro {
	if r == nil {
		return nil
	}
	return r.macros[name]
}

// Put registers a macro, replacing any previous definition of the name.
func (r *Registry) Put(name string, fn Expander, doc string) {
	r.macros[name] = &Macro{Name: name, Doc: doc, Expand: fn}
}

// Names returns the registered macro names in unspecified order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.macros))
	for name := range r.macros {
		names = append(names, name)
	}
	return names
}

// Len returns the number of registered macros.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.macros)
}
