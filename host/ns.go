// Copyright © 2025 The hissp authors

// Package host implements the host-language interop boundary required by the
// compiler: namespace objects with dynamic attribute assignment, an
// evaluation entry point executing generated source text against a
// namespace, and the reserved bindings (tuple constructor, symbol
// constructor, macro installation) that generated code relies on.
//
// The package doubles as a reference host runtime: a parser and tree-walking
// evaluator for exactly the expression subset the code generator emits.
// Values are sexp.Form trees, so quoted data reconstructed by generated code
// is structurally identical to the forms it was compiled from.
package host

import (
	"fmt"
	"io"
	"sort"

	"github.com/vishalbelsare/hissp/macro"
	"github.com/vishalbelsare/hissp/sexp"
)

// Runtime is the module map shared by the compilation units of one program.
// It must not be shared between concurrently compiling programs.
type Runtime struct {
	// Stdout receives print output.  os.Stdout when nil.
	Stdout io.Writer

	modules map[string]*Namespace
}

// NewRuntime returns a Runtime with no modules registered.
func NewRuntime() *Runtime {
	return &Runtime{modules: make(map[string]*Namespace)}
}

// Module resolves a registered namespace by name.
func (rt *Runtime) Module(name string) (*Namespace, bool) {
	ns, ok := rt.modules[name]
	return ns, ok
}

// NewModule creates, registers, and returns a namespace.  Resolving an
// existing name returns the registered namespace unchanged.
func (rt *Runtime) NewModule(name string) *Namespace {
	if ns, ok := rt.modules[name]; ok {
		return ns
	}
	ns := &Namespace{
		name:    name,
		runtime: rt,
		vars:    make(map[string]*sexp.Form),
		gensyms: &macro.Gensyms{Tag: name},
	}
	rt.modules[name] = ns
	return ns
}

// Namespace is the namespace object owned by one compilation unit.  The
// compiler mutates it in source order through incremental evaluation; no
// concurrent mutation is permitted.
type Namespace struct {
	name    string
	runtime *Runtime
	vars    map[string]*sexp.Form
	macros  *macro.Registry
	gensyms *macro.Gensyms
}

// Name returns the namespace name.
func (ns *Namespace) Name() string { return ns.name }

// Runtime returns the module map ns is registered in.
func (ns *Namespace) Runtime() *Runtime { return ns.runtime }

// Get resolves an attribute of ns.
func (ns *Namespace) Get(name string) (*sexp.Form, bool) {
	v, ok := ns.vars[name]
	return v, ok
}

// Set assigns an attribute of ns.  This is the dynamic attribute-assignment
// primitive used to install incrementally evaluated bindings.
func (ns *Namespace) Set(name string, v *sexp.Form) {
	ns.vars[name] = v
}

// Names returns the attribute names of ns in sorted order.
func (ns *Namespace) Names() []string {
	names := make([]string, 0, len(ns.vars))
	for name := range ns.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Macros returns the namespace's macro registry, or nil if no macro has been
// defined in it.  Lookup must never create the registry.
func (ns *Namespace) Macros() *macro.Registry {
	return ns.macros
}

// EnsureMacros returns the namespace's macro registry, creating it if
// absent.  The membership check and creation are a single operation;
// compilation of a unit is single-threaded so no further synchronization is
// required.
func (ns *Namespace) EnsureMacros() *macro.Registry {
	if ns.macros == nil {
		ns.macros = macro.NewRegistry()
	}
	return ns.macros
}

// Gensyms returns the unit's gensym counter.
func (ns *Namespace) Gensyms() *macro.Gensyms {
	return ns.gensyms
}

// Wrap returns ns as a Native form so namespaces can flow through generated
// code (globals(), module(...)).
func (ns *Namespace) Wrap() *sexp.Form {
	return sexp.NewNative(ns)
}

// Env is a lexical environment used when evaluating generated code.  The
// root environment of a unit resolves free names against the unit namespace
// and the reserved bindings.
type Env struct {
	parent *Env
	ns     *Namespace
	vars   map[string]*sexp.Form
}

// NewEnv returns the root environment for evaluating code against ns.
func NewEnv(ns *Namespace) *Env {
	return &Env{
		ns:   ns,
		vars: make(map[string]*sexp.Form),
	}
}

func newChildEnv(parent *Env) *Env {
	return &Env{
		parent: parent,
		ns:     parent.ns,
		vars:   make(map[string]*sexp.Form),
	}
}

// Namespace returns the unit namespace env evaluates against.
func (env *Env) Namespace() *Namespace { return env.ns }

// Get resolves name lexically, then against the unit namespace, then against
// the reserved bindings.
func (env *Env) Get(name string) (*sexp.Form, bool) {
	for e := env; e != nil; e = e.parent {
		if v, ok := e.vars[name]; ok {
			return v, true
		}
	}
	if v, ok := env.ns.Get(name); ok {
		return v, true
	}
	if fn, ok := reserved[name]; ok {
		return fn, true
	}
	return nil, false
}

func (env *Env) put(name string, v *sexp.Form) {
	env.vars[name] = v
}

// NameError is the deferred runtime failure produced when generated code
// references a name that was never bound.  The compiler deliberately leaves
// plain call heads unresolved; this is where they fail, if they must.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("name %q is not defined", e.Name)
}
