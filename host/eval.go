// Copyright © 2025 The hissp authors

package host

import (
	"fmt"
	"sort"

	"github.com/vishalbelsare/hissp/macro"
	"github.com/vishalbelsare/hissp/sexp"
)

// BuiltinFn is a function implemented by the host runtime.  It receives the
// environment of its call site, its positional arguments, and its keyword
// arguments.
type BuiltinFn func(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error)

// FunData is the implementation data of a Fun form.  Exactly one of Builtin
// or Body is set.
type FunData struct {
	Name    string
	Builtin BuiltinFn
	Params  *ParamSpec
	Body    expr
	Env     *Env
}

// NewBuiltin returns a Fun form backed by a Go function.
func NewBuiltin(name string, fn BuiltinFn) *sexp.Form {
	return &sexp.Form{
		Type:   sexp.Fun,
		Str:    name,
		Native: &FunData{Name: name, Builtin: fn},
	}
}

// EvalString executes generated source text against env and returns the
// resulting value.  This is the host evaluation entry point used by
// incremental module evaluation.
func EvalString(text string, env *Env) (*sexp.Form, error) {
	x, err := ParseExpr(text)
	if err != nil {
		return nil, err
	}
	return x.eval(env)
}

func (n *litNode) eval(env *Env) (*sexp.Form, error) {
	return n.val, nil
}

func (n *nameNode) eval(env *Env) (*sexp.Form, error) {
	v, ok := env.Get(n.name)
	if !ok {
		return nil, &NameError{Name: n.name}
	}
	return v, nil
}

func (n *attrNode) eval(env *Env) (*sexp.Form, error) {
	x, err := n.x.eval(env)
	if err != nil {
		return nil, err
	}
	ns, ok := x.Native.(*Namespace)
	if x.Type != sexp.Native || !ok {
		return nil, fmt.Errorf("attribute access on non-namespace value %v", x)
	}
	v, ok := ns.Get(n.name)
	if !ok {
		return nil, &NameError{Name: ns.Name() + "." + n.name}
	}
	return v, nil
}

func (n *lambdaNode) eval(env *Env) (*sexp.Form, error) {
	return &sexp.Form{
		Type: sexp.Fun,
		Str:  "<lambda>",
		Native: &FunData{
			Name:   "<lambda>",
			Params: n.params,
			Body:   n.body,
			Env:    env,
		},
	}, nil
}

func (n *callNode) eval(env *Env) (*sexp.Form, error) {
	fn, err := n.fn.eval(env)
	if err != nil {
		return nil, err
	}
	var args []*sexp.Form
	var kwargs map[string]*sexp.Form
	for _, arg := range n.args {
		v, err := arg.x.eval(env)
		if err != nil {
			return nil, err
		}
		switch arg.mode {
		case argPos:
			args = append(args, v)
		case argSplat:
			if v.Type != sexp.Tuple {
				return nil, fmt.Errorf("cannot splat non-tuple value %v", v)
			}
			args = append(args, v.Cells...)
		case argKeyword:
			if kwargs == nil {
				kwargs = make(map[string]*sexp.Form)
			}
			kwargs[arg.name] = v
		}
	}
	return Call(env, fn, args, kwargs)
}

// Call invokes a function value.  env is the environment of the call site;
// builtins receive it so primitives like globals() can reach the unit
// namespace.
func Call(env *Env, fn *sexp.Form, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if fn.Type != sexp.Fun {
		return nil, fmt.Errorf("value %v is not callable", fn)
	}
	data, ok := fn.Native.(*FunData)
	if !ok {
		return nil, fmt.Errorf("corrupt function value %v", fn)
	}
	if data.Builtin != nil {
		return data.Builtin(env, args, kwargs)
	}
	child := newChildEnv(data.Env)
	if err := bindParams(child, data, args, kwargs); err != nil {
		return nil, err
	}
	return data.Body.eval(child)
}

func bindParams(env *Env, data *FunData, args []*sexp.Form, kwargs map[string]*sexp.Form) error {
	spec := data.Params
	bound := make(map[string]bool)
	n := len(spec.Positional)
	if len(args) < n {
		n = len(args)
	}
	for i := 0; i < n; i++ {
		env.put(spec.Positional[i], args[i])
		bound[spec.Positional[i]] = true
	}
	extra := args[n:]
	switch {
	case spec.Rest != "":
		env.put(spec.Rest, sexp.NewTuple(extra...))
	case len(extra) > 0:
		return fmt.Errorf("%s takes %d positional arguments but %d were given",
			data.Name, len(spec.Positional), len(args))
	}

	var kwvar []*sexp.Form
	for _, name := range sortedKeys(kwargs) {
		v := kwargs[name]
		switch {
		case isPositionalParam(spec, name) && !bound[name]:
			env.put(name, v)
			bound[name] = true
		case isKwOnlyParam(spec, name):
			env.put(name, v)
			bound[name] = true
		case spec.KwVariadic != "":
			kwvar = append(kwvar, sexp.NewTuple(sexp.NewSymbol(name), v))
		default:
			return fmt.Errorf("%s got an unexpected keyword argument %q", data.Name, name)
		}
	}
	if spec.KwVariadic != "" {
		env.put(spec.KwVariadic, sexp.NewTuple(kwvar...))
	}

	for _, name := range spec.Positional {
		if !bound[name] {
			return fmt.Errorf("%s missing required argument %q", data.Name, name)
		}
	}
	for _, name := range spec.KwOnly {
		if !bound[name] {
			return fmt.Errorf("%s missing required keyword argument %q", data.Name, name)
		}
	}
	return nil
}

func isPositionalParam(spec *ParamSpec, name string) bool {
	for _, p := range spec.Positional {
		if p == name {
			return true
		}
	}
	return false
}

func isKwOnlyParam(spec *ParamSpec, name string) bool {
	for _, p := range spec.KwOnly {
		if p == name {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]*sexp.Form) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ExpanderFromFun adapts an evaluated host function into a macro expander.
// This is how macros defined in source (compiled to lambdas and installed
// through setmacro) are invoked by the compiler: with unevaluated argument
// forms, returning a replacement form.
func ExpanderFromFun(fn *sexp.Form) macro.Expander {
	return func(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
		data, ok := fn.Native.(*FunData)
		if !ok || data.Env == nil {
			return nil, fmt.Errorf("macro %v is not a compiled function", fn)
		}
		return Call(data.Env, fn, args, nil)
	}
}
