// Copyright © 2025 The hissp authors

package host

import (
	"fmt"
	"os"
	"sort"

	"github.com/vishalbelsare/hissp/macro"
	"github.com/vishalbelsare/hissp/sexp"
)

// reserved holds the bindings available in every namespace.  Generated code
// relies on entuple, symbol, last, module, globals, setattr, setmacro,
// gensyms, gensym, and pick; the remainder is a minimal value-level library
// so compiled units are runnable.
var reserved map[string]*sexp.Form

func init() {
	reserved = make(map[string]*sexp.Form)
	for name, fn := range map[string]BuiltinFn{
		"entuple":  builtinEntuple,
		"symbol":   builtinSymbol,
		"last":     builtinLast,
		"module":   builtinModule,
		"globals":  builtinGlobals,
		"setattr":  builtinSetattr,
		"setmacro": builtinSetmacro,
		"gensyms":  builtinGensyms,
		"gensym":   builtinGensym,
		"pick":     builtinPick,
		"add":      builtinAdd,
		"sub":      builtinSub,
		"mul":      builtinMul,
		"eq":       builtinEq,
		"lt":       builtinLt,
		"not":      builtinNot,
		"print":    builtinPrint,
	} {
		reserved[name] = NewBuiltin(name, fn)
	}
}

// Reserved returns the reserved binding name, or nil.  The compiler uses it
// in tests; generated code resolves reserved names through Env.Get.
func Reserved(name string) *sexp.Form {
	return reserved[name]
}

// ReservedNames returns the reserved binding names in sorted order.
func ReservedNames() []string {
	names := make([]string, 0, len(reserved))
	for name := range reserved {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkArity(name string, args []*sexp.Form, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d arguments, got %d", name, n, len(args))
	}
	return nil
}

// builtinEntuple is the tuple constructor generated code uses to reconstruct
// quoted data.
func builtinEntuple(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	return sexp.NewTuple(args...), nil
}

// builtinSymbol reconstructs a symbol from its name.
func builtinSymbol(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("symbol", args, 1); err != nil {
		return nil, err
	}
	if args[0].Type != sexp.String {
		return nil, fmt.Errorf("symbol expects a string, got %v", args[0])
	}
	return sexp.NewSymbol(args[0].Str), nil
}

// builtinLast evaluates all of its arguments (call-argument order is left to
// right) and returns the final one.  Multi-form lambda bodies compile to a
// last(...) call.
func builtinLast(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("last expects at least 1 argument")
	}
	return args[len(args)-1], nil
}

// builtinModule resolves a registered namespace; qualified references
// compile to attribute access on its result.
func builtinModule(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("module", args, 1); err != nil {
		return nil, err
	}
	if args[0].Type != sexp.String {
		return nil, fmt.Errorf("module expects a string, got %v", args[0])
	}
	ns, ok := env.Namespace().Runtime().Module(args[0].Str)
	if !ok {
		return nil, &NameError{Name: args[0].Str}
	}
	return ns.Wrap(), nil
}

// builtinGlobals returns the namespace of the evaluating compilation unit.
func builtinGlobals(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("globals", args, 0); err != nil {
		return nil, err
	}
	return env.Namespace().Wrap(), nil
}

func namespaceArg(name string, v *sexp.Form) (*Namespace, error) {
	ns, ok := v.Native.(*Namespace)
	if v.Type != sexp.Native || !ok {
		return nil, fmt.Errorf("%s expects a namespace, got %v", name, v)
	}
	return ns, nil
}

func nameArg(name string, v *sexp.Form) (string, error) {
	switch v.Type {
	case sexp.Symbol, sexp.String:
		return v.Str, nil
	}
	return "", fmt.Errorf("%s expects a symbol or string name, got %v", name, v)
}

// builtinSetattr is the dynamic attribute-assignment primitive.
func builtinSetattr(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("setattr", args, 3); err != nil {
		return nil, err
	}
	ns, err := namespaceArg("setattr", args[0])
	if err != nil {
		return nil, err
	}
	name, err := nameArg("setattr", args[1])
	if err != nil {
		return nil, err
	}
	ns.Set(name, args[2])
	return sexp.NewTuple(), nil
}

// builtinSetmacro installs a compiled macro in a namespace registry.  The
// registry is created if absent; the membership check and creation are one
// operation on the namespace.  An optional fourth argument carries the
// docstring metadata.
func builtinSetmacro(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if len(args) != 3 && len(args) != 4 {
		return nil, fmt.Errorf("setmacro expects 3 or 4 arguments, got %d", len(args))
	}
	ns, err := namespaceArg("setmacro", args[0])
	if err != nil {
		return nil, err
	}
	name, err := nameArg("setmacro", args[1])
	if err != nil {
		return nil, err
	}
	fn := args[2]
	if fn.Type != sexp.Fun {
		return nil, fmt.Errorf("setmacro expects a function, got %v", fn)
	}
	doc := ""
	if len(args) == 4 {
		if args[3].Type != sexp.String {
			return nil, fmt.Errorf("setmacro docstring must be a string, got %v", args[3])
		}
		doc = args[3].Str
	}
	ns.EnsureMacros().Put(name, ExpanderFromFun(fn), doc)
	return sexp.NewTuple(), nil
}

// builtinGensyms creates a fresh per-invocation gensym table backed by the
// unit's counter.  Template expansions call it once on entry.
func builtinGensyms(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("gensyms", args, 0); err != nil {
		return nil, err
	}
	return sexp.NewNative(macro.NewContext(env.Namespace().Gensyms())), nil
}

// builtinGensym mints (or re-reads) the table's symbol for a placeholder
// name.
func builtinGensym(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("gensym", args, 2); err != nil {
		return nil, err
	}
	ctx, ok := args[0].Native.(*macro.Context)
	if args[0].Type != sexp.Native || !ok {
		return nil, fmt.Errorf("gensym expects a gensym table, got %v", args[0])
	}
	name, err := nameArg("gensym", args[1])
	if err != nil {
		return nil, err
	}
	return ctx.Gensym(name), nil
}

// builtinPick calls its second or third argument with no arguments depending
// on the truthiness of the first.  Conditional macros expand to pick calls
// over thunks, which is what makes them short-circuit.
func builtinPick(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("pick", args, 3); err != nil {
		return nil, err
	}
	branch := args[2]
	if args[0].IsTrue() {
		branch = args[1]
	}
	return Call(env, branch, nil, nil)
}

func numericArgs(name string, args []*sexp.Form) (ints []int, floats []float64, isFloat bool, err error) {
	for _, v := range args {
		switch v.Type {
		case sexp.Int:
			ints = append(ints, v.Int)
			floats = append(floats, float64(v.Int))
		case sexp.Float:
			isFloat = true
			ints = append(ints, int(v.Float))
			floats = append(floats, v.Float)
		default:
			return nil, nil, false, fmt.Errorf("%s expects numeric arguments, got %v", name, v)
		}
	}
	return ints, floats, isFloat, nil
}

func builtinAdd(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	ints, floats, isFloat, err := numericArgs("add", args)
	if err != nil {
		return nil, err
	}
	if isFloat {
		sum := 0.0
		for _, x := range floats {
			sum += x
		}
		return sexp.NewFloat(sum), nil
	}
	sum := 0
	for _, x := range ints {
		sum += x
	}
	return sexp.NewInt(sum), nil
}

func builtinSub(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("sub expects at least 1 argument")
	}
	ints, floats, isFloat, err := numericArgs("sub", args)
	if err != nil {
		return nil, err
	}
	if isFloat {
		diff := floats[0]
		for _, x := range floats[1:] {
			diff -= x
		}
		return sexp.NewFloat(diff), nil
	}
	diff := ints[0]
	for _, x := range ints[1:] {
		diff -= x
	}
	return sexp.NewInt(diff), nil
}

func builtinMul(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	ints, floats, isFloat, err := numericArgs("mul", args)
	if err != nil {
		return nil, err
	}
	if isFloat {
		prod := 1.0
		for _, x := range floats {
			prod *= x
		}
		return sexp.NewFloat(prod), nil
	}
	prod := 1
	for _, x := range ints {
		prod *= x
	}
	return sexp.NewInt(prod), nil
}

func builtinEq(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("eq", args, 2); err != nil {
		return nil, err
	}
	return sexp.NewBool(sexp.Equal(args[0], args[1])), nil
}

func builtinLt(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("lt", args, 2); err != nil {
		return nil, err
	}
	_, floats, _, err := numericArgs("lt", args)
	if err != nil {
		return nil, err
	}
	return sexp.NewBool(floats[0] < floats[1]), nil
}

func builtinNot(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	if err := checkArity("not", args, 1); err != nil {
		return nil, err
	}
	return sexp.NewBool(!args[0].IsTrue()), nil
}

func builtinPrint(env *Env, args []*sexp.Form, kwargs map[string]*sexp.Form) (*sexp.Form, error) {
	out := env.Namespace().Runtime().Stdout
	if out == nil {
		out = os.Stdout
	}
	for i, v := range args {
		if i > 0 {
			fmt.Fprint(out, " ")
		}
		if v.Type == sexp.String {
			fmt.Fprint(out, v.Str)
		} else {
			fmt.Fprint(out, v)
		}
	}
	fmt.Fprintln(out)
	return sexp.NewTuple(), nil
}
