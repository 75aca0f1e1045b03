// Copyright © 2025 The hissp authors

package compiler_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vishalbelsare/hissp/basic"
	"github.com/vishalbelsare/hissp/compiler"
	"github.com/vishalbelsare/hissp/host"
	"github.com/vishalbelsare/hissp/macro"
	"github.com/vishalbelsare/hissp/parser"
	"github.com/vishalbelsare/hissp/sexp"
)

func newCompiler(t testing.TB, opts ...compiler.Option) *compiler.Compiler {
	t.Helper()
	opts = append([]compiler.Option{compiler.WithFallback(basic.Registry())}, opts...)
	return compiler.New(host.NewRuntime(), "test", opts...)
}

func read1(t testing.TB, src string) *sexp.Form {
	t.Helper()
	forms, err := parser.ReadString("test", src)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	return forms[0]
}

func eval1(t testing.TB, c *compiler.Compiler, src string) *sexp.Form {
	t.Helper()
	frag, err := c.CompileForm(context.Background(), read1(t, src))
	require.NoError(t, err, "compiling %s", src)
	return frag.Value
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`1`, `1`},
		{`-42`, `-42`},
		{`2.5`, `2.5`},
		{`1e3`, `1000.0`},
		{`"a\nb"`, `'a\nb'`},
		{`true`, `True`},
		{`false`, `False`},
		{`x`, `x`},
		{`list*`, `listQzSTAR_`},
		{`ns:name`, `module('ns').name`},
		{`:kw`, `symbol(':kw')`},
		{`()`, `entuple()`},
		{`(f)`, `f()`},
		{`(f a b)`, `f(a, b)`},
		{`(f a : sep "x")`, `f(a, sep='x')`},
		{`(f : :* xs :? y)`, `f(*xs, y)`},
		{`'x`, `symbol('x')`},
		{`':kw`, `symbol(':kw')`},
		{`'(a 1)`, `entuple(symbol('a'), 1)`},
		{`''x`, `entuple(symbol('quote'), symbol('x'))`},
		{`(lambda ())`, `(lambda: None)`},
		{`(lambda (a b) (add a b))`, `(lambda a, b: add(a, b))`},
		{`(lambda (a :* rest) a)`, `(lambda a, *rest: a)`},
		{`(lambda (:* a) a)`, `(lambda *a: a)`},
		{`(lambda (a :** kw) a)`, `(lambda a, **kw: a)`},
		{`(lambda (a) 1 2)`, `(lambda a: last(1, 2))`},
		{`((lambda (a) a) 7)`, `(lambda a: a)(7)`},
	}
	c := newCompiler(t, compiler.WithoutEvaluation())
	for _, test := range tests {
		got, err := c.Generate(read1(t, test.src))
		if assert.NoError(t, err, "source %s", test.src) {
			assert.Equal(t, test.want, got, "source %s", test.src)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	c := newCompiler(t, compiler.WithoutEvaluation())
	for _, src := range []string{
		`(quote)`,
		`(quote a b)`,
		`$#x`,
		`'$#x`,
		`(unquote x)`,
		`(unquote-splicing x)`,
		`(f : :*)`,
		`(lambda (:? a) a)`,
	} {
		_, err := c.Generate(read1(t, src))
		require.Error(t, err, "source %s", src)
		var cerr *compiler.CompileError
		assert.True(t, errors.As(err, &cerr), "source %s: %v", src, err)
	}
}

// Literal atoms evaluate to themselves and quoted data reconstructs the form
// that was compiled.
func TestRoundTrip(t *testing.T) {
	c := newCompiler(t)
	for _, src := range []string{`1`, `-3`, `2.5`, `"str"`, `true`, `false`} {
		form := read1(t, src)
		frag, err := c.CompileForm(context.Background(), form)
		require.NoError(t, err)
		assert.True(t, sexp.Equal(form, frag.Value), "source %s: got %v", src, frag.Value)
	}
	form := read1(t, `'(a 1 "s" :kw (b 2.5))`)
	frag, err := c.CompileForm(context.Background(), form)
	require.NoError(t, err)
	assert.True(t, sexp.Equal(form.Cells[1], frag.Value), "got %v", frag.Value)
}

// Expansion reaches a fixed point: expanding an expanded form changes
// nothing.
func TestExpandIdempotent(t *testing.T) {
	c := newCompiler(t, compiler.WithoutEvaluation())
	for _, src := range []string{
		`(if x 1 2)`,
		`(when a b c)`,
		`(-> 2 (add 1) (mul 3))`,
		`(let ((x 1) (y 2)) (add x y))`,
		`(lambda (a) (if a 1 2))`,
	} {
		once, err := c.Expand(read1(t, src))
		require.NoError(t, err)
		twice, err := c.Expand(once)
		require.NoError(t, err)
		assert.Equal(t, once.String(), twice.String(), "source %s", src)
	}
}

func TestExpandNonTerminating(t *testing.T) {
	c := newCompiler(t)
	c.Unit().EnsureMacros().Put("loop", func(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
		return sexp.NewTuple(sexp.NewSymbol("loop")), nil
	}, "")
	_, err := c.CompileForm(context.Background(), read1(t, `(loop)`))
	var cerr *compiler.CompileError
	require.ErrorAs(t, err, &cerr)
}

func TestThreadFirst(t *testing.T) {
	c := newCompiler(t)
	v := eval1(t, c, `(-> 2 (add 1) (mul 3))`)
	assert.Equal(t, "9", v.String())
}

func TestShortCircuit(t *testing.T) {
	c := newCompiler(t)
	assert.Equal(t, "1", eval1(t, c, `(or 1 (bogus))`).String())
	assert.Equal(t, "false", eval1(t, c, `(and false (bogus))`).String())
	assert.Equal(t, "2", eval1(t, c, `(and 1 2)`).String())
	assert.Equal(t, "3", eval1(t, c, `(or false 3)`).String())
}

// A macro defined by one top-level form is available to the next form and to
// nothing earlier.
func TestIncrementalDefinition(t *testing.T) {
	c := newCompiler(t)
	_, err := c.CompileForm(context.Background(), read1(t, `(define x (nine))`))
	var nerr *host.NameError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "nine", nerr.Name)

	eval1(t, c, "(defmacro nine () 9)")
	eval1(t, c, `(define x (nine))`)
	assert.Equal(t, "9", eval1(t, c, `x`).String())
}

// The unit macro registry is created by the first definition, not by lookup.
func TestRegistryBootstrap(t *testing.T) {
	c := newCompiler(t)
	require.Equal(t, 0, c.Unit().Macros().Len())
	// Lookup misses must not create the registry.
	_, err := c.Expand(read1(t, `(nope 1)`))
	require.NoError(t, err)
	require.Equal(t, 0, c.Unit().Macros().Len())
	eval1(t, c, "(defmacro m () 1)")
	require.Equal(t, 1, c.Unit().Macros().Len())
	assert.NotNil(t, c.Unit().Macros().Get("m"))
}

func TestQualifiedMacro(t *testing.T) {
	rt := host.NewRuntime()
	basic.Install(rt)
	c := compiler.New(rt, "test")
	v := eval1(t, c, `(basic:-> 2 (add 1))`)
	assert.Equal(t, "3", v.String())
	// Unqualified names stay unresolved without a fallback.
	_, err := c.CompileForm(context.Background(), read1(t, `(define y (-> 1))`))
	var nerr *host.NameError
	require.ErrorAs(t, err, &nerr)
}

func TestMacroErrorPropagation(t *testing.T) {
	boom := errors.New("boom")
	c := newCompiler(t)
	c.Unit().EnsureMacros().Put("fail", func(ctx *macro.Context, args []*sexp.Form) (*sexp.Form, error) {
		return nil, boom
	}, "")
	_, err := c.CompileForm(context.Background(), read1(t, `(fail)`))
	assert.Same(t, boom, err)
}

const swapMacro = "(defmacro dup (x)\n" +
	"  `(let (($#tmp ,x))\n" +
	"     (add $#tmp $#tmp)))"

func TestTemplateGensym(t *testing.T) {
	c := newCompiler(t)
	eval1(t, c, swapMacro)
	assert.Equal(t, "10", eval1(t, c, `(dup 5)`).String())
	// Gensyms cannot capture a user binding of the placeholder's name.
	assert.Equal(t, "6", eval1(t, c, `(let ((tmp 3)) (dup tmp))`).String())
}

// Distinct macro invocations mint distinct gensyms; repeated placeholders
// within one invocation mint one.
func TestGensymUniqueness(t *testing.T) {
	c := newCompiler(t, compiler.WithoutEvaluation())
	body := read1(t, "`(let (($#tmp 1)) (add $#tmp $#tmp))")
	src1, err := c.Generate(mustExpand(t, c, body))
	require.NoError(t, err)
	src2, err := c.Generate(mustExpand(t, c, body))
	require.NoError(t, err)
	// The generated source is identical; minting happens at evaluation time.
	assert.Equal(t, src1, src2)

	ce := newCompiler(t)
	v1 := eval1(t, ce, "`($#tmp $#tmp)")
	require.Len(t, v1.Cells, 2)
	assert.True(t, sexp.Equal(v1.Cells[0], v1.Cells[1]))
	v2 := eval1(t, ce, "`($#tmp $#tmp)")
	assert.False(t, sexp.Equal(v1.Cells[0], v2.Cells[0]),
		"expected distinct gensyms, got %v and %v", v1.Cells[0], v2.Cells[0])
}

func mustExpand(t *testing.T, c *compiler.Compiler, form *sexp.Form) *sexp.Form {
	t.Helper()
	x, err := c.Expand(form)
	require.NoError(t, err)
	return x
}

func TestGensymHygieneRepeated(t *testing.T) {
	c := newCompiler(t)
	eval1(t, c, swapMacro)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, "10", eval1(t, c, `(dup 5)`).String())
	}
}

func TestTemplateSplice(t *testing.T) {
	c := newCompiler(t)
	eval1(t, c, `(define xs '(1 2 3))`)
	v := eval1(t, c, "`(a ,@xs b)")
	assert.Equal(t, `(a 1 2 3 b)`, v.String())
}

func TestTemplateUnquote(t *testing.T) {
	c := newCompiler(t)
	eval1(t, c, `(define x 7)`)
	v := eval1(t, c, "`(f ,x y)")
	assert.Equal(t, `(f 7 y)`, v.String())
}

func TestCompileUnitAbort(t *testing.T) {
	c := newCompiler(t)
	forms, err := parser.ReadString("test", `
		(define a 1)
		(define b (bogus))
		(define c 3)
	`)
	require.NoError(t, err)
	frags, err := c.CompileUnit(context.Background(), forms)
	require.Error(t, err)
	require.Len(t, frags, 1)
	// Bindings installed before the failure persist.
	assert.Equal(t, "1", eval1(t, c, `a`).String())
	_, ok := c.Unit().Get("c")
	assert.False(t, ok)
}

func TestHistorySource(t *testing.T) {
	c := newCompiler(t)
	eval1(t, c, `(define a 1)`)
	eval1(t, c, `a`)
	require.Len(t, c.History(), 2)
	assert.Equal(t, "setattr(globals(), symbol('a'), 1)\na\n", c.Source())
}

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { require.NoError(t, tp.Shutdown(context.Background())) }()

	c := newCompiler(t, compiler.WithTracer(tp.Tracer("hissptest")))
	forms, err := parser.ReadString("test", `(define a 1) a`)
	require.NoError(t, err)
	_, err = c.CompileUnit(context.Background(), forms)
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 3)
	names := make([]string, len(spans))
	for i, span := range spans {
		names[i] = span.Name()
	}
	assert.Contains(t, names, "compiler.CompileUnit")
	assert.Contains(t, names, "compiler.CompileForm")
}

func TestPrintOutput(t *testing.T) {
	rt := host.NewRuntime()
	var buf fmtWriter
	rt.Stdout = &buf
	c := compiler.New(rt, "test", compiler.WithFallback(basic.Registry()))
	eval1(t, c, `(print "x" 1 : )`)
	assert.Equal(t, "x 1\n", buf.String())
}

type fmtWriter struct{ b []byte }

func (w *fmtWriter) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

func (w *fmtWriter) String() string { return string(w.b) }

func ExampleCompiler() {
	rt := host.NewRuntime()
	c := compiler.New(rt, "example", compiler.WithFallback(basic.Registry()))
	forms, err := parser.ReadString("example", `(define x (add 1 2))`)
	if err != nil {
		panic(err)
	}
	frags, err := c.CompileUnit(context.Background(), forms)
	if err != nil {
		panic(err)
	}
	fmt.Println(frags[0].Source)
	v, _ := c.Unit().Get("x")
	fmt.Println(v)
	// Output:
	// setattr(globals(), symbol('x'), add(1, 2))
	// 3
}
