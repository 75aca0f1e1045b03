// Copyright © 2025 The hissp authors

// Package hissptest runs table-driven compiler tests: sequences of source
// expressions compiled and evaluated in order against one compilation unit,
// checking each result and any print output.
package hissptest

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"github.com/vishalbelsare/hissp/basic"
	"github.com/vishalbelsare/hissp/compiler"
	"github.com/vishalbelsare/hissp/host"
	"github.com/vishalbelsare/hissp/parser"
	"github.com/vishalbelsare/hissp/sexp"
)

// BenchmarkParse returns a benchmark reading the source file at path with
// readers constructed by r.
func BenchmarkParse(path string, r func() sexp.Reader) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			_, err := r().Read("test", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// TestSequence is a sequence of expressions compiled and evaluated
// sequentially in a single compilation unit.
type TestSequence []struct {
	Expr   string // a hissp expression
	Result string // the evaluated result, or the error text when compilation fails
	Output string // print output written during evaluation
}

// TestSuite is a set of named TestSequences.
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs each TestSequence in tests on isolated compilation
// units.  The basic macros are available unqualified.
func RunTestSuite(t *testing.T, tests TestSuite) {
	ctx := context.Background()
	for i, test := range tests {
		log.Printf("test %d -- %s", i, test.Name)
		rt := host.NewRuntime()
		var output bytes.Buffer
		rt.Stdout = &output
		c := compiler.New(rt, "test", compiler.WithFallback(basic.Registry()))
		for j, expr := range test.TestSequence {
			output.Reset()
			forms, err := parser.ReadString("test", expr.Expr)
			if err != nil {
				t.Errorf("test %d %q: expr %d: read error: %v", i, test.Name, j, err)
				continue
			}
			if len(forms) != 1 {
				t.Errorf("test %d %q: expr %d: expected one expression, parsed %d", i, test.Name, j, len(forms))
				continue
			}
			var result string
			frag, err := c.CompileForm(ctx, forms[0])
			if err != nil {
				result = err.Error()
			} else {
				result = frag.Value.String()
			}
			if result != expr.Result {
				t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
			}
			if output.String() != expr.Output {
				t.Errorf("test %d %q: expr %d: expected output %q (got %q)", i, test.Name, j, expr.Output, output.String())
			}
		}
	}
}

// RunBenchmark compiles and evaluates expressions parsed from source against
// a fresh compilation unit on every iteration.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	forms, err := parser.ReadString("benchmark", source)
	if err != nil {
		b.Fatalf("read error: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		rt := host.NewRuntime()
		rt.Stdout = &bytes.Buffer{}
		c := compiler.New(rt, "benchmark", compiler.WithFallback(basic.Registry()))
		b.StartTimer()
		if _, err := c.CompileUnit(ctx, forms); err != nil {
			b.Fatal(err)
		}
		b.StopTimer()
	}
}
