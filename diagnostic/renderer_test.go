// Copyright © 2025 The hissp authors

package diagnostic_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishalbelsare/hissp/compiler"
	"github.com/vishalbelsare/hissp/diagnostic"
	"github.com/vishalbelsare/hissp/host"
	"github.com/vishalbelsare/hissp/parser"
	"github.com/vishalbelsare/hissp/parser/rdparser"
)

// testRenderer disables color and reads source text from a map instead of
// the filesystem, the way the repl feeds input lines back in.
func testRenderer(sources map[string]string) *diagnostic.Renderer {
	return &diagnostic.Renderer{
		Color: diagnostic.ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, fmt.Errorf("not found: %s", name)
			}
			return []byte(s), nil
		},
	}
}

func TestRenderLayout(t *testing.T) {
	r := testRenderer(map[string]string{"unit.hissp": "(foo bar)"})
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  "bad",
		Spans: []diagnostic.Span{
			{File: "unit.hissp", Line: 1, Col: 6, EndCol: 8, Label: "here"},
		},
		Notes: []string{"n1"},
	}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	want := "error: bad\n" +
		"  --> unit.hissp:1:6\n" +
		"   |\n" +
		" 1 |  (foo bar)\n" +
		"   |       ^^^ here\n" +
		"   |\n" +
		"   = note: n1\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderReadError(t *testing.T) {
	const src = "(add oops# 1)"
	_, err := parser.ReadString("snippet.hissp", src)
	require.Error(t, err)
	var rerr *rdparser.ReadError
	require.True(t, errors.As(err, &rerr))

	d := diagnostic.FromError(err)
	assert.Equal(t, diagnostic.SeverityError, d.Severity)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, "snippet.hissp", d.Spans[0].File)
	assert.Equal(t, "invalid syntax", d.Spans[0].Label)

	var buf bytes.Buffer
	r := testRenderer(map[string]string{"snippet.hissp": src})
	require.NoError(t, r.Render(&buf, d))
	got := buf.String()
	assert.Contains(t, got, "error: ")
	assert.Contains(t, got, "--> snippet.hissp:1:")
	assert.Contains(t, got, src)
	assert.Contains(t, got, "invalid syntax")
}

func TestRenderCompileError(t *testing.T) {
	const src = "(quote a b)"
	forms, err := parser.ReadString("unit.hissp", src)
	require.NoError(t, err)
	require.Len(t, forms, 1)

	c := compiler.New(host.NewRuntime(), "unit")
	_, err = c.CompileForm(context.Background(), forms[0])
	require.Error(t, err)
	var cerr *compiler.CompileError
	require.True(t, errors.As(err, &cerr))

	d := diagnostic.FromError(err)
	assert.Equal(t, diagnostic.SeverityError, d.Severity)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, "in this form", d.Spans[0].Label)
	assert.Contains(t, d.Notes, "offending form: (quote a b)")

	var buf bytes.Buffer
	r := testRenderer(map[string]string{"unit.hissp": src})
	require.NoError(t, r.Render(&buf, d))
	got := buf.String()
	assert.Contains(t, got, "--> unit.hissp:1:")
	assert.Contains(t, got, src)
	assert.Contains(t, got, "= note: offending form: (quote a b)")
}

func TestRenderNameError(t *testing.T) {
	d := diagnostic.FromError(&host.NameError{Name: "missing"})
	assert.Empty(t, d.Spans)
	require.Len(t, d.Notes, 1)

	var buf bytes.Buffer
	require.NoError(t, testRenderer(nil).RenderError(&buf, &host.NameError{Name: "missing"}))
	got := buf.String()
	assert.Contains(t, got, "error: ")
	assert.Contains(t, got, "missing")
	assert.NotContains(t, got, "-->")
}

func TestRenderUnreadableSource(t *testing.T) {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  "some error",
		Spans:    []diagnostic.Span{{File: "<stdin>", Line: 5, Col: 3}},
	}
	var buf bytes.Buffer
	require.NoError(t, testRenderer(nil).Render(&buf, d))
	got := buf.String()
	assert.Contains(t, got, "--> <stdin>:5:3")
	assert.Contains(t, got, "|")
	assert.NotContains(t, got, "^")
}

func TestRenderEndColDetection(t *testing.T) {
	r := testRenderer(map[string]string{"f.hissp": "(define true 42)"})
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Message:  "shadowed literal",
		Spans:    []diagnostic.Span{{File: "f.hissp", Line: 1, Col: 9}},
	}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	got := buf.String()
	assert.Contains(t, got, "warning: shadowed literal")
	assert.Contains(t, got, "^^^^")
	assert.NotContains(t, got, "^^^^^")
}

func TestRenderAll(t *testing.T) {
	r := testRenderer(nil)
	diags := []diagnostic.Diagnostic{
		{Severity: diagnostic.SeverityError, Message: "first"},
		{Severity: diagnostic.SeverityNote, Message: "second"},
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, diags))
	assert.Equal(t, "error: first\n\nnote: second\n", buf.String())
}
