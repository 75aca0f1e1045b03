// Copyright © 2025 The hissp authors

package rdparser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishalbelsare/hissp/parser/rdparser"
	"github.com/vishalbelsare/hissp/sexp"
)

func read(t *testing.T, src string, opts ...rdparser.Option) []*sexp.Form {
	t.Helper()
	forms, err := rdparser.NewReader(opts...).Read("test", strings.NewReader(src))
	require.NoError(t, err, "source %s", src)
	return forms
}

func read1(t *testing.T, src string, opts ...rdparser.Option) *sexp.Form {
	t.Helper()
	forms := read(t, src, opts...)
	require.Len(t, forms, 1, "source %s", src)
	return forms[0]
}

func TestParseAtoms(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`1`, `1`},
		{`-42`, `-42`},
		{`#xff`, `255`},
		{`#o17`, `15`},
		{`2.5`, `2.5`},
		{`1e3`, `1000`},
		{`"a\nb"`, `"a\nb"`},
		{`true`, `true`},
		{`false`, `false`},
		{`x`, `x`},
		{`list*`, `list*`},
		{`ns:name`, `ns:name`},
		{`:kw`, `:kw`},
		{`:`, `:`},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, read1(t, test.src).String(), "source %s", test.src)
	}
}

func TestParseTuples(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`()`, `()`},
		{`(f a b)`, `(f a b)`},
		{`(f (g 1) "s")`, `(f (g 1) "s")`},
		{`'x`, `(quote x)`},
		{`''x`, `(quote (quote x))`},
		{`'(a b)`, `(quote (a b))`},
		{"`(f ,x ,@xs)", `(quasiquote (f (unquote x) (unquote-splicing xs)))`},
		{`(a ; comment
		   b)`, `(a b)`},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, read1(t, test.src).String(), "source %s", test.src)
	}
}

func TestParseProgram(t *testing.T) {
	forms := read(t, "#!/usr/bin/env hissp\n(a)\n; c\n(b)\n")
	require.Len(t, forms, 2)
	assert.Equal(t, "(a)", forms[0].String())
	assert.Equal(t, "(b)", forms[1].String())
}

func TestGensymMark(t *testing.T) {
	form := read1(t, `$#tmp`)
	assert.True(t, form.IsSymbol("tmp"))
	assert.True(t, form.GensymMark)

	inner := read1(t, "`($#x)").Cells[1].Cells[0]
	assert.True(t, inner.GensymMark)
}

func TestDiscardTag(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`(a _#b c)`, `(a c)`},
		{`(a _#b)`, `(a)`},
		{`(a _#(nested (tuple)) b)`, `(a b)`},
		{`_#_#x (a)`, `(a)`},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, read1(t, test.src).String(), "source %s", test.src)
	}
	assert.Empty(t, read(t, `_#x`))
}

func TestReaderTags(t *testing.T) {
	inc := func(form *sexp.Form) (*sexp.Form, error) {
		require.Equal(t, sexp.Int, form.Type)
		return sexp.NewInt(form.Int + 1), nil
	}
	form := read1(t, `(f inc#41)`, rdparser.WithTag("inc", inc))
	assert.Equal(t, `(f 42)`, form.String())
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		`(a`,
		`)`,
		`'`,
		`' _#x`,
		`$#1`,
		`$#:kw`,
		`$#(f)`,
		`$#_#x`,
		`a:b:c`,
		`ns:`,
		`unknown#x`,
		`#xzz`,
		`"bad`,
	} {
		_, err := rdparser.NewReader().Read("test", strings.NewReader(src))
		require.Error(t, err, "source %s", src)
		if rerr, ok := err.(*rdparser.ReadError); ok {
			assert.Equal(t, "test", rerr.Source.File, "source %s", src)
		}
	}
}

func TestReadErrorText(t *testing.T) {
	_, err := rdparser.NewReader().Read("f.hissp", strings.NewReader("\n  unknown#x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f.hissp:2")
	assert.Contains(t, err.Error(), "read error")
	assert.Contains(t, err.Error(), `unknown reader tag "unknown"`)
}

func TestSourceLocations(t *testing.T) {
	form := read1(t, "(a\n  (b))")
	require.NotNil(t, form.Source)
	assert.Equal(t, 1, form.Source.Line)
	inner := form.Cells[1]
	require.NotNil(t, inner.Source)
	assert.Equal(t, 2, inner.Source.Line)
}
