// Copyright © 2025 The hissp authors

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunArgsExpressions(t *testing.T) {
	var buf bytes.Buffer
	err := runArgs(&buf, []string{`(print "hello" :)`, `(add 1 2)`}, true, true)
	require.NoError(t, err)
	got := buf.String()
	assert.Contains(t, got, "hello\n")
	assert.Contains(t, got, "3\n")
}

func TestRunArgsExpressionsShareUnit(t *testing.T) {
	var buf bytes.Buffer
	err := runArgs(&buf, []string{`(define x 5)`, `(print x :)`}, true, false)
	require.NoError(t, err)
	assert.Equal(t, "5\n", buf.String())
}

func TestRunArgsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.hissp")
	src := "(basic:defmacro dup (x) `(add ,x ,x))\n(print (dup 21) :)\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))

	var buf bytes.Buffer
	require.NoError(t, runArgs(&buf, []string{path}, false, false))
	assert.Equal(t, "42\n", buf.String())
}

// File units get no unqualified fallback: the basic macros are reachable
// only through their module, unlike -e expressions and the repl.
func TestRunArgsFileNoUnqualifiedBasic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.hissp")
	require.NoError(t, os.WriteFile(path, []byte("(define x 5)\n"), 0600))

	var buf bytes.Buffer
	err := runArgs(&buf, []string{path}, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined")

	// The same form is fine in expression mode.
	buf.Reset()
	require.NoError(t, runArgs(&buf, []string{"(define x 5)", "(print x :)"}, true, false))
	assert.Equal(t, "5\n", buf.String())
}

func TestRunArgsError(t *testing.T) {
	var buf bytes.Buffer
	err := runArgs(&buf, []string{`(quote a b)`}, true, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile error")
}

func TestTranspileArgs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.hissp")
	src := "(basic:define x (add 1 2))\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))

	var buf bytes.Buffer
	require.NoError(t, transpileArgs(&buf, []string{path}, false))
	assert.Equal(t, "setattr(globals(), symbol('x'), add(1, 2))\n", buf.String())

	// Without evaluation the same source is produced for plain forms.
	buf.Reset()
	require.NoError(t, transpileArgs(&buf, []string{path}, true))
	assert.Equal(t, "setattr(globals(), symbol('x'), add(1, 2))\n", buf.String())
}
