// Copyright © 2025 The hissp authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	files := []string{
		filepath.Join(dir, "a.hissp"),
		filepath.Join(dir, "sub", "b.hissp"),
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("(print \"hi\" :)\n"), 0600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0600))

	out, err := expandArgs([]string{dir + "/..."})
	require.NoError(t, err)
	assert.ElementsMatch(t, files, out)

	// Non-pattern arguments pass through unchanged.
	out, err = expandArgs([]string{"x.hissp", "y.hissp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x.hissp", "y.hissp"}, out)
}

func TestUnitName(t *testing.T) {
	assert.Equal(t, "main", unitName("path/to/main.hissp"))
	assert.Equal(t, "main", unitName("main"))
	assert.Equal(t, "a.lisp", unitName("a.lisp"))
}
