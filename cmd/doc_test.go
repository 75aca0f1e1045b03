// Copyright © 2025 The hissp authors

package cmd

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishalbelsare/hissp/basic"
)

func TestDocExec(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, docExec(&buf, "define"))
	got := buf.String()
	assert.Contains(t, got, "basic:define")
	assert.Contains(t, got, "(macro)")

	buf.Reset()
	require.NoError(t, docExec(&buf, "basic:->"))
	assert.Contains(t, buf.String(), "basic:->")

	require.Error(t, docExec(&buf, "no-such-macro"))
}

func TestRenderMacroList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderMacroList(&buf, basic.Registry()))
	got := buf.String()
	for _, name := range basic.Registry().Names() {
		assert.Contains(t, got, name)
	}

	// Registry iteration order is unspecified so the listing sorts by name.
	var listed []string
	for _, line := range strings.Split(strings.TrimRight(got, "\n"), "\n") {
		listed = append(listed, strings.Fields(line)[0])
	}
	assert.True(t, sort.StringsAreSorted(listed), "macro listing order %v", listed)
}

func TestDocSummary(t *testing.T) {
	assert.Equal(t, "First sentence.", docSummary("First sentence. Second sentence."))
	assert.Equal(t, "No period here", docSummary("No period here\nsecond line"))
	assert.Equal(t, "", docSummary(""))
}

func TestDocCommandFlags(t *testing.T) {
	assert.Equal(t, "doc [flags] NAME", docCmd.Use)
	assert.NotNil(t, docCmd.Flags().Lookup("list"))
}
