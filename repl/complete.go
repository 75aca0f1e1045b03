// Copyright © 2025 The hissp authors

package repl

import (
	"sort"
	"strings"

	"github.com/vishalbelsare/hissp/basic"
	"github.com/vishalbelsare/hissp/compiler"
	"github.com/vishalbelsare/hissp/host"
)

// completer implements readline.AutoComplete by enumerating the names
// resolvable in the session: unit attributes, unit macros, the basic macro
// set, and the reserved bindings.
type completer struct {
	c *compiler.Compiler
}

func newCompleter(c *compiler.Compiler) *completer {
	return &completer{c: c}
}

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	// Scan backwards from the cursor to the start of the current word.
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == '\n' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collect(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Completions are the suffixes to append after the typed prefix.
	result := make([][]rune, 0, len(candidates))
	for _, name := range candidates {
		result = append(result, []rune(name[len(prefix):]))
	}
	return result, len(prefix)
}

func (c *completer) collect(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}

	unit := c.c.Unit()
	for _, name := range unit.Names() {
		add(name)
	}
	for _, name := range unit.Macros().Names() {
		add(name)
	}
	for _, name := range basic.Registry().Names() {
		add(name)
		add(basic.ModuleName + ":" + name)
	}
	for _, name := range host.ReservedNames() {
		add(name)
	}
	add(basic.ModuleName + ":")

	sort.Strings(result)
	return result
}
