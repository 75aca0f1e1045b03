// Copyright © 2025 The hissp authors

package munge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMunge(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"x", "x"},
		{"snake_case", "snake_case"},
		{"list*", "listQzSTAR_"},
		{"-", "QzH_"},
		{"a-b", "aQzH_b"},
		{"->", "QzH_QzGT_"},
		{"<=", "QzLT_QzEQ_"},
		{"even?", "evenQzQUERY_"},
		{"2x", "_2x"},
		{"Qz", "QzQZ_"},
		{"aQzb", "aQzQZ_b"},
		{"x#unit.3", "xQzHASH_unitQzDOT_3"},
		{"a b", "aQzx20_b"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Munge(test.name), "name %q", test.name)
	}
}

// Munging is injective: distinct names never produce the same identifier.
func TestMungeInjective(t *testing.T) {
	names := []string{
		"x", "x-", "x_", "xQzH_", "x-QzH_", "-x", "Qz", "QzQZ_",
		"add", "add*", "add?", "add!", "a:b", "a.b",
		"tmp#unit.1", "tmp#unit.2", "tmpQzHASH_unitQzDOT_1",
	}
	seen := make(map[string]string)
	for _, name := range names {
		m := Munge(name)
		if prev, ok := seen[m]; ok {
			t.Errorf("collision: %q and %q both munge to %q", prev, name, m)
		}
		seen[m] = name
	}
}
