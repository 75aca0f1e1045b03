// Copyright © 2025 The hissp authors

// Package munge maps hissp symbol names onto host-language identifiers.
//
// Source symbols may contain punctuation the host language forbids in
// identifiers.  Each such rune is rewritten to a Qz-escape.  The literal
// sequence "Qz" inside a source name is itself escaped, so the mapping is
// injective: two distinct symbol names never collide after munging, and a
// minted gensym (whose name contains a hash, which the reader never permits
// inside a symbol) can never collide with any munged user symbol.
package munge

import (
	"fmt"
	"strings"
	"unicode"
)

var escapes = map[rune]string{
	'+': "QzPLUS_",
	'-': "QzH_",
	'*': "QzSTAR_",
	'/': "QzSOL_",
	'=': "QzEQ_",
	'<': "QzLT_",
	'>': "QzGT_",
	'!': "QzBANG_",
	'&': "QzET_",
	'~': "QzTILDE_",
	'%': "QzPCENT_",
	'?': "QzQUERY_",
	'$': "QzDOLR_",
	'#': "QzHASH_",
	':': "QzCOLON_",
	'.': "QzDOT_",
}

// Munge rewrites a symbol name as a host-language identifier.  Alphanumeric
// runes and underscores pass through; everything else becomes a Qz-escape.
// A leading digit is prefixed with an underscore.
func Munge(name string) string {
	var b strings.Builder
	for i, c := range name {
		if i == 0 && unicode.IsDigit(c) {
			b.WriteByte('_')
		}
		switch {
		case c == 'Q' && strings.HasPrefix(name[i:], "Qz"):
			// Escape a literal Qz so escape sequences stay unambiguous.
			b.WriteString("Qz")
		case c == 'z' && i > 0 && name[i-1] == 'Q':
			b.WriteString("QZ_")
		case c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c):
			b.WriteRune(c)
		default:
			esc, ok := escapes[c]
			if !ok {
				esc = fmt.Sprintf("Qzx%X_", c)
			}
			b.WriteString(esc)
		}
	}
	return b.String()
}
