// Copyright © 2025 The hissp authors

package token

import "fmt"

// Token is a lexical token scanned from source text.
type Token struct {
	Type   Type
	Text   string
	Source *Location
}

type Type uint

// Type constants used by the hissp lexer/reader.
const (
	INVALID Type = iota
	ERROR
	EOF

	HASH_BANG

	// Atomic expressions & literals
	SYMBOL
	INT
	INT_OCTAL_MACRO
	INT_OCTAL
	INT_HEX_MACRO
	INT_HEX
	FLOAT
	STRING

	COMMENT

	// Reader shorthand
	QUOTE          // '
	QUASIQUOTE     // `
	UNQUOTE        // ,
	UNQUOTE_SPLICE // ,@
	TAG            // an atom ending in #, e.g. my-tag#

	// Delimiters
	PAREN_L
	PAREN_R

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:         "invalid",
		ERROR:           "error",
		EOF:             "EOF",
		HASH_BANG:       "#!",
		SYMBOL:          "symbol",
		INT:             "int",
		INT_OCTAL_MACRO: "#o",
		INT_OCTAL:       "octal",
		INT_HEX_MACRO:   "#x",
		INT_HEX:         "hex",
		FLOAT:           "float",
		STRING:          "string",
		COMMENT:         ";",
		QUOTE:           "'",
		QUASIQUOTE:      "`",
		UNQUOTE:         ",",
		UNQUOTE_SPLICE:  ",@",
		TAG:             "tag",
		PAREN_L:         "(",
		PAREN_R:         ")",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Location is a position in a source stream.
type Location struct {
	File string // a name representing the source stream
	Pos  int    // byte offset in the stream
	Line int    // line number (starting at 1 when tracked)
	Col  int    // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// LocationError attaches a source location to an error.
type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
