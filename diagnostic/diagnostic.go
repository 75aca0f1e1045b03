// Copyright © 2025 The hissp authors

// Package diagnostic renders reader and compiler errors as annotated source
// snippets for CLI output.  It depends only on the error types it explains,
// never the other way around, so any command can use it without import
// cycles.
package diagnostic

import (
	"errors"

	"github.com/vishalbelsare/hissp/compiler"
	"github.com/vishalbelsare/hissp/host"
	"github.com/vishalbelsare/hissp/parser/rdparser"
	"github.com/vishalbelsare/hissp/parser/token"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
	Notes    []string
}

func spanAt(loc *token.Location, label string) []Span {
	if loc == nil || loc.Pos < 0 {
		return nil
	}
	return []Span{{
		File:  loc.File,
		Line:  loc.Line,
		Col:   loc.Col,
		Label: label,
	}}
}

// FromError converts the errors produced while reading, compiling, and
// evaluating a unit into renderable diagnostics.
func FromError(err error) Diagnostic {
	var rerr *rdparser.ReadError
	if errors.As(err, &rerr) {
		return Diagnostic{
			Severity: SeverityError,
			Message:  rerr.Msg,
			Spans:    spanAt(rerr.Source, "invalid syntax"),
		}
	}
	var cerr *compiler.CompileError
	if errors.As(err, &cerr) {
		return Diagnostic{
			Severity: SeverityError,
			Message:  cerr.Err.Error(),
			Spans:    spanAt(cerr.Form.Loc(), "in this form"),
			Notes:    []string{"offending form: " + cerr.Form.String()},
		}
	}
	var nerr *host.NameError
	if errors.As(err, &nerr) {
		return Diagnostic{
			Severity: SeverityError,
			Message:  nerr.Error(),
			Notes:    []string{"the name was unresolved at compile time and deferred to evaluation"},
		}
	}
	var lerr *token.LocationError
	if errors.As(err, &lerr) {
		return Diagnostic{
			Severity: SeverityError,
			Message:  lerr.Err.Error(),
			Spans:    spanAt(lerr.Source, ""),
		}
	}
	return Diagnostic{
		Severity: SeverityError,
		Message:  err.Error(),
	}
}
