// Copyright © 2025 The hissp authors

package compiler

import (
	"fmt"

	"github.com/vishalbelsare/hissp/sexp"
)

// CompileError reports a form rejected by the expander or the code
// generator.  Errors raised inside macro expanders are not CompileErrors;
// they propagate to the caller unmodified.
type CompileError struct {
	Form *sexp.Form
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%v: compile error: %v", e.Form.Loc(), e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

func errorf(form *sexp.Form, format string, v ...interface{}) error {
	return &CompileError{Form: form, Err: fmt.Errorf(format, v...)}
}
