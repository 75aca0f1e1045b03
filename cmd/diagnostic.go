// Copyright © 2025 The hissp authors

package cmd

import (
	"os"

	"github.com/vishalbelsare/hissp/diagnostic"
)

func colorMode() diagnostic.ColorMode {
	switch colorFlag {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// renderError renders a reader or compiler error with an annotated source
// snippet on stderr.
func renderError(err error) {
	_ = newRenderer().RenderError(os.Stderr, err)
}
