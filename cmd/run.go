// Copyright © 2025 The hissp authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vishalbelsare/hissp/basic"
	"github.com/vishalbelsare/hissp/compiler"
	"github.com/vishalbelsare/hissp/host"
	"github.com/vishalbelsare/hissp/parser"
)

var (
	runExpression bool
	runPrint      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] FILE...",
	Short: "Compile and evaluate hissp code",
	Long: `Compile and evaluate hissp code supplied via the command line or
source files.  Each file is compiled as its own unit; expressions given with
-e share a single unit named main.  Compilation is incremental: a macro
defined by one top-level form is available to every form after it.

File units resolve the basic macros through qualified names (basic:define,
basic:defmacro, ...).  Expressions given with -e are an interactive context
and may use the basic macros unqualified.`,
	Run: func(cmd *cobra.Command, args []string) {
		if !runExpression {
			var err error
			args, err = expandArgs(args)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
		if err := runArgs(os.Stdout, args, runExpression, runPrint); err != nil {
			renderError(err)
			os.Exit(1)
		}
	},
}

// runArgs compiles and evaluates the given files, or expression strings when
// asExprs is set.  Printed output and, optionally, form values go to out.
func runArgs(out io.Writer, args []string, asExprs, printVals bool) error {
	ctx := context.Background()
	rt := host.NewRuntime()
	rt.Stdout = out
	basic.Install(rt)

	if asExprs {
		c := compiler.New(rt, "main", compiler.WithFallback(basic.Registry()))
		for _, src := range args {
			forms, err := parser.ReadString("main", src)
			if err != nil {
				return err
			}
			frags, err := c.CompileUnit(ctx, forms)
			if printErr := printFragments(out, frags, printVals); printErr != nil {
				return printErr
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	for _, path := range args {
		f, err := os.Open(path) //#nosec G304
		if err != nil {
			return err
		}
		forms, err := parser.NewReader().Read(path, f)
		f.Close() //nolint:errcheck // read-only file
		if err != nil {
			return err
		}
		// File units reach the basic macros by qualified name only; the
		// unqualified fallback is reserved for interactive units.
		c := compiler.New(rt, unitName(path))
		frags, err := c.CompileUnit(ctx, forms)
		if printErr := printFragments(out, frags, printVals); printErr != nil {
			return printErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func printFragments(out io.Writer, frags []compiler.Fragment, printVals bool) error {
	if !printVals {
		return nil
	}
	for _, frag := range frags {
		if frag.Value == nil {
			continue
		}
		if _, err := fmt.Fprintln(out, frag.Value); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as hissp expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print the value of each top-level form to stdout")
}
