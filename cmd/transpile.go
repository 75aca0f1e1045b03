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
	transpileOutput string
	transpileNoEval bool
)

// transpileCmd represents the transpile command
var transpileCmd = &cobra.Command{
	Use:   "transpile [flags] FILE...",
	Short: "Compile hissp source and print the host source text",
	Long: `Compile hissp source files and print the compiled host source text
instead of executing it.

Forms are still evaluated during compilation, because expanding a macro
requires evaluating the form that defined it.  Pass --no-eval to suppress
evaluation entirely; macros defined in the transpiled unit are then
unavailable to the forms after them.`,
	Run: func(cmd *cobra.Command, args []string) {
		args, err := expandArgs(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		out := io.Writer(os.Stdout)
		if transpileOutput != "" {
			f, err := os.Create(transpileOutput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer f.Close() //nolint:errcheck // flushed by transpileArgs return
			out = f
		}
		if err := transpileArgs(out, args, transpileNoEval); err != nil {
			renderError(err)
			os.Exit(1)
		}
	},
}

// transpileArgs compiles each file as its own unit and writes the compiled
// source of every unit to out.
func transpileArgs(out io.Writer, args []string, noEval bool) error {
	ctx := context.Background()
	rt := host.NewRuntime()
	rt.Stdout = io.Discard
	basic.Install(rt)

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
		// Same macro resolution as run: qualified basic names only.
		var opts []compiler.Option
		if noEval {
			opts = append(opts, compiler.WithoutEvaluation())
		}
		c := compiler.New(rt, unitName(path), opts...)
		if _, err := c.CompileUnit(ctx, forms); err != nil {
			return err
		}
		if _, err := io.WriteString(out, c.Source()); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(transpileCmd)

	transpileCmd.Flags().StringVarP(&transpileOutput, "output", "o", "",
		"Write compiled source to a file instead of stdout")
	transpileCmd.Flags().BoolVar(&transpileNoEval, "no-eval", false,
		"Do not evaluate forms while compiling")
}
