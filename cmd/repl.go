// Copyright © 2025 The hissp authors

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vishalbelsare/hissp/repl"
)

var replEchoSource bool

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive hissp session",
	Long: `Start an interactive read-compile-evaluate loop.

The basic macro set is loaded automatically.  Line editing, tab completion
over bound names, and in-session command history are supported via readline.
Use Ctrl-D to exit.

Example session:
  hissp> (add 1 2)
  3
  hissp> (define square (lambda (x) (mul x x)))
  ()
  hissp> (square 5)
  25
  hissp> (defmacro dup (x) ` + "`" + `(add ,x ,x))
  ()
  hissp> (dup 21)
  42`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := []repl.Option{repl.WithColor(colorMode())}
		if replEchoSource {
			opts = append(opts, repl.WithEchoSource())
		}
		repl.Run(filepath.Base(os.Args[0])+"> ", opts...)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().BoolVarP(&replEchoSource, "echo-source", "s", false,
		"Print the compiled source of each form before its value")
}
