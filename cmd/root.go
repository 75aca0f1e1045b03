// Copyright © 2025 The hissp authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hissp",
	Short: "hissp — Lisp-to-host-language compiler",
	Long: `hissp compiles a Lisp dialect to host-language source text.  Each
top-level form is expanded, compiled to an expression, and evaluated before
the next form is compiled, so macros defined in a unit are usable by the
forms that follow them.

Getting started:
  hissp run file.hissp           Compile and evaluate a source file
  hissp run -e '(add 1 2)'       Evaluate an expression
  hissp transpile file.hissp     Print the compiled host source
  hissp repl                     Start an interactive session
  hissp doc define               Show documentation for a basic macro
  hissp doc -l                   List the basic macro set

Language overview:
  Tuples written (f a b) compile to function calls.  The symbols true and
  false are booleans; the empty tuple () is falsey.  A leading colon marks a
  control word: in call position, arguments after a bare : are passed by
  name, :* splices, and :? passes positionally.  Macros are defined with
  (defmacro name (params) body) and expand at compile time.  Templates use
  the quasiquote shorthand ` + "`" + `form with ,x unquote, ,@xs splice, and
  $#name auto-gensym marks for hygienic symbols.

More information:
  Source code:  https://github.com/vishalbelsare/hissp`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hissp.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".hissp" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".hissp")
	}

	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
