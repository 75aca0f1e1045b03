// Copyright © 2025 The hissp authors

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"github.com/vishalbelsare/hissp/basic"
	"github.com/vishalbelsare/hissp/macro"
)

var docList bool

// docCmd represents the doc command
var docCmd = &cobra.Command{
	Use:   "doc [flags] NAME",
	Short: "Show documentation for the basic macro set",
	Long: `Show the documentation string recorded for a macro in the basic
macro set.  Qualified names like basic:define are accepted.

Examples:
  hissp doc define               Show docs for the define macro
  hissp doc basic:->             Show docs for the thread-first macro
  hissp doc -l                   List all basic macros with summaries`,
	Run: func(cmd *cobra.Command, args []string) {
		out := bufio.NewWriter(os.Stdout)
		defer out.Flush() //nolint:errcheck // best-effort flush on exit
		if docList {
			if err := renderMacroList(out, basic.Registry()); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
		if len(args) != 1 {
			_ = cmd.Help()
			os.Exit(1)
		}
		if err := docExec(out, args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func docExec(w io.Writer, query string) error {
	name := strings.TrimPrefix(query, basic.ModuleName+":")
	m := basic.Registry().Get(name)
	if m == nil {
		return fmt.Errorf("no documentation for %q", query)
	}
	return renderMacro(w, m)
}

// renderMacro writes the macro's name and its documentation wrapped to a
// readable width.
func renderMacro(w io.Writer, m *macro.Macro) error {
	if _, err := fmt.Fprintf(w, "%s:%s  (macro)\n", basic.ModuleName, m.Name); err != nil {
		return err
	}
	doc := m.Doc
	if doc == "" {
		doc = "No documentation available."
	}
	doc = indent.String(wordwrap.String(doc, 72), 2)
	_, err := fmt.Fprintf(w, "%s\n", strings.TrimRight(doc, "\n"))
	return err
}

// renderMacroList writes one line per macro, sorted by name, with the first
// sentence of its documentation.
func renderMacroList(w io.Writer, r *macro.Registry) error {
	names := r.Names()
	sort.Strings(names)
	for _, name := range names {
		m := r.Get(name)
		if _, err := fmt.Fprintf(w, "%-12s %s\n", name, docSummary(m.Doc)); err != nil {
			return err
		}
	}
	return nil
}

// docSummary returns the first line of doc, truncated at the first period.
func docSummary(doc string) string {
	line := doc
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if i := strings.IndexByte(line, '.'); i >= 0 {
		line = line[:i+1]
	}
	return line
}

func init() {
	rootCmd.AddCommand(docCmd)

	docCmd.Flags().BoolVarP(&docList, "list", "l", false,
		"List all macros in the basic macro set.")
}
