// Copyright © 2025 The hissp authors

// Package repl implements the interactive compiler loop.  Each line is
// tokenized as it is typed so the prompt can reflect whether the reader is in
// the middle of a form, and each completed form is compiled and evaluated
// immediately, printing the value it produced.
package repl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/vishalbelsare/hissp/basic"
	"github.com/vishalbelsare/hissp/compiler"
	"github.com/vishalbelsare/hissp/diagnostic"
	"github.com/vishalbelsare/hissp/host"
	"github.com/vishalbelsare/hissp/parser/lexer"
	"github.com/vishalbelsare/hissp/parser/rdparser"
	"github.com/vishalbelsare/hissp/parser/token"
)

// replUnit is the compilation unit name of the interactive session.  It
// doubles as the file name attached to tokens read from the terminal; the
// diagnostic renderer resolves it to the most recent input line.
const replUnit = "repl"

type config struct {
	stdin      io.ReadCloser
	stderr     io.WriteCloser
	color      diagnostic.ColorMode
	historyOff bool
	echoSource bool
}

func newConfig(opts ...Option) *config {
	config := &config{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Option configures a REPL session.
type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output of the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithColor sets the color mode for rendered diagnostics.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithoutHistory disables the persistent readline history file.
func WithoutHistory() Option {
	return func(c *config) {
		c.historyOff = true
	}
}

// WithEchoSource prints the generated source of each form before its value.
func WithEchoSource() Option {
	return func(c *config) {
		c.echoSource = true
	}
}

// Run starts a REPL with a fresh runtime and the basic macro set and blocks
// until the input stream is exhausted.
func Run(prompt string, opts ...Option) {
	cfg := newConfig(opts...)
	rt := host.NewRuntime()
	if cfg.stderr != nil {
		rt.Stdout = cfg.stderr
	} else {
		rt.Stdout = os.Stderr
	}
	basic.Install(rt)
	c := compiler.New(rt, replUnit, compiler.WithFallback(basic.Registry()))
	RunCompiler(c, prompt, opts...)
}

// RunCompiler runs the interactive loop against an existing compiler, so a
// command can preload units before dropping into a session.
func RunCompiler(c *compiler.Compiler, prompt string, opts ...Option) {
	cfg := newConfig(opts...)
	out := io.Writer(os.Stderr)
	if cfg.stderr != nil {
		out = cfg.stderr
	}

	p := rdparser.NewInteractive(nil)
	p.SetPrompts(prompt, strings.Repeat(" ", len(prompt)))

	// The renderer reads the line being reported on from the session's line
	// buffer rather than the filesystem.
	lines := &lineBuffer{}
	renderer := &diagnostic.Renderer{
		Color:        cfg.color,
		SourceReader: lines.read,
	}

	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            p.Prompt(),
		HistorySearchFold: true,
		AutoComplete:      newCompleter(c),
	}
	if !cfg.historyOff {
		rlCfg.HistoryFile = historyPath()
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		panic(err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	p.Read = func() []*token.Token {
		rl.SetPrompt(p.Prompt())
		for {
			var line []byte
			line, err = rl.ReadSlice()
			if err != nil && err != readline.ErrInterrupt {
				return []*token.Token{{
					Type: token.EOF,
					Text: "",
				}}
			}
			if err == readline.ErrInterrupt {
				continue
			}
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			lines.push(string(line))
			return scanLine(line)
		}
	}

	ctx := context.Background()
	for {
		form, err := p.Parse()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = renderer.RenderError(out, err)
			continue
		}
		frag, err := c.CompileForm(ctx, form)
		if err != nil {
			_ = renderer.RenderError(out, err)
			continue
		}
		if cfg.echoSource {
			fmt.Fprintln(out, frag.Source) //nolint:errcheck // best-effort REPL output
		}
		if frag.Value != nil {
			fmt.Fprintln(out, frag.Value) //nolint:errcheck // best-effort REPL output
		}
	}
}

// scanLine tokenizes one input line.  Lexical errors are returned as ERROR
// tokens for the parser to report.
func scanLine(line []byte) []*token.Token {
	var tokens []*token.Token
	scanner := token.NewScanner(replUnit, bytes.NewReader(line))
	lex := lexer.New(scanner)
	for {
		tok := lex.ReadToken()
		if len(tok) != 1 {
			panic("bad tokens")
		}
		if tok[0].Type == token.EOF {
			return tokens
		}
		tokens = append(tokens, tok...)
		if tok[0].Type == token.ERROR {
			return tokens
		}
	}
}

// lineBuffer retains the most recent input line for diagnostic snippets.
// Token locations restart at line 1 for every line typed, so only the latest
// line can be resolved.
type lineBuffer struct {
	last string
}

func (b *lineBuffer) push(line string) {
	b.last = line
}

func (b *lineBuffer) read(name string) ([]byte, error) {
	if name != replUnit || b.last == "" {
		return nil, fmt.Errorf("no source for %s", name)
	}
	return []byte(b.last), nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".hissp_history")
	ensureHistoryFilePermissions(path)
	return path
}

// ensureHistoryFilePermissions creates the history file with mode 0600, or
// restricts an existing one, so command history is not world readable.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0600) //#nosec G304
	if err == nil {
		f.Close() //nolint:errcheck // best-effort cleanup
	}
	_ = os.Chmod(path, 0600)
}
