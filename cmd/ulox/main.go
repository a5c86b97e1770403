// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

//go:build !js
// +build !js

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ozanh/ulox"
	"github.com/ozanh/ulox/encoder"
	"github.com/ozanh/ulox/importers"
)

// Exit codes of the driver, as sysexits(3) defines them.
const (
	exitCompileError = 65
	exitRuntimeError = 70
)

// Streams accepted by --diagnostics.
const (
	diagStdout = "stdout"
	diagStderr = "stderr"
)

// Trace units accepted by --trace.
const (
	traceScanner  = "scanner"
	traceCompiler = "compiler"
	traceVM       = "vm"
)

type app struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// isTerminal reports whether the REPL can be started.
	isTerminal func() bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		v:          viper.New(),
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		isTerminal: isTerminalIO,
	}
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ulox [flags] [file]",
		Short: "Compile and run Lox expressions",
		Long: "ulox compiles a Lox expression to bytecode and runs it on a " +
			"stack based virtual machine.\n\n" +
			"If no file or code is given and the terminal is interactive, " +
			"the REPL is started. Otherwise code is read from stdin.\n\n" +
			"Errors are written to stdout along with results, unless " +
			"--diagnostics stderr is given.",
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
		RunE:              a.runMain,
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (toml, yaml or json)")
	pf.StringSlice("trace", nil,
		"comma separated units to trace: scanner,compiler,vm")
	pf.Bool("no-color", false, "disable colored output")
	pf.Int("stack-size", ulox.StackSize, "capacity of the operand stack")
	pf.String("diagnostics", diagStdout,
		"stream for compile and runtime errors: stdout or stderr")
	addInputFlags(cmd)

	cmd.AddCommand(a.disCommand(), a.tokensCommand(), a.compileCommand())
	return cmd
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "code to evaluate")
	cmd.Flags().Bool("stdin", false, "read code from stdin")
}

func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	a.v.SetEnvPrefix("ULOX")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
	return nil
}

func (a *app) runMain(cmd *cobra.Command, args []string) error {
	if a.shouldRunREPL(cmd, args) {
		eval, err := a.newEval("(repl)")
		if err != nil {
			return err
		}
		return runREPL(cmd.Context(), eval, a.stdout)
	}

	name, src, err := a.readSource(cmd, args)
	if err != nil {
		return err
	}
	eval, err := a.newEval(name)
	if err != nil {
		return err
	}
	if encoder.IsEncoded(src) {
		var chunk *ulox.Chunk
		if chunk, err = decodeChunk(src); err != nil {
			return err
		}
		_, err = eval.RunChunk(cmd.Context(), chunk)
		return err
	}
	_, _, err = eval.Run(cmd.Context(), src)
	return err
}

func decodeChunk(data []byte) (*ulox.Chunk, error) {
	var c encoder.Chunk
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return (*ulox.Chunk)(&c), nil
}

func (a *app) shouldRunREPL(cmd *cobra.Command, args []string) bool {
	if len(args) > 0 || a.v.GetBool("stdin") {
		return false
	}
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		return false
	}
	return a.isTerminal()
}

// readSource returns the name and the source text given by one of --code,
// --stdin or the file argument. Without any of them stdin is read.
func (a *app) readSource(cmd *cobra.Command, args []string) (string, []byte, error) {
	var codeSet, stdinSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeSet = true
	}
	if f := cmd.Flags().Lookup("stdin"); f != nil && f.Changed {
		stdinSet = true
	}
	pathSet := len(args) > 0
	if (pathSet && (codeSet || stdinSet)) || (codeSet && stdinSet) {
		return "", nil, errors.New("multiple input sources specified")
	}

	switch {
	case codeSet:
		return "(code)", []byte(a.v.GetString("code")), nil
	case pathSet:
		imp := &importers.FileImporter{WorkDir: "."}
		src, err := imp.Import(args[0])
		if err != nil {
			return "", nil, err
		}
		return args[0], src, nil
	}
	src, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", nil, err
	}
	return "(stdin)", src, nil
}

func (a *app) traceUnits() (map[string]bool, error) {
	units := make(map[string]bool)
	for _, v := range a.v.GetStringSlice("trace") {
		// environment values are not split at commas
		for _, unit := range strings.Split(v, ",") {
			unit = strings.TrimSpace(unit)
			switch unit {
			case "":
			case traceScanner, traceCompiler, traceVM:
				units[unit] = true
			default:
				return nil, fmt.Errorf("unknown trace unit %q", unit)
			}
		}
	}
	return units, nil
}

// diagnostics returns the writer errors are reported to.
func (a *app) diagnostics() (io.Writer, error) {
	switch v := a.v.GetString("diagnostics"); v {
	case "", diagStdout:
		return a.stdout, nil
	case diagStderr:
		return a.stderr, nil
	default:
		return a.stderr, fmt.Errorf("unknown diagnostics stream %q", v)
	}
}

func (a *app) compilerOptions(name string) (ulox.CompilerOptions, error) {
	opts := ulox.DefaultCompilerOptions
	opts.Name = name

	diag, err := a.diagnostics()
	if err != nil {
		return opts, err
	}
	opts.Diagnostics = &colorWriter{w: diag, c: errorColor}

	units, err := a.traceUnits()
	if err != nil {
		return opts, err
	}
	if units[traceScanner] || units[traceCompiler] {
		opts.Trace = a.stdout
		opts.TraceScanner = units[traceScanner]
		opts.TraceCompiler = units[traceCompiler]
	}
	return opts, nil
}

func (a *app) newEval(name string) (*ulox.Eval, error) {
	opts, err := a.compilerOptions(name)
	if err != nil {
		return nil, err
	}
	eval := ulox.NewEval(opts, a.stdout)
	eval.StackSize = a.v.GetInt("stack-size")

	units, _ := a.traceUnits()
	if units[traceVM] {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
		eval.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        a.stderr,
			NoColor:    color.NoColor,
			PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		}).Level(zerolog.TraceLevel)
	}
	return eval, nil
}

func (a *app) disCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Print the disassembled bytecode of an expression",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			opts, err := a.compilerOptions(name)
			if err != nil {
				return err
			}
			var chunk *ulox.Chunk
			if encoder.IsEncoded(src) {
				chunk, err = decodeChunk(src)
			} else {
				// the listing below is the compiler trace
				opts.TraceCompiler = false
				chunk, err = ulox.Compile(src, opts)
			}
			if err != nil {
				return err
			}
			chunk.Disassemble(a.stdout, name)
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

func (a *app) tokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the tokens of the source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, src, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			printTokens(a.stdout, src)
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

func (a *app) compileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile an expression and write the encoded chunk",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := a.readSource(cmd, args)
			if err != nil {
				return err
			}
			opts, err := a.compilerOptions(name)
			if err != nil {
				return err
			}
			chunk, err := ulox.Compile(src, opts)
			if err != nil {
				return err
			}

			output := a.v.GetString("output")
			if output == "" || output == "-" {
				return encoder.EncodeChunkTo(chunk, a.stdout)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err = encoder.EncodeChunkTo(chunk, f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "output file, - for stdout")
	return cmd
}

func exitCode(err error) int {
	var rerr *ulox.RuntimeError
	switch {
	case errors.Is(err, ulox.ErrCompile):
		return exitCompileError
	case errors.As(err, &rerr):
		return exitRuntimeError
	}
	return 1
}

func (a *app) printError(err error) {
	// diagnostics are written while compiling
	if errors.Is(err, ulox.ErrCompile) {
		return
	}
	w, _ := a.diagnostics()
	_, _ = errorColor.Fprintln(w, err.Error())
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.rootCommand().ExecuteContext(ctx); err != nil {
		a.printError(err)
		cancel()
		os.Exit(exitCode(err))
	}
}
