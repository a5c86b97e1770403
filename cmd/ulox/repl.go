// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

//go:build !js
// +build !js

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/peterh/liner"

	"github.com/ozanh/ulox"
	"github.com/ozanh/ulox/token"
)

const (
	title         = "ulox"
	promptPrefix  = ">>> "
	promptPrefix2 = "... "
)

// Sentinel errors for repl.
var (
	errExit  = errors.New("exit")
	errReset = errors.New("reset")
)

type suggest struct {
	text        string
	description string
	typ         string
}

type repl struct {
	ctx         context.Context
	eval        *ulox.Eval
	out         io.Writer
	commands    map[string]func(string) error
	suggestions []suggest
	script      *bytes.Buffer
	lastChunk   *ulox.Chunk
	lastResult  ulox.Value
	isMultiline bool
}

func newREPL(ctx context.Context, eval *ulox.Eval, stdout io.Writer) *repl {
	eval.Out = &colorWriter{w: stdout, c: resultColor}
	eval.Opts.Diagnostics = &colorWriter{w: stdout, c: errorColor}

	r := &repl{
		ctx:    ctx,
		eval:   eval,
		out:    stdout,
		script: bytes.NewBuffer(nil),
	}
	r.commands = map[string]func(string) error{
		".commands": r.cmdCommands,
		".keywords": r.cmdKeywords,
		".chunk":    r.cmdChunk,
		".return":   r.cmdReturn,
		".reset":    func(string) error { return errReset },
		".exit":     func(string) error { return errExit },
	}
	r.suggestions = []suggest{
		{text: ".commands", description: "Print REPL commands"},
		{text: ".keywords", description: "Print Keywords"},
		{text: ".chunk", description: "Print Last Chunk"},
		{text: ".return", description: "Print Last Return Result"},
		{text: ".reset", description: "Reset"},
		{text: ".exit", description: "Exit"},
	}
	for _, kw := range token.Keywords() {
		r.suggestions = append(r.suggestions, suggest{text: kw, typ: "keyword"})
	}
	return r
}

func (r *repl) cmdCommands(_ string) error {
	r.printSuggestions(r.rangeSuggestions(
		func(s suggest) bool { return s.typ == "" },
	))
	return nil
}

func (r *repl) cmdKeywords(_ string) error {
	r.printSuggestions(r.rangeSuggestions(
		func(s suggest) bool { return s.typ == "keyword" },
	))
	return nil
}

func (r *repl) rangeSuggestions(filter func(suggest) bool) ([]suggest, int) {
	var suggs []suggest
	var maxtext int
	for _, v := range r.suggestions {
		if !filter(v) {
			continue
		}
		suggs = append(suggs, v)
		if maxtext < len(v.text) {
			maxtext = len(v.text)
		}
	}
	return suggs, maxtext
}

func (r *repl) printSuggestions(suggs []suggest, maxtext int) {
	for _, cmd := range suggs {
		_, _ = fmt.Fprint(r.out, cmd.text)
		if len(cmd.description) > 0 {
			_, _ = fmt.Fprint(r.out, strings.Repeat(" ", maxtext-len(cmd.text)))
			_, _ = fmt.Fprintf(r.out, "\t%v", cmd.description)
		}
		_, _ = fmt.Fprintln(r.out)
	}
}

func (r *repl) cmdChunk(_ string) error {
	if r.lastChunk == nil {
		_, _ = fmt.Fprintln(r.out, "<nil>")
		return nil
	}
	r.lastChunk.Disassemble(r.out, r.eval.Opts.Name)
	return nil
}

func (r *repl) cmdReturn(_ string) error {
	_, _ = fmt.Fprintf(r.out, "%s (%s)\n", r.lastResult, r.lastResult.TypeName())
	return nil
}

func (r *repl) execute(line string) error {
	switch {
	case !r.isMultiline && line == "":
		return nil
	case !r.isMultiline && len(line) > 0 && line[0] == '.':
		cmd := strings.Fields(line)[0]
		if fn, ok := r.commands[cmd]; ok {
			return fn(line)
		}
	case strings.HasSuffix(line, "\\"):
		r.isMultiline = true
		r.script.WriteString(line[:len(line)-1])
		r.script.WriteString("\n")
		return nil
	}

	r.script.WriteString(line)
	r.executeScript()

	r.isMultiline = false
	r.script.Reset()
	return nil
}

func (r *repl) executeScript() {
	ret, chunk, err := r.eval.Run(r.ctx, r.script.Bytes())
	if chunk != nil {
		r.lastChunk = chunk
	}
	if err != nil {
		// diagnostics are already printed
		if !errors.Is(err, ulox.ErrCompile) {
			_, _ = errorColor.Fprintf(r.out, "!   %v\n", err)
		}
		return
	}
	r.lastResult = ret
}

func (r *repl) prefix() string {
	if r.isMultiline {
		return promptPrefix2
	}
	return promptPrefix
}

func (r *repl) printInfo() {
	_, _ = infoColor.Fprintln(r.out, title, "Build:",
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	_, _ = infoColor.Fprintln(r.out, "Write .commands to list available commands")
	_, _ = infoColor.Fprintln(r.out, "Press Ctrl+D or write .exit command to exit")
	_, _ = fmt.Fprintln(r.out)
}

func (r *repl) complete(line string) (completions []string) {
	var contains []string
	for _, v := range r.suggestions {
		if strings.HasPrefix(v.text, line) {
			completions = append(completions, v.text)
		} else if strings.Contains(v.text, line) {
			contains = append(contains, v.text)
		}
	}
	completions = append(completions, contains...)
	return
}

func (r *repl) run(history io.Reader) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)
	line.SetCompleter(r.complete)
	_, err := line.ReadHistory(history)
	if err != nil {
		return &ulox.Error{Message: "failed history read", Cause: err}
	}
	r.printInfo()

	var str string

	for err == nil {
		str, err = line.Prompt(r.prefix())
		if err != nil {
			if err == io.EOF {
				err = nil
				break
			}
			if err == liner.ErrPromptAborted {
				err = errExit
				break
			}
			err = &ulox.Error{Message: "prompt error", Cause: err}
			break
		}
		err = r.execute(str)
		if err == nil && !r.isMultiline {
			if v := strings.TrimSpace(str); len(v) > 0 {
				line.AppendHistory(v)
			}
		}
	}
	return err
}

func runREPL(ctx context.Context, eval *ulox.Eval, stdout io.Writer) error {
	const history = "1 + 2 * 3\n" +
		"(1 + 2) * 3\n" +
		"-(4 / 8)\n" +
		"nil\n"

	for {
		err := newREPL(ctx, eval, stdout).run(strings.NewReader(history))
		switch err {
		case errReset:
			eval.LastChunk = nil
			continue
		case errExit:
			return nil
		}
		return err
	}
}
