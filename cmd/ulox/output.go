// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

//go:build !js
// +build !js

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ozanh/ulox/parser"
	"github.com/ozanh/ulox/token"
)

var (
	errorColor  = color.New(color.FgRed)
	resultColor = color.New(color.FgGreen)
	infoColor   = color.New(color.Faint)
)

// colorWriter writes everything in the color c unless colors are disabled.
type colorWriter struct {
	w io.Writer
	c *color.Color
}

func (cw *colorWriter) Write(p []byte) (int, error) {
	if _, err := cw.c.Fprint(cw.w, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// printTokens lists the tokens of src one per line, printing the line number
// only when it changes.
func printTokens(w io.Writer, src []byte) {
	line := -1
	for _, tok := range parser.NewScanner(src).ScanAll() {
		if tok.Line != line {
			_, _ = fmt.Fprintf(w, "%4d ", tok.Line)
			line = tok.Line
		} else {
			_, _ = fmt.Fprint(w, "   | ")
		}
		switch tok.Kind {
		case token.Error:
			_, _ = errorColor.Fprintf(w, "%-10s %s\n", tok.Kind, tok.Lexeme)
		default:
			_, _ = fmt.Fprintf(w, "%-10s '%s'\n", tok.Kind, tok.Lexeme)
		}
	}
}
