// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package ulox is a single pass compiler and a stack based virtual machine
// for a small subset of Lox: numeric, boolean and nil literals, grouping,
// unary negation and the four arithmetic operators.
package ulox

import (
	"io"
)

// Interpret compiles src and runs it on a new VM which writes the result to
// out. A *CompileError is returned if compilation fails, in which case
// nothing is executed.
func Interpret(src []byte, opts CompilerOptions, out io.Writer) (Value, error) {
	chunk, err := Compile(src, opts)
	if err != nil {
		return Nil, err
	}
	return NewVM(chunk).SetOutput(out).Run()
}
