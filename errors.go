// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ulox

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrCompile is matched by every *CompileError with errors.Is.
	ErrCompile = &Error{Name: "CompileError"}

	// ErrType represents an operand type error.
	ErrType = &Error{Name: "TypeError"}

	// ErrStackOverflow represents a stack overflow error.
	ErrStackOverflow = &Error{Name: "StackOverflowError"}

	// ErrStackUnderflow is returned when a value is popped from an empty stack.
	ErrStackUnderflow = &Error{Name: "StackUnderflowError"}

	// ErrUnknownOpcode is returned when the VM reads an unrecognized opcode.
	ErrUnknownOpcode = &Error{Name: "UnknownOpcodeError"}

	// ErrInstructionOverrun is returned when execution runs past the end of
	// the instructions without returning.
	ErrInstructionOverrun = &Error{Name: "InstructionOverrunError"}

	// ErrInvalidConstant is returned for a constant index outside the pool.
	ErrInvalidConstant = &Error{Name: "InvalidConstantError"}

	// ErrInvalidChunk represents a missing Chunk.
	ErrInvalidChunk = &Error{Name: "InvalidChunkError"}
)

// Error represents an error with a name and a message.
type Error struct {
	Name    string
	Message string
	Cause   error
}

func (o *Error) Unwrap() error {
	return o.Cause
}

// Error implements error interface.
func (o *Error) Error() string {
	name := o.Name
	if name == "" {
		name = "error"
	}
	if o.Message == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, o.Message)
}

// NewError creates a new Error from o with the given messages, and sets o
// as the cause, so errors.Is matches o.
func (o *Error) NewError(messages ...string) *Error {
	return &Error{
		Name:    o.Name,
		Message: strings.Join(messages, " "),
		Cause:   o,
	}
}

// NewOperandTypeError creates a new Error from ErrType for operator op and the
// type names of its operands.
func NewOperandTypeError(op string, types ...string) *Error {
	if len(types) == 1 {
		return ErrType.NewError(
			fmt.Sprintf("operand of '%s' must be a number, found %s",
				op, types[0]))
	}
	return ErrType.NewError(
		fmt.Sprintf("operands of '%s' must be numbers, found %s",
			op, strings.Join(types, " and ")))
}

// RuntimeError represents an error raised while running a Chunk.
type RuntimeError struct {
	Err    *Error
	Line   int
	Offset int
}

func (o *RuntimeError) Unwrap() error {
	if o.Err != nil {
		return o.Err
	}
	return nil
}

// Error implements error interface.
func (o *RuntimeError) Error() string {
	if o.Err == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s\n[line %d] in script", o.Err.Error(), o.Line)
}

// Diagnostic is a single error reported while compiling.
type Diagnostic struct {
	Line    int
	Where   string
	Message string
}

// Error implements error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// CompileError holds all diagnostics reported during a compilation.
type CompileError struct {
	errs *multierror.Error
}

func newCompileError(errs *multierror.Error) *CompileError {
	errs.ErrorFormat = formatDiagnostics
	return &CompileError{errs: errs}
}

func formatDiagnostics(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

// Error implements error interface.
func (e *CompileError) Error() string {
	return e.errs.Error()
}

// Unwrap returns the underlying error chain. Individual diagnostics can be
// extracted with errors.As.
func (e *CompileError) Unwrap() error {
	return e.errs
}

// Is reports whether target is ErrCompile.
func (e *CompileError) Is(target error) bool {
	return target == ErrCompile
}

// Diagnostics returns the diagnostics in the order they were reported.
func (e *CompileError) Diagnostics() []*Diagnostic {
	out := make([]*Diagnostic, 0, e.errs.Len())
	for _, err := range e.errs.Errors {
		if d, ok := err.(*Diagnostic); ok {
			out = append(out, d)
		}
	}
	return out
}
