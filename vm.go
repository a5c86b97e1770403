// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ulox

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// StackSize is the default capacity of the operand stack.
const StackSize = 256

// VM executes the instructions of a Chunk.
type VM struct {
	chunk  *Chunk
	ip     int
	sp     int
	stack  []Value
	out    io.Writer
	logger zerolog.Logger
}

// NewVM creates a VM for the given Chunk. The VM writes returned values to
// os.Stdout unless SetOutput is called.
func NewVM(chunk *Chunk) *VM {
	return &VM{
		chunk:  chunk,
		stack:  make([]Value, StackSize),
		out:    os.Stdout,
		logger: zerolog.Nop(),
	}
}

// SetOutput sets the writer that receives the returned value.
func (vm *VM) SetOutput(w io.Writer) *VM {
	if w == nil {
		w = io.Discard
	}
	vm.out = w
	return vm
}

// SetLogger sets the logger. Each executed instruction is logged at trace
// level with the operand stack.
func (vm *VM) SetLogger(logger zerolog.Logger) *VM {
	vm.logger = logger
	return vm
}

// SetStackSize sets the capacity of the operand stack. Values less than 1 are
// ignored.
func (vm *VM) SetStackSize(size int) *VM {
	if size > 0 {
		vm.stack = make([]Value, size)
	}
	return vm
}

// Run executes the chunk from its first instruction until the return
// instruction, writes the returned value followed by a newline to the output
// and returns it. Errors raised while executing are of type *RuntimeError.
func (vm *VM) Run() (Value, error) {
	if vm.chunk == nil {
		return Nil, ErrInvalidChunk
	}
	vm.ip = 0
	vm.sp = 0

	ret, err := vm.run()
	if err != nil {
		return Nil, err
	}
	if _, err := fmt.Fprintln(vm.out, ret); err != nil {
		return Nil, err
	}
	return ret, nil
}

func (vm *VM) run() (Value, error) {
	code := vm.chunk.Code
	for {
		start := vm.ip
		if start >= len(code) {
			return Nil, vm.newError(start, ErrInstructionOverrun.NewError(
				fmt.Sprintf("no return instruction before offset %d", start)))
		}
		op := code[vm.ip]
		vm.ip++

		if e := vm.logger.Trace(); e.Enabled() {
			e.Int("offset", start).
				Str("op", OpcodeName(op)).
				Str("stack", vm.stackString()).
				Msg("exec")
		}

		var err *Error
		switch op {
		case OpConstant:
			if vm.ip >= len(code) {
				err = ErrInstructionOverrun.NewError(
					fmt.Sprintf("missing operand of %s", OpcodeNames[op]))
				break
			}
			idx := int(code[vm.ip])
			vm.ip++
			if idx >= len(vm.chunk.Constants) {
				err = ErrInvalidConstant.NewError(
					fmt.Sprintf("constant index %d, pool size %d",
						idx, len(vm.chunk.Constants)))
				break
			}
			err = vm.push(vm.chunk.Constants[idx])
		case OpNil:
			err = vm.push(Nil)
		case OpTrue:
			err = vm.push(True)
		case OpFalse:
			err = vm.push(False)
		case OpNegate:
			var v Value
			if v, err = vm.pop(); err != nil {
				break
			}
			if !v.IsNumber() {
				err = NewOperandTypeError("-", v.TypeName())
				break
			}
			err = vm.push(Number(-v.AsNumber()))
		case OpAdd, OpSubtract, OpMultiply, OpDivide:
			err = vm.binaryOp(op)
		case OpReturn:
			v, err := vm.pop()
			if err != nil {
				return Nil, vm.newError(start, err)
			}
			vm.logger.Debug().Str("value", v.String()).Msg("return")
			return v, nil
		default:
			err = ErrUnknownOpcode.NewError(
				fmt.Sprintf("opcode %d at offset %d", op, start))
		}
		if err != nil {
			return Nil, vm.newError(start, err)
		}
	}
}

var binaryOpSymbols = [...]string{
	OpAdd:      "+",
	OpSubtract: "-",
	OpMultiply: "*",
	OpDivide:   "/",
}

func (vm *VM) binaryOp(op Opcode) *Error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	if !a.IsNumber() || !b.IsNumber() {
		return NewOperandTypeError(binaryOpSymbols[op],
			a.TypeName(), b.TypeName())
	}

	x, y := a.AsNumber(), b.AsNumber()
	var r float64
	switch op {
	case OpAdd:
		r = x + y
	case OpSubtract:
		r = x - y
	case OpMultiply:
		r = x * y
	case OpDivide:
		r = x / y
	}
	return vm.push(Number(r))
}

func (vm *VM) push(v Value) *Error {
	if vm.sp >= len(vm.stack) {
		return ErrStackOverflow.NewError(
			fmt.Sprintf("stack capacity %d exceeded", len(vm.stack)))
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return nil
}

func (vm *VM) pop() (Value, *Error) {
	if vm.sp == 0 {
		return Nil, ErrStackUnderflow.NewError("pop from empty stack")
	}
	vm.sp--
	return vm.stack[vm.sp], nil
}

func (vm *VM) stackString() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vm.stack[:vm.sp] {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (vm *VM) newError(offset int, err *Error) *RuntimeError {
	return &RuntimeError{
		Err:    err,
		Line:   vm.chunk.Line(offset),
		Offset: offset,
	}
}
