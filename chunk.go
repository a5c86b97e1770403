// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ulox

import (
	"bytes"
	"fmt"
	"io"
)

// MaxConstants is the maximum number of constants in a Chunk, since constant
// indexes are encoded in a single byte.
const MaxConstants = 256

// Chunk holds compiled instructions, the source line of every instruction
// byte and the constant pool. A Chunk is not modified after compilation.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// NewChunk returns an empty Chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends a byte to the instructions and its line to the line table.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends v to the constant pool and returns its index. Callers
// must check MaxConstants.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Line returns the source line of the byte at offset, or 0 if offset is out of
// range.
func (c *Chunk) Line(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

// Instructions returns an iterator over the decoded instructions.
func (c *Chunk) Instructions() *InstructionIterator {
	return &InstructionIterator{code: c.Code}
}

// InstructionIterator decodes instructions from left to right.
type InstructionIterator struct {
	code   []byte
	offset int
}

// Next returns the offset and bytes of the next instruction. ok is false
// after the last instruction. A truncated trailing instruction is returned
// with the bytes available.
func (it *InstructionIterator) Next() (offset int, ins []byte, ok bool) {
	if it.offset >= len(it.code) {
		return it.offset, nil, false
	}
	offset = it.offset
	end := offset + InstructionWidth(it.code[offset])
	if end > len(it.code) {
		end = len(it.code)
	}
	it.offset = end
	return offset, it.code[offset:end:end], true
}

// Disassemble writes a human readable listing of the chunk to w.
func (c *Chunk) Disassemble(w io.Writer, name string) {
	_, _ = fmt.Fprintf(w, "== %s ==\n", name)
	it := c.Instructions()
	prev := -1
	for {
		offset, ins, ok := it.Next()
		if !ok {
			return
		}
		c.disassembleInstruction(w, prev, offset, ins)
		prev = offset
	}
}

func (c *Chunk) String() string {
	var buf bytes.Buffer
	c.Disassemble(&buf, "chunk")
	return buf.String()
}

// disassembleInstruction writes one instruction. prev is the offset of the
// instruction before it, or -1 for the first one.
func (c *Chunk) disassembleInstruction(w io.Writer, prev, offset int, ins []byte) {
	_, _ = fmt.Fprintf(w, "%04d ", offset)
	if prev >= 0 && c.Line(offset) == c.Line(prev) {
		_, _ = fmt.Fprint(w, "   | ")
	} else {
		_, _ = fmt.Fprintf(w, "%4d ", c.Line(offset))
	}

	op := ins[0]
	if !IsValidOpcode(op) {
		_, _ = fmt.Fprintf(w, "Unknown opcode %d\n", op)
		return
	}
	operands, _ := ReadOperands(OpcodeOperands[op], ins[1:], nil)
	if op != OpConstant {
		_, _ = fmt.Fprintln(w, OpcodeNames[op])
		return
	}
	if len(operands) == 0 {
		_, _ = fmt.Fprintf(w, "%-16s <truncated>\n", OpcodeNames[op])
		return
	}
	idx := operands[0]
	if idx >= len(c.Constants) {
		_, _ = fmt.Fprintf(w, "%-16s %4d <invalid>\n", OpcodeNames[op], idx)
		return
	}
	_, _ = fmt.Fprintf(w, "%-16s %4d '%s'\n", OpcodeNames[op], idx, c.Constants[idx])
}
