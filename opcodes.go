// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ulox

// Opcode represents a single byte operation code.
type Opcode = byte

// List of opcodes
const (
	OpUnknown Opcode = iota
	OpReturn
	OpConstant
	OpNegate
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNil
	OpTrue
	OpFalse

	numOpcodes
)

// OpcodeNames are string representation of opcodes.
var OpcodeNames = [...]string{
	OpUnknown:  "OP_UNKNOWN",
	OpReturn:   "OP_RETURN",
	OpConstant: "OP_CONSTANT",
	OpNegate:   "OP_NEGATE",
	OpAdd:      "OP_ADD",
	OpSubtract: "OP_SUBTRACT",
	OpMultiply: "OP_MULTIPLY",
	OpDivide:   "OP_DIVIDE",
	OpNil:      "OP_NIL",
	OpTrue:     "OP_TRUE",
	OpFalse:    "OP_FALSE",
}

// OpcodeOperands is the width of each operand in bytes.
var OpcodeOperands = [...][]int{
	OpUnknown:  {},
	OpReturn:   {},
	OpConstant: {1}, // constant index
	OpNegate:   {},
	OpAdd:      {},
	OpSubtract: {},
	OpMultiply: {},
	OpDivide:   {},
	OpNil:      {},
	OpTrue:     {},
	OpFalse:    {},
}

// opcodeWidths holds the total instruction width including the opcode byte.
var opcodeWidths [256]int

func init() {
	for i := range opcodeWidths {
		opcodeWidths[i] = 1
	}
	for op, operands := range OpcodeOperands {
		for _, w := range operands {
			opcodeWidths[op] += w
		}
	}
}

// IsValidOpcode returns true if op is a known opcode other than OpUnknown.
func IsValidOpcode(op byte) bool {
	return op != OpUnknown && op < numOpcodes
}

// OpcodeName returns the mnemonic of op.
func OpcodeName(op byte) string {
	if op < numOpcodes {
		return OpcodeNames[op]
	}
	return OpcodeNames[OpUnknown]
}

// InstructionWidth returns the total width of the instruction starting with
// op. Unrecognized opcodes have width 1.
func InstructionWidth(op byte) int {
	return opcodeWidths[op]
}

// ReadOperands reads operands from the bytecode. Given operands slice is used to
// fill operands and is returned to allocate less.
func ReadOperands(numOperands []int, ins []byte, operands []int) ([]int, int) {
	operands = operands[:0]
	var offset int
	for _, width := range numOperands {
		if offset+width > len(ins) {
			break
		}
		switch width {
		case 1:
			operands = append(operands, int(ins[offset]))
		case 2:
			operands = append(operands, int(ins[offset+1])|int(ins[offset])<<8)
		}
		offset += width
	}
	return operands, offset
}
