package ulox_test

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/ozanh/ulox"
)

func compileOpts(diag *bytes.Buffer) CompilerOptions {
	opts := DefaultCompilerOptions
	opts.Diagnostics = diag
	return opts
}

func expectCompile(t *testing.T, script string, code []byte, consts ...Value) {
	t.Helper()
	var diag bytes.Buffer
	chunk, err := Compile([]byte(script), compileOpts(&diag))
	require.NoError(t, err, "script: %s", script)
	require.Empty(t, diag.String())
	require.Equal(t, code, chunk.Code, "script: %s\n%s", script, chunk)
	require.Len(t, chunk.Lines, len(chunk.Code))
	if len(consts) == 0 {
		require.Empty(t, chunk.Constants)
	} else {
		require.Equal(t, consts, chunk.Constants)
	}
}

func expectCompileError(t *testing.T, script string, diagnostics ...string) {
	t.Helper()
	var diag bytes.Buffer
	chunk, err := Compile([]byte(script), compileOpts(&diag))
	require.Error(t, err, "script: %s", script)
	require.Nil(t, chunk)
	require.True(t, errors.Is(err, ErrCompile))

	var cerr *CompileError
	require.True(t, errors.As(err, &cerr))
	var got []string
	for _, d := range cerr.Diagnostics() {
		got = append(got, d.Error())
	}
	require.Equal(t, diagnostics, got, "script: %s", script)
	require.Equal(t, strings.Join(diagnostics, "\n"), err.Error())
	require.Equal(t, strings.Join(diagnostics, "\n")+"\n", diag.String())
}

func TestCompilerLiterals(t *testing.T) {
	expectCompile(t, `1`,
		[]byte{OpConstant, 0, OpReturn}, Number(1))
	expectCompile(t, `2.5`,
		[]byte{OpConstant, 0, OpReturn}, Number(2.5))
	expectCompile(t, `true`, []byte{OpTrue, OpReturn})
	expectCompile(t, `false`, []byte{OpFalse, OpReturn})
	expectCompile(t, `nil`, []byte{OpNil, OpReturn})
	expectCompile(t, `((nil))`, []byte{OpNil, OpReturn})
	expectCompile(t, `// comment
	3 // three`, []byte{OpConstant, 0, OpReturn}, Number(3))
}

func TestCompilerOperators(t *testing.T) {
	expectCompile(t, `-1`,
		[]byte{OpConstant, 0, OpNegate, OpReturn}, Number(1))
	expectCompile(t, `--1`,
		[]byte{OpConstant, 0, OpNegate, OpNegate, OpReturn}, Number(1))
	expectCompile(t, `1 + 2`,
		[]byte{OpConstant, 0, OpConstant, 1, OpAdd, OpReturn},
		Number(1), Number(2))
	expectCompile(t, `1 - 2`,
		[]byte{OpConstant, 0, OpConstant, 1, OpSubtract, OpReturn},
		Number(1), Number(2))
	expectCompile(t, `1 * 2`,
		[]byte{OpConstant, 0, OpConstant, 1, OpMultiply, OpReturn},
		Number(1), Number(2))
	expectCompile(t, `1 / 2`,
		[]byte{OpConstant, 0, OpConstant, 1, OpDivide, OpReturn},
		Number(1), Number(2))
	// constants are not shared
	expectCompile(t, `1 + 1`,
		[]byte{OpConstant, 0, OpConstant, 1, OpAdd, OpReturn},
		Number(1), Number(1))
}

func TestCompilerPrecedence(t *testing.T) {
	expectCompile(t, `2 + 3 * 4`,
		[]byte{OpConstant, 0, OpConstant, 1, OpConstant, 2,
			OpMultiply, OpAdd, OpReturn},
		Number(2), Number(3), Number(4))
	expectCompile(t, `(2 + 3) * 4`,
		[]byte{OpConstant, 0, OpConstant, 1, OpAdd,
			OpConstant, 2, OpMultiply, OpReturn},
		Number(2), Number(3), Number(4))
	// left associative
	expectCompile(t, `1 - 2 - 3`,
		[]byte{OpConstant, 0, OpConstant, 1, OpSubtract,
			OpConstant, 2, OpSubtract, OpReturn},
		Number(1), Number(2), Number(3))
	expectCompile(t, `-2 + 3`,
		[]byte{OpConstant, 0, OpNegate, OpConstant, 1, OpAdd, OpReturn},
		Number(2), Number(3))
	expectCompile(t, `-(2 + 3)`,
		[]byte{OpConstant, 0, OpConstant, 1, OpAdd, OpNegate, OpReturn},
		Number(2), Number(3))
	expectCompile(t, `2 * -3`,
		[]byte{OpConstant, 0, OpConstant, 1, OpNegate, OpMultiply, OpReturn},
		Number(2), Number(3))
}

func TestCompilerLines(t *testing.T) {
	var diag bytes.Buffer
	chunk, err := Compile([]byte("1 +\n2\n\n"), compileOpts(&diag))
	require.NoError(t, err)
	require.Equal(t,
		[]byte{OpConstant, 0, OpConstant, 1, OpAdd, OpReturn}, chunk.Code)
	require.Equal(t, []int{1, 1, 2, 2, 2, 4}, chunk.Lines)
}

func TestCompilerErrors(t *testing.T) {
	expectCompileError(t, ``,
		"[line 1] Error at end: Expected expression.")
	expectCompileError(t, `1 +`,
		"[line 1] Error at end: Expected expression.")
	expectCompileError(t, `(1`,
		"[line 1] Error at end: Expect ')' after expression.")
	expectCompileError(t, `1 2`,
		"[line 1] Error at '2': Expect end of expression.")
	expectCompileError(t, `1 < 2`,
		"[line 1] Error at '<': Expect end of expression.")
	expectCompileError(t, `*1`,
		"[line 1] Error at '*': Expected expression.")
	expectCompileError(t, `print`,
		"[line 1] Error at 'print': Expected expression.")
	expectCompileError(t, `"str"`,
		`[line 1] Error at '"str"': Expected expression.`)
	expectCompileError(t, "\n\n)",
		"[line 3] Error at ')': Expected expression.")
	expectCompileError(t, `"abc`,
		"[line 1] Error: Unterminated string.")
	expectCompileError(t, "1 +\n\"abc\n",
		"[line 3] Error: Unterminated string.")
	expectCompileError(t, `1 @`,
		"[line 1] Error: Unexpected character.")
}

func TestCompilerPanicMode(t *testing.T) {
	// only the first error is reported, the rest are suppressed
	expectCompileError(t, `@ @`,
		"[line 1] Error: Unexpected character.")
	expectCompileError(t, `) ) (`,
		"[line 1] Error at ')': Expected expression.")
	expectCompileError(t, "1 2\n@",
		"[line 1] Error at '2': Expect end of expression.")
}

func TestCompilerTooManyConstants(t *testing.T) {
	nums := make([]string, MaxConstants+1)
	for i := range nums {
		nums[i] = strconv.Itoa(i)
	}

	var diag bytes.Buffer
	chunk, err := Compile([]byte(strings.Join(nums[:MaxConstants], " + ")),
		compileOpts(&diag))
	require.NoError(t, err)
	require.Len(t, chunk.Constants, MaxConstants)
	require.Equal(t, Number(255), chunk.Constants[255])

	expectCompileError(t, strings.Join(nums, " + "),
		"[line 1] Error at '256': Too many constants in one chunk.")

	c := NewCompiler([]byte(strings.Join(nums, "+")), compileOpts(&diag))
	chunk, err = c.Compile()
	require.Error(t, err)
	require.Nil(t, chunk)
}

func TestCompilerInfiniteLiteral(t *testing.T) {
	var diag bytes.Buffer
	chunk, err := Compile([]byte(strings.Repeat("9", 400)), compileOpts(&diag))
	require.NoError(t, err)
	require.Equal(t, "inf", chunk.Constants[0].String())
}

func TestCompilerTrace(t *testing.T) {
	var diag, trace bytes.Buffer
	opts := TraceCompilerOptions
	opts.Trace = &trace
	opts.Diagnostics = &diag
	opts.Name = "traced"
	_, err := Compile([]byte("1 + 2"), opts)
	require.NoError(t, err)

	out := trace.String()
	require.Contains(t, out, `TOKEN    1 NUMBER "1"`)
	require.Contains(t, out, "TOKEN    1 +\n")
	require.Contains(t, out, "TOKEN    1 EOF\n")
	require.Contains(t, out, "Precedence Assignment {\n")
	require.Contains(t, out, "\n. Precedence Factor {\n")
	require.Contains(t, out, "CONST 0001 2\n")
	require.Contains(t, out, "EMIT  0004 OP_ADD []\n")
	require.Contains(t, out, "EMIT  0000 OP_CONSTANT [0]\n")
	require.Contains(t, out, ""+
		"== traced ==\n"+
		"0000    1 OP_CONSTANT         0 '1'\n"+
		"0002    | OP_CONSTANT         1 '2'\n"+
		"0004    | OP_ADD\n"+
		"0005    | OP_RETURN\n")
	require.Empty(t, diag.String())

	// a failed compilation prints no listing
	trace.Reset()
	_, err = Compile([]byte("1 +"), opts)
	require.Error(t, err)
	require.NotContains(t, trace.String(), "== traced ==")
	require.Equal(t, "[line 1] Error at end: Expected expression.\n",
		diag.String())
}
