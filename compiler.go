// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ulox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/ozanh/ulox/parser"
	"github.com/ozanh/ulox/token"
)

// Compiler error messages.
const (
	MsgExpectExpression = "Expected expression."
	MsgExpectRightParen = "Expect ')' after expression."
	MsgExpectEnd        = "Expect end of expression."
	MsgInvalidNumber    = "Invalid number"
	MsgTooManyConstants = "Too many constants in one chunk."
)

// CompilerOptions represents customizable options for Compile().
type CompilerOptions struct {
	// Name is the chunk name printed in traces.
	Name string
	// Diagnostics receives error reports as they happen. If nil, os.Stdout
	// is used.
	Diagnostics   io.Writer
	Trace         io.Writer
	TraceScanner  bool
	TraceCompiler bool
}

var (
	// DefaultCompilerOptions holds default Compiler options.
	DefaultCompilerOptions = CompilerOptions{
		Name: "script",
	}
	// TraceCompilerOptions holds Compiler options to print trace output
	// to stdout for Scanner and Compiler.
	TraceCompilerOptions = CompilerOptions{
		Name:          "script",
		Trace:         os.Stdout,
		TraceScanner:  true,
		TraceCompiler: true,
	}
)

// Precedence is the binding power of an operator, from lowest to highest.
type Precedence int

// List of precedences.
const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

var precedenceNames = [...]string{
	PrecNone:       "None",
	PrecAssignment: "Assignment",
	PrecOr:         "Or",
	PrecAnd:        "And",
	PrecEquality:   "Equality",
	PrecComparison: "Comparison",
	PrecTerm:       "Term",
	PrecFactor:     "Factor",
	PrecUnary:      "Unary",
	PrecCall:       "Call",
	PrecPrimary:    "Primary",
}

func (p Precedence) String() string {
	if 0 <= p && int(p) < len(precedenceNames) {
		return precedenceNames[p]
	}
	return "Precedence(" + strconv.Itoa(int(p)) + ")"
}

type parseFn func(*Compiler)

type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   Precedence
}

// rules is the Pratt table. It is filled in init, because the parse
// functions refer back to the table.
var rules [token.NumKinds]parseRule

func init() {
	rules = [token.NumKinds]parseRule{
		token.LeftParen: {prefix: (*Compiler).grouping},
		token.Minus:     {prefix: (*Compiler).unary, infix: (*Compiler).binary, prec: PrecTerm},
		token.Plus:      {infix: (*Compiler).binary, prec: PrecTerm},
		token.Slash:     {infix: (*Compiler).binary, prec: PrecFactor},
		token.Star:      {infix: (*Compiler).binary, prec: PrecFactor},
		token.Number:    {prefix: (*Compiler).number},
		token.False:     {prefix: (*Compiler).literal},
		token.True:      {prefix: (*Compiler).literal},
		token.Nil:       {prefix: (*Compiler).literal},
	}
}

// Compiler parses the source with one token of lookahead and emits
// instructions into a Chunk while it recognizes the grammar.
type Compiler struct {
	scanner   *parser.Scanner
	previous  token.Token
	current   token.Token
	hadError  bool
	panicMode bool
	chunk     *Chunk
	errs      *multierror.Error
	opts      CompilerOptions
	diag      io.Writer
	trace     io.Writer
	traceScan bool
	indent    int
}

// NewCompiler creates a new Compiler object for the given source.
func NewCompiler(src []byte, opts CompilerOptions) *Compiler {
	if opts.Name == "" {
		opts.Name = DefaultCompilerOptions.Name
	}
	diag := opts.Diagnostics
	if diag == nil {
		diag = os.Stdout
	}
	var trace io.Writer
	if opts.TraceCompiler {
		trace = opts.Trace
	}
	return &Compiler{
		scanner:   parser.NewScanner(src),
		chunk:     NewChunk(),
		opts:      opts,
		diag:      diag,
		trace:     trace,
		traceScan: opts.TraceScanner && opts.Trace != nil,
	}
}

// Compile compiles the given source to a Chunk. Diagnostics are written to
// opts.Diagnostics as they are found; if any was reported, a *CompileError
// is returned and the chunk is discarded.
func Compile(src []byte, opts CompilerOptions) (*Chunk, error) {
	return NewCompiler(src, opts).Compile()
}

// Compile parses a single expression followed by the end of input and
// returns the finished Chunk. A Compiler must not be reused.
func (c *Compiler) Compile() (*Chunk, error) {
	c.advance()
	c.expression()
	c.consume(token.EOF, MsgExpectEnd)
	c.emitOp(OpReturn)

	if c.hadError {
		return nil, newCompileError(c.errs)
	}
	if c.trace != nil {
		c.chunk.Disassemble(c.trace, c.opts.Name)
	}
	return c.chunk, nil
}

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Scan()
		if c.traceScan {
			_, _ = fmt.Fprintf(c.opts.Trace, "TOKEN %4d %s\n",
				c.current.Line, c.current)
		}
		if c.current.Kind != token.Error {
			return
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(kind token.Kind, msg string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	if c.trace != nil {
		defer untracec(tracec(c, "Precedence "+prec.String()))
	}
	c.advance()
	prefix := rules[c.previous.Kind].prefix
	if prefix == nil {
		c.error(MsgExpectExpression)
		return
	}
	prefix(c)

	for prec <= rules[c.current.Kind].prec {
		c.advance()
		rules[c.previous.Kind].infix(c)
	}
}

func (c *Compiler) number() {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	// out of range literals load as infinity
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		c.error(MsgInvalidNumber)
		return
	}
	c.emitConstant(Number(v))
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RightParen, MsgExpectRightParen)
}

func (c *Compiler) unary() {
	kind := c.previous.Kind
	c.parsePrecedence(PrecUnary)
	switch kind {
	case token.Minus:
		c.emitOp(OpNegate)
	}
}

func (c *Compiler) binary() {
	kind := c.previous.Kind
	c.parsePrecedence(rules[kind].prec + 1)
	switch kind {
	case token.Plus:
		c.emitOp(OpAdd)
	case token.Minus:
		c.emitOp(OpSubtract)
	case token.Star:
		c.emitOp(OpMultiply)
	case token.Slash:
		c.emitOp(OpDivide)
	}
}

func (c *Compiler) literal() {
	switch c.previous.Kind {
	case token.False:
		c.emitOp(OpFalse)
	case token.True:
		c.emitOp(OpTrue)
	case token.Nil:
		c.emitOp(OpNil)
	}
}

func (c *Compiler) emitConstant(v Value) {
	c.emitOp(OpConstant, c.makeConstant(v))
}

func (c *Compiler) makeConstant(v Value) int {
	if len(c.chunk.Constants) >= MaxConstants {
		c.error(MsgTooManyConstants)
		return 0
	}
	index := c.chunk.AddConstant(v)
	if c.trace != nil {
		c.printTrace(fmt.Sprintf("CONST %04d %s", index, v))
	}
	return index
}

func (c *Compiler) emitOp(op Opcode, operands ...int) {
	pos := len(c.chunk.Code)
	line := c.previous.Line
	c.chunk.Write(op, line)
	for _, operand := range operands {
		c.chunk.Write(byte(operand), line)
	}
	if c.trace != nil {
		c.printTrace(fmt.Sprintf("EMIT  %04d %s %v",
			pos, OpcodeName(op), operands))
	}
}

func (c *Compiler) error(msg string) {
	c.errorAt(c.previous, msg)
}

func (c *Compiler) errorAtCurrent(msg string) {
	c.errorAt(c.current, msg)
}

// TODO: clear panicMode at statement boundaries once the grammar has
// statements; a single expression has no point to resynchronize at.
func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	d := &Diagnostic{Line: tok.Line, Message: msg}
	switch tok.Kind {
	case token.EOF:
		d.Where = " at end"
	case token.Error:
	default:
		d.Where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	_, _ = fmt.Fprintln(c.diag, d.Error())
	c.errs = multierror.Append(c.errs, d)
}

func (c *Compiler) printTrace(a ...interface{}) {
	const (
		dots = ". . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . "
		n    = len(dots)
	)

	i := 2 * c.indent
	for i > n {
		_, _ = fmt.Fprint(c.trace, dots)
		i -= n
	}
	_, _ = fmt.Fprint(c.trace, dots[0:i])
	_, _ = fmt.Fprintln(c.trace, a...)
}

func tracec(c *Compiler, msg string) *Compiler {
	c.printTrace(msg, "{")
	c.indent++
	return c
}

func untracec(c *Compiler) {
	c.indent--
	c.printTrace("}")
}
