// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ulox

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Eval compiles and runs scripts with the same options, and keeps the last
// compiled Chunk. Every Run uses a new Chunk and a new VM.
// Warning: Eval is not safe to use concurrently.
type Eval struct {
	Opts      CompilerOptions
	Out       io.Writer
	Logger    zerolog.Logger
	StackSize int
	LastChunk *Chunk
}

// NewEval returns new Eval object. If out is nil, os.Stdout is used.
func NewEval(opts CompilerOptions, out io.Writer) *Eval {
	if out == nil {
		out = os.Stdout
	}
	return &Eval{
		Opts:      opts,
		Out:       out,
		Logger:    zerolog.Nop(),
		StackSize: StackSize,
	}
}

// Run compiles, runs given script and returns the value it returned along
// with the compiled Chunk. The chunk is nil if compilation fails.
func (r *Eval) Run(ctx context.Context, script []byte) (Value, *Chunk, error) {
	chunk, err := Compile(script, r.Opts)
	if err != nil {
		return Nil, nil, err
	}
	r.LastChunk = chunk

	ret, err := r.RunChunk(ctx, chunk)
	return ret, chunk, err
}

// RunChunk runs an already compiled chunk, for example one that was decoded
// from a file, on a new VM.
func (r *Eval) RunChunk(ctx context.Context, chunk *Chunk) (Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// compilation may take longer than expected or context may be canceled
	// for any reason before run
	select {
	case <-ctx.Done():
		return Nil, ctx.Err()
	default:
	}

	vm := NewVM(chunk).
		SetOutput(r.Out).
		SetLogger(r.Logger).
		SetStackSize(r.StackSize)
	ret, err := vm.Run()
	if err != nil {
		return Nil, err
	}
	return ret, nil
}
