// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package encoder

import (
	"bytes"
	"errors"
	"io"

	"github.com/ozanh/ulox"
)

// EncodeChunkTo encodes given c to w io.Writer.
func EncodeChunkTo(c *ulox.Chunk, w io.Writer) error {
	return (*Chunk)(c).Encode(w)
}

// DecodeChunkFrom decodes *ulox.Chunk from given r io.Reader.
func DecodeChunkFrom(r io.Reader) (*ulox.Chunk, error) {
	var c Chunk
	if err := c.Decode(r); err != nil {
		return nil, err
	}
	return (*ulox.Chunk)(&c), nil
}

// Encode writes encoded data of Chunk to writer.
func (c *Chunk) Encode(w io.Writer) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return err
	}

	n, err := w.Write(data)
	if err != nil {
		return err
	}

	if n != len(data) {
		return errors.New("short write")
	}
	return nil
}

// Decode decodes Chunk data from the reader.
func (c *Chunk) Decode(r io.Reader) error {
	dst := bytes.NewBuffer(nil)
	if _, err := io.Copy(dst, r); err != nil {
		return err
	}
	return c.UnmarshalBinary(dst.Bytes())
}
