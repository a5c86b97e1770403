// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package encoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strconv"

	"github.com/ozanh/ulox"
)

// Chunk signature and version are written to the header of encoded Chunk.
// Chunk is encoded with current ChunkVersion and its format.
const (
	ChunkSignature uint32 = 0x554C58
	ChunkVersion   uint16 = 1
)

const headerSize = 6

// Types implementing encoding.BinaryMarshaler encoding.BinaryUnmarshaler.
type (
	Chunk ulox.Chunk
	Value ulox.Value
)

const (
	binNilV1 byte = iota
	binTrueV1
	binFalseV1
	binNumberV1
)

// Chunk fields.
const (
	fieldCode byte = iota
	fieldLines
	fieldConstants
)

var (
	errVarintTooSmall = errors.New("read varint error: buf too small")
	errVarintOverflow = errors.New("read varint error: value larger than 64 bits (overflow)")
)

func decodeError(msg string) error {
	return &ulox.Error{
		Name:    "encoder.Chunk.UnmarshalBinary",
		Message: msg,
	}
}

// IsEncoded reports whether data starts with an encoded Chunk header.
func IsEncoded(data []byte) bool {
	return len(data) >= headerSize &&
		binary.BigEndian.Uint32(data[0:4]) == ChunkSignature
}

// MarshalBinary implements encoding.BinaryMarshaler
func (c *Chunk) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	putChunkHeader(&buf)

	// Code, field #0
	if len(c.Code) > 0 {
		buf.WriteByte(fieldCode)
		writeVarint(&buf, int64(len(c.Code)))
		buf.Write(c.Code)
	}

	// Lines, field #1
	if len(c.Lines) > 0 {
		buf.WriteByte(fieldLines)
		writeVarint(&buf, int64(len(c.Lines)))
		for _, line := range c.Lines {
			writeVarint(&buf, int64(line))
		}
	}

	// Constants, field #2
	if len(c.Constants) > 0 {
		buf.WriteByte(fieldConstants)
		writeVarint(&buf, int64(len(c.Constants)))
		for _, v := range c.Constants {
			data, err := Value(v).MarshalBinary()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (c *Chunk) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return decodeError("invalid data")
	}

	sig := binary.BigEndian.Uint32(data[0:4])
	if sig != ChunkSignature {
		return decodeError("signature mismatch")
	}

	version := binary.BigEndian.Uint16(data[4:6])
	switch version {
	case ChunkVersion:
		var out Chunk
		if err := out.chunkV1Decoder(bytes.NewBuffer(data[headerSize:])); err != nil {
			return err
		}
		if len(out.Lines) != len(out.Code) {
			return decodeError("line table does not match code size")
		}
		if len(out.Constants) > ulox.MaxConstants {
			return decodeError("too many constants")
		}
		*c = out
		return nil
	default:
		return decodeError("unsupported version:" + strconv.Itoa(int(version)))
	}
}

func putChunkHeader(w *bytes.Buffer) {
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header[0:4], ChunkSignature)
	binary.BigEndian.PutUint16(header[4:6], ChunkVersion)
	w.Write(header)
}

func (c *Chunk) chunkV1Decoder(r *bytes.Buffer) error {
	seen := make(map[byte]bool)
	for {
		field, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if seen[field] {
			return decodeError("duplicate field:" + strconv.Itoa(int(field)))
		}
		seen[field] = true

		size, err := readSize(r)
		if err != nil {
			return err
		}

		switch field {
		case fieldCode:
			c.Code = make([]byte, size)
			if _, err = io.ReadFull(r, c.Code); err != nil {
				return err
			}
		case fieldLines:
			c.Lines = make([]int, size)
			for i := range c.Lines {
				line, err := readVarint(r)
				if err != nil {
					return err
				}
				c.Lines[i] = int(line)
			}
		case fieldConstants:
			c.Constants = make([]ulox.Value, size)
			for i := range c.Constants {
				v, err := DecodeValue(r)
				if err != nil {
					return err
				}
				c.Constants[i] = v
			}
		default:
			return errors.New("unknown field:" + strconv.Itoa(int(field)))
		}
	}
}

// readSize reads a length prefix and checks it against the remaining input.
func readSize(r *bytes.Buffer) (int, error) {
	v, err := readVarint(r)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.New("negative value")
	}
	if v > int64(r.Len()) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(v), nil
}

// DecodeValue decodes and returns a Value from a reader which is encoded with
// MarshalBinary.
func DecodeValue(r io.ByteReader) (ulox.Value, error) {
	btype, err := r.ReadByte()
	if err != nil {
		return ulox.Nil, err
	}

	switch btype {
	case binNilV1:
		return ulox.Nil, nil
	case binTrueV1:
		return ulox.True, nil
	case binFalseV1:
		return ulox.False, nil
	case binNumberV1:
		size, err := r.ReadByte()
		if err != nil {
			return ulox.Nil, err
		}
		if size > binary.MaxVarintLen64 {
			return ulox.Nil, errVarintOverflow
		}
		buf := make([]byte, 2+size)
		buf[0] = btype
		buf[1] = size
		for i := 2; i < len(buf); i++ {
			if buf[i], err = r.ReadByte(); err != nil {
				return ulox.Nil, err
			}
		}
		var v Value
		if err = v.UnmarshalBinary(buf); err != nil {
			return ulox.Nil, err
		}
		return ulox.Value(v), nil
	}
	return ulox.Nil, errors.New(
		"decode error: unknown encoding type:" + strconv.Itoa(int(btype)),
	)
}

// MarshalBinary implements encoding.BinaryMarshaler
func (o Value) MarshalBinary() ([]byte, error) {
	v := ulox.Value(o)
	switch v.Type() {
	case ulox.ValNil:
		return []byte{binNilV1}, nil
	case ulox.ValBool:
		if v.AsBool() {
			return []byte{binTrueV1}, nil
		}
		return []byte{binFalseV1}, nil
	case ulox.ValNumber:
		buf := make([]byte, 2+binary.MaxVarintLen64)
		buf[0] = binNumberV1
		bits := math.Float64bits(v.AsNumber())
		if bits == 0 {
			buf[1] = 0
			return buf[:2], nil
		}
		n := binary.PutUvarint(buf[2:], bits)
		buf[1] = byte(n)
		return buf[:2+n], nil
	}
	return nil, errors.New("unknown value type:" + v.TypeName())
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *Value) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return errors.New("invalid ulox.Value data")
	}

	switch data[0] {
	case binNilV1:
		*o = Value(ulox.Nil)
		return nil
	case binTrueV1:
		*o = Value(ulox.True)
		return nil
	case binFalseV1:
		*o = Value(ulox.False)
		return nil
	case binNumberV1:
	default:
		return errors.New("invalid ulox.Value data")
	}

	if len(data) < 2 {
		return errors.New("invalid ulox.Value data size")
	}
	size := int(data[1])
	if size == 0 {
		*o = Value(ulox.Number(0))
		return nil
	}
	if len(data) < 2+size {
		return errors.New("invalid ulox.Value data size")
	}

	bits, n := binary.Uvarint(data[2 : 2+size])
	if n < 1 {
		if n == 0 {
			return errors.New("ulox.Value data buffer too small")
		}
		return errors.New("ulox.Value number larger than 64 bits")
	}
	*o = Value(ulox.Number(math.Float64frombits(bits)))
	return nil
}

func writeVarint(w *bytes.Buffer, v int64) {
	buf := make([]byte, 1+binary.MaxVarintLen64)
	if v == 0 {
		w.WriteByte(0)
		return
	}
	n := binary.PutVarint(buf[1:], v)
	buf[0] = byte(n)
	w.Write(buf[:1+n])
}

func readVarint(r *bytes.Buffer) (value int64, err error) {
	var n byte
	n, err = r.ReadByte()
	if err != nil {
		return
	}
	if int(n) > binary.MaxVarintLen64 {
		return 0, errVarintOverflow
	}
	if n == 0 {
		return
	}

	data := make([]byte, n)
	if _, err = io.ReadFull(r, data); err != nil {
		return
	}

	var offset int
	value, offset = binary.Varint(data)
	if offset < 1 {
		if offset == 0 {
			err = errVarintTooSmall
			return
		}
		err = errVarintOverflow
		return
	}
	return
}
