package wz

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor is a thin, bounds-checked reader over an in-memory copy of a WZ
// file. The original transcoder memory-maps the file and walks a raw
// pointer; opening and mapping the file is an external collaborator
// outside this package's scope (see SPEC_FULL.md), so Cursor instead wraps
// a byte slice obtained however the caller likes (os.ReadFile, a test
// fixture, ...) and offers the same tell/seek/skip/read primitives.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor wraps data for sequential, seekable reads starting at offset 0.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the size of the underlying region in bytes.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Tell returns the current read offset.
func (c *Cursor) Tell() int {
	return c.pos
}

// Seek moves the read offset to an absolute position.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		return fmt.Errorf("wz: seek to %d out of bounds (len %d)", off, len(c.data))
	}
	c.pos = off
	return nil
}

// Skip advances the read offset by n bytes (n may be negative).
func (c *Cursor) Skip(n int) error {
	return c.Seek(c.pos + n)
}

func (c *Cursor) require(n int) error {
	if c.pos+n > len(c.data) || c.pos+n < c.pos {
		return fmt.Errorf("wz: read of %d bytes at offset %d overruns region of length %d", n, c.pos, len(c.data))
	}
	return nil
}

// Bytes returns a view of the next n bytes without advancing the cursor.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	return c.data[c.pos : c.pos+n], nil
}

// ReadBytes reads and returns the next n bytes, advancing the cursor.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, err := c.Bytes(n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// ReadU8 reads an unsigned byte.
func (c *Cursor) ReadU8() (byte, error) {
	b, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadI8 reads a signed byte.
func (c *Cursor) ReadI8() (int8, error) {
	b, err := c.ReadU8()
	return int8(b), err
}

// ReadU16 reads a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI32 reads a little-endian int32.
func (c *Cursor) ReadI32() (int32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ReadU32 reads a little-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64 reads a little-endian IEEE-754 float64.
func (c *Cursor) ReadF64() (float64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadCint reads a WZ variable-length signed integer: one signed byte, or
// the sentinel -128 followed by a little-endian int32.
func (c *Cursor) ReadCint() (int32, error) {
	b, err := c.ReadI8()
	if err != nil {
		return 0, err
	}
	if b != -128 {
		return int32(b), nil
	}
	return c.ReadI32()
}
