package hic

import (
	"encoding/binary"
	"io"
	"math"
)

// Little-endian primitive reads over a Cursor. Every short read surfaces as ErrEOF.

// fixed reads exactly len(p) bytes into the cursor's scratch buffer.
func fixed(c *Cursor, n int) ([]byte, error) {
	p := c.scratch[:n]
	if _, err := io.ReadFull(c, p); err != nil {
		return nil, wrapReadErr(err, c.Offset())
	}
	return p, nil
}

func readInt8(c *Cursor) (int8, error) {
	p, err := fixed(c, 1)
	if err != nil {
		return 0, err
	}
	return int8(p[0]), nil
}

func readInt16(c *Cursor) (int16, error) {
	p, err := fixed(c, 2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(p)), nil
}

func readInt32(c *Cursor) (int32, error) {
	p, err := fixed(c, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(p)), nil
}

func readInt64(c *Cursor) (int64, error) {
	p, err := fixed(c, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(p)), nil
}

func readFloat32(c *Cursor) (float32, error) {
	p, err := fixed(c, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(p)), nil
}

func readFloat64(c *Cursor) (float64, error) {
	p, err := fixed(c, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
}

// readCString reads a NUL terminated string. A missing terminator is ErrEOF.
func readCString(c *Cursor) (string, error) {
	b, err := c.buf.ReadBytes(0)
	c.pos += int64(len(b))
	if err != nil {
		return "", wrapReadErr(err, c.Offset())
	}
	return string(b[:len(b)-1]), nil
}

// readCount reads an element count: int32, widened to int64 for version 9 files.
func readCount(c *Cursor, version int32) (int64, error) {
	if version > 8 {
		return readInt64(c)
	}
	n, err := readInt32(c)
	return int64(n), err
}

// readValue reads a vector element: float64, narrowed to float32 for version 9 files.
func readValue(c *Cursor, version int32) (float64, error) {
	if version > 8 {
		v, err := readFloat32(c)
		return float64(v), err
	}
	return readFloat64(c)
}

func checkCount(n int64, c *Cursor) error {
	if n < 0 {
		return ErrFormat.WithMessage("negative element count").WithDetail("offset", c.Offset()).WithDetail("count", n)
	}
	return nil
}
