package hic

import (
	"bufio"
	"bytes"
	"io"
)

const (
	cursorBufferSize       = 64 * 1024
	bufferCursorBufferSize = 512
)

// Cursor is a seekable byte source with absolute addressing.
// Reads are buffered; every Seek drops the buffer.
// A Cursor is not safe for concurrent use.
type Cursor struct {
	r       io.ReadSeeker
	buf     *bufio.Reader
	pos     int64
	scratch [8]byte
}

func NewCursor(r io.ReadSeeker) *Cursor {
	return &Cursor{r: r, buf: bufio.NewReaderSize(r, cursorBufferSize)}
}

// NewBufferCursor returns a Cursor over an in-memory buffer.
func NewBufferCursor(b []byte) *Cursor {
	r := bytes.NewReader(b)
	return &Cursor{r: r, buf: bufio.NewReaderSize(r, bufferCursorBufferSize)}
}

// Offset returns the absolute position of the next byte to be read.
func (c *Cursor) Offset() int64 {
	return c.pos
}

// SeekTo moves to an absolute offset.
func (c *Cursor) SeekTo(offset int64) error {
	if offset < 0 {
		return ErrIO.WithMessage("negative seek").WithDetail("offset", offset)
	}
	if _, err := c.r.Seek(offset, io.SeekStart); err != nil {
		return ErrIO.WithCause(err).WithDetail("offset", offset)
	}
	c.buf.Reset(c.r)
	c.pos = offset
	return nil
}

// Read implements io.Reader so the primitive decoders can consume the cursor.
func (c *Cursor) Read(p []byte) (int, error) {
	n, err := c.buf.Read(p)
	c.pos += int64(n)
	return n, err
}

// ReadExactly reads n bytes or fails with ErrEOF.
func (c *Cursor) ReadExactly(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrIO.WithMessage("negative read length").WithDetail("length", n)
	}
	p := make([]byte, n)
	if _, err := io.ReadFull(c, p); err != nil {
		return nil, wrapReadErr(err, c.pos)
	}
	return p, nil
}

// Skip consumes n bytes.
func (c *Cursor) Skip(n int64) error {
	m, err := io.CopyN(io.Discard, c, n)
	if err != nil {
		return wrapReadErr(err, c.pos)
	}
	if m != n {
		return ErrEOF.WithDetail("offset", c.pos)
	}
	return nil
}

func wrapReadErr(err error, pos int64) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrEOF.WithCause(err).WithDetail("offset", pos)
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return ErrIO.WithCause(err).WithDetail("offset", pos)
}
