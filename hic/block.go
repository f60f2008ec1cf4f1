package hic

import (
	"bytes"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

const (
	// dense blocks mark empty cells with these values
	shortNoData      = -32768
	floatNoDataBits  = 0x7fc00000
	encodingRowList  = 1
	encodingDenseRow = 2
)

// blockDecoder is one of the three record layouts a block can use.
type blockDecoder interface {
	decode(c *Cursor) ([]ContactRecord, error)
}

// legacyDecoder reads version 6 blocks: fixed 12 byte records.
type legacyDecoder struct {
	nRecords int32
}

// blockHeader is the preamble of version 7+ blocks.
type blockHeader struct {
	nRecords     int32
	binXOffset   int32
	binYOffset   int32
	useShort     bool
	useShortBinX bool
	useShortBinY bool
	encoding     int8
}

// rowListDecoder reads encoding 1: rows of (x, count) columns.
type rowListDecoder struct {
	blockHeader
}

// denseListDecoder reads encoding 2: a dense w wide grid of counts.
type denseListDecoder struct {
	blockHeader
}

// DecodeBlock fetches, inflates and decodes one block. A zero sized block is
// empty, not an error.
func DecodeBlock(c *Cursor, b BlockIndex, version int32) ([]ContactRecord, error) {
	if err := checkBlockSize(b); err != nil {
		return nil, err
	}
	if b.Size == 0 {
		return nil, nil
	}
	compressed, err := fetchBlock(c, b)
	if err != nil {
		return nil, err
	}
	return decodeBlockBytes(compressed, version)
}

func checkBlockSize(b BlockIndex) error {
	if b.Size < 0 {
		return ErrCorruptBlock.WithMessage("negative block size").WithDetail("block", b.Id).WithDetail("size", b.Size)
	}
	return nil
}

func fetchBlock(c *Cursor, b BlockIndex) ([]byte, error) {
	if err := c.SeekTo(b.Position); err != nil {
		return nil, err
	}
	return c.ReadExactly(int(b.Size))
}

func inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, ErrCorruptBlock.WithCause(err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, ErrCorruptBlock.WithCause(err)
	}
	return data, nil
}

func decodeBlockBytes(compressed []byte, version int32) ([]ContactRecord, error) {
	data, err := inflate(compressed)
	if err != nil {
		return nil, err
	}
	c := NewBufferCursor(data)
	d, err := newBlockDecoder(c, version)
	if err != nil {
		return nil, corrupt(err)
	}
	records, err := d.decode(c)
	if err != nil {
		return nil, corrupt(err)
	}
	return records, nil
}

func corrupt(err error) error {
	switch ErrorCode(err) {
	case CodeUnsupportedEncoding, CodeCorruptBlock:
		return err
	}
	return ErrCorruptBlock.WithCause(err)
}

// newBlockDecoder reads the block preamble and picks the layout.
func newBlockDecoder(c *Cursor, version int32) (blockDecoder, error) {
	nRecords, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	if version < 7 {
		return legacyDecoder{nRecords}, nil
	}
	h := blockHeader{nRecords: nRecords, useShortBinX: true, useShortBinY: true}
	if h.binXOffset, err = readInt32(c); err != nil {
		return nil, err
	}
	if h.binYOffset, err = readInt32(c); err != nil {
		return nil, err
	}
	// a zero flag means short counts
	if h.useShort, err = readFlag(c); err != nil {
		return nil, err
	}
	if version > 8 {
		if h.useShortBinX, err = readFlag(c); err != nil {
			return nil, err
		}
		if h.useShortBinY, err = readFlag(c); err != nil {
			return nil, err
		}
	}
	if h.encoding, err = readInt8(c); err != nil {
		return nil, err
	}
	switch h.encoding {
	case encodingRowList:
		return rowListDecoder{h}, nil
	case encodingDenseRow:
		return denseListDecoder{h}, nil
	}
	return nil, ErrUnsupportedEncoding.WithDetail("encoding", h.encoding)
}

func readFlag(c *Cursor) (bool, error) {
	v, err := readInt8(c)
	return v == 0, err
}

func (d legacyDecoder) decode(c *Cursor) ([]ContactRecord, error) {
	if err := checkCount(int64(d.nRecords), c); err != nil {
		return nil, err
	}
	records := make([]ContactRecord, 0, capHint(int64(d.nRecords)))
	for i := int32(0); i < d.nRecords; i++ {
		binX, err := readInt32(c)
		if err != nil {
			return nil, err
		}
		binY, err := readInt32(c)
		if err != nil {
			return nil, err
		}
		counts, err := readFloat32(c)
		if err != nil {
			return nil, err
		}
		records = append(records, ContactRecord{binX, binY, counts})
	}
	return records, nil
}

func (h blockHeader) readCounts(c *Cursor) (float32, bool, error) {
	if h.useShort {
		v, err := readInt16(c)
		return float32(v), v == shortNoData, err
	}
	v, err := readFloat32(c)
	return v, math.Float32bits(v) == floatNoDataBits, err
}

// readBin reads a bin (or bin count) that is int16 unless the block says long.
func readBin(c *Cursor, short bool) (int32, error) {
	if short {
		v, err := readInt16(c)
		return int32(v), err
	}
	return readInt32(c)
}

func (d rowListDecoder) decode(c *Cursor) ([]ContactRecord, error) {
	records := make([]ContactRecord, 0, capHint(int64(d.nRecords)))
	rowCount, err := readBin(c, d.useShortBinY)
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < rowCount; i++ {
		y, err := readBin(c, d.useShortBinY)
		if err != nil {
			return nil, err
		}
		binY := d.binYOffset + y
		colCount, err := readBin(c, d.useShortBinX)
		if err != nil {
			return nil, err
		}
		for j := int32(0); j < colCount; j++ {
			x, err := readBin(c, d.useShortBinX)
			if err != nil {
				return nil, err
			}
			counts, _, err := d.readCounts(c)
			if err != nil {
				return nil, err
			}
			records = append(records, ContactRecord{d.binXOffset + x, binY, counts})
		}
	}
	return records, nil
}

func (d denseListDecoder) decode(c *Cursor) ([]ContactRecord, error) {
	nPts, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	if err := checkCount(int64(nPts), c); err != nil {
		return nil, err
	}
	w, err := readInt16(c)
	if err != nil {
		return nil, err
	}
	if w <= 0 && nPts > 0 {
		return nil, ErrCorruptBlock.WithMessage("dense block with no width").WithDetail("width", w)
	}
	records := make([]ContactRecord, 0, capHint(int64(nPts)))
	for i := int32(0); i < nPts; i++ {
		row := i / int32(w)
		col := i - row*int32(w)
		counts, missing, err := d.readCounts(c)
		if err != nil {
			return nil, err
		}
		if missing {
			continue
		}
		records = append(records, ContactRecord{d.binXOffset + col, d.binYOffset + row, counts})
	}
	return records, nil
}
