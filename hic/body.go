package hic

import (
	"bytes"
	"fmt"
)

// blockIndexSize is the on-disk size of one block descriptor: int32 id, int64 position, int32 size.
const blockIndexSize = 16

// Body is the head of a chromosome pair matrix.
type Body struct {
	Chr1Idx int32
	Chr2Idx int32
	NRes    int32
}

func (b *Body) String() string {
	var s bytes.Buffer
	s.WriteString("Body\n")
	s.WriteString(fmt.Sprintf("\tchr1Idx\t%d\n", b.Chr1Idx))
	s.WriteString(fmt.Sprintf("\tchr2Idx\t%d\n", b.Chr2Idx))
	s.WriteString(fmt.Sprintf("\tnResolutions\t%d\n", b.NRes))
	return s.String()
}

// ZoomLevel is one (unit, resolution) tier of a matrix with its block index.
type ZoomLevel struct {
	Unit             string
	ResIdx           int32
	SumCounts        float32
	BinSize          int32
	BlockBinCount    int32
	BlockColumnCount int32
	BlockIndexes     map[int32]BlockIndex
}

func (z *ZoomLevel) String() string {
	var s bytes.Buffer
	s.WriteString("ZoomLevel\n")
	s.WriteString("\tunit\t")
	s.WriteString(z.Unit)
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("\tresIdx\t%d\n", z.ResIdx))
	s.WriteString(fmt.Sprintf("\tsumCounts\t%.2f\n", z.SumCounts))
	s.WriteString(fmt.Sprintf("\tbinSize\t%d\n", z.BinSize))
	s.WriteString(fmt.Sprintf("\tblockBinCount\t%d\n", z.BlockBinCount))
	s.WriteString(fmt.Sprintf("\tblockColumnCount\t%d\n", z.BlockColumnCount))
	s.WriteString(fmt.Sprintf("\tblockCount\t%d\n", len(z.BlockIndexes)))
	return s.String()
}

// Block returns the descriptor of a block number. Blocks missing from the
// index are empty: a zero sized descriptor.
func (z *ZoomLevel) Block(n int32) BlockIndex {
	if v, ok := z.BlockIndexes[n]; ok {
		return v
	}
	return BlockIndex{Id: n}
}

// ReadMatrix walks the zoom levels of the matrix at offset and returns the one
// matching unit and resolution. Levels before it are read and dropped so the
// cursor stays aligned.
func ReadMatrix(c *Cursor, offset int64, unit string, resolution int32) (*ZoomLevel, error) {
	b, err := readBody(c, offset)
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < b.NRes; i++ {
		z, err := readZoomLevel(c, unit, resolution)
		if err != nil {
			return nil, err
		}
		if z != nil {
			return z, nil
		}
	}
	return nil, ErrZoomLevelNotFound.WithDetail("unit", unit).WithDetail("resolution", resolution).
		WithDetail("chr1Idx", b.Chr1Idx).WithDetail("chr2Idx", b.Chr2Idx)
}

func readBody(c *Cursor, offset int64) (*Body, error) {
	if err := c.SeekTo(offset); err != nil {
		return nil, err
	}
	b := &Body{}
	var err error
	if b.Chr1Idx, err = readInt32(c); err != nil {
		return nil, err
	}
	if b.Chr2Idx, err = readInt32(c); err != nil {
		return nil, err
	}
	if b.NRes, err = readInt32(c); err != nil {
		return nil, err
	}
	return b, nil
}

// readZoomLevel returns nil, nil for a level that does not match.
func readZoomLevel(c *Cursor, unit string, resolution int32) (*ZoomLevel, error) {
	z := &ZoomLevel{}
	var err error
	if z.Unit, err = readCString(c); err != nil {
		return nil, err
	}
	if z.ResIdx, err = readInt32(c); err != nil {
		return nil, err
	}
	if z.SumCounts, err = readFloat32(c); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ { // occupiedCellCount, stdDev, percent95
		if _, err := readFloat32(c); err != nil {
			return nil, err
		}
	}
	if z.BinSize, err = readInt32(c); err != nil {
		return nil, err
	}
	if z.BlockBinCount, err = readInt32(c); err != nil {
		return nil, err
	}
	if z.BlockColumnCount, err = readInt32(c); err != nil {
		return nil, err
	}
	blockCount, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	if err := checkCount(int64(blockCount), c); err != nil {
		return nil, err
	}
	if z.Unit != unit || z.BinSize != resolution {
		// fixed size descriptors of a level we do not need
		if err := c.Skip(int64(blockCount) * blockIndexSize); err != nil {
			return nil, err
		}
		return nil, nil
	}
	z.BlockIndexes = make(map[int32]BlockIndex, capHint(int64(blockCount)))
	for j := int32(0); j < blockCount; j++ {
		blockID, err := readInt32(c)
		if err != nil {
			return nil, err
		}
		blockPosition, err := readInt64(c)
		if err != nil {
			return nil, err
		}
		blockSize, err := readInt32(c)
		if err != nil {
			return nil, err
		}
		z.BlockIndexes[blockID] = BlockIndex{blockID, blockPosition, blockSize}
	}
	if z.BlockBinCount <= 0 {
		return nil, ErrZoomLevelNotFound.WithMessage("zoom level has no block bin count").
			WithDetail("blockBinCount", z.BlockBinCount)
	}
	return z, nil
}
