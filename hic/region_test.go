package hic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlocksForRegion(t *testing.T) {
	tests := []struct {
		name     string
		r1, r2   BinRange
		bbc, bcc int32
		intra    bool
		want     []int32
	}{
		{"single block", BinRange{0, 3}, BinRange{0, 3}, 5, 2, false, []int32{0}},
		{"end crosses boundary", BinRange{0, 4}, BinRange{0, 0}, 5, 2, false, []int32{0, 1}},
		{"inter rectangle", BinRange{5, 9}, BinRange{0, 3}, 5, 3, false, []int32{1, 2}},
		{"intra adds transpose", BinRange{5, 8}, BinRange{0, 3}, 5, 3, true, []int32{1, 3}},
		{"diagonal", BinRange{150, 250}, BinRange{150, 250}, 100, 2, true, []int32{3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BlocksForRegion(tt.r1, tt.r2, tt.bbc, tt.bcc, tt.intra))
		})
	}
}

func TestBlocksForRegionGrid(t *testing.T) {
	// a 2x2 grid only has blocks 0..3
	z := &ZoomLevel{BlockBinCount: 100, BlockColumnCount: 2, BlockIndexes: map[int32]BlockIndex{}}
	for i := int32(0); i < 4; i++ {
		z.BlockIndexes[i] = BlockIndex{i, int64(i) * 10, 10}
	}
	var present []int32
	for _, n := range BlocksForRegion(BinRange{150, 250}, BinRange{150, 250}, z.BlockBinCount, z.BlockColumnCount, true) {
		if z.Block(n).Size > 0 {
			present = append(present, n)
		}
	}
	require.Equal(t, []int32{3}, present)
}

func TestBlocksForRegionSymmetric(t *testing.T) {
	a := BlocksForRegion(BinRange{0, 12}, BinRange{20, 31}, 10, 4, true)
	b := BlocksForRegion(BinRange{20, 31}, BinRange{0, 12}, 10, 4, true)
	require.Equal(t, a, b)
}

func TestBlocksForRegionV9Intra(t *testing.T) {
	// a region on the diagonal starts at depth 0
	blocks := BlocksForRegionV9Intra(BinRange{0, 10}, BinRange{0, 10}, 5, 2)
	require.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6, 7}, blocks)

	// far from the diagonal only deeper bands are touched
	blocks = BlocksForRegionV9Intra(BinRange{0, 1}, BinRange{1000, 1001}, 5, 10)
	for _, b := range blocks {
		require.GreaterOrEqual(t, b/10, int32(6))
	}
	require.Equal(t, int64(0), depth(0, 5))
	require.Equal(t, int64(1), depth(-10, 5))
}
