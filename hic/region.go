package hic

import (
	"math"
	"sort"
)

// BlocksForRegion returns the block numbers covering bins r1 (columns, x) by r2
// (rows, y), ascending. Intra-chromosomal matrices store one triangle only, so
// for them the transposed rectangle is added as well.
func BlocksForRegion(r1, r2 BinRange, blockBinCount, blockColumnCount int32, intra bool) []int32 {
	bbc := int64(blockBinCount)
	bcc := int64(blockColumnCount)
	col1 := r1.Start / bbc
	col2 := (r1.End + 1) / bbc
	row1 := r2.Start / bbc
	row2 := (r2.End + 1) / bbc

	set := make(map[int32]struct{})
	for r := row1; r <= row2; r++ {
		for c := col1; c <= col2; c++ {
			set[int32(r*bcc+c)] = struct{}{}
		}
	}
	if intra {
		for r := col1; r <= col2; r++ {
			for c := row1; c <= row2; c++ {
				set[int32(r*bcc+c)] = struct{}{}
			}
		}
	}
	return sortedBlocks(set)
}

// BlocksForRegionV9Intra maps an intra-chromosomal region for version 9 files,
// whose blocks tile the matrix along the diagonal: the column is the position
// along the diagonal, the row the log2 distance band from it.
func BlocksForRegionV9Intra(r1, r2 BinRange, blockBinCount, blockColumnCount int32) []int32 {
	bbc := int64(blockBinCount)
	bcc := int64(blockColumnCount)
	x1, x2, y1, y2 := r1.Start, r1.End, r2.Start, r2.End

	lowerPAD := (x1 + y1) / 2 / bbc
	higherPAD := (x2+y2)/2/bbc + 1
	nearer := depth(x1-y2, bbc)
	further := depth(x2-y1, bbc)

	nearerDepth := nearer
	if further < nearerDepth {
		nearerDepth = further
	}
	// the region crosses the diagonal
	if (x1 > y2 && x2 < y1) || (x2 > y1 && x1 < y2) {
		nearerDepth = 0
	}
	furtherDepth := nearer
	if further > furtherDepth {
		furtherDepth = further
	}
	furtherDepth++

	set := make(map[int32]struct{})
	for d := nearerDepth; d <= furtherDepth; d++ {
		for pad := lowerPAD; pad <= higherPAD; pad++ {
			set[int32(d*bcc+pad)] = struct{}{}
		}
	}
	return sortedBlocks(set)
}

func depth(distance int64, bbc int64) int64 {
	if distance < 0 {
		distance = -distance
	}
	return int64(math.Log2(1 + float64(distance)/math.Sqrt2/float64(bbc)))
}

func sortedBlocks(set map[int32]struct{}) []int32 {
	blocks := make([]int32, 0, len(set))
	for k := range set {
		blocks = append(blocks, k)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	return blocks
}
