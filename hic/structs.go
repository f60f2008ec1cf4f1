package hic

import (
	"strconv"
)

type Chr struct {
	Name   string
	Length int64
}

// Index locates a variable sized record (matrix, norm vector) in the file.
type Index struct {
	Position int64
	Size     int64
}

type BlockIndex struct {
	Id       int32
	Position int64
	Size     int32
}

// ContactRecord is one decoded cell of a block, in bin coordinates.
type ContactRecord struct {
	BinX   int32
	BinY   int32
	Counts float32
}

// Position is one query result in base pair (or fragment) coordinates,
// ordered as the loci were passed to the query.
type Position struct {
	X     int64
	Y     int64
	Value float64
}

// BinRange is an inclusive range of bins.
type BinRange struct {
	Start int64
	End   int64
}

func pairKey(c1, c2 int32) string {
	return strconv.Itoa(int(c1)) + "_" + strconv.Itoa(int(c2))
}

// preallocation cap for counts read from the file
const maxPrealloc = 1 << 16

func capHint(n int64) int {
	if n < 0 {
		return 0
	}
	if n > maxPrealloc {
		return maxPrealloc
	}
	return int(n)
}
