package hic

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// hicWriter lays out a little-endian .hic image in memory.
type hicWriter struct {
	bytes.Buffer
	version int32
}

func (w *hicWriter) put(v interface{}) {
	if err := binary.Write(&w.Buffer, binary.LittleEndian, v); err != nil {
		panic(err)
	}
}

func (w *hicWriter) cstr(s string) {
	w.WriteString(s)
	w.WriteByte(0)
}

func (w *hicWriter) offset() int64 {
	return int64(w.Len())
}

// count writes an element count the way the footer stores it for this version.
func (w *hicWriter) count(n int) {
	if w.version > 8 {
		w.put(int64(n))
		return
	}
	w.put(int32(n))
}

func (w *hicWriter) value(v float64) {
	if w.version > 8 {
		w.put(float32(v))
		return
	}
	w.put(v)
}

func (w *hicWriter) patchInt64(at int64, v int64) {
	binary.LittleEndian.PutUint64(w.Bytes()[at:], uint64(v))
}

func compress(t testing.TB, p []byte) []byte {
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	_, err := zw.Write(p)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return b.Bytes()
}

// flag writes a block flag byte; zero selects the short layout.
func (w *hicWriter) flag(short bool) {
	if short {
		w.put(int8(0))
		return
	}
	w.put(int8(1))
}

func (w *hicWriter) blockPreamble(nRecords, binXOffset, binYOffset int32, shortCounts bool, encoding int8) {
	w.put(nRecords)
	w.put(binXOffset)
	w.put(binYOffset)
	w.flag(shortCounts)
	if w.version > 8 {
		w.flag(true)
		w.flag(true)
	}
	w.put(encoding)
}

func (w *hicWriter) counts(v float32, short bool) {
	if short {
		w.put(int16(v))
		return
	}
	w.put(v)
}

// legacyBlock encodes records as version 6 fixed records.
func legacyBlock(records []ContactRecord) []byte {
	w := &hicWriter{version: 6}
	w.put(int32(len(records)))
	for _, r := range records {
		w.put(r.BinX)
		w.put(r.BinY)
		w.put(r.Counts)
	}
	return w.Bytes()
}

// rowListBlock encodes records grouped by row, rows and columns in input order.
func rowListBlock(version int32, shortCounts bool, records []ContactRecord) []byte {
	xOff, yOff := records[0].BinX, records[0].BinY
	for _, r := range records {
		if r.BinX < xOff {
			xOff = r.BinX
		}
		if r.BinY < yOff {
			yOff = r.BinY
		}
	}
	var rows []int32
	byRow := make(map[int32][]ContactRecord)
	for _, r := range records {
		if _, ok := byRow[r.BinY]; !ok {
			rows = append(rows, r.BinY)
		}
		byRow[r.BinY] = append(byRow[r.BinY], r)
	}
	w := &hicWriter{version: version}
	w.blockPreamble(int32(len(records)), xOff, yOff, shortCounts, encodingRowList)
	w.put(int16(len(rows)))
	for _, y := range rows {
		w.put(int16(y - yOff))
		w.put(int16(len(byRow[y])))
		for _, r := range byRow[y] {
			w.put(int16(r.BinX - xOff))
			w.counts(r.Counts, shortCounts)
		}
	}
	return w.Bytes()
}

func denseBlock(version int32, shortCounts bool, binXOffset, binYOffset int32, width int16, values []float32) []byte {
	w := &hicWriter{version: version}
	w.blockPreamble(int32(len(values)), binXOffset, binYOffset, shortCounts, encodingDenseRow)
	w.put(int32(len(values)))
	w.put(width)
	for _, v := range values {
		w.counts(v, shortCounts)
	}
	return w.Bytes()
}

type fixtureBlock struct {
	id      int32
	payload []byte
}

type fixtureLevel struct {
	unit          string
	binSize       int32
	sumCounts     float32
	blockBinCount int32
	blockColumns  int32
	blocks        []fixtureBlock
}

type fixtureMatrix struct {
	c1, c2 int32
	levels []fixtureLevel
}

// fixture describes a small genome: All (100bp), chr1 (1000bp), chr2 (500bp),
// one BP resolution of 100 and KR vectors for chr1 and chr2.
type fixture struct {
	version  int32
	fragRes  []int32
	noNorm   bool
	matrices []fixtureMatrix
	kr       map[int32][]float64

	matrixPos map[string]int64
	normPos   map[int32]Index
	master    int64
}

var (
	chr1Records = map[int32][]ContactRecord{
		0: {{0, 0, 10}, {1, 2, 4}, {3, 4, 2}},
		1: {{5, 2, 6}},
		3: {{5, 5, 8}, {6, 6, 3}},
	}
	chr1chr2Records = map[int32][]ContactRecord{
		0: {{0, 0, 1}, {2, 3, 5}},
		1: {{7, 1, 2}},
	}
	nan32 = math.Float32frombits(floatNoDataBits)
)

func newFixture(t testing.TB, version int32) *fixture {
	f := &fixture{
		version: version,
		kr: map[int32][]float64{
			1: {2, 1, 1, 1, 1, 1, 0, 1, 1, 1},
			2: {0.5, 0.5, 0.5, 0.5, 0.5},
		},
	}
	encode := func(records []ContactRecord, short bool) []byte {
		if version < 7 {
			return compress(t, legacyBlock(records))
		}
		return compress(t, rowListBlock(version, short, records))
	}
	intra := []fixtureBlock{
		{0, encode(chr1Records[0], true)},
		{1, encode(chr1Records[1], false)},
	}
	if version < 7 {
		intra = append(intra, fixtureBlock{3, encode(chr1Records[3], false)})
	} else {
		// (6,5) and (5,6) are empty cells
		intra = append(intra, fixtureBlock{3, compress(t, denseBlock(version, false, 5, 5, 2, []float32{8, nan32, nan32, 3}))})
	}
	f.matrices = []fixtureMatrix{
		{1, 1, []fixtureLevel{
			{unit: "FRAG", binSize: 1, blockBinCount: 5, blockColumns: 2, blocks: []fixtureBlock{{0, []byte{1, 2, 3}}}},
			{unit: "BP", binSize: 100, sumCounts: 33, blockBinCount: 5, blockColumns: 2, blocks: intra},
		}},
		{1, 2, []fixtureLevel{
			{unit: "BP", binSize: 100, sumCounts: 8, blockBinCount: 5, blockColumns: 2, blocks: []fixtureBlock{
				{0, encode(chr1chr2Records[0], true)},
				{1, encode(chr1chr2Records[1], true)},
			}},
		}},
	}
	return f
}

func (f *fixture) writeHeader(w *hicWriter) {
	w.WriteString("HIC\x00")
	w.put(f.version)
	w.put(int64(0)) // master index, patched
	w.cstr("hg19")
	if f.version > 8 {
		w.put(int64(1234))
		w.put(int64(56))
	}
	w.put(int32(1))
	w.cstr("software")
	w.cstr("straw test")
	chrs := []Chr{{"All", 100}, {"chr1", 1000}, {"chr2", 500}}
	w.put(int32(len(chrs)))
	for _, c := range chrs {
		w.cstr(c.Name)
		if f.version > 8 {
			w.put(c.Length)
		} else {
			w.put(int32(c.Length))
		}
	}
	w.put(int32(1))
	w.put(int32(100))
	w.put(int32(len(f.fragRes)))
	for _, r := range f.fragRes {
		w.put(r)
	}
	if len(f.fragRes) > 0 {
		for i := range chrs {
			w.put(int32(i + 1))
			for j := 0; j <= i; j++ {
				w.put(int32(10 * (j + 1)))
			}
		}
	}
}

func (f *fixture) writeMatrix(w *hicWriter, m fixtureMatrix) {
	positions := make(map[string]map[int32]int64)
	for _, l := range m.levels {
		pos := make(map[int32]int64)
		for _, b := range l.blocks {
			pos[b.id] = w.offset()
			w.Write(b.payload)
		}
		positions[l.unit] = pos
	}
	f.matrixPos[pairKey(m.c1, m.c2)] = w.offset()
	w.put(m.c1)
	w.put(m.c2)
	w.put(int32(len(m.levels)))
	for i, l := range m.levels {
		w.cstr(l.unit)
		w.put(int32(i))
		w.put(l.sumCounts)
		w.put(float32(0))
		w.put(float32(0))
		w.put(float32(0))
		w.put(l.binSize)
		w.put(l.blockBinCount)
		w.put(l.blockColumns)
		w.put(int32(len(l.blocks)))
		for _, b := range l.blocks {
			w.put(b.id)
			w.put(positions[l.unit][b.id])
			w.put(int32(len(b.payload)))
		}
	}
}

func (f *fixture) writeFooter(w *hicWriter) {
	f.master = w.offset()
	w.count(0) // nBytes, unused
	w.put(int32(len(f.matrices)))
	for _, m := range f.matrices {
		k := pairKey(m.c1, m.c2)
		w.cstr(k)
		w.put(f.matrixPos[k])
		w.put(int32(100))
	}
	// observed expected values
	w.put(int32(1))
	w.cstr("BP")
	w.put(int32(100))
	w.count(3)
	for _, v := range []float64{4, 2, 1} {
		w.value(v)
	}
	w.put(int32(1))
	w.put(int32(1))
	w.value(2)
	if f.noNorm {
		return
	}
	// normalized expected values
	w.put(int32(1))
	w.cstr("KR")
	w.cstr("BP")
	w.put(int32(100))
	w.count(2)
	w.value(1)
	w.value(0.5)
	w.put(int32(0))

	w.put(int32(len(f.kr)))
	for _, chr := range []int32{1, 2} {
		w.cstr("KR")
		w.put(chr)
		w.cstr("BP")
		w.put(int32(100))
		w.put(f.normPos[chr].Position)
		w.count(int(f.normPos[chr].Size))
	}
}

func (f *fixture) bytes() []byte {
	w := &hicWriter{version: f.version}
	f.matrixPos = make(map[string]int64)
	f.normPos = make(map[int32]Index)
	f.writeHeader(w)
	for _, m := range f.matrices {
		f.writeMatrix(w, m)
	}
	if !f.noNorm {
		for _, chr := range []int32{1, 2} {
			start := w.offset()
			w.count(len(f.kr[chr]))
			for _, v := range f.kr[chr] {
				w.value(v)
			}
			f.normPos[chr] = Index{start, w.offset() - start}
		}
	}
	f.writeFooter(w)
	w.patchInt64(8, f.master)
	return w.Bytes()
}

func openFixture(t testing.TB, version int32) *HiC {
	h, err := DataReader(bytes.NewReader(newFixture(t, version).bytes()))
	require.NoError(t, err)
	return h
}
