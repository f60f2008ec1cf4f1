package hic

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/aidenlab/straw/hic/matrixtype"
	"github.com/aidenlab/straw/hic/normtype"
	"github.com/aidenlab/straw/hic/unit"
	"github.com/pkg/errors"
)

// FooterQuery selects what ReadFooter looks up in the master index. C1 <= C2.
type FooterQuery struct {
	Version    int32
	Master     int64
	C1         int32
	C2         int32
	Norm       string
	Unit       string
	Resolution int32
	MatrixType int
}

// FooterResult is the part of the footer one query needs.
type FooterResult struct {
	MatrixPos int64
	C1Norm    *Index    // nil when Norm is NONE
	C2Norm    *Index    // nil when Norm is NONE
	Expected  []float64 // intra-chromosomal oe/expected queries only
}

func (q FooterQuery) wantsExpected() bool {
	return q.C1 == q.C2 && (q.MatrixType == matrixtype.OE || q.MatrixType == matrixtype.EXPECTED)
}

// ReadFooter scans the master index for the C1_C2 matrix and, when a
// normalization is requested, walks the expected value blocks to reach the
// normalization vector directory. Every record is read, never skipped by size.
func ReadFooter(c *Cursor, q FooterQuery) (*FooterResult, error) {
	if err := c.SeekTo(q.Master); err != nil {
		return nil, err
	}
	if _, err := readCount(c, q.Version); err != nil { // nBytes
		return nil, err
	}
	nEntries, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	key := pairKey(q.C1, q.C2)
	found := false
	r := &FooterResult{}
	for i := int32(0); i < nEntries; i++ {
		k, err := readCString(c)
		if err != nil {
			return nil, err
		}
		pos, err := readInt64(c)
		if err != nil {
			return nil, err
		}
		if _, err := readInt32(c); err != nil {
			return nil, err
		}
		if k == key {
			r.MatrixPos = pos
			found = true
		}
	}
	if !found {
		return nil, ErrPairNotFound.WithDetail("key", key)
	}
	if q.Norm == "NONE" && (q.MatrixType == matrixtype.OBSERVED || q.C1 != q.C2) {
		return r, nil
	}

	var expected *ExpectedValueFunc
	keep := func(t, u string, binSize int32) bool {
		return q.wantsExpected() && t == q.Norm && u == q.Unit && binSize == q.Resolution
	}
	if err := readExpectedValueBlock(c, q.Version, false, keep, func(e *ExpectedValueFunc) {
		expected = e
	}); err != nil {
		return nil, errors.Wrap(err, "reading expected values")
	}
	if q.Norm == "NONE" {
		if expected == nil {
			return nil, ErrNormVectorNotFound.WithMessage("expected values not found").
				WithDetail("unit", q.Unit).WithDetail("resolution", q.Resolution)
		}
		r.Expected = expected.ForChromosome(q.C1)
		return r, nil
	}
	if err := readExpectedValueBlock(c, q.Version, true, keep, func(e *ExpectedValueFunc) {
		expected = e
	}); err != nil {
		return nil, errors.Wrap(err, "reading normalized expected values")
	}
	if q.wantsExpected() {
		if expected == nil {
			return nil, ErrNormVectorNotFound.WithMessage("normalized expected values not found").
				WithDetail("norm", q.Norm).WithDetail("unit", q.Unit).WithDetail("resolution", q.Resolution)
		}
		r.Expected = expected.ForChromosome(q.C1)
	}

	nEntries, err = readInt32(c)
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < nEntries; i++ {
		k, idx, err := readNormVectorEntry(c, q.Version)
		if err != nil {
			return nil, err
		}
		if k.NormType != q.Norm || k.Unit != q.Unit || k.Resolution != q.Resolution {
			continue
		}
		if k.ChrIdx == q.C1 {
			r.C1Norm = &Index{idx.Position, idx.Size}
		}
		if k.ChrIdx == q.C2 {
			r.C2Norm = &Index{idx.Position, idx.Size}
		}
	}
	if r.C1Norm == nil || r.C2Norm == nil {
		return nil, ErrNormVectorNotFound.WithDetail("norm", q.Norm).WithDetail("key", key).
			WithDetail("unit", q.Unit).WithDetail("resolution", q.Resolution)
	}
	return r, nil
}

func readExpectedValueBlock(c *Cursor, version int32, withType bool, keep func(string, string, int32) bool, found func(*ExpectedValueFunc)) error {
	n, err := readInt32(c)
	if err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		e, err := readExpectedValueFunc(c, version, withType, keep)
		if err != nil {
			return err
		}
		if e != nil {
			found(e)
		}
	}
	return nil
}

func readNormVectorEntry(c *Cursor, version int32) (NormVectorKey, Index, error) {
	var k NormVectorKey
	var idx Index
	var err error
	if k.NormType, err = readCString(c); err != nil {
		return k, idx, err
	}
	if k.ChrIdx, err = readInt32(c); err != nil {
		return k, idx, err
	}
	if k.Unit, err = readCString(c); err != nil {
		return k, idx, err
	}
	if k.Resolution, err = readInt32(c); err != nil {
		return k, idx, err
	}
	if idx.Position, err = readInt64(c); err != nil {
		return k, idx, err
	}
	if idx.Size, err = readCount(c, version); err != nil {
		return k, idx, err
	}
	return k, idx, nil
}

// Footer is the whole master index: matrix directory, expected values and the
// normalization vector directory.
type Footer struct {
	NBytes           int64
	Entry            map[string]Index
	ExpectedValueMap map[string]*ExpectedValueFunc // key: unit + "_" + binsize + "_" + normType
	NormVector       map[NormVectorKey]Index
	NormTypes        map[string]bool
	Units            map[string]bool
}

// ReadFooterIndex parses the complete footer. Files written without
// normalization end after the first expected value block.
func ReadFooterIndex(c *Cursor, version int32, master int64) (*Footer, error) {
	if err := c.SeekTo(master); err != nil {
		return nil, err
	}
	f := &Footer{
		Entry:            make(map[string]Index),
		ExpectedValueMap: make(map[string]*ExpectedValueFunc),
		NormVector:       make(map[NormVectorKey]Index),
		NormTypes:        make(map[string]bool),
		Units:            make(map[string]bool),
	}
	var err error
	if f.NBytes, err = readCount(c, version); err != nil {
		return nil, err
	}
	nEntries, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < nEntries; i++ {
		key, err := readCString(c)
		if err != nil {
			return nil, err
		}
		filePosition, err := readInt64(c)
		if err != nil {
			return nil, err
		}
		sizeInBytes, err := readInt32(c)
		if err != nil {
			return nil, err
		}
		f.Entry[key] = Index{filePosition, int64(sizeInBytes)}
	}
	all := func(string, string, int32) bool { return true }
	add := func(e *ExpectedValueFunc) {
		f.ExpectedValueMap[e.Key()] = e
		f.Units[e.Unit()] = true
	}
	if err := readExpectedValueBlock(c, version, false, all, add); err != nil {
		return nil, errors.Wrap(err, "reading expected values")
	}
	n, err := readInt32(c)
	if err != nil {
		if ErrorCode(err) == CodeEOF {
			return f, nil
		}
		return nil, err
	}
	for i := int32(0); i < n; i++ {
		e, err := readExpectedValueFunc(c, version, true, all)
		if err != nil {
			return nil, errors.Wrap(err, "reading normalized expected values")
		}
		add(e)
	}
	nEntries, err = readInt32(c)
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < nEntries; i++ {
		k, idx, err := readNormVectorEntry(c, version)
		if err != nil {
			return nil, err
		}
		f.NormVector[k] = idx
		f.NormTypes[k.NormType] = true
		f.Units[k.Unit] = true
	}
	return f, nil
}

func (f *Footer) String() string {
	var s bytes.Buffer
	s.WriteString("Footer\n")
	s.WriteString(fmt.Sprintf("\tNBytes\t%d\n", f.NBytes))
	s.WriteString(fmt.Sprintf("\tNEntries\t%d\n", len(f.Entry)))
	s.WriteString("\tNormTypes: ")
	for _, v := range f.NormTypeStrs() {
		s.WriteString(" ")
		s.WriteString(v)
	}
	s.WriteString("\n\tUnits: ")
	units := make([]string, 0, len(f.Units))
	for v := range f.Units {
		units = append(units, v)
	}
	sort.Slice(units, func(i, j int) bool { return unit.StringToIdx(units[i]) < unit.StringToIdx(units[j]) })
	for _, v := range units {
		s.WriteString(" ")
		s.WriteString(v)
	}
	s.WriteString("\n")
	return s.String()
}

/*NormTypeStrs: get all norm type short strings, in normtype order
 */
func (f *Footer) NormTypeStrs() []string {
	var keys []string
	for k := range f.NormTypes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := normtype.StringToIdx(keys[i]), normtype.StringToIdx(keys[j])
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

/*NormTypeStrings: get all norm type long names
 */
func (f *Footer) NormTypeStrings() []string {
	var keys []string
	for _, k := range f.NormTypeStrs() {
		if i := normtype.StringToIdx(k); i != -1 {
			keys = append(keys, normtype.IdxToString(i))
		} else {
			keys = append(keys, k)
		}
	}
	return keys
}
