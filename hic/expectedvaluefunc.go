package hic

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// ExpectedValueFunc is one expected-value vector of the footer: the mean count
// per diagonal distance (in bins), with per chromosome normalization factors.
type ExpectedValueFunc struct {
	normType       string
	unit           string
	binSize        int32
	expectedValues []float64
	normFactors    map[int32]float64
}

func NewExpectedValueFunc(normType string, unit string, binSize int32, expectedValues []float64, normFactors map[int32]float64) *ExpectedValueFunc {
	return &ExpectedValueFunc{normType, unit, binSize, expectedValues, normFactors}
}

func expectedKey(normType string, unit string, binSize int32) string {
	return unit + "_" + strconv.Itoa(int(binSize)) + "_" + normType
}

func (e *ExpectedValueFunc) Key() string {
	return expectedKey(e.normType, e.unit, e.binSize)
}

/*Text: output detail string
 */
func (e *ExpectedValueFunc) Text() string {
	var s bytes.Buffer
	s.WriteString(fmt.Sprintf("%s %s %d\nExpectedValues:\n", e.normType, e.unit, e.binSize))
	for i := 0; i < len(e.expectedValues); i++ {
		s.WriteString(fmt.Sprintf("\t%d\t%f\n", i, e.expectedValues[i]))
	}
	s.WriteString("NormFactors:\n")
	keys := make([]int, 0, len(e.normFactors))
	for k := range e.normFactors {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("\t%d\t%f\n", k, e.normFactors[int32(k)]))
	}
	return s.String()
}

func (e *ExpectedValueFunc) ExpectedValues() []float64 {
	return e.expectedValues
}
func (e *ExpectedValueFunc) NormFactors() map[int32]float64 {
	return e.normFactors
}
func (e *ExpectedValueFunc) BinSize() int32 {
	return e.binSize
}
func (e *ExpectedValueFunc) Length() int {
	return len(e.expectedValues)
}
func (e *ExpectedValueFunc) NormType() string {
	return e.normType
}
func (e *ExpectedValueFunc) Unit() string {
	return e.unit
}

// ForChromosome returns the expected values scaled by the chromosome's normalization factor.
func (e *ExpectedValueFunc) ForChromosome(chrIdx int32) []float64 {
	v := make([]float64, len(e.expectedValues))
	copy(v, e.expectedValues)
	if f, ok := e.normFactors[chrIdx]; ok {
		for i := range v {
			v[i] = v[i] / f
		}
	}
	return v
}

// readExpectedValueFunc reads one expected value record. Records of the second
// (normalized) block carry a leading norm type string; the first block is NONE.
// With keep false the record is consumed and nil is returned.
func readExpectedValueFunc(c *Cursor, version int32, withType bool, keep func(normType, unit string, binSize int32) bool) (*ExpectedValueFunc, error) {
	normType := "NONE"
	var err error
	if withType {
		if normType, err = readCString(c); err != nil {
			return nil, err
		}
	}
	unit, err := readCString(c)
	if err != nil {
		return nil, err
	}
	binSize, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	nValues, err := readCount(c, version)
	if err != nil {
		return nil, err
	}
	if err := checkCount(nValues, c); err != nil {
		return nil, err
	}
	store := keep(normType, unit, binSize)
	var values []float64
	if store {
		values = make([]float64, 0, capHint(nValues))
	}
	for j := int64(0); j < nValues; j++ {
		v, err := readValue(c, version)
		if err != nil {
			return nil, err
		}
		if store {
			values = append(values, v)
		}
	}
	nFactors, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	if err := checkCount(int64(nFactors), c); err != nil {
		return nil, err
	}
	var normFactors map[int32]float64
	if store {
		normFactors = make(map[int32]float64, capHint(int64(nFactors)))
	}
	for j := int32(0); j < nFactors; j++ {
		chrIdx, err := readInt32(c)
		if err != nil {
			return nil, err
		}
		f, err := readValue(c, version)
		if err != nil {
			return nil, err
		}
		if store {
			normFactors[chrIdx] = f
		}
	}
	if !store {
		return nil, nil
	}
	return NewExpectedValueFunc(normType, unit, binSize, values, normFactors), nil
}
