package hic

import (
	"strconv"
)

// NormVectorKey addresses one normalization vector in the footer directory.
type NormVectorKey struct {
	NormType   string
	ChrIdx     int32
	Unit       string
	Resolution int32
}

func (k NormVectorKey) String() string {
	return k.NormType + "_" + strconv.Itoa(int(k.ChrIdx)) + "_" + k.Unit + "_" + strconv.Itoa(int(k.Resolution))
}

// ReadNormVector loads the vector stored at index: a count followed by that
// many values (float64, or float32 in version 9 files).
func ReadNormVector(c *Cursor, index Index, version int32) ([]float64, error) {
	if err := c.SeekTo(index.Position); err != nil {
		return nil, err
	}
	n, err := readCount(c, version)
	if err != nil {
		return nil, err
	}
	if err := checkCount(n, c); err != nil {
		return nil, err
	}
	data := make([]float64, 0, capHint(n))
	for i := int64(0); i < n; i++ {
		v, err := readValue(c, version)
		if err != nil {
			return nil, err
		}
		data = append(data, v)
	}
	return data, nil
}
