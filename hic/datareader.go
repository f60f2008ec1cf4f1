package hic

const (
	MAGIC      = "HIC"
	MinVersion = 6
	MaxVersion = 9
)

// Header is everything before the matrix bodies: format version, master index
// offset, genome, attributes, chromosome table and resolution lists.
type Header struct {
	Version        int32
	MasterIndexPos int64
	Genome         string
	NviPosition    int64 // version 9 only
	NviLength      int64 // version 9 only
	Attr           map[string]string
	Chr            []Chr
	BpRes          []int32
	FragRes        []int32
	FragSites      [][]int32 // per chromosome index, only when FragRes is not empty
}

// ReadHeader parses the header at the start of the file.
func ReadHeader(c *Cursor) (*Header, error) {
	if err := c.SeekTo(0); err != nil {
		return nil, err
	}
	magic, err := c.ReadExactly(4)
	if err != nil {
		return nil, err
	}
	if string(magic[:3]) != MAGIC {
		return nil, ErrFormat.WithDetail("magic", string(magic[:3]))
	}
	h := &Header{}
	if h.Version, err = readInt32(c); err != nil {
		return nil, err
	}
	if h.Version < MinVersion {
		return nil, ErrUnsupportedVersion.WithDetail("version", h.Version)
	}
	if h.MasterIndexPos, err = readInt64(c); err != nil {
		return nil, err
	}
	if h.Genome, err = readCString(c); err != nil {
		return nil, err
	}
	if h.Version > 8 {
		if h.NviPosition, err = readInt64(c); err != nil {
			return nil, err
		}
		if h.NviLength, err = readInt64(c); err != nil {
			return nil, err
		}
	}

	nAttr, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	if err := checkCount(int64(nAttr), c); err != nil {
		return nil, err
	}
	h.Attr = make(map[string]string, capHint(int64(nAttr)))
	for i := int32(0); i < nAttr; i++ {
		key, err := readCString(c)
		if err != nil {
			return nil, err
		}
		value, err := readCString(c)
		if err != nil {
			return nil, err
		}
		h.Attr[key] = value
	}

	nChrs, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	if err := checkCount(int64(nChrs), c); err != nil {
		return nil, err
	}
	h.Chr = make([]Chr, 0, capHint(int64(nChrs)))
	for i := int32(0); i < nChrs; i++ {
		name, err := readCString(c)
		if err != nil {
			return nil, err
		}
		var length int64
		if h.Version > 8 {
			length, err = readInt64(c)
		} else {
			var l32 int32
			l32, err = readInt32(c)
			length = int64(l32)
		}
		if err != nil {
			return nil, err
		}
		h.Chr = append(h.Chr, Chr{name, length})
	}

	if h.BpRes, err = readInt32List(c); err != nil {
		return nil, err
	}
	if h.FragRes, err = readInt32List(c); err != nil {
		return nil, err
	}
	if len(h.FragRes) > 0 {
		h.FragSites = make([][]int32, len(h.Chr))
		for i := range h.Chr {
			if h.FragSites[i], err = readInt32List(c); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

func readInt32List(c *Cursor) ([]int32, error) {
	n, err := readInt32(c)
	if err != nil {
		return nil, err
	}
	if err := checkCount(int64(n), c); err != nil {
		return nil, err
	}
	l := make([]int32, 0, capHint(int64(n)))
	for i := int32(0); i < n; i++ {
		v, err := readInt32(c)
		if err != nil {
			return nil, err
		}
		l = append(l, v)
	}
	return l, nil
}

// ChrIdx returns the index of a chromosome name, or -1.
// An exact match wins; otherwise "chr1", "Chr1" and "1" are treated as the same name.
func (h *Header) ChrIdx(chr string) int {
	for i, v := range h.Chr {
		if v.Name == chr {
			return i
		}
	}
	b := normalizeChrName(chr)
	for i, v := range h.Chr {
		if normalizeChrName(v.Name) == b {
			return i
		}
	}
	return -1
}
