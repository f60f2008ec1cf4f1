package straw

import (
	"encoding/binary"
	"io"
)

const HIC_MAGIC = 0x00434948

// Magic reports "hic" when uri starts with the .hic magic string, "unknown" otherwise.
func Magic(uri string) (string, error) {
	f, err := openSource(uri)
	if err != nil {
		return "unknown", err
	}
	if c, ok := f.(io.Closer); ok {
		defer c.Close()
	}
	return magic(f)
}

func magic(r io.Reader) (string, error) {
	p := make([]byte, 4)
	if _, err := io.ReadFull(r, p); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return "unknown", nil
		}
		return "unknown", err
	}
	if binary.LittleEndian.Uint32(p) == HIC_MAGIC {
		return "hic", nil
	}
	return "unknown", nil
}
