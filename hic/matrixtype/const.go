package matrixtype

import "strings"

const (
	OBSERVED = iota
	OE
	EXPECTED
)

var idx2strings = []string{
	"observed",
	"oe",
	"expected",
}

func IdxToString(i int) string {
	if i < 0 || i >= len(idx2strings) {
		return "observed"
	}
	return idx2strings[i]
}

// StringToIdx returns -1 for an unknown matrix type. The empty string is observed.
func StringToIdx(s string) int {
	switch strings.ToLower(s) {
	case "", "observed":
		return OBSERVED
	case "oe":
		return OE
	case "expected":
		return EXPECTED
	}
	return -1
}
