package unit

const (
	BP = iota
	FRAG
)

var units = [...]string{BP: "BP", FRAG: "FRAG"}

func IdxToString(i int) string {
	if i < 0 || i >= len(units) {
		return "None"
	}
	return units[i]
}

// StringToIdx is exact, the file stores units upper case. Unknown units map to -1.
func StringToIdx(s string) int {
	for i, u := range units {
		if u == s {
			return i
		}
	}
	return -1
}

func Valid(s string) bool {
	return StringToIdx(s) != -1
}
