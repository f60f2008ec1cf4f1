package normtype

import "strings"

const (
	NONE = iota
	VC
	VC_SQRT
	KR
	GW_KR
	INTER_KR
	GW_VC
	INTER_VC
	LOADED
	SCALE
)

// names holds the footer spelling and the display name of each type, by index.
var names = [...]struct{ short, long string }{
	NONE:     {"NONE", "None"},
	VC:       {"VC", "Coverage"},
	VC_SQRT:  {"VC_SQRT", "Coverage (Sqrt)"},
	KR:       {"KR", "Balanced"},
	GW_KR:    {"GW_KR", "Genome-Wide Balanced"},
	INTER_KR: {"INTER_KR", "Inter Balanced"},
	GW_VC:    {"GW_VC", "Genome-Wide Coverage"},
	INTER_VC: {"INTER_VC", "Inter Coverage"},
	LOADED:   {"LOADED", "Loaded"},
	SCALE:    {"SCALE", "Scale"},
}

var byName = func() map[string]int {
	m := make(map[string]int, 2*len(names))
	for i, n := range names {
		m[strings.ToLower(n.short)] = i
		m[strings.ToLower(n.long)] = i
	}
	return m
}()

func valid(i int) bool {
	return i >= 0 && i < len(names)
}

// IdxToStr returns the footer spelling, NONE when out of range.
func IdxToStr(i int) string {
	if !valid(i) {
		return names[NONE].short
	}
	return names[i].short
}

func IdxToString(i int) string {
	if !valid(i) {
		return names[NONE].long
	}
	return names[i].long
}

// StringToIdx maps both spellings, case-insensitively; unknown names map to -1.
func StringToIdx(s string) int {
	if i, ok := byName[strings.ToLower(s)]; ok {
		return i
	}
	return -1
}

// Queryable reports whether a region query accepts the normalization.
func Queryable(s string) bool {
	switch s {
	case names[NONE].short, names[VC].short, names[VC_SQRT].short, names[KR].short:
		return true
	}
	return false
}
