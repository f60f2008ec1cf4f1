package hic

import (
	"strconv"
	"strings"
)

// locus is a chromosome name with an optional base pair range.
type locus struct {
	chr      string
	start    int64
	end      int64
	hasRange bool
}

// parseLocus parses "name" or "name:start:end". Names may themselves contain
// colons; only two trailing integers are taken as the range.
func parseLocus(s string) (locus, error) {
	if s == "" {
		return locus{}, ErrInvalidParameter.WithMessage("empty locus")
	}
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		if len(parts) == 2 {
			return locus{}, ErrInvalidParameter.WithMessage("locus must be name or name:start:end").WithDetail("locus", s)
		}
		return locus{chr: s}, nil
	}
	n := len(parts)
	start, err1 := strconv.ParseInt(parts[n-2], 10, 64)
	end, err2 := strconv.ParseInt(parts[n-1], 10, 64)
	if err1 != nil || err2 != nil {
		return locus{}, ErrInvalidParameter.WithMessage("bad locus range").WithDetail("locus", s)
	}
	if start < 0 || end < start {
		return locus{}, ErrInvalidParameter.WithMessage("locus range out of order").WithDetail("locus", s)
	}
	return locus{strings.Join(parts[:n-2], ":"), start, end, true}, nil
}

/* handle chr1 Chr1 CHR1 and 1 as same one */
func normalizeChrName(chr string) string {
	return strings.Replace(strings.ToLower(chr), "chr", "", -1)
}
