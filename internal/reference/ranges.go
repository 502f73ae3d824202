package reference

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// #region range

// ErrInvalidRange is returned for range strings that are not "N", "N+" or "N-M".
var ErrInvalidRange = errors.New("invalid range")

// Range is an expected headcount range. Max is nil for open-ended ranges.
type Range struct {
	Min int  `json:"min"`
	Max *int `json:"max"`
}

// Contains reports whether n falls inside the range.
func (r Range) Contains(n int) bool {
	if n < r.Min {
		return false
	}
	return r.Max == nil || n <= *r.Max
}

// String renders the range in its source notation.
func (r Range) String() string {
	switch {
	case r.Max == nil:
		return fmt.Sprintf("%d+", r.Min)
	case *r.Max == r.Min:
		return strconv.Itoa(r.Min)
	default:
		return fmt.Sprintf("%d-%d", r.Min, *r.Max)
	}
}

// ParseRange parses "2-3", "2+" and "2".
func ParseRange(s string) (Range, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Range{}, fmt.Errorf("%w: empty", ErrInvalidRange)
	}
	if strings.HasSuffix(raw, "+") {
		n, err := parseCount(strings.TrimSuffix(raw, "+"))
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		return Range{Min: n}, nil
	}
	if lo, hi, ok := strings.Cut(raw, "-"); ok {
		min, err := parseCount(lo)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		max, err := parseCount(hi)
		if err != nil || max < min {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		return Range{Min: min, Max: &max}, nil
	}
	n, err := parseCount(raw)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return Range{Min: n, Max: &n}, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}

// #endregion range
