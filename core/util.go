package core

import (
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// TimeRange is a half-open [From, To) interval. Zero bounds are unset.
type TimeRange struct {
	From time.Time
	To   time.Time
}

func (tr TimeRange) IsSet() bool {
	return !tr.From.IsZero() && !tr.To.IsZero()
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an instant.
// Intervals touching at a boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
