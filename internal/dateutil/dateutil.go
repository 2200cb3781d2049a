// Package dateutil formats and parses dates in EDTF level 0 notation
// (YYYY, YYYY-MM, YYYY-MM-DD).
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDate indicates a date string that is not EDTF level 0.
var ErrInvalidDate = errors.New("invalid EDTF date")

// MaxDateLength limits input length to prevent abuse.
const MaxDateLength = 10

// Format returns the EDTF level 0 representation of the given parts.
// Zero parts are omitted and end the precision: a zero month drops the day too.
// Returns "" when year is zero.
func Format(year, month, day int) string {
	if year <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(MaxDateLength)
	fmt.Fprintf(&b, "%04d", year)

	if month <= 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "-%02d", month)

	if day <= 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "-%02d", day)

	return b.String()
}

// Parse splits an EDTF level 0 string into year, month and day.
// Missing parts are returned as zero.
func Parse(s string) (year, month, day int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, 0, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if len(s) > MaxDateLength {
		return 0, 0, 0, fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidDate, s, MaxDateLength)
	}

	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	values := make([]int, 3)
	widths := []int{4, 2, 2}
	limits := []int{9999, 12, 31}
	for i, p := range parts {
		if len(p) != widths[i] {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 1 || n > limits[i] {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		values[i] = n
	}

	return values[0], values[1], values[2], nil
}
