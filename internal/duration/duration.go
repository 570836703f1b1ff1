// Package duration parses fermentation spans such as "10d", "3w" or "2m"
// and applies them to calendar dates.
//
// Months are calendar months, so "1m" from 2026-01-31 lands on 2026-03-03
// the way time.AddDate normalises it.
package duration

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/jpl-au/fermi/internal/record"
)

var spanRe = regexp.MustCompile(`^(\d+)([dwm])$`)

// Span is a whole number of days, weeks or months.
type Span struct {
	N    int
	Unit byte // 'd', 'w' or 'm'
}

// Parse parses Nd (days), Nw (weeks) or Nm (months). N must be positive.
func Parse(s string) (Span, error) {
	m := spanRe.FindStringSubmatch(s)
	if m == nil {
		return Span{}, fmt.Errorf("invalid duration %q (use 10d, 3w or 2m)", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Span{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if n == 0 {
		return Span{}, fmt.Errorf("invalid duration %q: must be at least 1", s)
	}
	return Span{N: n, Unit: m[2][0]}, nil
}

// After returns the date s after d.
func (s Span) After(d record.Date) (record.Date, error) {
	t, err := d.Time()
	if err != nil {
		return "", err
	}
	switch s.Unit {
	case 'd':
		t = t.AddDate(0, 0, s.N)
	case 'w':
		t = t.AddDate(0, 0, 7*s.N)
	case 'm':
		t = t.AddDate(0, s.N, 0)
	default:
		return "", fmt.Errorf("invalid duration unit %q", s.Unit)
	}
	return record.DateOf(t), nil
}

// String returns the span in the form Parse accepts.
func (s Span) String() string {
	return strconv.Itoa(s.N) + string(s.Unit)
}
