package record

import (
	"fmt"
	"time"
)

// DateLayout is the civil date format used for every date field.
const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. Valid dates order
// correctly under string comparison.
type Date string

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalid, s)
	}
	return Date(s), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Today returns the local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d < other
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return string(d)
}

// Time returns midnight UTC of d.
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}
