package utils

import (
	"time"
)

const DateLayout = "2006-01-02"

// DateOnly truncates a timestamp to its calendar date in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD attendance date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a date as its YYYY-MM-DD scope key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
