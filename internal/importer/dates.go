package importer

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateParser turns free-form date text into a calendar date.
type DateParser interface {
	ParseDate(s string) (time.Time, error)
}

// FreeformDates parses the date layouts institutions commonly export:
// ISO, US numeric (month first, retried day first when the month is out
// of range), and textual months. Results are truncated to UTC midnight.
// Input without a year is rejected.
type FreeformDates struct{}

// ParseDate implements DateParser.
func (FreeformDates) ParseDate(s string) (time.Time, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return time.Time{}, &DateParseError{Value: value, Err: errors.New("empty date")}
	}
	t, err := dateparse.ParseIn(value, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		return time.Time{}, &DateParseError{Value: value, Err: err}
	}
	if t.Year() == 0 || t.IsZero() {
		return time.Time{}, &DateParseError{Value: value, Err: errors.New("no year")}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
