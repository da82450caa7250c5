package importer

import (
	"fmt"
	"strings"
)

// FormatInferenceError is returned when a header row cannot be classified:
// no date column, an ambiguous date column, or no amount column.
type FormatInferenceError struct {
	Header []string
	Reason string
}

func (e *FormatInferenceError) Error() string {
	if len(e.Header) == 0 {
		return "cannot infer format: " + e.Reason
	}
	return fmt.Sprintf("cannot infer format: %s (header: %s)", e.Reason, strings.Join(e.Header, "|"))
}

// MalformedRowError is returned for a row whose amount cells break the
// debit/credit conventions or cannot be parsed.
type MalformedRowError struct {
	Row    []string
	Reason string
	Err    error
}

func (e *MalformedRowError) Error() string {
	msg := fmt.Sprintf("malformed row %q: %s", e.Row, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// DateParseError is returned when a date cell matches no known format.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parsing date %q: %v", e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }
