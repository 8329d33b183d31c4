// Package util provides shared utilities: period and API date handling,
// value formatting, and the process clock.
package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ─── Date Layouts ─────────────────────────────────────────────────────────────

const (
	// PeriodLayout is the canonical external period format (DD.MM.YYYY).
	PeriodLayout = "02.01.2006"
	// ISOLayout is the calendar-date format used by the API payloads and
	// date pickers (YYYY-MM-DD).
	ISOLayout = "2006-01-02"
)

// apiTimeLayouts are tried in order when parsing dates found in API bodies.
var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	ISOLayout,
}

// DateError reports a date string that could not be parsed.
type DateError struct {
	Field  string
	Value  string
	Expect string
}

func (e *DateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid date %q: expected %s", e.Value, e.Expect)
	}
	return fmt.Sprintf("%s: invalid date %q: expected %s", e.Field, e.Value, e.Expect)
}

// ─── Periods ──────────────────────────────────────────────────────────────────

// ParsePeriod parses a DD.MM.YYYY string into a time.Time (UTC midnight).
func ParsePeriod(s string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &DateError{Value: s, Expect: "DD.MM.YYYY"}
	}
	return t, nil
}

// FormatPeriod formats t as DD.MM.YYYY.
func FormatPeriod(t time.Time) string {
	return t.Format(PeriodLayout)
}

// PeriodFromISO converts YYYY-MM-DD into DD.MM.YYYY.
func PeriodFromISO(s string) (string, error) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(s))
	if err != nil {
		return "", &DateError{Value: s, Expect: "YYYY-MM-DD"}
	}
	return FormatPeriod(t), nil
}

// PeriodToISO converts DD.MM.YYYY into YYYY-MM-DD.
func PeriodToISO(s string) (string, error) {
	t, err := ParsePeriod(s)
	if err != nil {
		return "", err
	}
	return t.Format(ISOLayout), nil
}

// NormalizePeriod accepts either DD.MM.YYYY or YYYY-MM-DD and returns the
// canonical DD.MM.YYYY form. The empty string passes through unchanged.
func NormalizePeriod(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(PeriodLayout, s); err == nil {
		return FormatPeriod(t), nil
	}
	if t, err := time.Parse(ISOLayout, s); err == nil {
		return FormatPeriod(t), nil
	}
	return "", &DateError{Value: s, Expect: "DD.MM.YYYY or YYYY-MM-DD"}
}

// ─── API Dates ────────────────────────────────────────────────────────────────

// ParseAPITime parses a date or timestamp from an API body. field names the
// source field in the returned *DateError.
func ParseAPITime(field, s string) (time.Time, error) {
	for _, layout := range apiTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DateError{Field: field, Value: s, Expect: "YYYY-MM-DD or RFC 3339"}
}

// ─── Value Formatting ─────────────────────────────────────────────────────────

// FormatValue formats a float64 for display, showing "." for NaN.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "."
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPercent formats v with one decimal place and a percent sign.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// FormatSigned formats v with an explicit sign and one decimal place.
func FormatSigned(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if v > 0 {
		s = "+" + s
	}
	return s
}
