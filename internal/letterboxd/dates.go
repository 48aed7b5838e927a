package letterboxd

import (
	"strconv"
	"strings"
	"time"
)

// exportDateLayout is the date format used in Letterboxd CSV exports.
const exportDateLayout = "2006-01-02"

// ParseExportDate parses a YYYY-MM-DD export date.
// Blank or malformed input yields nil rather than an error; malformed
// dates in a diary export are expected and skipped field-by-field.
func ParseExportDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(exportDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// ParseRating parses a decimal rating string ("4.5"). Blank or malformed
// input yields nil.
func ParseRating(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// YearToDate converts an export "Year" column to January 1 of that year,
// or nil when the value is not a positive integer.
func YearToDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year <= 0 {
		return nil
	}
	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &t
}
