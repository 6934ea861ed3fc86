package params

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is ISO-8601 with milliseconds and an explicit numeric offset.
const DateTimeLayout = "2006-01-02T15:04:05.000-07:00"

// Accepted input layouts, tried in order. Inputs without an offset are read as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime parses an ISO-8601 date-time. A false result means "not a date".
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateTime renders t in DateTimeLayout, keeping its offset.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseNumber parses a finite decimal number. A false result means "not a number".
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
