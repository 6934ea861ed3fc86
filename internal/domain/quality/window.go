package quality

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/alprsearch/internal/domain/search/params"
)

// Window is the dashboard lookback range.
type Window string

// Dashboard window constants.
const (
	Week  Window = "week"
	Month Window = "month"
	Year  Window = "year"
)

// DefaultWindow is used when the caller does not pick one.
const DefaultWindow = Month

// ParseWindow validates a window name. Empty input yields DefaultWindow.
func ParseWindow(s string) (Window, error) {
	if s == "" {
		return DefaultWindow, nil
	}
	w := Window(s)
	if !w.IsValid() {
		return "", fmt.Errorf("unknown dashboard window %q", s)
	}
	return w, nil
}

// IsValid checks if the window is one of the supported values.
func (w Window) IsValid() bool {
	return w == Week || w == Month || w == Year
}

// Increment is the bucket size: months for a year, days otherwise.
func (w Window) Increment() Increment {
	if w == Year {
		return IncMonth
	}
	return IncDay
}

// Increment is a calendar step.
type Increment int

// Increment constants.
const (
	IncDay Increment = iota
	IncMonth
)

func (i Increment) startOf(t time.Time) time.Time {
	y, m, d := t.Date()
	if i == IncMonth {
		d = 1
	}
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (i Increment) endOf(t time.Time) time.Time {
	return i.add(i.startOf(t), 1).Add(-time.Millisecond)
}

func (i Increment) add(t time.Time, n int) time.Time {
	if i == IncMonth {
		return addMonths(t, n)
	}
	return t.AddDate(0, 0, n)
}

func (i Increment) label(t time.Time) string {
	if i == IncMonth {
		return t.Format("Jan 2006")
	}
	return t.Format("01/02")
}

// subtract moves t back by one window.
func (w Window) subtract(t time.Time) time.Time {
	switch w {
	case Week:
		return t.AddDate(0, 0, -7)
	case Year:
		return addMonths(t, -12)
	default:
		return addMonths(t, -1)
	}
}

// addMonths clamps to the last day of the target month instead of
// overflowing into the next one (Mar 31 minus a month is Feb 28).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// Bucket is one bar of the dashboard chart.
type Bucket struct {
	Label string
	Start time.Time
	End   time.Time
}

// StartTerm renders the lower bound for a date search term.
func (b Bucket) StartTerm() string { return params.FormatDateTime(b.Start) }

// EndTerm renders the inclusive upper bound.
func (b Bucket) EndTerm() string { return params.FormatDateTime(b.End) }

// Buckets splits the window ending at now into increments, oldest first.
// The first bucket is one increment after now minus the window; the last is
// the increment that contains now.
func Buckets(w Window, now time.Time) []Bucket {
	inc := w.Increment()
	last := inc.endOf(now)
	var out []Bucket
	for curr := inc.add(w.subtract(now), 1); !curr.After(last); curr = inc.add(curr, 1) {
		out = append(out, Bucket{
			Label: inc.label(curr),
			Start: inc.startOf(curr),
			End:   inc.endOf(curr),
		})
	}
	return out
}

// Span is the whole window as a single bucket, used for per-agency totals.
func Span(w Window, now time.Time) Bucket {
	inc := w.Increment()
	return Bucket{
		Label: string(w),
		Start: inc.startOf(inc.add(w.subtract(now), 1)),
		End:   inc.endOf(now),
	}
}
