// ABOUTME: UTC reporting windows for today, this week, this month and custom periods.
// ABOUTME: Every window is half-open: [Start, End).
package report

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for period bounds.
const DateLayout = "2006-01-02"

// ErrInvalidPeriod is returned when a period ends before it starts.
var ErrInvalidPeriod = errors.New("period end is before start")

// Window is a half-open UTC time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// LastDay is the final calendar day covered by the window.
func (w Window) LastDay() time.Time {
	return w.End.AddDate(0, 0, -1)
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today covers the UTC calendar day containing now.
func Today(now time.Time) Window {
	start := midnight(now)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Week covers the Monday-based UTC week containing now.
func Week(now time.Time) Window {
	day := midnight(now)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// Month covers the UTC calendar month containing now.
func Month(now time.Time) Window {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Period covers the calendar days from through to, both inclusive.
func Period(from, to time.Time) (Window, error) {
	start, last := midnight(from), midnight(to)
	if last.Before(start) {
		return Window{}, ErrInvalidPeriod
	}
	return Window{Start: start, End: last.AddDate(0, 0, 1)}, nil
}

// ParsePeriod parses two YYYY-MM-DD dates into an inclusive period.
func ParsePeriod(from, to string) (Window, error) {
	start, err := time.Parse(DateLayout, from)
	if err != nil {
		return Window{}, fmt.Errorf("invalid start date %q: %w", from, err)
	}
	end, err := time.Parse(DateLayout, to)
	if err != nil {
		return Window{}, fmt.Errorf("invalid end date %q: %w", to, err)
	}
	return Period(start, end)
}
