// Package metrics computes derived indicators from decoded datasets for a date window.
// Every function is pure: inputs are records sorted ascending by date, outputs are
// freshly computed and never written back to the cache.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/aristath/finlookup/internal/domain"
)

// ErrInvalidWindow means a window's bounds cannot be parsed or are reversed.
var ErrInvalidWindow = errors.New("invalid window")

// Auto-widen thresholds. A window no longer than the threshold is replaced by
// one starting on January 1 of year(End) minus the given number of years.
const (
	RevenueWidenThreshold   = 365 * 24 * time.Hour
	RevenueWidenYears       = 1
	StatementWidenThreshold = 5 * 365 * 24 * time.Hour
	StatementWidenYears     = 5
)

// Window is an inclusive range of calendar dates.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow builds a window from two dates, truncated to whole days.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: domain.Day(start), End: domain.Day(end)}
	if w.End.Before(w.Start) {
		return Window{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow,
			w.End.Format(domain.DateLayout), w.Start.Format(domain.DateLayout))
	}
	return w, nil
}

// ParseWindow parses YYYY-MM-DD bounds.
func ParseWindow(start, end string) (Window, error) {
	s, err := time.Parse(domain.DateLayout, start)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start %q", ErrInvalidWindow, start)
	}
	e, err := time.Parse(domain.DateLayout, end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end %q", ErrInvalidWindow, end)
	}
	return NewWindow(s, e)
}

// LastDays returns the window of the given number of days ending on now's date.
func LastDays(now time.Time, days int) Window {
	end := domain.Day(now)
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// Contains reports whether t's calendar date lies inside the window.
func (w Window) Contains(t time.Time) bool {
	d := domain.Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Span is End minus Start.
func (w Window) Span() time.Duration {
	return w.End.Sub(w.Start)
}

// Widen applies the auto-widen rule: windows longer than threshold are kept,
// shorter ones start on January 1 of year(End) - years.
func (w Window) Widen(threshold time.Duration, years int) Window {
	if w.Span() > threshold {
		return w
	}
	return Window{
		Start: time.Date(w.End.Year()-years, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   w.End,
	}
}

func (w Window) String() string {
	return w.Start.Format(domain.DateLayout) + ".." + w.End.Format(domain.DateLayout)
}

func filterWindow[T any](rows []T, w Window, date func(T) time.Time) []T {
	var out []T
	for _, r := range rows {
		if w.Contains(date(r)) {
			out = append(out, r)
		}
	}
	return out
}

func emptyWindow(dataset string, w Window) error {
	return fmt.Errorf("%s in %s: %w", dataset, w, domain.ErrEmptyWindow)
}
