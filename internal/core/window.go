package core

import "time"

// allTimeFloorYear is the fixed epoch floor used when no filtering is wanted.
const allTimeFloorYear = 2020

// Window is a closed time interval [Start, End] used to filter transactions
// by OccurredAt. Both bounds are inclusive.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// MonthRange returns the window for the calendar month offsetMonths away
// from now's month in now's location. Offset 0 is the current month, -1 the
// previous one. Start is the first instant of the month, End the last
// millisecond of its final day.
func MonthRange(now time.Time, offsetMonths int) Window {
	start := time.Date(now.Year(), now.Month()+time.Month(offsetMonths), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Window{Start: start, End: end}
}

// TodayRange returns midnight to 23:59:59.999 of now's local calendar day.
func TodayRange(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Millisecond)}
}

// AllTimeRange returns the fixed epoch floor up to now.
func AllTimeRange(now time.Time) Window {
	start := time.Date(allTimeFloorYear, time.January, 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: now}
}
