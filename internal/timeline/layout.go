// Package timeline computes the geometry of the weekly thread timeline:
// where a thread's bar sits inside a visible window, how its span is split
// between owners, how urgent its due date is and where today falls.
//
// Everything here is pure. Callers fetch threads, members and ledger records
// first and pass the current instant in explicitly. Malformed but present
// data (empty windows, due dates before start dates) degrades to a zero-width
// rendering instead of producing NaN or Inf.
package timeline

import "time"

// Position is a bar's horizontal placement in percent of the window width.
// Left is not clamped; a thread outside the window yields a negative or
// >100 value and the renderer clips it.
type Position struct {
	LeftPercent  float64 `json:"left_percent"`
	WidthPercent float64 `json:"width_percent"`
	Degenerate   bool    `json:"degenerate"`
}

// Layout maps [start, due] onto [windowStart, windowEnd].
func Layout(start, due, windowStart, windowEnd time.Time) Position {
	totalDays := daysBetween(windowEnd, windowStart)
	if totalDays <= 0 {
		return Position{Degenerate: true}
	}

	pos := Position{
		LeftPercent:  daysBetween(start, windowStart) / totalDays * 100,
		WidthPercent: daysBetween(due, start) / totalDays * 100,
	}
	if pos.WidthPercent <= 0 {
		pos.WidthPercent = 0
		pos.Degenerate = true
	}
	return pos
}

// TodayMarker returns today's offset in percent of the window, or nil when
// today (at midnight) lies outside it.
func TodayMarker(today, windowStart, windowEnd time.Time) *float64 {
	midnight := startOfDay(today)
	if midnight.Before(windowStart) || midnight.After(windowEnd) {
		return nil
	}

	totalDays := daysBetween(windowEnd, windowStart)
	if totalDays <= 0 {
		return nil
	}

	percent := daysBetween(midnight, windowStart) / totalDays * 100
	return &percent
}

// daysBetween returns a-b in fractional days.
func daysBetween(a, b time.Time) float64 {
	return a.Sub(b).Hours() / 24
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// civilDate drops the clock and zone so two dates can be diffed in whole days
// regardless of DST.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
