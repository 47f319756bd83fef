package timeline

import (
	"fmt"
	"math"
	"time"
)

// Week is one column of the timeline header.
type Week struct {
	Label     string    `json:"label"`
	DateRange string    `json:"date_range"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// MondayOf returns midnight of the Monday starting t's week.
func MondayOf(t time.Time) time.Time {
	day := startOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// Weeks returns n consecutive Monday-to-Sunday windows starting with the
// week containing anchor.
func Weeks(anchor time.Time, n int) []Week {
	start := MondayOf(anchor)
	weeks := make([]Week, 0, n)

	for i := 0; i < n; i++ {
		weekStart := start.AddDate(0, 0, 7*i)
		weekEnd := weekStart.AddDate(0, 0, 6)
		weeks = append(weeks, Week{
			Label:     fmt.Sprintf("W%d", WeekNumber(weekStart)),
			DateRange: fmt.Sprintf("%s~%s", shortDate(weekStart), shortDate(weekEnd)),
			Start:     weekStart,
			End:       weekEnd,
		})
	}

	return weeks
}

// Window returns the instant range covered by weeks: midnight of the first
// Monday through the last millisecond of the final Sunday.
func Window(weeks []Week) (time.Time, time.Time) {
	if len(weeks) == 0 {
		return time.Time{}, time.Time{}
	}
	last := weeks[len(weeks)-1].End
	return weeks[0].Start, last.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// WeekNumber is a display label only: the week of the year counted from
// January 1st, shifted by the weekday the year started on.
func WeekNumber(t time.Time) int {
	day := civilDate(t)
	yearStart := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := day.Sub(yearStart).Hours() / 24
	return int(math.Ceil((days + float64(yearStart.Weekday()) + 1) / 7))
}

func shortDate(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}
