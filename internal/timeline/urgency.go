package timeline

import (
	"fmt"
	"time"
)

// Level is the urgency band of a due date.
type Level string

const (
	LevelOverdue  Level = "overdue"
	LevelCritical Level = "critical"
	LevelHigh     Level = "high"
	LevelMedium   Level = "medium"
	LevelNormal   Level = "normal"
)

// Tone is the colour family a renderer should use for the level.
func (l Level) Tone() string {
	switch l {
	case LevelOverdue, LevelCritical:
		return "red"
	case LevelHigh:
		return "orange"
	case LevelMedium:
		return "yellow"
	default:
		return "gray"
	}
}

// Urgency is a classified D-day.
type Urgency struct {
	DDay  int    `json:"d_day"`
	Level Level  `json:"level"`
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// DDay is the signed number of calendar days from today to due. Zero means
// due today, negative means overdue.
func DDay(due, today time.Time) int {
	return int(civilDate(due).Sub(civilDate(today)).Hours() / 24)
}

// Classify buckets a D-day. Thread and task badges both go through here.
func Classify(dDay int) Urgency {
	u := Urgency{DDay: dDay, Label: fmt.Sprintf("D-%d", dDay)}

	switch {
	case dDay < 0:
		u.Level = LevelOverdue
		u.Label = fmt.Sprintf("D+%d", -dDay)
	case dDay <= 1:
		u.Level = LevelCritical
	case dDay <= 3:
		u.Level = LevelHigh
	case dDay <= 7:
		u.Level = LevelMedium
	default:
		u.Level = LevelNormal
	}

	u.Tone = u.Level.Tone()
	return u
}

// UrgencyOf is Classify(DDay(due, today)).
func UrgencyOf(due, today time.Time) Urgency {
	return Classify(DDay(due, today))
}
