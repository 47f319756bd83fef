package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/constants"
)

// Date is a calendar date exchanged as "YYYY-MM-DD". RFC 3339 timestamps are
// accepted on input and truncated to their date.
type Date struct {
	time.Time
}

// ParseDate parses a date-only or RFC 3339 string.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(constants.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(constants.DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Ptr returns the date as a *time.Time, nil for a nil receiver.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
