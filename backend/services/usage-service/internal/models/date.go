package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the wire and storage format for calendar days.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string cannot be interpreted.
var ErrInvalidDate = errors.New("models: invalid date")

// ParseDate accepts ISO days as well as the other unambiguous layouts dateparse understands
// ("2024-03-01T10:00:00Z", "March 1, 2024") and truncates the result to a UTC calendar day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseStrict(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return Day(t), nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar day in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
