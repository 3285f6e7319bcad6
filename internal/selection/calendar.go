package selection

import (
	"fmt"
	"strings"
	"time"
)

// Option is one (value, label) entry of a selection field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

const weekValueLayout = "2006-01-02"

// MonthOptions lists the twelve months. Values are the lower-case English
// month names stored on a work program.
func MonthOptions() []Option {
	out := make([]Option, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, Option{Value: strings.ToLower(m.String()), Label: m.String()})
	}
	return out
}

// DefaultMonth is the month value of now.
func DefaultMonth(now time.Time) string {
	return strings.ToLower(now.Month().String())
}

// WeekOptions lists the Monday-aligned weeks of year. The first week starts
// on the Monday on or before January 1st, so it may begin in December of the
// previous year; weeks starting after the year are omitted.
func WeekOptions(year int) []Option {
	monday := MondayOf(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
	out := make([]Option, 0, 53)
	for i := 0; i < 53; i++ {
		start := monday.AddDate(0, 0, 7*i)
		if start.Year() > year {
			break
		}
		out = append(out, Option{
			Value: start.Format(weekValueLayout),
			Label: fmt.Sprintf("%d - %s", start.Day(), start.Month()),
		})
	}
	return out
}

// DefaultWeek is the week value of the Monday starting now's week.
func DefaultWeek(now time.Time) string {
	return MondayOf(now).Format(weekValueLayout)
}

// MondayOf returns midnight UTC of the Monday on or before t.
func MondayOf(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// ParseWeek parses a week option value.
func ParseWeek(value string) (time.Time, error) {
	t, err := time.Parse(weekValueLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("week %q: expected YYYY-MM-DD", value)
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("week %q does not start on a Monday", value)
	}
	return t, nil
}
