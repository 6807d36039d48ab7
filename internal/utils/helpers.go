package utils

import (
	"fmt"
	"strings"
	"time"
)

func ParseYMD(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	// strip time to midnight UTC to match DATE semantics
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func FormatYMD(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// TruncateDay drops the clock part, keeping the calendar day in UTC.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays moves a calendar day by n days.
func AddDays(t time.Time, n int) time.Time {
	return TruncateDay(t).AddDate(0, 0, n)
}

// DaysInclusive counts calendar days from start to end, both included.
// Reversed or zero bounds count as one day.
func DaysInclusive(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 1
	}
	d := int(TruncateDay(end).Sub(TruncateDay(start)).Hours()/24) + 1
	if d < 1 {
		return 1
	}
	return d
}

// MonthBounds returns the first and last day of a YYYY-MM month.
func MonthBounds(month string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(month), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1), nil
}

// ParseTimestamp accepts the date and datetime layouts seen in retailer exports.
func ParseTimestamp(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	layouts := []struct {
		layout  string
		hasTime bool
	}{
		{time.RFC3339Nano, true},
		{time.RFC3339, true},
		{"2006-01-02 15:04:05", true},
		{"2006-01-02T15:04:05", true},
		{"2006-01-02 15:04", true},
		{"2006-01-02", false},
		{"2006/01/02", false},
		{"01/02/2006", false},
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l.layout, s, time.UTC); err == nil {
			return t.UTC(), l.hasTime, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", s)
}
