package utils

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order by ParseTimestamp
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"01/02/2006 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts the common export formats. Layouts without a zone
// are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// TimeToMinutes converts an HH:MM string to minutes since midnight
func TimeToMinutes(timeStr string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(timeStr))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", timeStr, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// AtClock places an HH:MM time of day on the calendar day of ref
func AtClock(ref time.Time, clock string) (time.Time, error) {
	minutes, err := TimeToMinutes(clock)
	if err != nil {
		return time.Time{}, err
	}
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

// ParseDay parses a YYYY-MM-DD date in loc
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
