package common

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTime = errors.New("invalid time format; use RFC3339 or unix seconds")

// layouts accepted in addition to unix seconds; zone-less layouts are UTC
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTime tries RFC3339, a few zone-less ISO layouts, then unix seconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, ErrInvalidTime
}

// ParseClock parses "HH:MM" into fractional hours of the day.
func ParseClock(s string) (float64, error) {
	ts, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return float64(ts.Hour()) + float64(ts.Minute())/60, nil
}
