package analysis

import (
	"fmt"
	"strings"
	"time"
)

// localLayouts are the wall-clock forms a date-time input can produce.
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseLocalTime reads a date-time input. Values that already carry an offset keep it;
// wall-clock values are interpreted in loc.
func ParseLocalTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date-time")
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date-time %q", raw)
}

// CanonicalTimestamp renders t as a UTC RFC 3339 timestamp. Sub-second precision is kept
// when present, so the value round-trips through the backend unchanged.
func CanonicalTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ToCanonicalTimestamp parses a date-time input and renders it canonically.
func ToCanonicalTimestamp(raw string, loc *time.Location) (string, error) {
	t, err := ParseLocalTime(raw, loc)
	if err != nil {
		return "", err
	}
	return CanonicalTimestamp(t), nil
}
