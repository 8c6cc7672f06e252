package cmd

import (
	"fmt"
	"strings"
	"time"
)

// parseTimeArg accepts an RFC 3339 timestamp, a plain date (local midnight)
// or a duration. Durations are added to now, so "2h" is two hours from now
// and "-72h" three days ago.
func parseTimeArg(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339, YYYY-MM-DD or a duration like 90m", s)
}

// optionalTime parses s when it is set
func optionalTime(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTimeArg(s, now)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
