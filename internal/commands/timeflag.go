package commands

import (
	"fmt"
	"strings"
	"time"

	"dodo/internal/task"
)

// timeLayouts are tried in order. Layouts without a zone are read in the
// local time zone.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime reads a time flag value in loc.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid time %q (use RFC 3339 or 2006-01-02 15:04)", task.ErrInvalidInput, s)
}

// timeFlag parses an optional time flag; empty means unset.
func timeFlag(name, value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseTime(value, loc)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &t, nil
}
