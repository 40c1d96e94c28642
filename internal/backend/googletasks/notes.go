package googletasks

import (
	"strings"
	"time"
)

// createdPrefix starts the notes line holding the creation time, which the
// API does not expose.
const createdPrefix = "created: "

func parseCreated(notes string) (time.Time, bool) {
	for line := range strings.Lines(notes) {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), createdPrefix)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, rest)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// setCreated replaces or prepends the created line, keeping any other notes.
func setCreated(notes string, t time.Time) string {
	line := createdPrefix + formatTime(t)

	var rest []string
	for l := range strings.Lines(notes) {
		l = strings.TrimRight(l, "\r\n")
		if strings.HasPrefix(strings.TrimSpace(l), createdPrefix) {
			continue
		}
		rest = append(rest, l)
	}
	if len(rest) == 0 {
		return line
	}
	return line + "\n" + strings.Join(rest, "\n")
}
