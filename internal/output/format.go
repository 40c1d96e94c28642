// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"dodo/internal/task"
)

const (
	// BucketSeparator is the separator line around bucket headers.
	BucketSeparator = "------------"

	// DeadlineLayout formats deadlines on task lines.
	DeadlineLayout = "Jan 2 15:04"
)

// FormatBucketHeader formats a group header.
func FormatBucketHeader(w io.Writer, label string) {
	fmt.Fprintln(w, BucketSeparator)
	fmt.Fprintln(w, label)
	fmt.Fprintln(w, BucketSeparator)
}

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {CONTENT}" followed by the duration of done tasks and
// the deadline, if any. Deadlines are shown in now's location.
func FormatTask(w io.Writer, num int, t task.Task, now time.Time) {
	mark := "[ ]"
	if t.IsDone {
		mark = "[x]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%4d  %s %s", num, mark, normalizeContent(t.Content))
	if t.IsDone && t.Duration != nil {
		fmt.Fprintf(&b, "  (%s)", task.FormatDuration(*t.Duration))
	}
	if t.Deadline != nil {
		fmt.Fprintf(&b, "  due %s", t.Deadline.In(now.Location()).Format(DeadlineLayout))
		if !t.IsDone && t.Deadline.Before(now) {
			b.WriteString(" (overdue)")
		}
	}
	fmt.Fprintln(w, b.String())
}

// normalizeContent normalizes task content for display.
// - Empty or whitespace-only content becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r", " ")
	content = strings.ReplaceAll(content, "\n", " ")

	if strings.TrimSpace(content) == "" {
		return "(untitled)"
	}
	return content
}
