// Package task defines the to-do record and the rules that derive its
// completion fields.
package task

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput is returned for empty content or unusable timestamps.
var ErrInvalidInput = errors.New("invalid input")

// Task is a single to-do record.
type Task struct {
	ID        string
	Content   string
	IsDone    bool
	CreatedAt time.Time

	// EndedAt is set while the task is done.
	EndedAt *time.Time

	// Duration is EndedAt - CreatedAt when both are present.
	Duration *time.Duration

	Deadline *time.Time
}

// End returns EndedAt, or now for a task that is still open.
func (t Task) End(now time.Time) time.Time {
	if t.EndedAt != nil {
		return *t.EndedAt
	}
	return now
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Content   *string
	IsDone    *bool
	CreatedAt *time.Time
	EndedAt   *time.Time
	Deadline  *time.Time

	// ClearDeadline removes the deadline. It wins over Deadline.
	ClearDeadline bool
}

// Empty reports whether the patch requests no change at all.
func (p Patch) Empty() bool {
	return p.Content == nil && p.IsDone == nil && p.CreatedAt == nil &&
		p.EndedAt == nil && p.Deadline == nil && !p.ClearDeadline
}

// Fields is a set of task columns touched by an update.
type Fields uint8

const (
	FieldContent Fields = 1 << iota
	FieldIsDone
	FieldCreatedAt
	FieldEndedAt
	FieldDuration
	FieldDeadline
)

// Has reports whether f contains every field in other.
func (f Fields) Has(other Fields) bool { return f&other == other }

// FormatDuration renders d the way the list view shows time spent:
// "2d 3h", "2h 30m", "5m" or "42s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
