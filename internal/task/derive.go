package task

import (
	"fmt"
	"strings"
	"time"
)

// DeriveFields applies p to cur and returns the resulting task together with
// the set of columns that must be written.
//
// Marking a task done stamps EndedAt with now unless p carries an explicit
// EndedAt; reopening clears it. Duration is recomputed whenever CreatedAt,
// EndedAt or IsDone is part of the update.
func DeriveFields(cur Task, p Patch, now time.Time) (Task, Fields, error) {
	next := cur
	var changed Fields

	done := cur.IsDone
	if p.IsDone != nil {
		done = *p.IsDone
	}
	if p.EndedAt != nil && !done {
		return cur, 0, fmt.Errorf("%w: end time requires a done task", ErrInvalidInput)
	}

	if p.Content != nil {
		if strings.TrimSpace(*p.Content) == "" {
			return cur, 0, fmt.Errorf("%w: content must not be empty", ErrInvalidInput)
		}
		next.Content = *p.Content
		changed |= FieldContent
	}

	if p.CreatedAt != nil {
		if p.CreatedAt.IsZero() {
			return cur, 0, fmt.Errorf("%w: created time must be set", ErrInvalidInput)
		}
		next.CreatedAt = *p.CreatedAt
		changed |= FieldCreatedAt
	}

	switch {
	case p.ClearDeadline:
		next.Deadline = nil
		changed |= FieldDeadline
	case p.Deadline != nil:
		d := *p.Deadline
		next.Deadline = &d
		changed |= FieldDeadline
	}

	if p.IsDone != nil {
		next.IsDone = *p.IsDone
		changed |= FieldIsDone

		switch {
		case next.IsDone && !cur.IsDone:
			end := now
			if end.Before(next.CreatedAt) {
				end = next.CreatedAt
			}
			if p.EndedAt != nil {
				end = *p.EndedAt
			}
			next.EndedAt = &end
			changed |= FieldEndedAt
		case !next.IsDone && cur.IsDone:
			next.EndedAt = nil
			changed |= FieldEndedAt
		}
	}

	if p.EndedAt != nil && !changed.Has(FieldEndedAt) {
		end := *p.EndedAt
		next.EndedAt = &end
		changed |= FieldEndedAt
	}

	if changed&(FieldCreatedAt|FieldEndedAt|FieldIsDone) != 0 {
		next.Duration = durationOf(next)
		changed |= FieldDuration
	}

	return next, changed, nil
}

// durationOf returns EndedAt - CreatedAt, or nil while the task has no end.
func durationOf(t Task) *time.Duration {
	if t.EndedAt == nil || t.CreatedAt.IsZero() {
		return nil
	}
	d := t.EndedAt.Sub(t.CreatedAt)
	return &d
}
