package store

import (
	"time"

	"dodo/internal/service"
	"dodo/internal/task"
)

// FromRow converts a stored row to a task.
func FromRow(r service.Row) task.Task {
	t := task.Task{
		ID:        r.ID,
		Content:   r.Content,
		IsDone:    r.IsDone,
		CreatedAt: r.CreatedAt,
		EndedAt:   copyTime(r.EndedAt),
		Deadline:  copyTime(r.Deadline),
	}
	if r.Duration != nil {
		d := time.Duration(*r.Duration) * time.Millisecond
		t.Duration = &d
	}
	return t
}

// ToRow converts a task to its stored shape.
func ToRow(t task.Task) service.Row {
	return service.Row{
		ID:        t.ID,
		Content:   t.Content,
		IsDone:    t.IsDone,
		CreatedAt: t.CreatedAt,
		EndedAt:   copyTime(t.EndedAt),
		Duration:  durationMillis(t.Duration),
		Deadline:  copyTime(t.Deadline),
	}
}

// Changes builds the column map for the given fields of t.
func Changes(t task.Task, fields task.Fields) service.Changes {
	row := ToRow(t)
	c := service.Changes{}
	if fields.Has(task.FieldContent) {
		c[service.ColumnContent] = row.Content
	}
	if fields.Has(task.FieldIsDone) {
		c[service.ColumnIsDone] = row.IsDone
	}
	if fields.Has(task.FieldCreatedAt) {
		c[service.ColumnCreatedAt] = row.CreatedAt
	}
	if fields.Has(task.FieldEndedAt) {
		c[service.ColumnEndedAt] = nullable(row.EndedAt)
	}
	if fields.Has(task.FieldDuration) {
		if row.Duration != nil {
			c[service.ColumnDuration] = *row.Duration
		} else {
			c[service.ColumnDuration] = nil
		}
	}
	if fields.Has(task.FieldDeadline) {
		c[service.ColumnDeadline] = nullable(row.Deadline)
	}
	return c
}

func nullable(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func durationMillis(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
