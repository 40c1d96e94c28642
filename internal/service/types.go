package service

import "time"

// Column names of the todos table.
const (
	ColumnID        = "id"
	ColumnContent   = "content"
	ColumnIsDone    = "is_done"
	ColumnCreatedAt = "created_at"
	ColumnEndedAt   = "ended_at"
	ColumnDuration  = "duration"
	ColumnDeadline  = "deadline"
)

// Row is the wire shape of a stored task.
type Row struct {
	ID        string     `json:"id,omitempty"`
	Content   string     `json:"content"`
	IsDone    bool       `json:"is_done"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Duration  *int64     `json:"duration"` // milliseconds
	Deadline  *time.Time `json:"deadline"`
}

// Changes maps column names to their new values. A nil value writes NULL.
// Values are string, bool, time.Time, int64 or nil.
type Changes map[string]any

// UpdatableColumns lists the columns a Changes map may carry.
var UpdatableColumns = []string{
	ColumnContent,
	ColumnIsDone,
	ColumnCreatedAt,
	ColumnEndedAt,
	ColumnDuration,
	ColumnDeadline,
}

// Apply returns a copy of r with changes written over it.
// Unknown columns are ignored.
func (r Row) Apply(changes Changes) Row {
	out := r
	for col, v := range changes {
		switch col {
		case ColumnContent:
			if s, ok := v.(string); ok {
				out.Content = s
			}
		case ColumnIsDone:
			if b, ok := v.(bool); ok {
				out.IsDone = b
			}
		case ColumnCreatedAt:
			if t, ok := v.(time.Time); ok {
				out.CreatedAt = t
			}
		case ColumnEndedAt:
			out.EndedAt = timeValue(v)
		case ColumnDuration:
			if ms, ok := v.(int64); ok {
				out.Duration = &ms
			} else {
				out.Duration = nil
			}
		case ColumnDeadline:
			out.Deadline = timeValue(v)
		}
	}
	return out
}

func timeValue(v any) *time.Time {
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}
