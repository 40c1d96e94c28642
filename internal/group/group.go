// Package group partitions tasks into calendar buckets for the list view.
package group

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"dodo/internal/task"
)

// ErrInvalidGranularity is returned for an unknown bucket size.
var ErrInvalidGranularity = errors.New("invalid granularity")

// Granularity is a calendar bucket size.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// Granularities lists the accepted values in display order.
var Granularities = []Granularity{Day, Week, Month, Year}

// ParseGranularity parses a granularity name (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
	return g, nil
}

// Valid reports whether g is one of the enumerated granularities.
func (g Granularity) Valid() bool {
	return slices.Contains(Granularities, g)
}

// Bucket is one group of tasks sharing a calendar period.
type Bucket struct {
	Key   string
	Label string
	Tasks []task.Task
}

// Group sorts tasks newest first and splits them into buckets keyed by the
// calendar period of CreatedAt in loc. Buckets appear in first-encounter
// order, so the newest period comes first. A nil loc means time.Local.
func Group(tasks []task.Task, g Granularity, loc *time.Location) ([]Bucket, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGranularity, string(g))
	}
	if loc == nil {
		loc = time.Local
	}

	var buckets []Bucket
	index := make(map[string]int)
	for _, t := range SortNewestFirst(tasks) {
		created := t.CreatedAt.In(loc)
		key := keyOf(created, g)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key, Label: labelOf(created, g)})
		}
		buckets[i].Tasks = append(buckets[i].Tasks, t)
	}
	return buckets, nil
}

// SortNewestFirst returns a copy of tasks ordered by CreatedAt descending,
// ties broken by ID.
func SortNewestFirst(tasks []task.Task) []task.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b task.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

func keyOf(t time.Time, g Granularity) string {
	switch g {
	case Day:
		return t.Format("2006-01-02")
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return t.Format("2006-01")
	default:
		return t.Format("2006")
	}
}

func labelOf(t time.Time, g Granularity) string {
	switch g {
	case Day:
		return t.Format("Monday, January 2, 2006")
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("Week %d, %d", week, year)
	case Month:
		return t.Format("January 2006")
	default:
		return t.Format("2006")
	}
}
