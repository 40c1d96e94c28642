// Package timeline lays tasks out on a time axis for the Gantt view.
//
// Every function is a pure function of its arguments. The current time is
// always passed in by the caller; nothing here reads the wall clock.
package timeline

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"dodo/internal/task"
)

const (
	// MinSpanHours is the smallest usable span of a range.
	MinSpanHours = 24

	// MinBarHours is the smallest extent a bar is drawn with.
	MinBarHours = 1
)

// ErrInvalidZoomMode is returned for an unknown zoom mode.
var ErrInvalidZoomMode = errors.New("invalid zoom mode")

// ZoomMode is a display scale of the timeline.
type ZoomMode string

const (
	Fit   ZoomMode = "fit"
	Day   ZoomMode = "day"
	Week  ZoomMode = "week"
	Month ZoomMode = "month"
)

// ZoomModes lists the accepted modes, zoomed in to zoomed out after Fit.
var ZoomModes = []ZoomMode{Fit, Day, Week, Month}

// ParseZoomMode parses a zoom mode name (case-insensitive).
func ParseZoomMode(s string) (ZoomMode, error) {
	m := ZoomMode(strings.ToLower(strings.TrimSpace(s)))
	if _, err := ScaleFor(m); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidZoomMode, s)
	}
	return m, nil
}

// Scale converts elapsed hours into a coordinate. With Fit set, coordinates
// are percentages of the range; otherwise they are pixels.
type Scale struct {
	Fit           bool
	PixelsPerHour float64
}

// ScaleFor returns the scale of a zoom mode.
func ScaleFor(m ZoomMode) (Scale, error) {
	switch m {
	case Fit:
		return Scale{Fit: true}, nil
	case Day:
		return Scale{PixelsPerHour: 10}, nil
	case Week:
		return Scale{PixelsPerHour: 2}, nil
	case Month:
		return Scale{PixelsPerHour: 0.5}, nil
	default:
		return Scale{}, fmt.Errorf("%w: %q", ErrInvalidZoomMode, string(m))
	}
}

// convert maps a number of hours onto the scale.
func (s Scale) convert(hours float64, r Range) float64 {
	if s.Fit {
		return hours / r.Hours() * 100
	}
	return hours * s.PixelsPerHour
}

// Range is the time span shared by every bar of a chart.
type Range struct {
	Start time.Time
	End   time.Time
}

// Hours returns the span of r in hours, never less than MinSpanHours.
func (r Range) Hours() float64 {
	h := r.End.Sub(r.Start).Hours()
	if h < MinSpanHours {
		return MinSpanHours
	}
	return h
}

// Days returns the number of calendar days in [Start, End).
func (r Range) Days() int {
	n := 0
	for range r.days() {
		n++
	}
	return n
}

// days yields the start of every calendar day in [Start, End).
func (r Range) days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if !r.Start.Before(r.End) {
			return
		}
		for day := startOfDay(r.Start); day.Before(r.End); day = nextDay(day) {
			if !yield(day) {
				return
			}
		}
	}
}

// ComputeRange returns the calendar days covering every creation, end and
// deadline of tasks, with now standing in for the end of open tasks. Days
// are taken in now's location. With no tasks both ends are now.
func ComputeRange(tasks []task.Task, now time.Time) Range {
	if len(tasks) == 0 {
		return Range{Start: now, End: now}
	}

	lo, hi := tasks[0].CreatedAt, tasks[0].CreatedAt
	widen := func(t time.Time) {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	for _, t := range tasks {
		widen(t.CreatedAt)
		widen(t.End(now))
		if t.Deadline != nil {
			widen(*t.Deadline)
		}
	}

	loc := now.Location()
	return Range{
		Start: startOfDay(lo.In(loc)),
		End:   ceilDay(hi.In(loc)),
	}
}

// Position returns the coordinate of t on the axis of r.
func Position(t time.Time, r Range, s Scale) float64 {
	return s.convert(t.Sub(r.Start).Hours(), r)
}

// Width returns the extent of a bar from start to end, or to now when end
// is nil. Bars shorter than MinBarHours are drawn MinBarHours wide.
func Width(start time.Time, end *time.Time, now time.Time, r Range, s Scale) float64 {
	stop := now
	if end != nil {
		stop = *end
	}
	hours := stop.Sub(start).Hours()
	if hours < MinBarHours {
		hours = MinBarHours
	}
	return s.convert(hours, r)
}

// Extent returns the full size of the axis: 100 for Fit, pixels otherwise.
func Extent(r Range, s Scale) float64 {
	return s.convert(r.Hours(), r)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ceilDay returns t if it is a midnight, else the following midnight.
func ceilDay(t time.Time) time.Time {
	if day := startOfDay(t); day.Equal(t) {
		return day
	}
	return nextDay(t)
}

func nextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
