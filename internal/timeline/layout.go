package timeline

import (
	"slices"
	"time"

	"dodo/internal/task"
)

// Bar is the placement of one task.
type Bar struct {
	Task  task.Task
	Left  float64
	Width float64

	// Deadline is the position of the task's deadline, if it has one.
	Deadline *float64
}

// Chart is a complete layout of a task set under one zoom mode.
type Chart struct {
	Mode   ZoomMode
	Scale  Scale
	Range  Range
	Extent float64
	Bars   []Bar
	Ticks  []Tick

	// Now is the position of the current-time marker.
	Now float64
}

// Layout places every task, the ticks and the current-time marker. Bars keep
// the order of tasks.
func Layout(tasks []task.Task, m ZoomMode, now time.Time) (Chart, error) {
	s, err := ScaleFor(m)
	if err != nil {
		return Chart{}, err
	}
	r := ComputeRange(tasks, now)
	ticks, err := TickMarks(r, m)
	if err != nil {
		return Chart{}, err
	}

	chart := Chart{
		Mode:   m,
		Scale:  s,
		Range:  r,
		Extent: Extent(r, s),
		Ticks:  slices.Collect(ticks),
		Now:    Position(now, r, s),
		Bars:   make([]Bar, 0, len(tasks)),
	}
	for _, t := range tasks {
		bar := Bar{
			Task:  t,
			Left:  Position(t.CreatedAt, r, s),
			Width: Width(t.CreatedAt, t.EndedAt, now, r, s),
		}
		if t.Deadline != nil {
			pos := Position(*t.Deadline, r, s)
			bar.Deadline = &pos
		}
		chart.Bars = append(chart.Bars, bar)
	}
	return chart, nil
}
