package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"dodo/internal/task"
	"dodo/internal/timeline"
)

const (
	// PixelsPerColumn is the chart width one text column stands for in the
	// fixed-scale zoom modes.
	PixelsPerColumn = 10.0

	// MinChartWidth is the narrowest accepted terminal width.
	MinChartWidth = 40

	labelWidth = 24

	rangeLayout = "2006-01-02"
)

// Bar cells.
const (
	cellDone     = '='
	cellOpen     = '~'
	cellDeadline = '!'
	cellMajor    = '+'
	cellMinor    = '.'
	cellAxis     = '-'
	cellNow      = '*'
)

// Chart renders c as text at most width columns wide. label names each bar,
// typically by its list number. When a fixed-scale chart is wider than the
// terminal the visible window is the one ending at the present.
func Chart(w io.Writer, c timeline.Chart, width int, label func(task.Task) string) {
	width = max(width, MinChartWidth)
	cols := width - labelWidth - 1

	perCol := PixelsPerColumn
	if c.Scale.Fit {
		perCol = c.Extent / float64(cols)
	}
	if perCol <= 0 {
		perCol = 1
	}
	column := func(px float64) int { return int(math.Floor(px / perCol)) }

	total := max(int(math.Ceil(c.Extent/perCol)), 1)
	offset := 0
	if total > cols {
		offset = min(max(column(c.Now)-cols+1, 0), total-cols)
	}

	fmt.Fprintf(w, "%s .. %s (%s)\n",
		c.Range.Start.Format(rangeLayout), c.Range.End.Format(rangeLayout), c.Mode)

	labels := blank(cols, ' ')
	axis := blank(cols, cellAxis)
	lastLabelEnd := -1
	for _, tick := range c.Ticks {
		col := column(tick.Position) - offset
		if col < 0 || col >= cols {
			continue
		}
		if tick.Minor {
			axis[col] = cellMinor
			continue
		}
		axis[col] = cellMajor
		if col > lastLabelEnd && col+len(tick.Label) <= cols {
			copy(labels[col:], []rune(tick.Label))
			lastLabelEnd = col + len(tick.Label)
		}
	}
	if col := column(c.Now) - offset; col >= 0 && col < cols {
		axis[col] = cellNow
	}

	pad := strings.Repeat(" ", labelWidth+1)
	fmt.Fprintln(w, strings.TrimRight(pad+string(labels), " "))
	fmt.Fprintln(w, pad+string(axis))

	for _, bar := range c.Bars {
		row := blank(cols, ' ')
		cell := cellOpen
		if bar.Task.IsDone {
			cell = cellDone
		}
		left := column(bar.Left) - offset
		right := max(column(bar.Left+bar.Width), column(bar.Left)+1) - offset
		for col := max(left, 0); col < min(right, cols); col++ {
			row[col] = cell
		}
		if bar.Deadline != nil {
			if col := column(*bar.Deadline) - offset; col >= 0 && col < cols {
				row[col] = cellDeadline
			}
		}
		fmt.Fprintf(w, "%-*s %s\n", labelWidth, truncate(label(bar.Task), labelWidth), strings.TrimRight(string(row), " "))
	}
}

func blank(n int, r rune) []rune {
	row := make([]rune, n)
	for i := range row {
		row[i] = r
	}
	return row
}

func truncate(s string, n int) string {
	s = normalizeContent(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
