package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"dodo/internal/config"
	"dodo/internal/exitcode"
	"dodo/internal/output"
	"dodo/internal/store"
	"dodo/internal/task"
	"dodo/internal/timeline"
)

// DefaultChartWidth is the chart width when --width is not given.
const DefaultChartWidth = 80

func init() {
	Register(&GanttCmd{})
}

// GanttCmd implements the gantt command.
type GanttCmd struct {
	zoom  string
	width int
}

func (c *GanttCmd) Name() string      { return "gantt" }
func (c *GanttCmd) Aliases() []string { return []string{"timeline"} }
func (c *GanttCmd) Synopsis() string  { return "Show tasks on a timeline" }
func (c *GanttCmd) Usage() string     { return "dodo gantt [--zoom fit|day|week|month] [--width <n>]" }
func (c *GanttCmd) NeedsStore() bool  { return true }

func (c *GanttCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.zoom, "zoom", string(timeline.Fit), "")
	fs.IntVar(&c.width, "width", DefaultChartWidth, "")
}

func (c *GanttCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	zoom := c.zoom
	if zoom == "" {
		zoom = string(timeline.Fit)
	}
	mode, err := timeline.ParseZoomMode(zoom)
	if err != nil {
		return report(errOut, err)
	}
	width := c.width
	if width == 0 {
		width = DefaultChartWidth
	}
	if width < output.MinChartWidth {
		fmt.Fprintf(errOut, "error: width must be at least %d\n", output.MinChartWidth)
		return exitcode.UserError
	}

	tasks, err := st.List(ctx)
	if err != nil {
		return report(errOut, err)
	}
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	tasks = numbered(tasks)
	nums := make(map[string]int, len(tasks))
	for i, t := range tasks {
		nums[t.ID] = i + 1
	}

	chart, err := timeline.Layout(tasks, mode, st.Now())
	if err != nil {
		return report(errOut, err)
	}
	output.Chart(out, chart, width, func(t task.Task) string {
		return fmt.Sprintf("%4d  %s", nums[t.ID], t.Content)
	})
	return exitcode.Success
}
