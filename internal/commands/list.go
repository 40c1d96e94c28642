package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"dodo/internal/config"
	"dodo/internal/exitcode"
	"dodo/internal/group"
	"dodo/internal/output"
	"dodo/internal/store"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `dodo` (no args) and `dodo list --by <granularity>`.
type ListCmd struct {
	by string
}

// SetGranularity sets the grouping (for testing).
func (c *ListCmd) SetGranularity(by string) {
	c.by = by
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks grouped by period" }
func (c *ListCmd) Usage() string     { return "dodo list [--by day|week|month|year]" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.by, "by", string(group.Day), "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	by := c.by
	if by == "" {
		by = string(group.Day)
	}
	g, err := group.ParseGranularity(by)
	if err != nil {
		return report(errOut, err)
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

	now := st.Now()
	buckets, err := group.Group(tasks, g, now.Location())
	if err != nil {
		return report(errOut, err)
	}
	for _, b := range buckets {
		output.FormatBucketHeader(out, b.Label)
		for _, t := range b.Tasks {
			output.FormatTask(out, nums[t.ID], t, now)
		}
	}
	return exitcode.Success
}
