package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"dodo/internal/config"
	"dodo/internal/exitcode"
	"dodo/internal/store"
	"dodo/internal/task"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	at string
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "dodo done [--at <time>] <ref>" }
func (c *DoneCmd) NeedsStore() bool  { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.at, "at", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	done := true
	p := task.Patch{IsDone: &done}
	if c.at != "" {
		at, err := parseTime(c.at, st.Now().Location())
		if err != nil {
			return report(errOut, err)
		}
		p.EndedAt = &at
	}

	t, code := update(ctx, st, args, p, errOut)
	if code != exitcode.Success {
		return code
	}

	if !cfg.Quiet {
		if t.Duration != nil {
			fmt.Fprintf(out, "ok (%s)\n", task.FormatDuration(*t.Duration))
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}

// UndoCmd implements the undo command.
type UndoCmd struct{}

func (c *UndoCmd) Name() string      { return "undo" }
func (c *UndoCmd) Aliases() []string { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string  { return "Mark a task open again" }
func (c *UndoCmd) Usage() string     { return "dodo undo <ref>" }
func (c *UndoCmd) NeedsStore() bool  { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	done := false
	if _, code := update(ctx, st, args, task.Patch{IsDone: &done}, errOut); code != exitcode.Success {
		return code
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// update resolves the task reference in args and applies p to it.
func update(ctx context.Context, st *store.Store, args []string, p task.Patch, errOut io.Writer) (task.Task, int) {
	num, err := ParseTaskRef(args)
	if err != nil {
		return task.Task{}, report(errOut, err)
	}
	t, err := resolveTask(ctx, st, num)
	if err != nil {
		return task.Task{}, report(errOut, err)
	}
	updated, err := st.Update(ctx, t.ID, p)
	if err != nil {
		return task.Task{}, report(errOut, err)
	}
	return updated, exitcode.Success
}
