package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"dodo/internal/config"
	"dodo/internal/exitcode"
	"dodo/internal/store"
	"dodo/internal/task"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	content  string
	created  string
	ended    string
	deadline string
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "dodo edit [--content <s>] [--created <time>] [--ended <time>] [--deadline <time>|none] <ref>"
}
func (c *EditCmd) NeedsStore() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.content, "content", "", "")
	fs.StringVar(&c.created, "created", "", "")
	fs.StringVar(&c.ended, "ended", "", "")
	fs.StringVar(&c.deadline, "deadline", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	p, err := c.patch(st)
	if err != nil {
		return report(errOut, err)
	}
	if p.Empty() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	if _, code := update(ctx, st, args, p, errOut); code != exitcode.Success {
		return code
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func (c *EditCmd) patch(st *store.Store) (task.Patch, error) {
	loc := st.Now().Location()

	var p task.Patch
	if c.content != "" {
		content := c.content
		p.Content = &content
	}

	var err error
	if p.CreatedAt, err = timeFlag("created", c.created, loc); err != nil {
		return p, err
	}
	if p.EndedAt, err = timeFlag("ended", c.ended, loc); err != nil {
		return p, err
	}
	if strings.EqualFold(c.deadline, "none") {
		p.ClearDeadline = true
	} else if p.Deadline, err = timeFlag("deadline", c.deadline, loc); err != nil {
		return p, err
	}
	return p, nil
}
