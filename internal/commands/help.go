package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"dodo/internal/config"
	"dodo/internal/exitcode"
	"dodo/internal/store"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "dodo help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  dodo                                          List tasks grouped by day
  dodo list [common flags] [--by day|week|month|year]
  dodo add [common flags] <content...>
  dodo done [common flags] [--at <time>] <ref>
  dodo undo [common flags] <ref>
  dodo edit [common flags] [--content <s>] [--created <time>] [--ended <time>]
            [--deadline <time>|none] <ref>
  dodo rm [common flags] <ref>
  dodo gantt [common flags] [--zoom fit|day|week|month] [--width <n>]
  dodo signup [common flags] --email <address>
  dodo login [common flags] [--email <address>]
  dodo logout [common flags]
  dodo help
  dodo version

<ref> is the task number shown by dodo list (newest first).
<time> is RFC 3339, 2006-01-02T15:04, 2006-01-02 15:04 or 2006-01-02 (local time).
Passwords are read from standard input.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
