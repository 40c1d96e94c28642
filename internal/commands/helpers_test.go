package commands_test

import (
	"context"
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	"dodo/internal/commands"
	"dodo/internal/config"
	"dodo/internal/store"
	"dodo/internal/testutil"
)

var errBackend = errors.New("connection refused")

// runWithFlags parses args with the command's flags before running it.
func runWithFlags(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, out, errOut io.Writer) int {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("flag parse error: %v", err)
	}

	st := store.New(svc, store.WithClock(func() time.Time { return now }))
	return cmd.Run(context.Background(), config.New(t.TempDir()), st, fs.Args(), out, errOut)
}

// runLogin parses args with the command's flags and runs it without a store.
func runLogin(t *testing.T, cmd commands.Command, cfg *config.Config, args []string, out, errOut io.Writer) int {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("flag parse error: %v", err)
	}
	return cmd.Run(context.Background(), cfg, nil, fs.Args(), out, errOut)
}
