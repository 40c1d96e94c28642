package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"dodo/internal/commands"
	"dodo/internal/config"
	"dodo/internal/exitcode"
	"dodo/internal/service"
	"dodo/internal/store"
	"dodo/internal/testutil"
)

// now is the fixed clock of every command test.
var now = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := config.New(t.TempDir())
	cfg.Quiet = quiet

	var st *store.Store
	if svc != nil {
		st = store.New(svc, store.WithClock(func() time.Time { return now }))
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, st, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func seed(svc *testutil.FakeService) {
	ended := time.Date(2024, 1, 2, 11, 30, 0, 0, time.UTC)
	ms := int64(150 * time.Minute / time.Millisecond)
	svc.AddRow(service.Row{Content: "Write report", IsDone: true, CreatedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), EndedAt: &ended, Duration: &ms})
	svc.AddRow(service.Row{Content: "Buy milk", CreatedAt: time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)})
	svc.AddRow(service.Row{Content: "Call mom", CreatedAt: time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)})
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "dodo 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("help output should contain 'Usage:'")
	}
	for _, name := range []string{"list", "add", "done", "undo", "edit", "rm", "gantt", "login", "signup"} {
		if !strings.Contains(stdout, "dodo "+name) {
			t.Errorf("help output should mention %q", name)
		}
	}
}

// Tests for list command
func TestListCommand_ByDay(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc)

	cmd := &commands.ListCmd{}
	cmd.SetGranularity("day")
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := "------------\nWednesday, January 3, 2024\n------------\n" +
		"   1  [ ] Call mom\n" +
		"   2  [ ] Buy milk\n" +
		"------------\nTuesday, January 2, 2024\n------------\n" +
		"   3  [x] Write report  (2h 30m)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_ByYear(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc)

	cmd := &commands.ListCmd{}
	cmd.SetGranularity("year")
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if strings.Count(stdout, "------------\n2024\n------------\n") != 1 {
		t.Errorf("expected a single 2024 bucket, got %q", stdout)
	}
}

func TestListCommand_InvalidGranularity(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ListCmd{}
	cmd.SetGranularity("decade")
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid granularity") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls["select"] != 0 {
		t.Error("expected no backend request")
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected %q, got %q", "no tasks found\n", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	// Quiet mode should suppress "no tasks found"
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SelectAllErr = errBackend

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	expected := "error: backend error: connection refused\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestListCommand_Unauthorized(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SelectAllErr = service.ErrUnauthorized

	_, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	row, ok := svc.Row("1")
	if !ok {
		t.Fatal("expected task to be stored")
	}
	if row.Content != "Buy milk" || row.IsDone || !row.CreatedAt.Equal(now) {
		t.Errorf("unexpected stored row %+v", row)
	}
}

func TestAddCommand_NoContent(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: content required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for done and undo commands
func TestDoneCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddRow(service.Row{Content: "Report", CreatedAt: time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC)})

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok (2h 30m)\n" {
		t.Errorf("expected 'ok (2h 30m)\\n', got %q", stdout)
	}

	row, _ := svc.Row("1")
	if !row.IsDone || row.EndedAt == nil || !row.EndedAt.Equal(now) {
		t.Errorf("expected task completed now, got %+v", row)
	}
	if row.Duration == nil || *row.Duration != 9000000 {
		t.Errorf("expected duration 9000000, got %v", row.Duration)
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc)

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"4"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: task number out of range: 4\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if svc.Calls["update"] != 0 {
		t.Error("expected no backend update")
	}
}

func TestDoneCommand_NoRef(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task reference required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestUndoCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc)

	// "Write report" is the oldest task, number 3.
	stdout, _, code := runCommand(t, &commands.UndoCmd{}, svc, []string{"3"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	row, _ := svc.Row("1")
	if row.IsDone || row.EndedAt != nil || row.Duration != nil {
		t.Errorf("expected task reopened with end and duration cleared, got %+v", row)
	}
}

func TestUpdateCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc)
	svc.UpdateErr = errBackend

	_, stderr, code := runCommand(t, &commands.UndoCmd{}, svc, []string{"3"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc)

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" || stderr != "" {
		t.Errorf("expected no output in quiet mode, got %q / %q", stdout, stderr)
	}
	if _, ok := svc.Row("3"); ok {
		t.Error("expected newest task (Call mom) to be deleted")
	}
	if svc.Len() != 2 {
		t.Errorf("expected 2 tasks left, got %d", svc.Len())
	}
}

func TestRmCommand_InvalidRef(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"abc"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid task reference: abc\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for gantt command
func TestGanttCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc)

	stdout, stderr, code := runCommand(t, &commands.GanttCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header, labels, axis and 3 bars, got:\n%s", stdout)
	}
	if lines[0] != "2024-01-02 .. 2024-01-04 (fit)" {
		t.Errorf("unexpected range line %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "   1  Call mom") || !strings.HasPrefix(lines[5], "   3  Write report") {
		t.Errorf("expected bars in list order, got:\n%s", stdout)
	}
}

func TestGanttCommand_InvalidZoom(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.GanttCmd{}

	var outBuf, errBuf bytes.Buffer
	fsArgs := []string{"--zoom", "hour"}
	code := runWithFlags(t, cmd, svc, fsArgs, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(errBuf.String(), "error: invalid zoom mode") {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}
