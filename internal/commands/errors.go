package commands

import (
	"errors"
	"fmt"
	"io"

	"dodo/internal/exitcode"
	"dodo/internal/group"
	"dodo/internal/service"
	"dodo/internal/store"
	"dodo/internal/task"
	"dodo/internal/timeline"
)

// report prints err to errOut and returns the exit code of its category.
func report(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	case errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrTaskRefRange),
		errors.Is(err, group.ErrInvalidGranularity),
		errors.Is(err, timeline.ErrInvalidZoomMode):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		fmt.Fprintf(errOut, "error: backend error: %v\n", storeErr.Err)
		return exitcode.BackendError
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}
