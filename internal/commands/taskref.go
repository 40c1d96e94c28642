package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"dodo/internal/group"
	"dodo/internal/store"
	"dodo/internal/task"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ErrTaskRefRange indicates a task number past the end of the list.
var ErrTaskRefRange = errors.New("task number out of range")

// ParseTaskRef parses the 1-based task number shown by `dodo list`.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	if num < 1 {
		return 0, fmt.Errorf("%w: %d", ErrTaskRefRange, num)
	}
	return num, nil
}

// numbered returns tasks in list order: newest first.
func numbered(tasks []task.Task) []task.Task {
	return group.SortNewestFirst(tasks)
}

// resolveTask loads the tasks and returns the one numbered num.
func resolveTask(ctx context.Context, st *store.Store, num int) (task.Task, error) {
	tasks, err := st.List(ctx)
	if err != nil {
		return task.Task{}, err
	}
	tasks = numbered(tasks)
	if num > len(tasks) {
		return task.Task{}, fmt.Errorf("%w: %d", ErrTaskRefRange, num)
	}
	return tasks[num-1], nil
}
