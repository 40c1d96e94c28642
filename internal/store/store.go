// Package store mirrors the signed-in user's tasks in memory and keeps that
// mirror in step with the backend. The cache only changes from confirmed
// backend responses.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"dodo/internal/service"
	"dodo/internal/task"
)

// ErrNotFound is returned by Update when the id is not in the cache.
var ErrNotFound = errors.New("task not found")

// Error reports a failed backend operation. The cache is unchanged.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report failed operations.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock sets the time source used for new tasks and completion stamps.
// Readings are truncated to the millisecond like every stored timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the in-memory task collection backed by a service.Service.
type Store struct {
	svc service.Service
	log *zap.Logger
	now func() time.Time

	mu    sync.RWMutex
	tasks []task.Task
}

// New creates a Store over svc. The cache starts empty; call List to load it.
func New(svc service.Service, opts ...Option) *Store {
	s := &Store{
		svc: svc,
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List fetches every task, newest first, and replaces the cache with them.
// On failure the result is nil and the cache keeps its previous contents.
func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.svc.SelectAll(ctx)
	if err != nil {
		return nil, s.fail("list", "", err)
	}

	tasks := make([]task.Task, len(rows))
	for i, r := range rows {
		tasks[i] = FromRow(r)
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()

	s.log.Debug("tasks loaded", zap.Int("count", len(tasks)))
	return slices.Clone(tasks), nil
}

// Now returns the store's clock truncated to the millisecond, the precision
// of stored durations.
func (s *Store) Now() time.Time {
	return s.now().Truncate(time.Millisecond)
}

// Tasks returns a snapshot of the cache.
func (s *Store) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Get returns the cached task with the given id.
func (s *Store) Get(id string) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i], true
}

// Create persists a new open task created now.
func (s *Store) Create(ctx context.Context, content string) (task.Task, error) {
	if strings.TrimSpace(content) == "" {
		return task.Task{}, fmt.Errorf("%w: content must not be empty", task.ErrInvalidInput)
	}

	row, err := s.svc.Insert(ctx, service.Row{
		Content:   content,
		IsDone:    false,
		CreatedAt: s.Now(),
	})
	if err != nil {
		return task.Task{}, s.fail("create", "", err)
	}

	created := FromRow(row)
	s.mu.Lock()
	s.tasks = append([]task.Task{created}, s.tasks...)
	s.mu.Unlock()

	s.log.Debug("task created", zap.String("id", created.ID))
	return created, nil
}

// Update applies p to the cached task with the given id, persists the derived
// columns and returns the stored result. An id missing from the cache is a
// no-op reported as ErrNotFound.
func (s *Store) Update(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	cur, ok := s.Get(id)
	if !ok {
		s.log.Debug("update of unknown task ignored", zap.String("id", id))
		return task.Task{}, ErrNotFound
	}

	next, fields, err := task.DeriveFields(cur, truncatePatch(p), s.Now())
	if err != nil {
		return cur, err
	}
	if fields == 0 {
		return cur, nil
	}

	row, err := s.svc.Update(ctx, id, Changes(next, fields))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			s.log.Warn("task vanished from backend", zap.String("id", id))
			return task.Task{}, ErrNotFound
		}
		return cur, s.fail("update", id, err)
	}

	updated := FromRow(row)
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.tasks[i] = updated
	}
	s.mu.Unlock()

	s.log.Debug("task updated", zap.String("id", id))
	return updated, nil
}

// Delete removes the task with the given id. Deleting an absent task succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, ok := s.Get(id); !ok {
		return nil
	}

	if err := s.svc.Delete(ctx, id); err != nil && !errors.Is(err, service.ErrNotFound) {
		return s.fail("delete", id, err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.tasks = slices.Delete(s.tasks, i, i+1)
	}
	s.mu.Unlock()

	s.log.Debug("task deleted", zap.String("id", id))
	return nil
}

// truncatePatch drops sub-millisecond precision from the explicit timestamps
// of p.
func truncatePatch(p task.Patch) task.Patch {
	trunc := func(t *time.Time) *time.Time {
		if t == nil {
			return nil
		}
		v := t.Truncate(time.Millisecond)
		return &v
	}
	p.CreatedAt = trunc(p.CreatedAt)
	p.EndedAt = trunc(p.EndedAt)
	p.Deadline = trunc(p.Deadline)
	return p
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}

func (s *Store) fail(op, id string, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	s.log.Error("store operation failed", fields...)
	return &Error{Op: op, Err: err}
}
