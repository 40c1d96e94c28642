// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"dodo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	rows   []service.Row
	nextID int

	// Calls counts backend requests by operation name.
	Calls map[string]int

	// Error injection for testing
	SelectAllErr error
	InsertErr    error
	UpdateErr    error
	DeleteErr    error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		Calls:  make(map[string]int),
	}
}

// AddRow seeds a row. An empty ID is assigned the next sequence number.
func (f *FakeService) AddRow(row service.Row) service.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row.ID == "" {
		row.ID = f.allocID()
	}
	f.rows = append(f.rows, row)
	return row
}

// Row returns the stored row with the given id.
func (f *FakeService) Row(id string) (service.Row, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.index(id)
	if i < 0 {
		return service.Row{}, false
	}
	return f.rows[i], true
}

// Len returns the number of stored rows.
func (f *FakeService) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.rows)
}

// SelectAll implements service.Service.
func (f *FakeService) SelectAll(ctx context.Context) ([]service.Row, error) {
	f.count("select")
	if f.SelectAllErr != nil {
		return nil, f.SelectAllErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := slices.Clone(f.rows)
	slices.SortStableFunc(result, func(a, b service.Row) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result, nil
}

// Insert implements service.Service.
func (f *FakeService) Insert(ctx context.Context, row service.Row) (service.Row, error) {
	f.count("insert")
	if f.InsertErr != nil {
		return service.Row{}, f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	row.ID = f.allocID()
	f.rows = append(f.rows, row)
	return row, nil
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, id string, changes service.Changes) (service.Row, error) {
	f.count("update")
	if f.UpdateErr != nil {
		return service.Row{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return service.Row{}, service.ErrNotFound
	}
	f.rows[i] = f.rows[i].Apply(changes)
	return f.rows[i], nil
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, id string) error {
	f.count("delete")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.index(id)
	if i < 0 {
		return service.ErrNotFound
	}
	f.rows = slices.Delete(f.rows, i, i+1)
	return nil
}

func (f *FakeService) count(op string) {
	f.mu.Lock()
	f.Calls[op]++
	f.mu.Unlock()
}

// allocID must be called with mu held.
func (f *FakeService) allocID() string {
	for {
		id := strconv.Itoa(f.nextID)
		f.nextID++
		if f.index(id) < 0 {
			return id
		}
	}
}

func (f *FakeService) index(id string) int {
	return slices.IndexFunc(f.rows, func(r service.Row) bool { return r.ID == id })
}
