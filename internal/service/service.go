// Package service defines the contract of the persistence collaborator that
// stores task rows for the signed-in user.
package service

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no row has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the session is missing, expired or revoked.
	ErrUnauthorized = errors.New("unauthorized")
)

// Service is implemented by every backend.
// Commands never talk to a backend directly; they go through store.Store.
type Service interface {
	// SelectAll returns every row of the current principal, newest created_at first.
	SelectAll(ctx context.Context) ([]Row, error)

	// Insert persists a row and returns it as stored, with its assigned id.
	Insert(ctx context.Context, row Row) (Row, error)

	// Update writes the given columns of one row and returns the stored row.
	// Returns ErrNotFound if no row has that id.
	Update(ctx context.Context, id string, changes Changes) (Row, error)

	// Delete removes a row. Returns ErrNotFound if no row has that id.
	Delete(ctx context.Context, id string) error
}
