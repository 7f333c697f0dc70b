// Package storage defines the Gateway interface: the contract any database
// backend must satisfy to persist catalog entities.
//
// Handlers depend only on this interface, so switching databases means
// implementing Gateway for the new backend and changing one line in main.
// Tests can pass any value that satisfies it.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation addresses an id that does not
// exist in the collection.
var ErrNotFound = errors.New("record not found")

// ErrPersistence matches every *Error with errors.Is.
var ErrPersistence = errors.New("persistence failure")

// Error reports a failure of the underlying store: a lost connection, a
// rejected statement, a scan that went wrong.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistence) match any *Error.
func (e *Error) Is(target error) bool { return target == ErrPersistence }

// Wrap returns nil when err is nil, otherwise an *Error for op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Gateway is the per-entity CRUD contract. T is the entity record type
// (types.Person, types.Genre).
//
// Every method takes a context so that an abandoned request also abandons
// its in-flight query.
type Gateway[T any] interface {
	// ListAll returns every record sorted ascending by name, ties broken by
	// id. An empty collection yields an empty, non-nil slice.
	ListAll(ctx context.Context) ([]T, error)

	// FindBySubstring returns the records whose name contains needle, in
	// ListAll order. The empty needle matches every record.
	FindBySubstring(ctx context.Context, needle string) ([]T, error)

	// Create inserts a record and returns it with its store-assigned id.
	Create(ctx context.Context, name string) (T, error)

	// Update overwrites the name of the record addressed by id.
	// Returns ErrNotFound if no record has that id.
	Update(ctx context.Context, id int64, name string) (T, error)

	// Delete removes the record addressed by id.
	// Returns ErrNotFound if no record has that id.
	Delete(ctx context.Context, id int64) error
}
