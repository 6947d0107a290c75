package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the operation targeted an unknown id.
	ErrNotFound = errors.New("record not found")
	// ErrNotAuthenticated means the operation requires a logged-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a persistence failure surfaced at the repository
// boundary. The in-memory state keeps the change; the caller decides
// whether to roll back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
