package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks field values that violate a kind's declared types or enums.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an update targets an id that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable indicates the persistence backend cannot be reached.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrUnknownKind is returned for collection names outside Kinds().
	ErrUnknownKind = errors.New("unknown record kind")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Kind, e.Field, e.Message)
}

// Is reports ErrValidation so callers can branch with errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError names the kind and id of a missing record.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Is reports ErrNotFound.
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Unavailable wraps a backend failure so it matches ErrStoreUnavailable while
// keeping the underlying cause for logs.
func Unavailable(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, cause)
}
