package data

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped by every *ConflictError.
	ErrConflict = errors.New("conflict")
	// ErrInvalidReference is returned when a foreign key points nowhere,
	// e.g. a page referencing an unknown category.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNotImplemented is returned by operations that are reserved.
	ErrNotImplemented = errors.New("not implemented")
)

// ConflictError reports which unique field of which entity was violated.
type ConflictError struct {
	Entity string
	Field  string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s already exists", e.Entity)
	}
	return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
