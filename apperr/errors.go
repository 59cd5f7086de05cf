// Package apperr defines the sentinel errors shared across the service.
package apperr

import "errors"

var (
	// ErrValidation indicates a malformed element list or missing required fields.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates an unknown document.
	ErrNotFound = errors.New("not found")
	// ErrCorruptSource indicates original bytes that are not a loadable PDF.
	ErrCorruptSource = errors.New("corrupt source pdf")
	// ErrPersistence indicates a storage layer failure.
	ErrPersistence = errors.New("persistence failed")
)
