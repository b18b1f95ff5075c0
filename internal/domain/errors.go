// Package domain holds the catalog's entities and error taxonomy.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource. The entity-specific variants
	// below wrap it, so errors.Is against ErrNotFound matches any of them.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)
	// ErrLabelNotFound signals a missing label.
	ErrLabelNotFound = fmt.Errorf("label %w", ErrNotFound)
	// ErrTypeNotFound signals a missing document type.
	ErrTypeNotFound = fmt.Errorf("document type %w", ErrNotFound)
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation signals a malformed input batch, rejected before persistence.
	ErrValidation = errors.New("validation failed")
	// ErrBatchMismatch signals an update batch naming entries that do not exist.
	// The whole batch is rejected; nothing is partially applied.
	ErrBatchMismatch = errors.New("batch references unknown entries")
)

// BatchMismatchError wraps ErrBatchMismatch with the unmatched names.
type BatchMismatchError struct {
	Entity    string
	Unmatched []string
}

func (e *BatchMismatchError) Error() string {
	return fmt.Sprintf("%s: unknown %s(s): %s",
		ErrBatchMismatch.Error(), e.Entity, strings.Join(e.Unmatched, ", "))
}

func (e *BatchMismatchError) Unwrap() error { return ErrBatchMismatch }

// NewBatchMismatch creates a batch mismatch error for the given entity kind.
func NewBatchMismatch(entity string, unmatched []string) error {
	return &BatchMismatchError{Entity: entity, Unmatched: unmatched}
}
