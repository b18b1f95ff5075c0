package doccat

import "github.com/kailas-cloud/doccat/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrValidation       = domain.ErrValidation
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrLabelNotFound    = domain.ErrLabelNotFound
	ErrTypeNotFound     = domain.ErrTypeNotFound
	ErrBatchMismatch    = domain.ErrBatchMismatch
)
