// Package doctype defines the DocumentType entity: a named, globally
// deduplicated category for documents.
package doctype

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentType is the document type aggregate (immutable value object).
type DocumentType struct {
	id        string
	name      string
	createdAt time.Time
	updatedAt time.Time
}

// New validates and creates a DocumentType with a fresh identity.
func New(name string) (DocumentType, error) {
	if name == "" {
		return DocumentType{}, fmt.Errorf("document type name is required")
	}

	now := time.Now().UTC()
	return DocumentType{
		id:        uuid.NewString(),
		name:      name,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct creates a DocumentType without validation (storage hydration).
func Reconstruct(id, name string, createdAt, updatedAt time.Time) DocumentType {
	return DocumentType{id: id, name: name, createdAt: createdAt, updatedAt: updatedAt}
}

// ID returns the type identifier.
func (t DocumentType) ID() string { return t.id }

// Name returns the type name.
func (t DocumentType) Name() string { return t.name }

// CreatedAt returns the creation timestamp.
func (t DocumentType) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns the last mutation timestamp.
func (t DocumentType) UpdatedAt() time.Time { return t.updatedAt }

// WithName returns a copy carrying a new name and a refreshed UpdatedAt.
func (t DocumentType) WithName(name string) DocumentType {
	return DocumentType{
		id: t.id, name: name,
		createdAt: t.createdAt, updatedAt: time.Now().UTC(),
	}
}
