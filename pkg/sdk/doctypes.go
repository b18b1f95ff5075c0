package doccat

import (
	"context"
	"fmt"
	"time"

	doctypeuc "github.com/kailas-cloud/doccat/internal/usecase/doctype"
)

// TypeService manages document types.
type TypeService struct {
	svc typeUseCase
	obs *observer
}

// RenamePair maps an existing type name to its new name.
type RenamePair struct {
	Name    string
	NewName string
}

// GetOrCreate returns the types for the given names, creating missing ones.
func (s *TypeService) GetOrCreate(ctx context.Context, names []string) (_ []DocumentType, err error) {
	start := time.Now()
	defer func() { s.obs.observe("types.get_or_create", start, err) }()

	types, err := s.svc.GetOrCreate(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("get or create types: %w", err)
	}
	out := make([]DocumentType, len(types))
	for i, dt := range types {
		out[i] = fromInternalType(dt)
	}
	return out, nil
}

// List returns one page of types sorted by name.
func (s *TypeService) List(ctx context.Context, offset, limit int) (_ TypePage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("types.list", start, err) }()

	types, total, err := s.svc.List(ctx, offset, limit)
	if err != nil {
		return TypePage{}, fmt.Errorf("list types: %w", err)
	}
	items := make([]DocumentType, len(types))
	for i, dt := range types {
		items[i] = fromInternalType(dt)
	}
	return TypePage{Items: items, Total: total}, nil
}

// Rename applies name changes to existing types. The whole batch is
// rejected with ErrBatchMismatch if any current name is unknown.
func (s *TypeService) Rename(ctx context.Context, renames []RenamePair) (_ []DocumentType, err error) {
	start := time.Now()
	defer func() { s.obs.observe("types.rename", start, err) }()

	entries := make([]doctypeuc.RenameEntry, len(renames))
	for i, r := range renames {
		entries[i] = doctypeuc.RenameEntry{Name: r.Name, NewName: r.NewName}
	}
	types, err := s.svc.Rename(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("rename types: %w", err)
	}
	out := make([]DocumentType, len(types))
	for i, dt := range types {
		out[i] = fromInternalType(dt)
	}
	return out, nil
}

// Delete removes a type by ID and returns it.
func (s *TypeService) Delete(ctx context.Context, id string) (_ DocumentType, err error) {
	start := time.Now()
	defer func() { s.obs.observe("types.delete", start, err) }()

	dt, err := s.svc.Delete(ctx, id)
	if err != nil {
		return DocumentType{}, fmt.Errorf("delete type: %w", err)
	}
	return fromInternalType(dt), nil
}
