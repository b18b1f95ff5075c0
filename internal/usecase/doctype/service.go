package doctype

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/doccat/internal/domain"
	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
)

// Pagination bounds for List.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// Service handles document type operations.
type Service struct {
	repo  Repository
	pages Pagination
}

// New creates a document type service.
func New(repo Repository, pages Pagination) *Service {
	if pages.DefaultLimit <= 0 {
		pages.DefaultLimit = 100
	}
	if pages.MaxLimit <= 0 {
		pages.MaxLimit = 1000
	}
	return &Service{repo: repo, pages: pages}
}

// RenameEntry names an existing type and carries its new name.
type RenameEntry struct {
	Name    string
	NewName string
}

// GetOrCreate returns one type per distinct input name, creating the
// missing ones.
func (s *Service) GetOrCreate(ctx context.Context, names []string) ([]domtype.DocumentType, error) {
	deduped := dedupeNames(names)
	types, err := s.repo.Ensure(ctx, deduped)
	if err != nil {
		return nil, fmt.Errorf("ensure doctypes: %w", err)
	}
	return types, nil
}

// List returns one page of document types plus the total count.
// A non-positive limit falls back to the default; limits above the cap are
// clamped; a negative offset reads from the start.
func (s *Service) List(ctx context.Context, offset, limit int) ([]domtype.DocumentType, int, error) {
	if limit <= 0 {
		limit = s.pages.DefaultLimit
	}
	if limit > s.pages.MaxLimit {
		limit = s.pages.MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list doctypes: %w", err)
	}
	total := len(all)
	if offset >= total {
		return []domtype.DocumentType{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Rename applies a batch of renames, each matching a type by current name.
// The whole batch is validated first: unknown names reject everything.
func (s *Service) Rename(ctx context.Context, entries []RenameEntry) ([]domtype.DocumentType, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctypes: %w", err)
	}
	byName := make(map[string]domtype.DocumentType, len(existing))
	for _, dt := range existing {
		byName[dt.Name()] = dt
	}

	var unmatched []string
	for _, e := range entries {
		if _, ok := byName[e.Name]; !ok {
			unmatched = append(unmatched, e.Name)
		}
	}
	if len(unmatched) > 0 {
		return nil, domain.NewBatchMismatch("document type", unmatched)
	}

	renamed := make([]domtype.DocumentType, 0, len(entries))
	for _, e := range entries {
		current := byName[e.Name]
		if e.NewName == current.Name() {
			renamed = append(renamed, current)
			continue
		}
		next := current.WithName(e.NewName)
		if err := s.repo.Rename(ctx, next, current.Name()); err != nil {
			return nil, fmt.Errorf("rename doctype %s: %w", e.Name, err)
		}
		delete(byName, e.Name)
		byName[e.NewName] = next
		renamed = append(renamed, next)
	}
	return renamed, nil
}

// Delete removes a document type and returns it.
func (s *Service) Delete(ctx context.Context, id string) (domtype.DocumentType, error) {
	dt, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domtype.DocumentType{}, fmt.Errorf("delete doctype: %w", err)
	}
	return dt, nil
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
