package label

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/doccat/internal/domain"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// Service handles label operations.
type Service struct {
	repo Repository
}

// New creates a label service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpdateEntry names an existing label by key and carries its new value.
type UpdateEntry struct {
	Key   string
	Value string
}

// GetOrCreate returns one label per distinct input pair, creating the
// missing ones. Duplicate pairs in the input collapse to one result.
func (s *Service) GetOrCreate(ctx context.Context, pairs []domlabel.Pair) ([]domlabel.Label, error) {
	deduped := dedupePairs(pairs)
	labels, err := s.repo.Ensure(ctx, deduped)
	if err != nil {
		return nil, fmt.Errorf("ensure labels: %w", err)
	}
	return labels, nil
}

// List returns all labels.
func (s *Service) List(ctx context.Context) ([]domlabel.Label, error) {
	labels, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

// Update applies a batch of value changes, each matching a label by key.
// The whole batch is validated against the current pool first: any entry
// naming an unknown key rejects everything, nothing is partially applied.
func (s *Service) Update(ctx context.Context, entries []UpdateEntry) ([]domlabel.Label, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	byKey := make(map[string]domlabel.Label, len(existing))
	for _, l := range existing {
		if _, ok := byKey[l.Key()]; !ok {
			byKey[l.Key()] = l
		}
	}

	var unmatched []string
	for _, e := range entries {
		if _, ok := byKey[e.Key]; !ok {
			unmatched = append(unmatched, e.Key)
		}
	}
	if len(unmatched) > 0 {
		return nil, domain.NewBatchMismatch("label", unmatched)
	}

	updated := make([]domlabel.Label, 0, len(entries))
	for _, e := range entries {
		current := byKey[e.Key]
		if e.Value == current.Value() {
			updated = append(updated, current)
			continue
		}
		next := current.WithValue(e.Value)
		if err := s.repo.Update(ctx, next, current.Pair()); err != nil {
			return nil, fmt.Errorf("update label %s: %w", e.Key, err)
		}
		byKey[e.Key] = next
		updated = append(updated, next)
	}
	return updated, nil
}

// Delete removes a label from the pool and returns it.
func (s *Service) Delete(ctx context.Context, id string) (domlabel.Label, error) {
	l, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domlabel.Label{}, fmt.Errorf("delete label: %w", err)
	}
	return l, nil
}

func dedupePairs(pairs []domlabel.Pair) []domlabel.Pair {
	seen := make(map[domlabel.Pair]struct{}, len(pairs))
	out := make([]domlabel.Pair, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
