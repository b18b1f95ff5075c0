package doccat

import (
	"context"
	"fmt"
	"time"

	labeluc "github.com/kailas-cloud/doccat/internal/usecase/label"
)

// LabelService manages the label pool.
type LabelService struct {
	svc labelUseCase
	obs *observer
}

// GetOrCreate returns the labels for the given pairs, creating missing ones.
func (s *LabelService) GetOrCreate(ctx context.Context, pairs []LabelPair) (_ []Label, err error) {
	start := time.Now()
	defer func() { s.obs.observe("labels.get_or_create", start, err) }()

	labels, err := s.svc.GetOrCreate(ctx, toInternalPairs(pairs))
	if err != nil {
		return nil, fmt.Errorf("get or create labels: %w", err)
	}
	return fromInternalLabels(labels), nil
}

// List returns every label sorted by key, then value.
func (s *LabelService) List(ctx context.Context) (_ []Label, err error) {
	start := time.Now()
	defer func() { s.obs.observe("labels.list", start, err) }()

	labels, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return fromInternalLabels(labels), nil
}

// Update sets new values on existing labels matched by key. The whole
// batch is rejected with ErrBatchMismatch if any key is unknown.
func (s *LabelService) Update(ctx context.Context, pairs []LabelPair) (_ []Label, err error) {
	start := time.Now()
	defer func() { s.obs.observe("labels.update", start, err) }()

	entries := make([]labeluc.UpdateEntry, len(pairs))
	for i, p := range pairs {
		entries[i] = labeluc.UpdateEntry{Key: p.Key, Value: p.Value}
	}
	labels, err := s.svc.Update(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("update labels: %w", err)
	}
	return fromInternalLabels(labels), nil
}

// Delete removes a label by ID and returns it.
func (s *LabelService) Delete(ctx context.Context, id string) (_ Label, err error) {
	start := time.Now()
	defer func() { s.obs.observe("labels.delete", start, err) }()

	l, err := s.svc.Delete(ctx, id)
	if err != nil {
		return Label{}, fmt.Errorf("delete label: %w", err)
	}
	return fromInternalLabel(l), nil
}
