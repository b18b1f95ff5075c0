package relations

import (
	"context"
	"fmt"
	"time"

	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
	domrel "github.com/kailas-cloud/doccat/internal/domain/relations"
)

// Service runs label-driven relationship searches.
type Service struct {
	corpus Corpus
	labels LabelPool
}

// New creates a relations service.
func New(corpus Corpus, labels LabelPool) *Service {
	return &Service{corpus: corpus, labels: labels}
}

// Search resolves the seed document (404 semantics when missing), resolves
// the criteria labels through the pool, then runs the closure over the whole
// catalog. byType picks the grouped report shape.
func (s *Service) Search(ctx context.Context, documentID string, pairs []domlabel.Pair, byType bool) (domrel.Report, error) {
	if _, err := s.corpus.Get(ctx, documentID); err != nil {
		return domrel.Report{}, fmt.Errorf("seed document: %w", err)
	}

	initial, err := s.labels.GetOrCreate(ctx, pairs)
	if err != nil {
		return domrel.Report{}, fmt.Errorf("resolve search labels: %w", err)
	}
	initialPairs := make([]domlabel.Pair, len(initial))
	for i := range initial {
		initialPairs[i] = initial[i].Pair()
	}

	corpus, err := s.corpus.List(ctx)
	if err != nil {
		return domrel.Report{}, fmt.Errorf("load corpus: %w", err)
	}

	matched := closure(corpus, initialPairs)
	now := time.Now().UTC()
	if byType {
		return domrel.NewGrouped(initial, matched, now), nil
	}
	return domrel.NewFlat(initial, matched, now), nil
}
