package doccat

import (
	"context"
	"fmt"
	"time"

	documentuc "github.com/kailas-cloud/doccat/internal/usecase/document"
)

// DocumentService manages catalog documents and relationship search.
type DocumentService struct {
	docSvc       documentUseCase
	relSvc       relationsUseCase
	maxBatchSize int
	obs          *observer
}

// Upsert creates or updates documents by content hash. Labels accumulate
// across upserts; payload, type and author are overwritten. The response is
// the full document list after the batch, not just the touched documents.
func (s *DocumentService) Upsert(ctx context.Context, docs []DocumentInput) (_ []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.upsert", start, err) }()

	if len(docs) == 0 || len(docs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: documents count must be between 1 and %d", ErrValidation, s.maxBatchSize)
	}

	inputs := make([]documentuc.Input, len(docs))
	for i, d := range docs {
		inputs[i] = documentuc.Input{
			Hash:      d.Hash,
			Type:      d.Type,
			CreatedBy: d.CreatedBy,
			Payload:   d.Payload,
			Labels:    toInternalPairs(d.Labels),
		}
	}

	stored, err := s.docSvc.Upsert(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("upsert documents: %w", err)
	}
	return fromInternalDocuments(stored), nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.get", start, err) }()

	d, err := s.docSvc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// List returns every document in the catalog.
func (s *DocumentService) List(ctx context.Context) (_ []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.list", start, err) }()

	docs, err := s.docSvc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return fromInternalDocuments(docs), nil
}

// Delete removes documents by ID and reports how many existed.
func (s *DocumentService) Delete(ctx context.Context, ids []string) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.delete", start, err) }()

	count, err := s.docSvc.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return count, nil
}

// DeleteAll wipes the catalog and reports how many documents were removed.
func (s *DocumentService) DeleteAll(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.delete_all", start, err) }()

	count, err := s.docSvc.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all documents: %w", err)
	}
	return count, nil
}

// Search walks label links transitively starting from the given document
// and label criteria. With byType set, results are grouped by type name.
func (s *DocumentService) Search(
	ctx context.Context, documentID string, labels []LabelPair, byType bool,
) (_ SearchReport, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.search", start, err) }()

	report, err := s.relSvc.Search(ctx, documentID, toInternalPairs(labels), byType)
	if err != nil {
		return SearchReport{}, fmt.Errorf("search documents: %w", err)
	}
	return fromInternalReport(report), nil
}
