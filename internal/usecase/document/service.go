package document

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/doccat/internal/domain"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// Service handles document ingestion and lifecycle.
type Service struct {
	repo   Repository
	labels LabelPool
	types  TypePool
}

// New creates a document service.
func New(repo Repository, labels LabelPool, types TypePool) *Service {
	return &Service{repo: repo, labels: labels, types: types}
}

// Input is one document in an upsert batch.
type Input struct {
	Hash      string
	Type      string
	CreatedBy string
	Payload   json.RawMessage
	Labels    []domlabel.Pair
}

// Upsert ingests a batch of documents. The whole batch is validated before
// any write; a bad item rejects everything. Existing documents are resolved
// by hash in one batched lookup, then items fold in input order, so two
// items sharing a hash fold into one document, the later item seeing the
// earlier item's state. Per item:
//   - labels and type are resolved through the shared pools (get-or-create),
//   - an unseen hash creates a document, a known hash overwrites type,
//     creator and payload and merges labels accretively,
//   - every label named by the item gets its relation timestamp touched,
//     whether it was already attached or not.
//
// Nothing is persisted until every item has resolved; the batch is then
// flushed through a single SaveAll. Returns the full document list re-read
// from storage, not just the documents the batch touched.
func (s *Service) Upsert(ctx context.Context, inputs []Input) ([]domdoc.Document, error) {
	if err := validateBatch(inputs); err != nil {
		return nil, err
	}

	hashes := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if _, ok := seen[in.Hash]; ok {
			continue
		}
		seen[in.Hash] = struct{}{}
		hashes = append(hashes, in.Hash)
	}
	existing, err := s.repo.FindByHashes(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("resolve batch hashes: %w", err)
	}

	byHash := make(map[string]domdoc.Document, len(inputs))
	touched := make(map[string][]string, len(inputs))
	order := make([]string, 0, len(inputs))

	for i, in := range inputs {
		labels, err := s.labels.GetOrCreate(ctx, in.Labels)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		types, err := s.types.GetOrCreate(ctx, []string{in.Type})
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		dt := types[0]

		doc, inBatch := byHash[in.Hash]
		if inBatch {
			doc.Overwrite(dt, in.CreatedBy, in.Payload)
			doc.MergeLabels(labels)
		} else {
			if prior, ok := existing[in.Hash]; ok {
				doc = prior
				doc.Overwrite(dt, in.CreatedBy, in.Payload)
				doc.MergeLabels(labels)
			} else {
				doc, err = domdoc.New(in.Hash, dt, in.CreatedBy, in.Payload, labels)
				if err != nil {
					return nil, fmt.Errorf("%w: document %d: %s", domain.ErrValidation, i, err)
				}
			}
			order = append(order, in.Hash)
		}
		byHash[in.Hash] = doc

		for _, l := range labels {
			touched[in.Hash] = appendMissing(touched[in.Hash], l.ID())
		}
	}

	docs := make([]domdoc.Document, 0, len(order))
	touchedByID := make(map[string][]string, len(order))
	for _, h := range order {
		d := byHash[h]
		docs = append(docs, d)
		touchedByID[d.ID()] = touched[h]
	}
	if err := s.repo.SaveAll(ctx, docs, touchedByID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("save batch: %w", err)
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return all, nil
}

// Get retrieves one document by id.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns all documents.
func (s *Service) List(ctx context.Context) ([]domdoc.Document, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// DeleteByIDs removes the named documents and reports how many existed.
// Every id must be a UUID; unknown-but-valid ids are silently skipped.
func (s *Service) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	var malformed []string
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			malformed = append(malformed, id)
		}
	}
	if len(malformed) > 0 {
		return 0, fmt.Errorf("%w: malformed document id(s): %s",
			domain.ErrValidation, strings.Join(malformed, ", "))
	}

	count, err := s.repo.Delete(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return count, nil
}

// DeleteAll removes every document and reports how many there were.
func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all documents: %w", err)
	}
	return count, nil
}

// appendMissing appends v unless the slice already carries it.
func appendMissing(s []string, v string) []string {
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	return append(s, v)
}

// validateBatch rejects the whole batch when any item is malformed.
func validateBatch(inputs []Input) error {
	var problems []string
	for i, in := range inputs {
		if in.Hash == "" {
			problems = append(problems, fmt.Sprintf("document %d: hash is required", i))
		}
		if in.Type == "" {
			problems = append(problems, fmt.Sprintf("document %d: type is required", i))
		}
		if in.CreatedBy == "" {
			problems = append(problems, fmt.Sprintf("document %d: created_by is required", i))
		}
		for _, p := range in.Labels {
			if p.Key == "" || p.Value == "" {
				problems = append(problems, fmt.Sprintf("document %d: label %q needs key and value", i, p))
			}
		}
		if len(in.Payload) > 0 && !json.Valid(in.Payload) {
			problems = append(problems, fmt.Sprintf("document %d: payload is not valid JSON", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
