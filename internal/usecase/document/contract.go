package document

import (
	"context"
	"time"

	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// Repository defines the storage contract for documents.
type Repository interface {
	// SaveAll persists a whole upsert batch in pipelined writes: the
	// document rows, their hash index entries and the relation stamps in
	// touched (document id -> label ids), all dated at.
	SaveAll(ctx context.Context, docs []domdoc.Document, touched map[string][]string, at time.Time) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	// FindByHashes resolves documents through the content hash index.
	// Unknown hashes are simply absent from the result.
	FindByHashes(ctx context.Context, hashes []string) (map[string]domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	Delete(ctx context.Context, ids []string) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

// LabelPool resolves label pairs against the shared label pool.
type LabelPool interface {
	GetOrCreate(ctx context.Context, pairs []domlabel.Pair) ([]domlabel.Label, error)
}

// TypePool resolves type names against the shared type pool.
type TypePool interface {
	GetOrCreate(ctx context.Context, names []string) ([]domtype.DocumentType, error)
}
