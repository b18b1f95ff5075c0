package relations

import (
	"context"

	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// Corpus supplies the documents the closure walks over.
type Corpus interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
}

// LabelPool resolves the seed labels (get-or-create, so a search may mint
// labels that nothing carries yet).
type LabelPool interface {
	GetOrCreate(ctx context.Context, pairs []domlabel.Pair) ([]domlabel.Label, error)
}
