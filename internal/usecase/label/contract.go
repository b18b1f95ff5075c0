package label

import (
	"context"

	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// Repository defines the storage contract for labels.
type Repository interface {
	Ensure(ctx context.Context, pairs []domlabel.Pair) ([]domlabel.Label, error)
	List(ctx context.Context) ([]domlabel.Label, error)
	Update(ctx context.Context, l domlabel.Label, oldPair domlabel.Pair) error
	Delete(ctx context.Context, id string) (domlabel.Label, error)
}
