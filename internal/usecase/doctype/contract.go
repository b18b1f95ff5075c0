package doctype

import (
	"context"

	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
)

// Repository defines the storage contract for document types.
type Repository interface {
	Ensure(ctx context.Context, names []string) ([]domtype.DocumentType, error)
	List(ctx context.Context) ([]domtype.DocumentType, error)
	Rename(ctx context.Context, dt domtype.DocumentType, oldName string) error
	Delete(ctx context.Context, id string) (domtype.DocumentType, error)
}
