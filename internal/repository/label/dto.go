package label

import (
	"fmt"
	"time"

	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// labelToHash converts a domain Label to a map for HSET.
func labelToHash(l domlabel.Label) map[string]string {
	return map[string]string{
		"id":         l.ID(),
		"key":        l.Key(),
		"value":      l.Value(),
		"created_at": l.CreatedAt().Format(time.RFC3339Nano),
		"updated_at": l.UpdatedAt().Format(time.RFC3339Nano),
	}
}

// labelFromHash hydrates a domain Label from an HGETALL result map.
func labelFromHash(m map[string]string) (domlabel.Label, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, m["created_at"])
	if err != nil {
		return domlabel.Label{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, m["updated_at"])
	if err != nil {
		return domlabel.Label{}, fmt.Errorf("invalid updated_at: %w", err)
	}
	return domlabel.Reconstruct(m["id"], m["key"], m["value"], createdAt, updatedAt), nil
}
