package doctype

import (
	"fmt"
	"time"

	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
)

// typeToHash converts a domain DocumentType to a map for HSET.
func typeToHash(dt domtype.DocumentType) map[string]string {
	return map[string]string{
		"id":         dt.ID(),
		"name":       dt.Name(),
		"created_at": dt.CreatedAt().Format(time.RFC3339Nano),
		"updated_at": dt.UpdatedAt().Format(time.RFC3339Nano),
	}
}

// typeFromHash hydrates a domain DocumentType from an HGETALL result map.
func typeFromHash(m map[string]string) (domtype.DocumentType, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, m["created_at"])
	if err != nil {
		return domtype.DocumentType{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, m["updated_at"])
	if err != nil {
		return domtype.DocumentType{}, fmt.Errorf("invalid updated_at: %w", err)
	}
	return domtype.Reconstruct(m["id"], m["name"], createdAt, updatedAt), nil
}
