package document

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kailas-cloud/doccat/internal/db"
	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delMultiFn     func(ctx context.Context, keys []string) error
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	mgetFn         func(ctx context.Context, keys []string) ([][]byte, error)
	setMultiFn     func(ctx context.Context, items []db.KVItem) error
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) error {
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if m.mgetFn != nil {
		return m.mgetFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) SetMulti(ctx context.Context, items []db.KVItem) error {
	if m.setMultiFn != nil {
		return m.setMultiFn(ctx, items)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

var testAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testDocument(t *testing.T, id, hash string, labels ...domlabel.Label) domdoc.Document {
	t.Helper()
	dt := domtype.Reconstruct("typ-1", "report", testAt, testAt)
	return domdoc.Reconstruct(
		id, hash, dt, "alice",
		json.RawMessage(`{"x":1}`), labels, domdoc.LabelsString(labels),
		testAt, testAt,
	)
}

func testDocHash(id, hash, typeID, labelIDsJSON string) map[string]string {
	return map[string]string{
		"id":            id,
		"hash":          hash,
		"type_id":       typeID,
		"created_by":    "alice",
		"payload":       `{"x":1}`,
		"label_ids":     labelIDsJSON,
		"labels_string": "",
		"created_at":    "2025-06-01T12:00:00Z",
		"updated_at":    "2025-06-01T12:00:00Z",
	}
}

func testTypeHash(id, name string) map[string]string {
	return map[string]string{
		"id":         id,
		"name":       name,
		"created_at": "2025-06-01T12:00:00Z",
		"updated_at": "2025-06-01T12:00:00Z",
	}
}

func testLabelHash(id, key, value string) map[string]string {
	return map[string]string{
		"id":         id,
		"key":        key,
		"value":      value,
		"created_at": "2025-06-01T12:00:00Z",
		"updated_at": "2025-06-01T12:00:00Z",
	}
}
