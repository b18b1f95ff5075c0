package document

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/doccat/internal/domain"
	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// mockRepo implements Repository for tests. When the scripted funcs are
// unset, SaveAll, FindByHashes and List serve from the in-memory saved map,
// so upsert tests can observe the create-then-update flow without scripting
// every call.
type mockRepo struct {
	mu      sync.Mutex
	saved   map[string]domdoc.Document
	order   []string // hashes in first-save order
	touches map[string][]string

	saveAllFn      func(ctx context.Context, docs []domdoc.Document, touched map[string][]string, at time.Time) error
	getFn          func(ctx context.Context, id string) (domdoc.Document, error)
	findByHashesFn func(ctx context.Context, hashes []string) (map[string]domdoc.Document, error)
	listFn         func(ctx context.Context) ([]domdoc.Document, error)
	deleteFn       func(ctx context.Context, ids []string) (int, error)
	deleteAllFn    func(ctx context.Context) (int, error)
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		saved:   make(map[string]domdoc.Document),
		touches: make(map[string][]string),
	}
}

func (m *mockRepo) SaveAll(ctx context.Context, docs []domdoc.Document, touched map[string][]string, at time.Time) error {
	if m.saveAllFn != nil {
		return m.saveAllFn(ctx, docs, touched, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		if _, ok := m.saved[d.Hash()]; !ok {
			m.order = append(m.order, d.Hash())
		}
		m.saved[d.Hash()] = d
		m.touches[d.ID()] = append(m.touches[d.ID()], touched[d.ID()]...)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domdoc.Document{}, domain.ErrDocumentNotFound
}

func (m *mockRepo) FindByHashes(ctx context.Context, hashes []string) (map[string]domdoc.Document, error) {
	if m.findByHashesFn != nil {
		return m.findByHashesFn(ctx, hashes)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domdoc.Document, len(hashes))
	for _, h := range hashes {
		if d, ok := m.saved[h]; ok {
			out[h] = d
		}
	}
	return out, nil
}

func (m *mockRepo) List(ctx context.Context) ([]domdoc.Document, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domdoc.Document, 0, len(m.order))
	for _, h := range m.order {
		out = append(out, m.saved[h])
	}
	return out, nil
}

func (m *mockRepo) Delete(ctx context.Context, ids []string) (int, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ids)
	}
	return 0, nil
}

func (m *mockRepo) DeleteAll(ctx context.Context) (int, error) {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return 0, nil
}

// mockLabelPool creates labels deterministically: id equals "key=value".
type mockLabelPool struct {
	getOrCreateFn func(ctx context.Context, pairs []domlabel.Pair) ([]domlabel.Label, error)
}

func (m *mockLabelPool) GetOrCreate(ctx context.Context, pairs []domlabel.Pair) ([]domlabel.Label, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, pairs)
	}
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]domlabel.Label, len(pairs))
	for i, p := range pairs {
		out[i] = domlabel.Reconstruct(p.String(), p.Key, p.Value, at, at)
	}
	return out, nil
}

// mockTypePool creates types deterministically: id equals the name.
type mockTypePool struct {
	getOrCreateFn func(ctx context.Context, names []string) ([]domtype.DocumentType, error)
}

func (m *mockTypePool) GetOrCreate(ctx context.Context, names []string) ([]domtype.DocumentType, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, names)
	}
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]domtype.DocumentType, len(names))
	for i, n := range names {
		out[i] = domtype.Reconstruct(n, n, at, at)
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	mr := newMockRepo()
	return New(mr, &mockLabelPool{}, &mockTypePool{}), mr
}

func testInput(hash string, pairs ...domlabel.Pair) Input {
	return Input{
		Hash:      hash,
		Type:      "report",
		CreatedBy: "alice",
		Payload:   json.RawMessage(`{"x":1}`),
		Labels:    pairs,
	}
}
