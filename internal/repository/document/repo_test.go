package document

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/doccat/internal/db"
	"github.com/kailas-cloud/doccat/internal/domain"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// --- SaveAll ---

func TestSaveAll_PipelinesRowsIndexesAndRelations(t *testing.T) {
	repo, ms := newTestRepo(t)

	l := domlabel.Reconstruct("lab-1", "env", "prod", testAt, testAt)
	doc := testDocument(t, "doc-1", "h1", l)

	var hashItems []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		hashItems = items
		return nil
	}
	var kvItems []db.KVItem
	ms.setMultiFn = func(_ context.Context, items []db.KVItem) error {
		kvItems = items
		return nil
	}

	touched := map[string][]string{"doc-1": {"lab-1"}}
	if err := repo.SaveAll(context.Background(), []domdoc.Document{doc}, touched, testAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(hashItems) != 2 {
		t.Fatalf("hash items = %d, want row + relations", len(hashItems))
	}
	row := hashItems[0]
	if row.Key != "doccat:document:doc-1" {
		t.Errorf("row key = %s", row.Key)
	}
	if row.Fields["label_ids"] != `["lab-1"]` {
		t.Errorf("label_ids = %s", row.Fields["label_ids"])
	}
	if row.Fields["labels_string"] != "env=prod" {
		t.Errorf("labels_string = %s", row.Fields["labels_string"])
	}
	rel := hashItems[1]
	if rel.Key != "doccat:rel:doc-1" {
		t.Errorf("rel key = %s", rel.Key)
	}
	if rel.Fields["lab-1"] != "2025-06-01T12:00:00Z" {
		t.Errorf("rel stamp = %s", rel.Fields["lab-1"])
	}

	if len(kvItems) != 1 || kvItems[0].Key != "doccat:idx:document:h1" || string(kvItems[0].Value) != "doc-1" {
		t.Errorf("index items = %v", kvItems)
	}
}

func TestSaveAll_NoTouchedLabelsNoRelationRow(t *testing.T) {
	repo, ms := newTestRepo(t)

	doc := testDocument(t, "doc-1", "h1")
	var hashItems []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		hashItems = items
		return nil
	}

	if err := repo.SaveAll(context.Background(), []domdoc.Document{doc}, nil, testAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hashItems) != 1 {
		t.Fatalf("hash items = %d, want the row only", len(hashItems))
	}
}

func TestSaveAll_EmptyBatchNoWrite(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetMultiFn = func(_ context.Context, _ []db.HashSetItem) error {
		t.Error("HSET must not run for an empty batch")
		return nil
	}
	ms.setMultiFn = func(_ context.Context, _ []db.KVItem) error {
		t.Error("SET must not run for an empty batch")
		return nil
	}

	if err := repo.SaveAll(context.Background(), nil, nil, testAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Get ---

func TestGet_HydratesTypeAndLabels(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "doccat:document:doc-1" {
			t.Errorf("unexpected key: %s", key)
		}
		return testDocHash("doc-1", "h1", "typ-1", `["lab-1","lab-2"]`), nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		switch keys[0] {
		case "doccat:doctype:typ-1":
			return []map[string]string{testTypeHash("typ-1", "report")}, nil
		case "doccat:label:lab-1":
			return []map[string]string{
				testLabelHash("lab-1", "env", "prod"),
				testLabelHash("lab-2", "team", "core"),
			}, nil
		default:
			t.Fatalf("unexpected HGETALL multi keys: %v", keys)
			return nil, nil
		}
	}

	doc, err := repo.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Type().Name() != "report" {
		t.Errorf("type = %s", doc.Type().Name())
	}
	if len(doc.Labels()) != 2 {
		t.Fatalf("labels = %d, want 2", len(doc.Labels()))
	}
	if doc.Labels()[0].Pair().String() != "env=prod" {
		t.Errorf("first label = %s", doc.Labels()[0].Pair())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestGet_DanglingLabelSkipped(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return testDocHash("doc-1", "h1", "typ-1", `["lab-1","lab-gone"]`), nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		if keys[0] == "doccat:doctype:typ-1" {
			return []map[string]string{testTypeHash("typ-1", "report")}, nil
		}
		return []map[string]string{
			testLabelHash("lab-1", "env", "prod"),
			{},
		}, nil
	}

	doc, err := repo.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Labels()) != 1 {
		t.Fatalf("labels = %d, want 1", len(doc.Labels()))
	}
}

// --- FindByHashes ---

func TestFindByHashes_UnknownHashesAbsent(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.mgetFn = func(_ context.Context, keys []string) ([][]byte, error) {
		if keys[0] != "doccat:idx:document:h-missing" {
			t.Errorf("unexpected MGET key: %s", keys[0])
		}
		return [][]byte{nil}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) {
		t.Error("no row read may run when nothing resolved")
		return nil, nil
	}

	found, err := repo.FindByHashes(context.Background(), []string{"h-missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("found = %v, want empty", found)
	}
}

func TestFindByHashes_ResolvesThroughIndex(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.mgetFn = func(_ context.Context, keys []string) ([][]byte, error) {
		want := []string{"doccat:idx:document:h1", "doccat:idx:document:h2"}
		for i := range want {
			if keys[i] != want[i] {
				t.Errorf("MGET keys = %v", keys)
			}
		}
		return [][]byte{[]byte("doc-1"), nil}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		if keys[0] == "doccat:document:doc-1" {
			return []map[string]string{testDocHash("doc-1", "h1", "typ-1", `[]`)}, nil
		}
		return []map[string]string{testTypeHash("typ-1", "report")}, nil
	}

	found, err := repo.FindByHashes(context.Background(), []string{"h1", "h2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found = %d, want 1", len(found))
	}
	doc := found["h1"]
	if doc.ID() != "doc-1" {
		t.Errorf("id = %s", doc.ID())
	}
	if _, ok := found["h2"]; ok {
		t.Error("unknown hash must be absent from the result")
	}
}

// --- List ---

func TestList_SortedByCreatedAt(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "doccat:document:*" {
			t.Errorf("unexpected scan pattern: %s", pattern)
		}
		return []string{"doccat:document:doc-2", "doccat:document:doc-1"}, nil
	}
	newer := testDocHash("doc-2", "h2", "typ-1", `[]`)
	newer["created_at"] = "2025-06-02T12:00:00Z"
	newer["updated_at"] = "2025-06-02T12:00:00Z"
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		if keys[0] == "doccat:doctype:typ-1" {
			return []map[string]string{testTypeHash("typ-1", "report")}, nil
		}
		return []map[string]string{
			newer,
			testDocHash("doc-1", "h1", "typ-1", `[]`),
		}, nil
	}

	docs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if docs[0].ID() != "doc-1" || docs[1].ID() != "doc-2" {
		t.Errorf("order = %s, %s", docs[0].ID(), docs[1].ID())
	}
}

// --- Delete ---

func TestDelete_SkipsUnknownIDs(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key == "doccat:document:gone" {
			return map[string]string{}, nil
		}
		return testDocHash("doc-1", "h1", "typ-1", `[]`), nil
	}
	var doomed []string
	ms.delMultiFn = func(_ context.Context, keys []string) error {
		doomed = keys
		return nil
	}

	count, err := repo.Delete(context.Background(), []string{"doc-1", "gone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	want := []string{"doccat:document:doc-1", "doccat:idx:document:h1", "doccat:rel:doc-1"}
	if len(doomed) != len(want) {
		t.Fatalf("doomed = %v", doomed)
	}
	for i := range want {
		if doomed[i] != want[i] {
			t.Fatalf("doomed = %v, want %v", doomed, want)
		}
	}
}

func TestDelete_NothingMatches(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}
	ms.delMultiFn = func(_ context.Context, _ []string) error {
		t.Error("DEL must not run when nothing matched")
		return nil
	}

	count, err := repo.Delete(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

// --- DeleteAll ---

func TestDeleteAll_CountsDocumentRowsOnly(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		switch pattern {
		case "doccat:document:*":
			return []string{"doccat:document:doc-1", "doccat:document:doc-2"}, nil
		case "doccat:idx:document:*":
			return []string{"doccat:idx:document:h1", "doccat:idx:document:h2"}, nil
		case "doccat:rel:*":
			return []string{"doccat:rel:doc-1"}, nil
		default:
			t.Fatalf("unexpected scan pattern: %s", pattern)
			return nil, nil
		}
	}
	var doomed []string
	ms.delMultiFn = func(_ context.Context, keys []string) error {
		doomed = keys
		return nil
	}

	count, err := repo.DeleteAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if len(doomed) != 5 {
		t.Fatalf("doomed = %v", doomed)
	}
}

