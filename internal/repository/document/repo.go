package document

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/doccat/internal/db"
	"github.com/kailas-cloud/doccat/internal/domain"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
//
//nolint:interfacebloat // document repo needs hash, index and relation operations
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	DelMulti(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	SetMulti(ctx context.Context, items []db.KVItem) error
}

// Repo implements usecase document storage:
// doccat:document:{id}, doccat:idx:document:{hash} -> id,
// doccat:rel:{id} hash of label id -> last touched timestamp.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SaveAll writes a batch of documents in two pipelined round trips: one
// HSET pipeline carrying every row plus the relation stamps in touched
// (document id -> label ids, each dated at), and one SET pipeline for the
// hash indexes. Indexes are rewritten unconditionally: for one hash they
// always resolve to the same id.
func (r *Repo) SaveAll(ctx context.Context, docs []domdoc.Document, touched map[string][]string, at time.Time) error {
	if len(docs) == 0 {
		return nil
	}

	stamp := at.UTC().Format(time.RFC3339Nano)
	hashItems := make([]db.HashSetItem, 0, 2*len(docs))
	kvItems := make([]db.KVItem, 0, len(docs))
	for _, d := range docs {
		fields, err := documentToHash(d)
		if err != nil {
			return err
		}
		hashItems = append(hashItems, db.HashSetItem{Key: rowKey(d.ID()), Fields: fields})
		kvItems = append(kvItems, db.KVItem{Key: hashIdxKey(d.Hash()), Value: []byte(d.ID())})

		labelIDs := touched[d.ID()]
		if len(labelIDs) == 0 {
			continue
		}
		rel := make(map[string]string, len(labelIDs))
		for _, id := range labelIDs {
			rel[id] = stamp
		}
		hashItems = append(hashItems, db.HashSetItem{Key: relKey(d.ID()), Fields: rel})
	}

	if err := r.store.HSetMulti(ctx, hashItems); err != nil {
		return fmt.Errorf("hset documents: %w", err)
	}
	if err := r.store.SetMulti(ctx, kvItems); err != nil {
		return fmt.Errorf("set document indexes: %w", err)
	}
	return nil
}

// Get retrieves a document by id, hydrating its type and labels.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	m, err := r.store.HGetAll(ctx, rowKey(id))
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("hgetall document %s: %w", id, err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return r.hydrate(ctx, m)
}

// FindByHashes resolves documents through the content hash index in one
// MGET round trip, then hydrates the found rows. Unknown hashes are simply
// absent from the result map.
func (r *Repo) FindByHashes(ctx context.Context, hashes []string) (map[string]domdoc.Document, error) {
	out := make(map[string]domdoc.Document, len(hashes))
	if len(hashes) == 0 {
		return out, nil
	}

	idxKeys := make([]string, len(hashes))
	for i, h := range hashes {
		idxKeys[i] = hashIdxKey(h)
	}
	ids, err := r.store.MGet(ctx, idxKeys)
	if err != nil {
		return nil, fmt.Errorf("resolve document hashes: %w", err)
	}

	rowKeys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		rowKeys = append(rowKeys, rowKey(string(id)))
	}
	if len(rowKeys) == 0 {
		return out, nil
	}

	results, err := r.store.HGetAllMulti(ctx, rowKeys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi documents: %w", err)
	}
	rows := make([]docRow, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		row, err := docRowFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse document %s: %w", rowKeys[i], err)
		}
		rows = append(rows, row)
	}

	docs, err := r.hydrateAll(ctx, rows)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.Hash()] = d
	}
	return out, nil
}

// List returns all documents sorted by CreatedAt. Types and labels are
// fetched in two batched round trips, not per document.
func (r *Repo) List(ctx context.Context) ([]domdoc.Document, error) {
	keys, err := r.store.Scan(ctx, rowKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	if len(keys) == 0 {
		return []domdoc.Document{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi documents: %w", err)
	}

	rows := make([]docRow, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		row, err := docRowFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse document %s: %w", keys[i], err)
		}
		rows = append(rows, row)
	}

	docs, err := r.hydrateAll(ctx, rows)
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt().Before(docs[j].CreatedAt())
	})

	return docs, nil
}

// Delete removes the given documents, skipping unknown ids.
// Each hit drops the row, its hash index and its relation hash.
// Returns how many existed and were removed.
func (r *Repo) Delete(ctx context.Context, ids []string) (int, error) {
	var doomed []string
	count := 0
	for _, id := range ids {
		m, err := r.store.HGetAll(ctx, rowKey(id))
		if err != nil {
			return 0, fmt.Errorf("hgetall document %s: %w", id, err)
		}
		if len(m) == 0 {
			continue
		}
		count++
		doomed = append(doomed, rowKey(id), hashIdxKey(m["hash"]), relKey(id))
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	if err := r.store.DelMulti(ctx, doomed); err != nil {
		return 0, fmt.Errorf("del documents: %w", err)
	}
	return count, nil
}

// DeleteAll removes every document, its indexes and relation hashes.
// Returns how many documents were removed.
func (r *Repo) DeleteAll(ctx context.Context) (int, error) {
	rowKeys, err := r.store.Scan(ctx, rowKey("*"))
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}
	idxKeys, err := r.store.Scan(ctx, hashIdxKey("*"))
	if err != nil {
		return 0, fmt.Errorf("scan document indexes: %w", err)
	}
	relKeys, err := r.store.Scan(ctx, relKey("*"))
	if err != nil {
		return 0, fmt.Errorf("scan relations: %w", err)
	}

	doomed := make([]string, 0, len(rowKeys)+len(idxKeys)+len(relKeys))
	doomed = append(doomed, rowKeys...)
	doomed = append(doomed, idxKeys...)
	doomed = append(doomed, relKeys...)
	if len(doomed) == 0 {
		return 0, nil
	}
	if err := r.store.DelMulti(ctx, doomed); err != nil {
		return 0, fmt.Errorf("del all documents: %w", err)
	}
	return len(rowKeys), nil
}

// hydrate loads the type row and label rows behind a single document row.
func (r *Repo) hydrate(ctx context.Context, m map[string]string) (domdoc.Document, error) {
	row, err := docRowFromHash(m)
	if err != nil {
		return domdoc.Document{}, err
	}
	docs, err := r.hydrateAll(ctx, []docRow{row})
	if err != nil {
		return domdoc.Document{}, err
	}
	return docs[0], nil
}

// hydrateAll resolves the distinct type and label ids across all rows with
// two HGETALL pipelines, then assembles the documents.
func (r *Repo) hydrateAll(ctx context.Context, rows []docRow) ([]domdoc.Document, error) {
	typeIDs := make([]string, 0, len(rows))
	labelIDs := make([]string, 0)
	seenTypes := make(map[string]struct{})
	seenLabels := make(map[string]struct{})
	for _, row := range rows {
		if _, ok := seenTypes[row.typeID]; !ok {
			seenTypes[row.typeID] = struct{}{}
			typeIDs = append(typeIDs, row.typeID)
		}
		for _, id := range row.labelIDs {
			if _, ok := seenLabels[id]; !ok {
				seenLabels[id] = struct{}{}
				labelIDs = append(labelIDs, id)
			}
		}
	}

	types, err := r.loadTypes(ctx, typeIDs)
	if err != nil {
		return nil, err
	}
	labels, err := r.loadLabels(ctx, labelIDs)
	if err != nil {
		return nil, err
	}

	docs := make([]domdoc.Document, 0, len(rows))
	for _, row := range rows {
		d, err := row.assemble(types, labels)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Key patterns: doccat:document:{id}, doccat:idx:document:{hash}, doccat:rel:{id}

func rowKey(id string) string {
	return fmt.Sprintf("%sdocument:%s", domain.KeyPrefix, id)
}

func hashIdxKey(hash string) string {
	return fmt.Sprintf("%sidx:document:%s", domain.KeyPrefix, hash)
}

func relKey(id string) string {
	return fmt.Sprintf("%srel:%s", domain.KeyPrefix, id)
}

func typeRowKey(id string) string {
	return fmt.Sprintf("%sdoctype:%s", domain.KeyPrefix, id)
}

func labelRowKey(id string) string {
	return fmt.Sprintf("%slabel:%s", domain.KeyPrefix, id)
}
