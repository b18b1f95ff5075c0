package doctype

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/doccat/internal/db"
	"github.com/kailas-cloud/doccat/internal/domain"
	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
)

// store is the consumer interface for document types (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
}

// Repo implements usecase document type storage:
// doccat:doctype:{id} plus doccat:idx:doctype:{name} -> id.
type Repo struct {
	store store
}

// New creates a document type repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Ensure returns one type per input name, creating the missing ones.
// Same SET NX claim as labels: concurrent callers converge on one id per name.
func (r *Repo) Ensure(ctx context.Context, names []string) ([]domtype.DocumentType, error) {
	out := make([]domtype.DocumentType, 0, len(names))
	for _, name := range names {
		dt, err := r.ensureOne(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, nil
}

func (r *Repo) ensureOne(ctx context.Context, name string) (domtype.DocumentType, error) {
	candidate, err := domtype.New(name)
	if err != nil {
		return domtype.DocumentType{}, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	idxKey := nameIdxKey(name)
	created, err := r.store.SetNX(ctx, idxKey, []byte(candidate.ID()))
	if err != nil {
		return domtype.DocumentType{}, fmt.Errorf("claim doctype %s: %w", name, err)
	}
	if created {
		if err := r.store.HSet(ctx, rowKey(candidate.ID()), typeToHash(candidate)); err != nil {
			return domtype.DocumentType{}, fmt.Errorf("hset doctype %s: %w", name, err)
		}
		return candidate, nil
	}

	id, err := r.store.Get(ctx, idxKey)
	if err != nil {
		return domtype.DocumentType{}, fmt.Errorf("resolve doctype %s: %w", name, err)
	}
	return r.Get(ctx, string(id))
}

// Get retrieves a document type by id.
func (r *Repo) Get(ctx context.Context, id string) (domtype.DocumentType, error) {
	m, err := r.store.HGetAll(ctx, rowKey(id))
	if err != nil {
		return domtype.DocumentType{}, fmt.Errorf("hgetall doctype %s: %w", id, err)
	}
	if len(m) == 0 {
		return domtype.DocumentType{}, domain.ErrTypeNotFound
	}
	return typeFromHash(m)
}

// List returns all document types sorted by name.
func (r *Repo) List(ctx context.Context) ([]domtype.DocumentType, error) {
	keys, err := r.store.Scan(ctx, rowKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan doctypes: %w", err)
	}
	if len(keys) == 0 {
		return []domtype.DocumentType{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi doctypes: %w", err)
	}

	types := make([]domtype.DocumentType, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		dt, err := typeFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse doctype %s: %w", keys[i], err)
		}
		types = append(types, dt)
	}

	sort.Slice(types, func(i, j int) bool {
		return types[i].Name() < types[j].Name()
	})

	return types, nil
}

// Rename rewrites a type row and moves its name index from oldName.
// The target name must be free.
func (r *Repo) Rename(ctx context.Context, dt domtype.DocumentType, oldName string) error {
	created, err := r.store.SetNX(ctx, nameIdxKey(dt.Name()), []byte(dt.ID()))
	if err != nil {
		return fmt.Errorf("claim doctype %s: %w", dt.Name(), err)
	}
	if !created {
		return fmt.Errorf("doctype %s: %w", dt.Name(), domain.ErrAlreadyExists)
	}

	if err := r.store.HSet(ctx, rowKey(dt.ID()), typeToHash(dt)); err != nil {
		return fmt.Errorf("hset doctype %s: %w", dt.ID(), err)
	}

	if err := r.store.Del(ctx, nameIdxKey(oldName)); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("del old doctype index %s: %w", oldName, err)
	}
	return nil
}

// Delete removes a type row and its name index. Returns the deleted type.
func (r *Repo) Delete(ctx context.Context, id string) (domtype.DocumentType, error) {
	dt, err := r.Get(ctx, id)
	if err != nil {
		return domtype.DocumentType{}, err
	}
	if err := r.store.Del(ctx, rowKey(id)); err != nil {
		return domtype.DocumentType{}, fmt.Errorf("del doctype %s: %w", id, err)
	}
	if err := r.store.Del(ctx, nameIdxKey(dt.Name())); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return domtype.DocumentType{}, fmt.Errorf("del doctype index %s: %w", dt.Name(), err)
	}
	return dt, nil
}

// Key patterns: doccat:doctype:{id}, doccat:idx:doctype:{name}

func rowKey(id string) string {
	return fmt.Sprintf("%sdoctype:%s", domain.KeyPrefix, id)
}

func nameIdxKey(name string) string {
	return fmt.Sprintf("%sidx:doctype:%s", domain.KeyPrefix, name)
}
