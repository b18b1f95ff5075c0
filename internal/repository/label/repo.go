package label

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/doccat/internal/db"
	"github.com/kailas-cloud/doccat/internal/domain"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// store is the consumer interface for labels (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
}

// Repo implements usecase label storage over a hash-per-label layout with a
// pair index: doccat:label:{id} plus doccat:idx:label:{key}={value} -> id.
type Repo struct {
	store store
}

// New creates a label repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Ensure returns one label per input pair, creating the missing ones.
// Creation claims the pair index with SET NX; a lost race falls back to
// loading the winner's row, so concurrent callers converge on one id.
func (r *Repo) Ensure(ctx context.Context, pairs []domlabel.Pair) ([]domlabel.Label, error) {
	out := make([]domlabel.Label, 0, len(pairs))
	for _, p := range pairs {
		l, err := r.ensureOne(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *Repo) ensureOne(ctx context.Context, p domlabel.Pair) (domlabel.Label, error) {
	candidate, err := domlabel.New(p.Key, p.Value)
	if err != nil {
		return domlabel.Label{}, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	idxKey := pairIdxKey(p)
	created, err := r.store.SetNX(ctx, idxKey, []byte(candidate.ID()))
	if err != nil {
		return domlabel.Label{}, fmt.Errorf("claim label %s: %w", p, err)
	}
	if created {
		if err := r.store.HSet(ctx, rowKey(candidate.ID()), labelToHash(candidate)); err != nil {
			return domlabel.Label{}, fmt.Errorf("hset label %s: %w", p, err)
		}
		return candidate, nil
	}

	id, err := r.store.Get(ctx, idxKey)
	if err != nil {
		return domlabel.Label{}, fmt.Errorf("resolve label %s: %w", p, err)
	}
	return r.Get(ctx, string(id))
}

// Get retrieves a label by id.
func (r *Repo) Get(ctx context.Context, id string) (domlabel.Label, error) {
	m, err := r.store.HGetAll(ctx, rowKey(id))
	if err != nil {
		return domlabel.Label{}, fmt.Errorf("hgetall label %s: %w", id, err)
	}
	if len(m) == 0 {
		return domlabel.Label{}, domain.ErrLabelNotFound
	}
	return labelFromHash(m)
}

// List returns all labels sorted by key, then value.
func (r *Repo) List(ctx context.Context) ([]domlabel.Label, error) {
	keys, err := r.store.Scan(ctx, rowKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan labels: %w", err)
	}
	if len(keys) == 0 {
		return []domlabel.Label{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi labels: %w", err)
	}

	labels := make([]domlabel.Label, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		l, err := labelFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse label %s: %w", keys[i], err)
		}
		labels = append(labels, l)
	}

	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Key() != labels[j].Key() {
			return labels[i].Key() < labels[j].Key()
		}
		return labels[i].Value() < labels[j].Value()
	})

	return labels, nil
}

// Update rewrites a label row and moves its pair index from oldPair.
// The target pair must be free; claiming it with SET NX keeps the
// one-label-per-pair invariant under concurrency.
func (r *Repo) Update(ctx context.Context, l domlabel.Label, oldPair domlabel.Pair) error {
	if l.Pair() != oldPair {
		created, err := r.store.SetNX(ctx, pairIdxKey(l.Pair()), []byte(l.ID()))
		if err != nil {
			return fmt.Errorf("claim label %s: %w", l.Pair(), err)
		}
		if !created {
			return fmt.Errorf("label %s: %w", l.Pair(), domain.ErrAlreadyExists)
		}
	}

	if err := r.store.HSet(ctx, rowKey(l.ID()), labelToHash(l)); err != nil {
		return fmt.Errorf("hset label %s: %w", l.ID(), err)
	}

	if l.Pair() != oldPair {
		if err := r.store.Del(ctx, pairIdxKey(oldPair)); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("del old label index %s: %w", oldPair, err)
		}
	}
	return nil
}

// Delete removes a label row and its pair index. Returns the deleted label.
func (r *Repo) Delete(ctx context.Context, id string) (domlabel.Label, error) {
	l, err := r.Get(ctx, id)
	if err != nil {
		return domlabel.Label{}, err
	}
	if err := r.store.Del(ctx, rowKey(id)); err != nil {
		return domlabel.Label{}, fmt.Errorf("del label %s: %w", id, err)
	}
	if err := r.store.Del(ctx, pairIdxKey(l.Pair())); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return domlabel.Label{}, fmt.Errorf("del label index %s: %w", l.Pair(), err)
	}
	return l, nil
}

// Key patterns: doccat:label:{id}, doccat:idx:label:{key}={value}

func rowKey(id string) string {
	return fmt.Sprintf("%slabel:%s", domain.KeyPrefix, id)
}

func pairIdxKey(p domlabel.Pair) string {
	return fmt.Sprintf("%sidx:label:%s", domain.KeyPrefix, p)
}
