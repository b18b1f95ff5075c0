// Package label defines the Label entity: a globally deduplicated
// (key,value) tag attachable to documents.
package label

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Pair is the natural identity of a label. No two labels share a Pair.
type Pair struct {
	Key   string
	Value string
}

// String renders the pair as "key=value", the form used in labels_string.
func (p Pair) String() string { return p.Key + "=" + p.Value }

// Label is the label aggregate (immutable value object).
type Label struct {
	id        string
	key       string
	value     string
	createdAt time.Time
	updatedAt time.Time
}

// New validates and creates a Label with a fresh identity.
func New(key, value string) (Label, error) {
	if key == "" {
		return Label{}, fmt.Errorf("label key is required")
	}
	if value == "" {
		return Label{}, fmt.Errorf("label value is required")
	}

	now := time.Now().UTC()
	return Label{
		id:        uuid.NewString(),
		key:       key,
		value:     value,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct creates a Label without validation (storage hydration).
func Reconstruct(id, key, value string, createdAt, updatedAt time.Time) Label {
	return Label{id: id, key: key, value: value, createdAt: createdAt, updatedAt: updatedAt}
}

// ID returns the label identifier.
func (l *Label) ID() string { return l.id }

// Key returns the label key.
func (l *Label) Key() string { return l.key }

// Value returns the label value.
func (l *Label) Value() string { return l.value }

// CreatedAt returns the creation timestamp.
func (l *Label) CreatedAt() time.Time { return l.createdAt }

// UpdatedAt returns the last mutation timestamp.
func (l *Label) UpdatedAt() time.Time { return l.updatedAt }

// Pair returns the (key,value) identity of the label.
func (l *Label) Pair() Pair { return Pair{Key: l.key, Value: l.value} }

// WithValue returns a copy carrying a new value and a refreshed UpdatedAt.
func (l *Label) WithValue(value string) Label {
	return Label{
		id: l.id, key: l.key, value: value,
		createdAt: l.createdAt, updatedAt: time.Now().UTC(),
	}
}
