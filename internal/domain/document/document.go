// Package document defines the Document aggregate: an opaque JSON payload
// identified by a content hash, owning one type and a set of labels.
package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/doccat/internal/domain/doctype"
	"github.com/kailas-cloud/doccat/internal/domain/label"
)

// Document is the document aggregate. The hash is the business key used for
// upsert matching; the generated id is the storage identity.
type Document struct {
	id           string
	hash         string
	docType      doctype.DocumentType
	createdBy    string
	payload      json.RawMessage
	labels       []label.Label
	labelsString string
	createdAt    time.Time
	updatedAt    time.Time
}

// New validates and creates a Document with a fresh identity.
// The label list is deduplicated by (key,value) pair, preserving order.
// A nil payload is stored as the empty JSON object.
func New(
	hash string, dt doctype.DocumentType, createdBy string,
	payload json.RawMessage, labels []label.Label,
) (Document, error) {
	if hash == "" {
		return Document{}, fmt.Errorf("document hash is required")
	}
	if dt.ID() == "" {
		return Document{}, fmt.Errorf("document type is required")
	}
	if createdBy == "" {
		return Document{}, fmt.Errorf("created_by is required")
	}
	if payload == nil {
		payload = json.RawMessage("{}")
	}

	deduped := dedupe(labels)
	now := time.Now().UTC()
	return Document{
		id:           uuid.NewString(),
		hash:         hash,
		docType:      dt,
		createdBy:    createdBy,
		payload:      payload,
		labels:       deduped,
		labelsString: LabelsString(deduped),
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, hash string, dt doctype.DocumentType, createdBy string,
	payload json.RawMessage, labels []label.Label, labelsString string,
	createdAt, updatedAt time.Time,
) Document {
	return Document{
		id: id, hash: hash, docType: dt, createdBy: createdBy,
		payload: payload, labels: labels, labelsString: labelsString,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Hash returns the content hash, the natural upsert key.
func (d *Document) Hash() string { return d.hash }

// Type returns the owning document type.
func (d *Document) Type() doctype.DocumentType { return d.docType }

// CreatedBy returns the caller identity recorded at ingestion.
func (d *Document) CreatedBy() string { return d.createdBy }

// Payload returns the opaque JSON payload.
func (d *Document) Payload() json.RawMessage { return d.payload }

// Labels returns the label set in insertion order.
func (d *Document) Labels() []label.Label { return d.labels }

// LabelsString returns the cached "key=value,..." rendering of the label set.
func (d *Document) LabelsString() string { return d.labelsString }

// CreatedAt returns the creation timestamp.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last mutation timestamp.
func (d *Document) UpdatedAt() time.Time { return d.updatedAt }

// HasPair reports whether the label set contains the given (key,value) pair.
func (d *Document) HasPair(p label.Pair) bool {
	for i := range d.labels {
		if d.labels[i].Pair() == p {
			return true
		}
	}
	return false
}

// Overwrite replaces type, creator and payload on the update path of an
// upsert. Labels are untouched; see MergeLabels.
func (d *Document) Overwrite(dt doctype.DocumentType, createdBy string, payload json.RawMessage) {
	if payload == nil {
		payload = json.RawMessage("{}")
	}
	d.docType = dt
	d.createdBy = createdBy
	d.payload = payload
	d.updatedAt = time.Now().UTC()
}

// MergeLabels adds the given labels to the set, accretively: pairs already
// present are left untouched, absent ones are appended in input order. The
// existing set is never cleared. Returns the labels actually appended.
// labels_string is recomputed so it stays consistent with the set.
func (d *Document) MergeLabels(in []label.Label) []label.Label {
	var added []label.Label
	for _, l := range dedupe(in) {
		if d.HasPair(l.Pair()) {
			continue
		}
		d.labels = append(d.labels, l)
		added = append(added, l)
	}
	if len(added) > 0 {
		d.labelsString = LabelsString(d.labels)
		d.updatedAt = time.Now().UTC()
	}
	return added
}

// DetachLabel removes a label by id, for cleanup after a label row was
// deleted from the shared pool. Recomputes labels_string.
func (d *Document) DetachLabel(labelID string) bool {
	for i := range d.labels {
		if d.labels[i].ID() == labelID {
			d.labels = append(d.labels[:i], d.labels[i+1:]...)
			d.labelsString = LabelsString(d.labels)
			d.updatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// LabelsString renders labels as "key=value" pairs joined by commas, in the
// order given. This is the derived search aid cached on every document.
func LabelsString(labels []label.Label) string {
	parts := make([]string, len(labels))
	for i := range labels {
		parts[i] = labels[i].Pair().String()
	}
	return strings.Join(parts, ",")
}

// dedupe drops duplicate (key,value) pairs, keeping first occurrence order.
func dedupe(labels []label.Label) []label.Label {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[label.Pair]struct{}, len(labels))
	out := make([]label.Label, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l.Pair()]; ok {
			continue
		}
		seen[l.Pair()] = struct{}{}
		out = append(out, l)
	}
	return out
}
