package document

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/doccat/internal/domain"
	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// docRow is the flat storage shape of a document: labels and type are
// referenced by id and resolved separately.
type docRow struct {
	id           string
	hash         string
	typeID       string
	createdBy    string
	payload      json.RawMessage
	labelIDs     []string
	labelsString string
	createdAt    time.Time
	updatedAt    time.Time
}

// documentToHash converts a domain Document to a map for HSET.
func documentToHash(d domdoc.Document) (map[string]string, error) {
	labelIDs := make([]string, len(d.Labels()))
	for i, l := range d.Labels() {
		labelIDs[i] = l.ID()
	}
	idsJSON, err := json.Marshal(labelIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal label ids: %w", err)
	}
	return map[string]string{
		"id":            d.ID(),
		"hash":          d.Hash(),
		"type_id":       d.Type().ID(),
		"created_by":    d.CreatedBy(),
		"payload":       string(d.Payload()),
		"label_ids":     string(idsJSON),
		"labels_string": d.LabelsString(),
		"created_at":    d.CreatedAt().Format(time.RFC3339Nano),
		"updated_at":    d.UpdatedAt().Format(time.RFC3339Nano),
	}, nil
}

// docRowFromHash parses an HGETALL result map into a docRow.
func docRowFromHash(m map[string]string) (docRow, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, m["created_at"])
	if err != nil {
		return docRow{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, m["updated_at"])
	if err != nil {
		return docRow{}, fmt.Errorf("invalid updated_at: %w", err)
	}

	var labelIDs []string
	if s := m["label_ids"]; s != "" {
		if err := json.Unmarshal([]byte(s), &labelIDs); err != nil {
			return docRow{}, fmt.Errorf("unmarshal label ids: %w", err)
		}
	}

	return docRow{
		id:           m["id"],
		hash:         m["hash"],
		typeID:       m["type_id"],
		createdBy:    m["created_by"],
		payload:      json.RawMessage(m["payload"]),
		labelIDs:     labelIDs,
		labelsString: m["labels_string"],
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// assemble joins a docRow with its resolved type and label rows.
// A dangling label reference is skipped rather than failing the read;
// a dangling type reference is an error because every document has one.
func (row docRow) assemble(
	types map[string]domtype.DocumentType, labels map[string]domlabel.Label,
) (domdoc.Document, error) {
	dt, ok := types[row.typeID]
	if !ok {
		return domdoc.Document{}, fmt.Errorf("document %s: dangling type %s: %w",
			row.id, row.typeID, domain.ErrTypeNotFound)
	}
	attached := make([]domlabel.Label, 0, len(row.labelIDs))
	for _, id := range row.labelIDs {
		if l, ok := labels[id]; ok {
			attached = append(attached, l)
		}
	}
	return domdoc.Reconstruct(
		row.id, row.hash, dt, row.createdBy,
		row.payload, attached, row.labelsString,
		row.createdAt, row.updatedAt,
	), nil
}

// loadTypes fetches type rows by id into a lookup map.
func (r *Repo) loadTypes(ctx context.Context, ids []string) (map[string]domtype.DocumentType, error) {
	out := make(map[string]domtype.DocumentType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = typeRowKey(id)
	}
	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi doctypes: %w", err)
	}
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339Nano, m["created_at"])
		if err != nil {
			return nil, fmt.Errorf("parse doctype %s: %w", ids[i], err)
		}
		updatedAt, err := time.Parse(time.RFC3339Nano, m["updated_at"])
		if err != nil {
			return nil, fmt.Errorf("parse doctype %s: %w", ids[i], err)
		}
		out[m["id"]] = domtype.Reconstruct(m["id"], m["name"], createdAt, updatedAt)
	}
	return out, nil
}

// loadLabels fetches label rows by id into a lookup map.
func (r *Repo) loadLabels(ctx context.Context, ids []string) (map[string]domlabel.Label, error) {
	out := make(map[string]domlabel.Label, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = labelRowKey(id)
	}
	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi labels: %w", err)
	}
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339Nano, m["created_at"])
		if err != nil {
			return nil, fmt.Errorf("parse label %s: %w", ids[i], err)
		}
		updatedAt, err := time.Parse(time.RFC3339Nano, m["updated_at"])
		if err != nil {
			return nil, fmt.Errorf("parse label %s: %w", ids[i], err)
		}
		out[m["id"]] = domlabel.Reconstruct(m["id"], m["key"], m["value"], createdAt, updatedAt)
	}
	return out, nil
}
