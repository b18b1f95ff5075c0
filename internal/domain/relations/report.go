// Package relations defines the result shapes of the label closure search.
package relations

import (
	"time"

	"github.com/kailas-cloud/doccat/internal/domain/document"
	"github.com/kailas-cloud/doccat/internal/domain/label"
)

// Report is the outcome of a relationship search: the matched documents in
// discovery order, either flat or partitioned by type name.
type Report struct {
	initialLabels []label.Label
	timestamp     time.Time
	documents     []document.Document
	byType        map[string][]document.Document
	typeNames     []string
	grouped       bool
}

// NewFlat builds an ungrouped report over documents in discovery order.
func NewFlat(initial []label.Label, docs []document.Document, at time.Time) Report {
	return Report{
		initialLabels: initial,
		timestamp:     at,
		documents:     docs,
	}
}

// NewGrouped builds a report partitioned by type name. Group membership and
// the type name list both preserve discovery order.
func NewGrouped(initial []label.Label, docs []document.Document, at time.Time) Report {
	byType := make(map[string][]document.Document)
	var names []string
	for _, d := range docs {
		name := d.Type().Name()
		if _, ok := byType[name]; !ok {
			names = append(names, name)
		}
		byType[name] = append(byType[name], d)
	}
	return Report{
		initialLabels: initial,
		timestamp:     at,
		documents:     docs,
		byType:        byType,
		typeNames:     names,
		grouped:       true,
	}
}

// InitialLabels returns the seed labels of the search.
func (r *Report) InitialLabels() []label.Label { return r.initialLabels }

// Timestamp returns when the report was produced.
func (r *Report) Timestamp() time.Time { return r.timestamp }

// TotalDocuments returns the number of matched documents.
func (r *Report) TotalDocuments() int { return len(r.documents) }

// Documents returns matched documents in discovery order.
func (r *Report) Documents() []document.Document { return r.documents }

// Grouped reports whether the result is partitioned by type.
func (r *Report) Grouped() bool { return r.grouped }

// DocumentsByType returns the partitioned result (grouped reports only).
func (r *Report) DocumentsByType() map[string][]document.Document { return r.byType }

// TypeNames returns the distinct type names in discovery order (grouped only).
func (r *Report) TypeNames() []string { return r.typeNames }
