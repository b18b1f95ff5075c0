package doccat

import (
	"encoding/json"
	"time"

	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
	domrel "github.com/kailas-cloud/doccat/internal/domain/relations"
)

// LabelPair is a key/value pair identifying a label.
type LabelPair struct {
	Key   string
	Value string
}

// Label is a stored label with identity and timestamps.
type Label struct {
	ID        string
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentType names a category of documents.
type DocumentType struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document is a stored catalog entry.
type Document struct {
	ID           string
	Hash         string
	Type         DocumentType
	CreatedBy    string
	Payload      json.RawMessage
	Labels       []Label
	LabelsString string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DocumentInput describes one document in an upsert batch.
type DocumentInput struct {
	Hash      string
	Type      string
	CreatedBy string
	Payload   json.RawMessage
	Labels    []LabelPair
}

// TypePage is one page of document types.
type TypePage struct {
	Items []DocumentType
	Total int
}

// SearchReport is the result of a transitive label search.
// Exactly one of Documents / DocumentsByType is populated,
// depending on the grouping flag passed to Search.
type SearchReport struct {
	InitialLabels   []LabelPair
	TotalDocuments  int
	Timestamp       time.Time
	Documents       []Document
	DocumentsByType map[string][]Document
}

func fromInternalLabel(l domlabel.Label) Label {
	return Label{
		ID:        l.ID(),
		Key:       l.Key(),
		Value:     l.Value(),
		CreatedAt: l.CreatedAt(),
		UpdatedAt: l.UpdatedAt(),
	}
}

func fromInternalLabels(in []domlabel.Label) []Label {
	out := make([]Label, len(in))
	for i, l := range in {
		out[i] = fromInternalLabel(l)
	}
	return out
}

func fromInternalType(dt domtype.DocumentType) DocumentType {
	return DocumentType{
		ID:        dt.ID(),
		Name:      dt.Name(),
		CreatedAt: dt.CreatedAt(),
		UpdatedAt: dt.UpdatedAt(),
	}
}

func fromInternalDocument(d domdoc.Document) Document {
	return Document{
		ID:           d.ID(),
		Hash:         d.Hash(),
		Type:         fromInternalType(d.Type()),
		CreatedBy:    d.CreatedBy(),
		Payload:      d.Payload(),
		Labels:       fromInternalLabels(d.Labels()),
		LabelsString: d.LabelsString(),
		CreatedAt:    d.CreatedAt(),
		UpdatedAt:    d.UpdatedAt(),
	}
}

func fromInternalDocuments(in []domdoc.Document) []Document {
	out := make([]Document, len(in))
	for i, d := range in {
		out[i] = fromInternalDocument(d)
	}
	return out
}

func toInternalPairs(in []LabelPair) []domlabel.Pair {
	out := make([]domlabel.Pair, len(in))
	for i, p := range in {
		out[i] = domlabel.Pair{Key: p.Key, Value: p.Value}
	}
	return out
}

func fromInternalReport(r domrel.Report) SearchReport {
	initial := make([]LabelPair, len(r.InitialLabels()))
	for i, l := range r.InitialLabels() {
		initial[i] = LabelPair{Key: l.Key(), Value: l.Value()}
	}
	report := SearchReport{
		InitialLabels:  initial,
		TotalDocuments: r.TotalDocuments(),
		Timestamp:      r.Timestamp(),
	}
	if r.Grouped() {
		grouped := make(map[string][]Document, len(r.DocumentsByType()))
		for name, docs := range r.DocumentsByType() {
			grouped[name] = fromInternalDocuments(docs)
		}
		report.DocumentsByType = grouped
		return report
	}
	report.Documents = fromInternalDocuments(r.Documents())
	return report
}
