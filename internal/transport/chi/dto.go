package chi

import (
	"encoding/json"
	"time"

	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
	domrel "github.com/kailas-cloud/doccat/internal/domain/relations"
)

// errorCode is the machine-readable error discriminator in error responses.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeNotFound         errorCode = "not_found"
	codeDocumentNotFound errorCode = "document_not_found"
	codeLabelNotFound    errorCode = "label_not_found"
	codeTypeNotFound     errorCode = "document_type_not_found"
	codeAlreadyExists    errorCode = "already_exists"
	codeBatchMismatch    errorCode = "batch_mismatch"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type labelResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type labelPairRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type typeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type typeCreateRequest struct {
	Name string `json:"name"`
}

type typeRenameRequest struct {
	Name    string `json:"name"`
	NewName string `json:"new_name"`
}

type typePageResponse struct {
	Items  []typeResponse `json:"items"`
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

type documentResponse struct {
	ID           string          `json:"id"`
	Hash         string          `json:"hash"`
	Type         typeResponse    `json:"type"`
	CreatedBy    string          `json:"created_by"`
	Document     json.RawMessage `json:"document"`
	Labels       []labelResponse `json:"labels"`
	LabelsString string          `json:"labels_string"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type documentCreateRequest struct {
	Hash      string             `json:"hash"`
	Type      string             `json:"type"`
	CreatedBy string             `json:"created_by"`
	Document  json.RawMessage    `json:"document"`
	Labels    []labelPairRequest `json:"labels"`
}

type deleteDocumentsRequest struct {
	IDs []string `json:"ids"`
}

type deleteDocumentsResponse struct {
	Deleted int `json:"deleted"`
}

type searchRequest struct {
	DocumentID string             `json:"document_id"`
	Labels     []labelPairRequest `json:"labels"`
	ByType     bool               `json:"by_type"`
}

type searchMetadata struct {
	InitialLabels  []labelPairRequest `json:"initial_labels"`
	TotalDocuments int                `json:"total_documents"`
	Timestamp      time.Time          `json:"timestamp"`
	DocumentTypes  []string           `json:"document_types,omitempty"`
}

// searchResponse carries exactly one of Documents / DocumentsByType,
// pointers so an empty result still serializes its field.
type searchResponse struct {
	Metadata        searchMetadata                 `json:"metadata"`
	Documents       *[]documentResponse            `json:"documents,omitempty"`
	DocumentsByType *map[string][]documentResponse `json:"documents_by_type,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func labelToDTO(l domlabel.Label) labelResponse {
	return labelResponse{
		ID:        l.ID(),
		Key:       l.Key(),
		Value:     l.Value(),
		CreatedAt: l.CreatedAt(),
		UpdatedAt: l.UpdatedAt(),
	}
}

func typeToDTO(dt domtype.DocumentType) typeResponse {
	return typeResponse{
		ID:        dt.ID(),
		Name:      dt.Name(),
		CreatedAt: dt.CreatedAt(),
		UpdatedAt: dt.UpdatedAt(),
	}
}

func documentToDTO(d domdoc.Document) documentResponse {
	labels := make([]labelResponse, len(d.Labels()))
	for i, l := range d.Labels() {
		labels[i] = labelToDTO(l)
	}
	return documentResponse{
		ID:           d.ID(),
		Hash:         d.Hash(),
		Type:         typeToDTO(d.Type()),
		CreatedBy:    d.CreatedBy(),
		Document:     d.Payload(),
		Labels:       labels,
		LabelsString: d.LabelsString(),
		CreatedAt:    d.CreatedAt(),
		UpdatedAt:    d.UpdatedAt(),
	}
}

func pairsFromDTO(in []labelPairRequest) []domlabel.Pair {
	pairs := make([]domlabel.Pair, len(in))
	for i, p := range in {
		pairs[i] = domlabel.Pair{Key: p.Key, Value: p.Value}
	}
	return pairs
}

func reportToDTO(report domrel.Report) searchResponse {
	initial := make([]labelPairRequest, len(report.InitialLabels()))
	for i, l := range report.InitialLabels() {
		initial[i] = labelPairRequest{Key: l.Key(), Value: l.Value()}
	}
	resp := searchResponse{
		Metadata: searchMetadata{
			InitialLabels:  initial,
			TotalDocuments: report.TotalDocuments(),
			Timestamp:      report.Timestamp(),
		},
	}
	if report.Grouped() {
		resp.Metadata.DocumentTypes = report.TypeNames()
		grouped := make(map[string][]documentResponse, len(report.DocumentsByType()))
		for name, docs := range report.DocumentsByType() {
			items := make([]documentResponse, len(docs))
			for i, d := range docs {
				items[i] = documentToDTO(d)
			}
			grouped[name] = items
		}
		resp.DocumentsByType = &grouped
		return resp
	}
	items := make([]documentResponse, len(report.Documents()))
	for i, d := range report.Documents() {
		items[i] = documentToDTO(d)
	}
	resp.Documents = &items
	return resp
}
