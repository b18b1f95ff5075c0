package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/doccat/internal/domain"
	logpkg "github.com/kailas-cloud/doccat/internal/logger"
	doctypeuc "github.com/kailas-cloud/doccat/internal/usecase/doctype"
	documentuc "github.com/kailas-cloud/doccat/internal/usecase/document"
	healthuc "github.com/kailas-cloud/doccat/internal/usecase/health"
	labeluc "github.com/kailas-cloud/doccat/internal/usecase/label"
	relationsuc "github.com/kailas-cloud/doccat/internal/usecase/relations"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the catalog over HTTP.
type Server struct {
	documents     *documentuc.Service
	labels        *labeluc.Service
	types         *doctypeuc.Service
	relations     *relationsuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxBatchSize  int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	labels *labeluc.Service,
	types *doctypeuc.Service,
	relations *relationsuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
	maxBatchSize int,
) *Server {
	s := &Server{
		documents:    documents,
		labels:       labels,
		types:        types,
		relations:    relations,
		health:       health,
		logger:       logger,
		maxBatchSize: maxBatchSize,
	}
	s.errorHandlers = []errorHandler{
		batchMismatchHandler,
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrLabelNotFound, http.StatusNotFound, codeLabelNotFound),
		sentinelHandler(domain.ErrTypeNotFound, http.StatusNotFound, codeTypeNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Routes mounts every endpoint on the given router.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chirouter.Router) {
		r.Get("/documents", s.ListDocuments)
		r.Post("/documents", s.UpsertDocuments)
		r.Delete("/documents", s.DeleteDocuments)
		r.Post("/documents/search", s.SearchDocuments)

		r.Get("/labels", s.ListLabels)
		r.Post("/labels", s.CreateLabels)
		r.Patch("/labels", s.UpdateLabels)
		r.Delete("/labels/{id}", s.DeleteLabel)

		r.Get("/document-types", s.ListDocumentTypes)
		r.Post("/document-types", s.CreateDocumentTypes)
		r.Patch("/document-types", s.RenameDocumentTypes)
		r.Delete("/document-types/{id}", s.DeleteDocumentType)
	})
}

// ListDocuments handles GET /api/v1/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i, d := range docs {
		items[i] = documentToDTO(d)
	}
	writeJSON(w, http.StatusOK, items)
}

// UpsertDocuments handles POST /api/v1/documents.
func (s *Server) UpsertDocuments(w http.ResponseWriter, r *http.Request) {
	var req []documentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req) == 0 || len(req) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("documents count must be between 1 and %d", s.maxBatchSize))
		return
	}

	inputs := make([]documentuc.Input, len(req))
	for i, d := range req {
		inputs[i] = documentuc.Input{
			Hash:      d.Hash,
			Type:      d.Type,
			CreatedBy: d.CreatedBy,
			Payload:   d.Document,
			Labels:    pairsFromDTO(d.Labels),
		}
	}

	docs, err := s.documents.Upsert(r.Context(), inputs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i, d := range docs {
		items[i] = documentToDTO(d)
	}
	writeJSON(w, http.StatusCreated, items)
}

// DeleteDocuments handles DELETE /api/v1/documents. A body naming ids
// deletes those; an empty or absent id list wipes the catalog.
func (s *Server) DeleteDocuments(w http.ResponseWriter, r *http.Request) {
	var req deleteDocumentsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	var (
		count int
		err   error
	)
	if len(req.IDs) == 0 {
		count, err = s.documents.DeleteAll(r.Context())
	} else {
		count, err = s.documents.DeleteByIDs(r.Context(), req.IDs)
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteDocumentsResponse{Deleted: count})
}

// SearchDocuments handles POST /api/v1/documents/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "document_id is required")
		return
	}

	report, err := s.relations.Search(r.Context(), req.DocumentID, pairsFromDTO(req.Labels), req.ByType)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reportToDTO(report))
}

// ListLabels handles GET /api/v1/labels.
func (s *Server) ListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.labels.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]labelResponse, len(labels))
	for i, l := range labels {
		items[i] = labelToDTO(l)
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateLabels handles POST /api/v1/labels.
func (s *Server) CreateLabels(w http.ResponseWriter, r *http.Request) {
	var req []labelPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "at least one label is required")
		return
	}

	labels, err := s.labels.GetOrCreate(r.Context(), pairsFromDTO(req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]labelResponse, len(labels))
	for i, l := range labels {
		items[i] = labelToDTO(l)
	}
	writeJSON(w, http.StatusCreated, items)
}

// UpdateLabels handles PATCH /api/v1/labels.
func (s *Server) UpdateLabels(w http.ResponseWriter, r *http.Request) {
	var req []labelPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "at least one label is required")
		return
	}

	entries := make([]labeluc.UpdateEntry, len(req))
	for i, e := range req {
		entries[i] = labeluc.UpdateEntry{Key: e.Key, Value: e.Value}
	}

	labels, err := s.labels.Update(r.Context(), entries)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]labelResponse, len(labels))
	for i, l := range labels {
		items[i] = labelToDTO(l)
	}
	writeJSON(w, http.StatusOK, items)
}

// DeleteLabel handles DELETE /api/v1/labels/{id}.
func (s *Server) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	l, err := s.labels.Delete(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, labelToDTO(l))
}

// ListDocumentTypes handles GET /api/v1/document-types.
func (s *Server) ListDocumentTypes(w http.ResponseWriter, r *http.Request) {
	var offset, limit int
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "offset", query, &offset); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "offset must be an integer")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
		return
	}

	types, total, err := s.types.List(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]typeResponse, len(types))
	for i, dt := range types {
		items[i] = typeToDTO(dt)
	}
	writeJSON(w, http.StatusOK, typePageResponse{
		Items:  items,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// CreateDocumentTypes handles POST /api/v1/document-types.
func (s *Server) CreateDocumentTypes(w http.ResponseWriter, r *http.Request) {
	var req []typeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "at least one document type is required")
		return
	}

	names := make([]string, len(req))
	for i, e := range req {
		names[i] = e.Name
	}

	types, err := s.types.GetOrCreate(r.Context(), names)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]typeResponse, len(types))
	for i, dt := range types {
		items[i] = typeToDTO(dt)
	}
	writeJSON(w, http.StatusCreated, items)
}

// RenameDocumentTypes handles PATCH /api/v1/document-types.
func (s *Server) RenameDocumentTypes(w http.ResponseWriter, r *http.Request) {
	var req []typeRenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "at least one rename is required")
		return
	}

	entries := make([]doctypeuc.RenameEntry, len(req))
	for i, e := range req {
		if e.NewName == "" {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "new_name is required")
			return
		}
		entries[i] = doctypeuc.RenameEntry{Name: e.Name, NewName: e.NewName}
	}

	types, err := s.types.Rename(r.Context(), entries)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]typeResponse, len(types))
	for i, dt := range types {
		items[i] = typeToDTO(dt)
	}
	writeJSON(w, http.StatusOK, items)
}

// DeleteDocumentType handles DELETE /api/v1/document-types/{id}.
func (s *Server) DeleteDocumentType(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	dt, err := s.types.Delete(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, typeToDTO(dt))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var mismatch *domain.BatchMismatchError
	if errors.As(err, &mismatch) {
		return mismatch.Error()
	}
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrLabelNotFound,
		domain.ErrTypeNotFound,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrValidation,
		domain.ErrBatchMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// batchMismatchHandler surfaces the unmatched names of a rejected batch.
func batchMismatchHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrBatchMismatch) {
		return false
	}
	var mismatch *domain.BatchMismatchError
	if errors.As(err, &mismatch) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":      codeBatchMismatch,
			"message":   msg,
			"unmatched": mismatch.Unmatched,
		})
		return true
	}
	writeError(w, http.StatusUnprocessableEntity, codeBatchMismatch, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
