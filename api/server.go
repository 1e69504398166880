// Package api exposes the assistant over HTTP.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/esglens/esglens/events"
	"github.com/esglens/esglens/index"
	"github.com/esglens/esglens/ingest"
	"github.com/esglens/esglens/ingest/parser"
	"github.com/esglens/esglens/prompts"
	"github.com/esglens/esglens/rag"
)

// maxUploadSize bounds multipart uploads (32MB).
const maxUploadSize = 32 << 20

// Generator produces answers for chat requests.
type Generator interface {
	Generate(ctx context.Context, req rag.Request) rag.Answer
}

// Processor runs documents through the ingestion pipeline.
type Processor interface {
	Process(ctx context.Context, doc *ingest.Document, content []byte) error
	Remove(ctx context.Context, documentID string) error
}

// Index is the read-only slice of the vector store the API serves from.
type Index interface {
	Stats() index.Stats
	ChunksByDocument(ctx context.Context, documentID string) ([]index.Result, error)
}

// Handler serves the HTTP API.
type Handler struct {
	generator Generator
	processor Processor
	index     Index
	publisher *events.Publisher
	logger    *slog.Logger

	mu        sync.RWMutex
	documents map[string]*ingest.Document
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithPublisher attaches an event publisher.
func WithPublisher(pub *events.Publisher) HandlerOption {
	return func(h *Handler) {
		h.publisher = pub
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates the API handler.
func NewHandler(generator Generator, processor Processor, idx Index, opts ...HandlerOption) *Handler {
	h := &Handler{
		generator: generator,
		processor: processor,
		index:     idx,
		logger:    slog.Default(),
		documents: make(map[string]*ingest.Document),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the ServeMux with all endpoints registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", h.handleChat)
	mux.HandleFunc("POST /api/chat/suggest-frameworks", h.handleSuggestFrameworks)
	mux.HandleFunc("POST /api/documents", h.handleUpload)
	mux.HandleFunc("GET /api/documents", h.handleList)
	mux.HandleFunc("GET /api/documents/{id}", h.handleGet)
	mux.HandleFunc("GET /api/documents/{id}/chunks", h.handleChunks)
	mux.HandleFunc("DELETE /api/documents/{id}", h.handleDelete)
	mux.HandleFunc("GET /api/stats", h.handleStats)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// ChatRequest is the JSON request for POST /api/chat.
type ChatRequest struct {
	Message        string         `json:"message"`
	FrameworkFocus string         `json:"framework_focus,omitempty"`
	Context        []index.Result `json:"context,omitempty"`
}

// SuggestRequest is the JSON request for POST /api/chat/suggest-frameworks.
type SuggestRequest struct {
	Message string `json:"message"`
}

// SuggestResponse is the JSON response for POST /api/chat/suggest-frameworks.
type SuggestResponse struct {
	Frameworks []string `json:"frameworks"`
}

// StatsResponse is the JSON response for GET /api/stats.
type StatsResponse struct {
	Index     index.Stats    `json:"index"`
	Documents map[string]int `json:"documents"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleChat handles POST /api/chat.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "parse_error", "Invalid JSON body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSONError(w, http.StatusBadRequest, "message_required", "Message field is required")
		return
	}

	requestID := uuid.NewString()
	answer := h.generator.Generate(r.Context(), rag.Request{
		Query:            req.Message,
		FrameworkFocus:   req.FrameworkFocus,
		ContextDocuments: req.Context,
	})
	h.logger.Info("Chat answered",
		"request_id", requestID,
		"template", answer.PromptTemplate,
		"confidence", answer.ConfidenceScore,
		"references", len(answer.References),
		"degraded", answer.Degraded)

	if err := h.publisher.PublishResponseGenerated(events.ResponseGenerated{
		ConfidenceScore: answer.ConfidenceScore,
		ReferenceCount:  len(answer.References),
		PromptTemplate:  string(answer.PromptTemplate),
		Degraded:        answer.Degraded,
	}); err != nil {
		h.logger.Warn("Failed to publish response event", "error", err)
	}

	writeJSON(w, http.StatusOK, answer)
}

// handleSuggestFrameworks handles POST /api/chat/suggest-frameworks.
func (h *Handler) handleSuggestFrameworks(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "parse_error", "Invalid JSON body: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SuggestResponse{
		Frameworks: prompts.SuggestFrameworks(req.Message),
	})
}

// handleUpload handles POST /api/documents - upload and index a document.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "parse_error", "Failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file_required", "File field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if parser.MimeTypeFromExtension(ext) == "application/octet-stream" {
		writeJSONError(w, http.StatusBadRequest, "invalid_type", "Unsupported file type. Supported: .md, .txt, .pdf, .html, .csv, .docx, .xlsx")
		return
	}

	category := ingest.Category(r.FormValue("category"))
	if category == "" {
		category = ingest.CategoryInternal
	}

	doc, err := ingest.NewDocument(header.Filename, category)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_document", err.Error())
		return
	}
	doc.Framework = r.FormValue("framework")
	doc.Description = r.FormValue("description")
	if tags := r.FormValue("tags"); tags != "" {
		doc.Tags = splitTags(tags)
	}

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "io_error", "Failed to read upload")
		return
	}

	// Processing failures still register the document so the client can
	// inspect its failed state.
	processErr := h.processor.Process(r.Context(), doc, content)

	h.mu.Lock()
	h.documents[doc.ID] = doc
	h.mu.Unlock()

	if processErr != nil {
		writeJSON(w, http.StatusUnprocessableEntity, doc)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// handleList handles GET /api/documents.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	docs := make([]*ingest.Document, 0, len(h.documents))
	for _, doc := range h.documents {
		docs = append(docs, doc)
	}
	h.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})

	writeJSON(w, http.StatusOK, docs)
}

// handleGet handles GET /api/documents/{id}.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	doc, ok := h.documents[r.PathValue("id")]
	h.mu.RUnlock()

	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Document not found")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleChunks handles GET /api/documents/{id}/chunks - the document's
// indexed chunks in order.
func (h *Handler) handleChunks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	h.mu.RLock()
	_, ok := h.documents[id]
	h.mu.RUnlock()

	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Document not found")
		return
	}

	chunks, err := h.index.ChunksByDocument(r.Context(), id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "index_error", "Failed to list document chunks: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chunks)
}

// handleDelete handles DELETE /api/documents/{id}.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	h.mu.RLock()
	_, ok := h.documents[id]
	h.mu.RUnlock()

	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Document not found")
		return
	}

	if err := h.processor.Remove(r.Context(), id); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "index_error", "Failed to remove document chunks: "+err.Error())
		return
	}

	h.mu.Lock()
	delete(h.documents, id)
	h.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// handleStats handles GET /api/stats.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	byStatus := make(map[string]int)
	h.mu.RLock()
	for _, doc := range h.documents {
		byStatus[string(doc.Status)]++
	}
	h.mu.RUnlock()

	writeJSON(w, http.StatusOK, StatsResponse{
		Index:     h.index.Stats(),
		Documents: byStatus,
	})
}

// handleHealth handles GET /healthz.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
