// Package ingest turns uploaded ESG documents into indexed chunks.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies a document for retrieval filtering.
type Category string

// Document categories.
const (
	CategoryFramework   Category = "framework"
	CategoryCompanyData Category = "company_data"
	CategoryRegulatory  Category = "regulatory"
	CategoryPeerReport  Category = "peer_report"
	CategoryInternal    Category = "internal"
)

// ValidCategory reports whether c is a known document category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryFramework, CategoryCompanyData, CategoryRegulatory, CategoryPeerReport, CategoryInternal:
		return true
	default:
		return false
	}
}

// Status tracks a document through its processing lifecycle.
type Status string

// Lifecycle states. A document moves uploaded -> processing, then to
// processed or failed. Failed documents keep their error for inspection.
const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// Document is the ingestion record for one uploaded file.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Category    Category  `json:"category"`
	Framework   string    `json:"framework,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	WordCount   int       `json:"word_count"`
	ChunkCount  int       `json:"chunk_count"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ProcessedAt time.Time `json:"processed_at,omitzero"`
}

// NewDocument creates a document record in the uploaded state.
func NewDocument(filename string, category Category) (*Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if !ValidCategory(category) {
		return nil, fmt.Errorf("unknown category: %s", category)
	}

	return &Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Category:   category,
		Status:     StatusUploaded,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// wordCount counts whitespace-separated tokens.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
