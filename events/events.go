// Package events publishes pipeline lifecycle events to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects for pipeline events.
const (
	SubjectDocumentIndexed   = "esglens.document.indexed"
	SubjectDocumentDeleted   = "esglens.document.deleted"
	SubjectResponseGenerated = "esglens.response.generated"
)

// DocumentIndexed is published after a document's chunks are upserted.
type DocumentIndexed struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	Category   string    `json:"category"`
	ChunkCount int       `json:"chunk_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// DocumentDeleted is published after a document's chunks are removed.
type DocumentDeleted struct {
	DocumentID string    `json:"document_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// ResponseGenerated is published after each chat answer.
type ResponseGenerated struct {
	ConfidenceScore float64   `json:"confidence_score"`
	ReferenceCount  int       `json:"reference_count"`
	PromptTemplate  string    `json:"prompt_template"`
	Degraded        bool      `json:"degraded"`
	Timestamp       time.Time `json:"timestamp"`
}

// Publisher publishes pipeline events. A nil connection disables
// publishing: every method becomes a no-op so callers never need to
// branch on whether NATS is configured.
type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewPublisher creates a publisher over an existing NATS connection.
// conn may be nil.
func NewPublisher(conn *nats.Conn, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, logger: logger}
}

// Connect dials NATS and returns a publisher. An empty URL yields a
// disabled publisher rather than an error.
func Connect(url string, logger *slog.Logger) (*Publisher, error) {
	if url == "" {
		return NewPublisher(nil, logger), nil
	}

	conn, err := nats.Connect(url,
		nats.Name("esglens"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect NATS: %w", err)
	}

	return NewPublisher(conn, logger), nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// PublishDocumentIndexed emits a document indexed event.
func (p *Publisher) PublishDocumentIndexed(event DocumentIndexed) error {
	event.Timestamp = time.Now().UTC()
	return p.publish(SubjectDocumentIndexed, event)
}

// PublishDocumentDeleted emits a document deleted event.
func (p *Publisher) PublishDocumentDeleted(event DocumentDeleted) error {
	event.Timestamp = time.Now().UTC()
	return p.publish(SubjectDocumentDeleted, event)
}

// PublishResponseGenerated emits a response generated event.
func (p *Publisher) PublishResponseGenerated(event ResponseGenerated) error {
	event.Timestamp = time.Now().UTC()
	return p.publish(SubjectResponseGenerated, event)
}

func (p *Publisher) publish(subject string, event any) error {
	if p == nil || p.conn == nil {
		return nil // Skip publishing if no NATS connection (graceful degradation)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug("Published event", "subject", subject)
	return nil
}
