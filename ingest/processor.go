package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/esglens/esglens/events"
	"github.com/esglens/esglens/index"
	"github.com/esglens/esglens/ingest/parser"
)

// Indexer is the slice of the vector store the processor needs.
type Indexer interface {
	Upsert(ctx context.Context, chunkID, text string, metadata map[string]string) error
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Processor parses, chunks, and indexes uploaded documents.
type Processor struct {
	registry  *parser.Registry
	chunker   *index.Chunker
	indexer   Indexer
	publisher *events.Publisher
	logger    *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithRegistry overrides the default parser registry.
func WithRegistry(r *parser.Registry) ProcessorOption {
	return func(p *Processor) {
		p.registry = r
	}
}

// WithPublisher attaches an event publisher.
func WithPublisher(pub *events.Publisher) ProcessorOption {
	return func(p *Processor) {
		p.publisher = pub
	}
}

// WithProcessorLogger sets the logger.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a document processor.
func NewProcessor(chunker *index.Chunker, indexer Indexer, opts ...ProcessorOption) *Processor {
	p := &Processor{
		registry: parser.DefaultRegistry,
		chunker:  chunker,
		indexer:  indexer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one document through the pipeline and mutates its
// lifecycle state in place. A parse or index failure moves the document
// to failed with the error recorded, and is also returned.
func (p *Processor) Process(ctx context.Context, doc *Document, content []byte) error {
	doc.Status = StatusProcessing
	doc.ContentType = parser.MimeTypeFromExtension(filepath.Ext(doc.Filename))

	extracted, err := p.registry.Parse(doc.Filename, content)
	if err != nil {
		return p.fail(doc, fmt.Errorf("parse %s: %w", doc.Filename, err))
	}

	chunks := p.chunker.Split(extracted.Text)
	chunkIDs, err := p.UpsertChunks(ctx, doc.ID, chunks, map[string]string{
		index.MetaFilename:  doc.Filename,
		index.MetaCategory:  string(doc.Category),
		index.MetaFramework: doc.Framework,
	})
	if err != nil {
		return p.fail(doc, fmt.Errorf("index %s: %w", doc.Filename, err))
	}

	doc.Status = StatusProcessed
	doc.Error = ""
	doc.WordCount = wordCount(extracted.Text)
	doc.ChunkCount = len(chunkIDs)
	doc.ProcessedAt = time.Now().UTC()

	p.logger.Info("Document processed",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"chunks", doc.ChunkCount,
		"words", doc.WordCount)

	if err := p.publisher.PublishDocumentIndexed(events.DocumentIndexed{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Category:   string(doc.Category),
		ChunkCount: doc.ChunkCount,
	}); err != nil {
		p.logger.Warn("Failed to publish indexed event", "error", err)
	}

	return nil
}

// UpsertChunks replaces a document's chunks in the index. Existing
// chunks are deleted first so a shrinking document leaves no stale
// trailing chunks behind. Returns the IDs of the inserted chunks.
func (p *Processor) UpsertChunks(ctx context.Context, documentID string, chunks []string, shared map[string]string) ([]string, error) {
	if err := p.indexer.DeleteByDocument(ctx, documentID); err != nil {
		return nil, fmt.Errorf("delete existing chunks: %w", err)
	}

	chunkIDs := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		metadata := make(map[string]string, len(shared)+2)
		for k, v := range shared {
			if v != "" {
				metadata[k] = v
			}
		}
		metadata[index.MetaDocumentID] = documentID
		metadata[index.MetaChunkIndex] = strconv.Itoa(i)

		chunkID := index.ChunkID(documentID, i)
		if err := p.indexer.Upsert(ctx, chunkID, chunk, metadata); err != nil {
			return nil, fmt.Errorf("upsert chunk %d: %w", i, err)
		}
		chunkIDs = append(chunkIDs, chunkID)
	}

	return chunkIDs, nil
}

// Remove deletes a document's chunks from the index.
func (p *Processor) Remove(ctx context.Context, documentID string) error {
	if err := p.indexer.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}

	if err := p.publisher.PublishDocumentDeleted(events.DocumentDeleted{
		DocumentID: documentID,
	}); err != nil {
		p.logger.Warn("Failed to publish deleted event", "error", err)
	}

	return nil
}

func (p *Processor) fail(doc *Document, err error) error {
	doc.Status = StatusFailed
	doc.Error = err.Error()
	p.logger.Error("Document processing failed",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"error", err)
	return err
}
