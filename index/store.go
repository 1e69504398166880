package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
)

// Metadata keys attached to every indexed chunk.
const (
	MetaDocumentID = "document_id"
	MetaChunkIndex = "chunk_index"
	MetaChunkID    = "chunk_id"
	MetaFilename   = "filename"
	MetaCategory   = "category"
	MetaFramework  = "framework"
)

// ChunkID derives the stable index ID for a document chunk from the owning
// document ID and the chunk's ordinal position.
func ChunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, ordinal)
}

// Result is a single retrieval hit. Distance is a dissimilarity score in
// [0, inf) where 0 means identical; results are always ordered ascending.
type Result struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Distance float64           `json:"distance"`
}

// Stats summarizes the index contents.
type Stats struct {
	TotalChunks int            `json:"total_chunks"`
	Categories  map[string]int `json:"categories"`
	Frameworks  map[string]int `json:"frameworks"`
}

// StoreConfig holds vector store configuration.
type StoreConfig struct {
	// Path is the on-disk database directory. Empty means in-memory.
	Path string

	// Collection is the chromem collection name.
	Collection string
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Path:       "",
		Collection: "esg_documents",
	}
}

// entryMeta is the per-chunk metadata retained for stats accounting.
type entryMeta struct {
	documentID string
	category   string
	framework  string
}

// Store is the vector index. It wraps a chromem-go collection configured
// for cosine similarity and computes embeddings internally through the
// collection's embedding function, so embeddings are not part of the
// public contract.
//
// Reads are safe for concurrent use. An upsert fully replaces any prior
// entry under the same chunk ID; a concurrent reader sees either the old
// or the new entry, never a partial one.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *slog.Logger

	// entries mirrors chunk metadata for Stats; chromem exposes no
	// collection scan. Counts cover entries written through this process.
	mu      sync.RWMutex
	entries map[string]entryMeta
}

// NewStore creates a vector store. With an empty Path the database lives
// in memory, which is what the tests use.
func NewStore(cfg StoreConfig, embed chromem.EmbeddingFunc, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultStoreConfig().Collection
	}

	var db *chromem.DB
	var err error
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open vector database: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, map[string]string{
		"hnsw:space": "cosine",
	}, embed)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", cfg.Collection, err)
	}

	return &Store{
		db:         db,
		collection: collection,
		logger:     logger,
		entries:    make(map[string]entryMeta),
	}, nil
}

// Upsert adds or fully replaces one entry. The metadata map is copied, so
// callers may reuse it across chunks.
func (s *Store) Upsert(ctx context.Context, chunkID, text string, metadata map[string]string) error {
	if chunkID == "" {
		return fmt.Errorf("chunk ID is required")
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[MetaChunkID] = chunkID

	if err := s.collection.AddDocument(ctx, chromem.Document{
		ID:       chunkID,
		Content:  text,
		Metadata: meta,
	}); err != nil {
		return fmt.Errorf("add chunk %s: %w", chunkID, err)
	}

	s.mu.Lock()
	s.entries[chunkID] = entryMeta{
		documentID: meta[MetaDocumentID],
		category:   meta[MetaCategory],
		framework:  meta[MetaFramework],
	}
	s.mu.Unlock()

	return nil
}

// Query returns up to limit results ordered ascending by distance. A query
// against an empty index returns an empty slice, not an error. Query never
// mutates state.
func (s *Store) Query(ctx context.Context, query string, limit int, filter map[string]string) ([]Result, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	// chromem rejects nResults larger than the collection size.
	count := s.collection.Count()
	if count == 0 {
		return []Result{}, nil
	}
	if limit > count {
		limit = count
	}

	hits, err := s.collection.Query(ctx, query, limit, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			ID:       hit.ID,
			Content:  hit.Content,
			Metadata: hit.Metadata,
			Distance: distanceFromSimilarity(hit.Similarity),
		})
	}
	return results, nil
}

// distanceFromSimilarity converts chromem's cosine similarity into the
// dissimilarity score the rest of the pipeline works with.
func distanceFromSimilarity(similarity float32) float64 {
	d := 1 - float64(similarity)
	if d < 0 {
		d = 0
	}
	return d
}

// DeleteByDocument removes every entry belonging to the given document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("document ID is required")
	}

	if err := s.collection.Delete(ctx, map[string]string{MetaDocumentID: documentID}, nil); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}

	s.mu.Lock()
	removed := 0
	for id, meta := range s.entries {
		if meta.documentID == documentID {
			delete(s.entries, id)
			removed++
		}
	}
	s.mu.Unlock()

	s.logger.Debug("Deleted document from index",
		"document_id", documentID,
		"chunks_removed", removed)
	return nil
}

// ChunksByDocument returns every indexed chunk belonging to the given
// document, ordered by chunk index. Distance is zero; this is a listing,
// not a similarity query. A document with no chunks returns an empty
// slice.
func (s *Store) ChunksByDocument(ctx context.Context, documentID string) ([]Result, error) {
	if documentID == "" {
		return nil, fmt.Errorf("document ID is required")
	}

	s.mu.RLock()
	ids := make([]string, 0, 8)
	for id, meta := range s.entries {
		if meta.documentID == documentID {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		doc, err := s.collection.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get chunk %s: %w", id, err)
		}
		results = append(results, Result{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return chunkOrdinal(results[i]) < chunkOrdinal(results[j])
	})
	return results, nil
}

// chunkOrdinal reads the chunk index metadata, treating entries written
// without one as ordinal zero.
func chunkOrdinal(r Result) int {
	n, _ := strconv.Atoi(r.Metadata[MetaChunkIndex])
	return n
}

// Count returns the number of indexed chunks.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Stats returns the total entry count plus per-category and per-framework
// counts.
func (s *Store) Stats() Stats {
	stats := Stats{
		TotalChunks: s.collection.Count(),
		Categories:  make(map[string]int),
		Frameworks:  make(map[string]int),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, meta := range s.entries {
		category := meta.category
		if category == "" {
			category = "unknown"
		}
		stats.Categories[category]++

		framework := meta.framework
		if framework == "" {
			framework = "unknown"
		}
		stats.Frameworks[framework]++
	}
	return stats
}
