// Package index provides document chunking and the vector index that
// stores chunk embeddings for semantic retrieval.
package index

import (
	"fmt"
	"strings"
)

// ChunkerConfig holds chunking configuration.
type ChunkerConfig struct {
	// ChunkSize is the sliding window width in characters.
	ChunkSize int

	// Overlap is the number of characters shared between consecutive chunks.
	// Must be smaller than ChunkSize.
	Overlap int
}

// DefaultChunkerConfig returns sensible chunking defaults.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// Validate checks if the configuration is valid.
func (c ChunkerConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("ChunkSize must be positive, got %d", c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("Overlap must not be negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("Overlap (%d) must be less than ChunkSize (%d)", c.Overlap, c.ChunkSize)
	}
	return nil
}

// Chunker splits extracted document text into overlapping,
// sentence-boundary-aware segments suitable for indexing.
type Chunker struct {
	config ChunkerConfig
}

// NewChunker creates a new Chunker with the given configuration.
// Returns an error if the configuration is invalid.
func NewChunker(cfg ChunkerConfig) (*Chunker, error) {
	if cfg.ChunkSize == 0 {
		cfg = DefaultChunkerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{config: cfg}, nil
}

// NewDefaultChunker creates a Chunker with default configuration.
func NewDefaultChunker() *Chunker {
	c, err := NewChunker(DefaultChunkerConfig())
	if err != nil {
		panic(err)
	}
	return c
}

// Split splits text into an ordered sequence of trimmed chunks covering the
// entire input. A sliding window of ChunkSize characters advances over the
// text; when the window does not reach the end of the text, the window is
// shrunk to the nearest sentence-terminal period or newline, provided that
// boundary lies past the window midpoint. Consecutive chunks share Overlap
// characters so a concept split across a boundary stays retrievable from
// either side. Empty input yields no chunks.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(strings.TrimSpace(text)) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.config.ChunkSize

		if end >= len(runes) {
			end = len(runes)
		} else if boundary := sentenceBoundary(runes[start:end]); boundary > c.config.ChunkSize/2 {
			end = start + boundary + 1
		}

		// Termination guard: the window must always advance, even on
		// pathological inputs.
		if end <= start {
			end = start + 1
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}
		next := end - c.config.Overlap
		if next <= start {
			// A boundary-shrunk window can be smaller than the overlap;
			// never let the window slide backwards.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// sentenceBoundary returns the index of the last period or newline in the
// window, or -1 if the window contains neither.
func sentenceBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
