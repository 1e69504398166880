package index

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ChunkerConfig
		wantErr bool
	}{
		{
			name:    "valid defaults",
			config:  DefaultChunkerConfig(),
			wantErr: false,
		},
		{
			name:    "zero chunk size",
			config:  ChunkerConfig{ChunkSize: 0, Overlap: 0},
			wantErr: true,
		},
		{
			name:    "negative overlap",
			config:  ChunkerConfig{ChunkSize: 100, Overlap: -1},
			wantErr: true,
		},
		{
			name:    "overlap equals chunk size",
			config:  ChunkerConfig{ChunkSize: 100, Overlap: 100},
			wantErr: true,
		},
		{
			name:    "overlap larger than chunk size",
			config:  ChunkerConfig{ChunkSize: 100, Overlap: 150},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChunker_Split_Empty(t *testing.T) {
	c := NewDefaultChunker()

	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   \n\t  "))
}

func TestChunker_Split_ShortText(t *testing.T) {
	c := NewDefaultChunker()

	chunks := c.Split("A short sustainability statement.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short sustainability statement.", chunks[0])
}

func TestChunker_Split_ThreeChunks(t *testing.T) {
	// 2500 characters with chunk size 1000 and overlap 200 produces
	// exactly three chunks.
	c, err := NewChunker(ChunkerConfig{ChunkSize: 1000, Overlap: 200})
	require.NoError(t, err)

	sentence := "The company discloses scope one and scope two emissions annually. "
	var b strings.Builder
	for b.Len() < 2500 {
		b.WriteString(sentence)
	}
	text := b.String()[:2500]

	chunks := c.Split(text)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 1000, "chunk %d exceeds window", i)
		assert.NotEmpty(t, chunk)
	}
}

func TestChunker_Split_OverlapSharesContent(t *testing.T) {
	c, err := NewChunker(ChunkerConfig{ChunkSize: 100, Overlap: 30})
	require.NoError(t, err)

	text := strings.Repeat("Emissions fell by four percent year over year. ", 20)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		// Each chunk after the first starts inside the previous window.
		head := cur
		if len(head) > 10 {
			head = head[:10]
		}
		assert.Contains(t, prev, head, "chunk %d shares no content with its predecessor", i)
	}
}

func TestChunker_Split_SentenceBoundary(t *testing.T) {
	c, err := NewChunker(ChunkerConfig{ChunkSize: 100, Overlap: 20})
	require.NoError(t, err)

	// A period sits at position 80, past the window midpoint, so the first
	// window shrinks to end there instead of cutting mid-sentence.
	text := strings.Repeat("a", 79) + "." + strings.Repeat("b", 100)
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)
	assert.True(t, strings.HasSuffix(chunks[0], "."), "first chunk should end at the sentence boundary, got %q", chunks[0])
}

func TestChunker_Split_NoBoundaryHardCut(t *testing.T) {
	c, err := NewChunker(ChunkerConfig{ChunkSize: 100, Overlap: 20})
	require.NoError(t, err)

	// No periods or newlines anywhere: every window is a hard cut.
	text := strings.Repeat("x", 450)
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks[:len(chunks)-1] {
		assert.Len(t, chunk, 100, "chunk %d", i)
	}
	assert.LessOrEqual(t, len(chunks[len(chunks)-1]), 100)
}

func TestChunker_Split_Terminates(t *testing.T) {
	// Pathological inputs must not loop: no sentence boundaries and an
	// overlap close to the window size.
	tests := []struct {
		name   string
		config ChunkerConfig
		text   string
	}{
		{
			name:   "overlap nearly chunk size",
			config: ChunkerConfig{ChunkSize: 100, Overlap: 99},
			text:   strings.Repeat("y", 1000),
		},
		{
			name:   "boundary shrinks window below overlap",
			config: ChunkerConfig{ChunkSize: 100, Overlap: 80},
			text:   strings.Repeat(strings.Repeat("z", 60)+".", 30),
		},
		{
			name:   "single character",
			config: ChunkerConfig{ChunkSize: 10, Overlap: 5},
			text:   "q",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChunker(tt.config)
			require.NoError(t, err)

			done := make(chan []string, 1)
			go func() { done <- c.Split(tt.text) }()

			select {
			case chunks := <-done:
				assert.NotEmpty(t, chunks)
			case <-time.After(5 * time.Second):
				t.Fatal("chunking did not terminate")
			}
		})
	}
}

func TestChunker_Split_Coverage(t *testing.T) {
	c, err := NewChunker(ChunkerConfig{ChunkSize: 120, Overlap: 30})
	require.NoError(t, err)

	sentences := []string{
		"Governance oversight of climate risk sits with the board.",
		"Management reviews transition risk quarterly.",
		"Scope three emissions are estimated from supplier data.",
		"Water withdrawal is reported per facility.",
		"The materiality assessment is refreshed every two years.",
	}
	text := strings.Join(sentences, " ")

	chunks := c.Split(text)
	joined := strings.Join(chunks, " ")
	for _, s := range sentences {
		assert.Contains(t, joined, s[:20], "sentence lost during chunking: %q", s)
	}
}
