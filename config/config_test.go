package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esglens/esglens/llm"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 60*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 1000, cfg.Chunker.ChunkSize)
	assert.Equal(t, 200, cfg.Chunker.Overlap)
	assert.Equal(t, "esg_documents", cfg.Index.Collection)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "no endpoints",
			mutate:  func(c *Config) { c.Model.Endpoints = nil },
			wantErr: "model.endpoints",
		},
		{
			name: "endpoint missing provider",
			mutate: func(c *Config) {
				c.Model.Endpoints = []llm.Endpoint{{Model: "gpt-4o"}}
			},
			wantErr: "provider is required",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Model.Temperature = 1.5 },
			wantErr: "temperature",
		},
		{
			name:    "empty embedding provider",
			mutate:  func(c *Config) { c.Embedding.Provider = "" },
			wantErr: "embedding.provider",
		},
		{
			name: "overlap not less than chunk size",
			mutate: func(c *Config) {
				c.Chunker.ChunkSize = 100
				c.Chunker.Overlap = 100
			},
			wantErr: "chunker",
		},
		{
			name:    "empty server addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: "server.addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "esglens.yaml")
	content := `
model:
  endpoints:
    - provider: openai
      model: gpt-4o
  temperature: 0.5
index:
  path: /var/lib/esglens
server:
  addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Model.Endpoints[0].Provider)
	assert.Equal(t, 0.5, cfg.Model.Temperature)
	assert.Equal(t, "/var/lib/esglens", cfg.Index.Path)
	assert.Equal(t, ":9090", cfg.Server.Addr)

	// Unspecified sections keep their defaults.
	assert.Equal(t, "esg_documents", cfg.Index.Collection)
	assert.Equal(t, 1000, cfg.Chunker.ChunkSize)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Model: ModelConfig{
			Endpoints: []llm.Endpoint{{Provider: "anthropic", Model: "claude-sonnet-4-5"}},
		},
		Index:  IndexConfig{Path: "/data"},
		Server: ServerConfig{Addr: ":7070"},
	})

	assert.Equal(t, "anthropic", base.Model.Endpoints[0].Provider)
	assert.Equal(t, "/data", base.Index.Path)
	assert.Equal(t, ":7070", base.Server.Addr)

	// Zero values don't overwrite.
	assert.Equal(t, 0.2, base.Model.Temperature)
	assert.Equal(t, "esg_documents", base.Index.Collection)
}

func TestMergeNil(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(nil)
	require.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":6060"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":6060", loaded.Server.Addr)
}
