// Package config provides configuration loading and management for esglens.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/esglens/esglens/index"
	"github.com/esglens/esglens/ingest"
	"github.com/esglens/esglens/llm"
)

// Config represents the complete esglens configuration
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Ingest    IngestConfig    `yaml:"ingest"`
	NATS      NATSConfig      `yaml:"nats"`
	Server    ServerConfig    `yaml:"server"`
}

// ModelConfig configures the LLM completion settings
type ModelConfig struct {
	// Endpoints is the fallback chain of LLM endpoints, tried in order
	Endpoints []llm.Endpoint `yaml:"endpoints"`
	// Temperature controls randomness (0.0-1.0)
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for model responses
	Timeout time.Duration `yaml:"timeout"`
}

// EmbeddingConfig configures the embedding model used for indexing
type EmbeddingConfig struct {
	// Provider selects the embedding backend ("openai" or "ollama")
	Provider string `yaml:"provider"`
	// Model is the embedding model name
	Model string `yaml:"model"`
	// Endpoint overrides the provider's default API endpoint
	Endpoint string `yaml:"endpoint"`
}

// IndexConfig configures the vector store
type IndexConfig struct {
	// Path is the persistence directory (empty = in-memory)
	Path string `yaml:"path"`
	// Collection is the chromem collection name
	Collection string `yaml:"collection"`
}

// ChunkerConfig configures document chunking
type ChunkerConfig struct {
	// ChunkSize is the target chunk length in characters
	ChunkSize int `yaml:"chunk_size"`
	// Overlap is how many characters consecutive chunks share
	Overlap int `yaml:"overlap"`
}

// IngestConfig configures document ingestion
type IngestConfig struct {
	// DocumentsDir is the directory scanned and watched for documents
	DocumentsDir string `yaml:"documents_dir"`
	// Patterns are doublestar globs selecting files to ingest
	Patterns []string `yaml:"patterns"`
	// Watch configures filesystem watching
	Watch ingest.WatchConfig `yaml:"watch"`
}

// NATSConfig configures the event publisher
type NATSConfig struct {
	// URL is the NATS server URL (empty = events disabled)
	URL string `yaml:"url"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	storeDefaults := index.DefaultStoreConfig()

	return &Config{
		Model: ModelConfig{
			Endpoints: []llm.Endpoint{
				{Provider: "ollama", Model: "llama3.1:8b"},
			},
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
		},
		Index: IndexConfig{
			Path:       "",
			Collection: storeDefaults.Collection,
		},
		Chunker: ChunkerConfig{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Ingest: IngestConfig{
			DocumentsDir: "documents",
			Patterns:     nil, // parser registry defaults
			Watch:        ingest.DefaultWatchConfig(),
		},
		NATS: NATSConfig{
			URL: "",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Model.Endpoints) == 0 {
		return fmt.Errorf("model.endpoints requires at least one endpoint")
	}
	for i, ep := range c.Model.Endpoints {
		if ep.Provider == "" {
			return fmt.Errorf("model.endpoints[%d].provider is required", i)
		}
		if ep.Model == "" {
			return fmt.Errorf("model.endpoints[%d].model is required", i)
		}
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Embedding.Provider == "" {
		return fmt.Errorf("embedding.provider is required")
	}
	if c.Index.Collection == "" {
		return fmt.Errorf("index.collection is required")
	}
	if _, err := index.NewChunker(index.ChunkerConfig{
		ChunkSize: c.Chunker.ChunkSize,
		Overlap:   c.Chunker.Overlap,
	}); err != nil {
		return fmt.Errorf("chunker: %w", err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Model
	if len(other.Model.Endpoints) > 0 {
		c.Model.Endpoints = other.Model.Endpoints
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	// Embedding
	if other.Embedding.Provider != "" {
		c.Embedding.Provider = other.Embedding.Provider
	}
	if other.Embedding.Model != "" {
		c.Embedding.Model = other.Embedding.Model
	}
	if other.Embedding.Endpoint != "" {
		c.Embedding.Endpoint = other.Embedding.Endpoint
	}

	// Index
	if other.Index.Path != "" {
		c.Index.Path = other.Index.Path
	}
	if other.Index.Collection != "" {
		c.Index.Collection = other.Index.Collection
	}

	// Chunker
	if other.Chunker.ChunkSize != 0 {
		c.Chunker.ChunkSize = other.Chunker.ChunkSize
	}
	if other.Chunker.Overlap != 0 {
		c.Chunker.Overlap = other.Chunker.Overlap
	}

	// Ingest
	if other.Ingest.DocumentsDir != "" {
		c.Ingest.DocumentsDir = other.Ingest.DocumentsDir
	}
	if len(other.Ingest.Patterns) > 0 {
		c.Ingest.Patterns = other.Ingest.Patterns
	}
	if other.Ingest.Watch.Enabled {
		c.Ingest.Watch = other.Ingest.Watch
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
}
