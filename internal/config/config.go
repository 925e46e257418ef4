package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port      int              `json:"port"`
	CORS      []string         `json:"cors"`
	DataDir   string           `json:"data_dir"`
	Vertical  string           `json:"vertical"`
	Chunking  ChunkingConfig   `json:"chunking"`
	Embedding EmbeddingConfig  `json:"embedding"`
	Generate  GenerateConfig   `json:"generate"`
	Index     IndexConfig      `json:"index"`
	Artifacts ArtifactsConfig  `json:"artifacts"`
	Jobs      JobsConfig       `json:"jobs"`
	LogConfig logger.LogConfig `json:"log_config"`
}

type ChunkingConfig struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
	MinChunkSize int `json:"min_chunk_size"`
	// pointer so that an absent key means enabled
	RespectHeadings *bool `json:"respect_headings"`
}

func (c ChunkingConfig) HeadingsEnabled() bool {
	return c.RespectHeadings == nil || *c.RespectHeadings
}

type ProviderConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type EmbeddingConfig struct {
	Provider     ProviderConfig `json:"provider"`
	Model        string         `json:"model"`
	Normalize    bool           `json:"normalize"`
	CacheSize    int            `json:"cache_size"`
	CacheTTLMins int            `json:"cache_ttl_mins"`
}

type GenerateConfig struct {
	Provider ProviderConfig `json:"provider"`
	Model    string         `json:"model"`
}

type IndexConfig struct {
	Backend string      `json:"backend"`
	Data    interface{} `json:"data"`
}

type ArtifactsConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type JobsConfig struct {
	ReindexSpec       string `json:"reindex_spec"`
	SnapshotSpec      string `json:"snapshot_spec"`
	ChatWindowSeconds int    `json:"chat_window_seconds"`
}

// Load reads a JSON config file, applies defaults and validates what cannot
// be defaulted.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 800
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 150
	}
	if cfg.Chunking.MinChunkSize == 0 {
		cfg.Chunking.MinChunkSize = 200
	}
	if cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		return nil, fmt.Errorf("chunking.chunk_overlap must be smaller than chunk_size")
	}
	if cfg.Embedding.Provider.Type == "" {
		return nil, fmt.Errorf("embedding.provider.type is required")
	}
	if cfg.Embedding.Model == "" {
		return nil, fmt.Errorf("embedding.model is required")
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 4096
	}
	if cfg.Embedding.CacheTTLMins == 0 {
		cfg.Embedding.CacheTTLMins = 60
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "flat"
	}
	if cfg.Index.Backend == "flat" && cfg.Index.Data == nil {
		cfg.Index.Data = map[string]interface{}{"dir": filepath.Join(cfg.DataDir, "index")}
	}
	if cfg.Jobs.ChatWindowSeconds < 0 {
		cfg.Jobs.ChatWindowSeconds = 0
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	return &cfg, nil
}

// Pipeline working files under the data directory.

func (c *Config) DocumentsPath() string {
	return filepath.Join(c.DataDir, "documents.jsonl")
}

func (c *Config) ChunksPath() string {
	return filepath.Join(c.DataDir, "chunks.jsonl")
}

func (c *Config) VectorsPath() string {
	return filepath.Join(c.DataDir, "vectors.jsonl")
}
