package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"docask/internal/domain"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// StorageConfig configures on-disk locations.
type StorageConfig struct {
	IndexDir  string `yaml:"index_dir"`
	UploadDir string `yaml:"upload_dir"`
}

// IndexConfig configures the vector index.
type IndexConfig struct {
	Dimension int `yaml:"dimension"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// EmbedderConfig configures the OpenAI embeddings provider.
type EmbedderConfig struct {
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// GeneratorConfig configures the Claude generation provider.
type GeneratorConfig struct {
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	MaxTokens   int    `yaml:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig bounds retrieval and context assembly.
type RetrievalConfig struct {
	TopK            int     `yaml:"top_k"`
	MinScore        float32 `yaml:"min_score"`
	MaxContextChars int     `yaml:"max_context_chars"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string   `yaml:"level"`
	Output []string `yaml:"output"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Index     IndexConfig     `yaml:"index"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Load reads a config from the given path. A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, cfg.validate()
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, cfg.validate()
}

// LoadDefault tries ./config.yaml first, then ~/.config/docask/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, cfg.validate()
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// validate fails fast on configuration that would corrupt the pipeline:
// a chunk window that never advances, or a degenerate index dimension.
func (c *AppConfig) validate() error {
	if c.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunker.chunk_size must be positive", domain.ErrValidation)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("%w: chunker.overlap must be in [0, chunk_size)", domain.ErrValidation)
	}
	if c.Index.Dimension <= 0 {
		return fmt.Errorf("%w: index.dimension must be positive", domain.ErrValidation)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docask", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8000, RequestTimeoutSecs: 120},
		Storage:   StorageConfig{IndexDir: "data/vector_store", UploadDir: "data/uploads"},
		Index:     IndexConfig{Dimension: 1536},
		Chunker:   ChunkerConfig{ChunkSize: 1000, Overlap: 200},
		Embedder:  EmbedderConfig{APIKeyEnv: "OPENAI_API_KEY", Model: "text-embedding-3-small", TimeoutSecs: 30, BatchSize: 32},
		Generator: GeneratorConfig{APIKeyEnv: "ANTHROPIC_API_KEY", Model: "claude-sonnet-4-20250514", MaxTokens: 1024, TimeoutSecs: 60},
		Retrieval: RetrievalConfig{TopK: 5, MinScore: 0.3, MaxContextChars: 4000},
		Logging:   LoggingConfig{Level: "info", Output: []string{"stdout"}},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = def.Server.RequestTimeoutSecs
	}
	if cfg.Storage.IndexDir == "" {
		cfg.Storage.IndexDir = def.Storage.IndexDir
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = def.Storage.UploadDir
	}
	if cfg.Index.Dimension == 0 {
		cfg.Index.Dimension = def.Index.Dimension
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker = def.Chunker
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = def.Embedder.APIKeyEnv
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = def.Embedder.TimeoutSecs
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = def.Embedder.BatchSize
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = def.Generator.APIKeyEnv
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = def.Generator.Model
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = def.Generator.MaxTokens
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = def.Generator.TimeoutSecs
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.MinScore == 0 {
		cfg.Retrieval.MinScore = def.Retrieval.MinScore
	}
	if cfg.Retrieval.MaxContextChars == 0 {
		cfg.Retrieval.MaxContextChars = def.Retrieval.MaxContextChars
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if len(cfg.Logging.Output) == 0 {
		cfg.Logging.Output = def.Logging.Output
	}
}
