// Package config loads hybridrag settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/hybridrag/ai"
	"github.com/poiesic/hybridrag/ingestion"
	"github.com/poiesic/hybridrag/postprocess"
	"github.com/poiesic/hybridrag/search"
)

// ErrUnknownFormat is returned for config files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("unknown config file format")

// Store backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Config is the full application configuration.
type Config struct {
	AI        AIConfig        `yaml:"ai" toml:"ai"`
	Search    SearchConfig    `yaml:"search" toml:"search"`
	Ingestion IngestionConfig `yaml:"ingestion" toml:"ingestion"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
}

// AIConfig selects the embedding and chat services.
type AIConfig struct {
	Host           string  `yaml:"host" toml:"host"`
	EmbeddingHost  string  `yaml:"embedding_host" toml:"embedding_host"`
	ChatHost       string  `yaml:"chat_host" toml:"chat_host"`
	EmbeddingModel string  `yaml:"embedding_model" toml:"embedding_model"`
	ChatModel      string  `yaml:"chat_model" toml:"chat_model"`
	Token          string  `yaml:"token" toml:"token"`
	Temperature    float64 `yaml:"temperature" toml:"temperature"`
}

// SearchConfig holds ranking defaults.
type SearchConfig struct {
	TopK      int     `yaml:"top_k" toml:"top_k"`
	Alpha     float64 `yaml:"alpha" toml:"alpha"`
	Strategy  string  `yaml:"strategy" toml:"strategy"`
	MaxChars  int     `yaml:"max_chars" toml:"max_chars"`
	CacheSize int     `yaml:"cache_size" toml:"cache_size"`
}

// IngestionConfig holds chunking and embedding settings.
type IngestionConfig struct {
	ChunkSize   int    `yaml:"chunk_size" toml:"chunk_size"`
	Overlap     int    `yaml:"overlap" toml:"overlap"`
	BatchSize   int    `yaml:"batch_size" toml:"batch_size"`
	PoolSize    int    `yaml:"pool_size" toml:"pool_size"`
	Parallelism int    `yaml:"parallelism" toml:"parallelism"`
	MaxRetries  int    `yaml:"max_retries" toml:"max_retries"`
	RetryDelay  string `yaml:"retry_delay" toml:"retry_delay"`
}

// StoreConfig selects the chunk store.
type StoreConfig struct {
	Backend   string `yaml:"backend" toml:"backend"`
	Dimension int    `yaml:"dimension" toml:"dimension"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		AI: AIConfig{
			Host:           aiDefaults.EmbeddingHost,
			EmbeddingModel: aiDefaults.EmbeddingModel,
			ChatModel:      aiDefaults.ChatModel,
			Token:          aiDefaults.Token,
			Temperature:    aiDefaults.Temperature,
		},
		Search: SearchConfig{
			TopK:      search.DefaultTopK,
			Alpha:     search.DefaultAlpha,
			Strategy:  postprocess.StrategyHybrid.String(),
			MaxChars:  postprocess.DefaultMaxChars,
			CacheSize: search.DefaultCacheSize,
		},
		Ingestion: IngestionConfig{
			ChunkSize:   ingestion.DefaultChunkSize,
			Overlap:     ingestion.DefaultOverlap,
			BatchSize:   ingestion.DefaultBatchSize,
			Parallelism: 4,
			MaxRetries:  ingestion.DefaultMaxRetries,
			RetryDelay:  ingestion.DefaultRetryDelay.String(),
		},
		Store: StoreConfig{
			Backend: BackendMemory,
		},
	}
}

// Load reads a configuration file. Values missing from the file keep
// their defaults. The format is chosen by extension: .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that the components would otherwise reject late.
func (c *Config) Validate() error {
	if c.Search.TopK < 0 {
		return fmt.Errorf("config: search.top_k must not be negative")
	}
	if c.Search.Alpha < 0 || c.Search.Alpha > 1 {
		return fmt.Errorf("config: search.alpha must be between 0 and 1")
	}
	if _, err := postprocess.ParseStrategy(c.Search.Strategy); err != nil {
		return fmt.Errorf("config: search.strategy: %w", err)
	}
	if c.Search.MaxChars < 0 {
		return fmt.Errorf("config: search.max_chars must not be negative")
	}
	if c.Ingestion.ChunkSize <= 0 {
		return fmt.Errorf("config: ingestion.chunk_size must be positive")
	}
	if c.Ingestion.Overlap < 0 || c.Ingestion.Overlap >= c.Ingestion.ChunkSize {
		return fmt.Errorf("config: ingestion.overlap must be in [0, chunk_size)")
	}
	if _, err := c.Ingestion.RetryDelayDuration(); err != nil {
		return fmt.Errorf("config: ingestion.retry_delay: %w", err)
	}
	switch c.Store.Backend {
	case "", BackendMemory, BackendBadger:
	default:
		return fmt.Errorf("config: unknown store.backend %q", c.Store.Backend)
	}
	if c.Store.Dimension < 0 {
		return fmt.Errorf("config: store.dimension must not be negative")
	}
	return c.AI.Config().Validate()
}

// Config converts the section into an ai.Config. Host, when set, applies
// to both services unless a per-service host is also given.
func (a AIConfig) Config() *ai.Config {
	opts := []ai.ConfigOption{}
	if a.Host != "" {
		opts = append(opts, ai.WithHost(a.Host))
	}
	if a.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(a.EmbeddingHost))
	}
	if a.ChatHost != "" {
		opts = append(opts, ai.WithChatHost(a.ChatHost))
	}
	if a.EmbeddingModel != "" {
		opts = append(opts, ai.WithEmbeddingModel(a.EmbeddingModel))
	}
	if a.ChatModel != "" {
		opts = append(opts, ai.WithChatModel(a.ChatModel))
	}
	opts = append(opts, ai.WithToken(a.Token), ai.WithTemperature(a.Temperature))
	return ai.NewConfig(opts...)
}

// RetryDelayDuration parses RetryDelay. An empty value means the
// ingestion default.
func (i IngestionConfig) RetryDelayDuration() (time.Duration, error) {
	if i.RetryDelay == "" {
		return ingestion.DefaultRetryDelay, nil
	}
	d, err := time.ParseDuration(i.RetryDelay)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}
