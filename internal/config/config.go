package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort            = 3335
	defaultEnv             = "development"
	defaultExtractTimeout  = 15
	defaultExtractMaxBytes = 5 << 20
	defaultMaxBatchSize    = 50
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int           `yaml:"port"`
	DSN            string        `yaml:"dsn"` // MySQL DSN
	RedisURL       string        `yaml:"redis_url"`
	Env            string        `yaml:"env"` // "development" | "production"
	AllowedOrigins []string      `yaml:"allowed_origins"`
	AI             AIConfig      `yaml:"ai"`
	Extract        ExtractConfig `yaml:"extract"`
	MaxBatchSize   int           `yaml:"max_batch_size"`
}

// AIConfig selects the completion and embedding providers.
type AIConfig struct {
	Providers      []AIProvider       `yaml:"providers"`
	SummaryModel   *AIModelAssignment `yaml:"summary_model,omitempty"`
	EmbeddingModel string             `yaml:"embedding_model"`
}

type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// ExtractConfig bounds content extraction fetches.
type ExtractConfig struct {
	TimeoutSeconds int   `yaml:"timeout_seconds"`
	MaxBodyBytes   int64 `yaml:"max_body_bytes"`
}

// Load reads and validates the YAML config file at path.
func Load(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("config: dsn is required")
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.Extract.TimeoutSeconds == 0 {
		c.Extract.TimeoutSeconds = defaultExtractTimeout
	}
	if c.Extract.MaxBodyBytes == 0 {
		c.Extract.MaxBodyBytes = defaultExtractMaxBytes
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = defaultMaxBatchSize
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }
