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

	defaultPort  = 2333
	defaultEnv   = "development"
	defaultDSN   = "root:password@tcp(127.0.0.1:3306)/book_extractor?charset=utf8mb4&parseTime=True&loc=Local"
	defaultRedis = "redis://localhost:6379/0"

	defaultMaxContextPages     = 3
	defaultSimilarityThreshold = 0.75
	defaultMaxContextLength    = 4000

	defaultEmbeddingMaxInputChars = 8000
	defaultEmbeddingBatchSize     = 5

	defaultMinComplianceScore = 60
	defaultScoreStrategy      = "subtractive"
	defaultViolationPenalty   = 35

	defaultTemperature = 0.2
	defaultMaxTokens   = 2048
)

// Load reads and normalizes the YAML config file at path.
// A missing file yields defaults so the service can boot in development.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = defaultEnv
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		cfg.DSN = defaultDSN
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		cfg.RedisURL = defaultRedis
	}

	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = defaultTemperature
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = defaultMaxTokens
	}

	// RAG stays disabled unless explicitly enabled.
	if cfg.RAG.MaxContextPages <= 0 {
		cfg.RAG.MaxContextPages = defaultMaxContextPages
	}
	if cfg.RAG.SimilarityThreshold <= 0 {
		cfg.RAG.SimilarityThreshold = defaultSimilarityThreshold
	}
	if cfg.RAG.MaxContextLength <= 0 {
		cfg.RAG.MaxContextLength = defaultMaxContextLength
	}

	if cfg.Embedding.MaxInputChars <= 0 {
		cfg.Embedding.MaxInputChars = defaultEmbeddingMaxInputChars
	}
	if cfg.Embedding.BatchSize <= 0 {
		cfg.Embedding.BatchSize = defaultEmbeddingBatchSize
	}

	if cfg.Compliance.MinScore <= 0 {
		cfg.Compliance.MinScore = defaultMinComplianceScore
	}
	if strings.TrimSpace(cfg.Compliance.Strategy) == "" {
		cfg.Compliance.Strategy = defaultScoreStrategy
	}
	if cfg.Compliance.ViolationPenalty <= 0 {
		cfg.Compliance.ViolationPenalty = defaultViolationPenalty
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Compliance.MinScore > 100 {
		return fmt.Errorf("compliance.min_score must be within [0,100], got %d", cfg.Compliance.MinScore)
	}
	switch cfg.Compliance.Strategy {
	case "subtractive", "zero-on-violation":
	default:
		return fmt.Errorf("unknown compliance.strategy %q", cfg.Compliance.Strategy)
	}
	return nil
}

// IsDev reports whether the service runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}

// ProviderByID returns the enabled provider with the given id, or nil.
func (c *AIConfig) ProviderByID(id string) *AIProvider {
	id = strings.TrimSpace(id)
	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Enabled && strings.TrimSpace(p.ID) == id {
			return p
		}
	}
	return nil
}

// FirstEnabledProvider returns the first enabled provider, or nil.
func (c *AIConfig) FirstEnabledProvider() *AIProvider {
	for i := range c.Providers {
		if c.Providers[i].Enabled {
			return &c.Providers[i]
		}
	}
	return nil
}
