package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int              `yaml:"port"`
	DSN            string           `yaml:"dsn"` // MySQL DSN
	RedisURL       string           `yaml:"redis_url"`
	Env            string           `yaml:"env"` // "development" | "production"
	AllowedOrigins []string         `yaml:"allowed_origins"`
	AI             AIConfig         `yaml:"ai"`
	RAG            RAGConfig        `yaml:"rag"`
	Embedding      EmbeddingConfig  `yaml:"embedding"`
	Compliance     ComplianceConfig `yaml:"compliance"`
}

// AIConfig configures completion providers and role assignments.
type AIConfig struct {
	Providers    []AIProvider       `yaml:"providers"`
	SummaryModel *AIModelAssignment `yaml:"summary_model,omitempty"`
	Temperature  float64            `yaml:"temperature"`
	MaxTokens    int                `yaml:"max_tokens"`
}

// AIModelAssignment pins a role (summary, embedding) to a provider and model.
type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

// AIProvider describes one configured completion/embedding backend.
type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// RAGConfig controls retrieval-augmented context assembly.
// Disabled by default for staged rollout.
type RAGConfig struct {
	Enabled             bool    `yaml:"enabled"`
	MaxContextPages     int     `yaml:"max_context_pages"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxContextLength    int     `yaml:"max_context_length"`
}

// EmbeddingConfig configures the embedding provider and backfill batching.
type EmbeddingConfig struct {
	Model         *AIModelAssignment `yaml:"model,omitempty"`
	MaxInputChars int                `yaml:"max_input_chars"`
	BatchSize     int                `yaml:"batch_size"`
}

// ComplianceConfig controls the persistence gate.
type ComplianceConfig struct {
	MinScore         int    `yaml:"min_score"`
	Strategy         string `yaml:"strategy"` // "subtractive" | "zero-on-violation"
	ViolationPenalty int    `yaml:"violation_penalty"`
}
