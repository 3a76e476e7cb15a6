package aiclient

import (
	"errors"
	"strings"

	"github.com/muminalshawaf/book-extractor-sub002/internal/config"
)

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

func isOpenAICompatibleProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "openai-compatible" || t == "openaicompatible"
}

func isAnthropicProviderType(raw string) bool {
	return normalizeProviderType(raw) == "anthropic"
}

// selectProvider resolves a role assignment against the configured provider
// list: the assigned provider if enabled, otherwise the first enabled one.
// The assignment's model override replaces the provider default.
func selectProvider(cfg *config.AIConfig, assignment *config.AIModelAssignment) (*config.AIProvider, string) {
	var provider *config.AIProvider
	var model string

	if assignment != nil {
		model = strings.TrimSpace(assignment.Model)
		if id := strings.TrimSpace(assignment.ProviderID); id != "" {
			provider = cfg.ProviderByID(id)
		}
	}
	if provider == nil {
		provider = cfg.FirstEnabledProvider()
	}
	if provider != nil && model == "" {
		model = strings.TrimSpace(provider.DefaultModel)
	}
	return provider, model
}

// NewCompleter builds the summary completion client from config.
// The adapter is selected once at startup by provider type.
func NewCompleter(cfg *config.AIConfig) (Completer, error) {
	provider, model := selectProvider(cfg, cfg.SummaryModel)
	if provider == nil {
		return nil, errors.New("no enabled AI provider")
	}
	if strings.TrimSpace(provider.APIKey) == "" {
		return nil, errors.New("AI provider api key is empty")
	}

	switch {
	case isAnthropicProviderType(provider.Type):
		return newAnthropicCompleter(provider.ID, provider.APIKey, provider.Endpoint, model), nil
	case isOpenAICompatibleProviderType(provider.Type):
		return newCompatibleCompleter(provider.ID, provider.APIKey, provider.Endpoint, model), nil
	default:
		return newOpenAICompleter(provider.ID, provider.APIKey, provider.Endpoint, model), nil
	}
}

// NewEmbedder builds the embedding client from config. Anthropic exposes no
// embeddings endpoint, so the embedding role requires an OpenAI-style provider.
func NewEmbedder(aiCfg *config.AIConfig, embCfg *config.EmbeddingConfig) (Embedder, error) {
	provider, model := selectProvider(aiCfg, embCfg.Model)
	if provider == nil {
		return nil, errors.New("no enabled AI provider")
	}
	if isAnthropicProviderType(provider.Type) {
		return nil, errors.New("anthropic providers cannot serve the embedding role")
	}
	if strings.TrimSpace(provider.APIKey) == "" {
		return nil, errors.New("AI provider api key is empty")
	}

	if isOpenAICompatibleProviderType(provider.Type) {
		return newCompatibleEmbedder(provider.ID, provider.APIKey, provider.Endpoint, model, embCfg.MaxInputChars), nil
	}
	return newOpenAIEmbedder(provider.ID, provider.APIKey, provider.Endpoint, model, embCfg.MaxInputChars), nil
}
