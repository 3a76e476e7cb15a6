// Package aiclient adapts the configured AI providers behind narrow
// completion and embedding interfaces. Each adapter resolves its endpoint
// once at construction; there is no per-call transport probing.
package aiclient

import (
	"context"
	"errors"
	"fmt"
)

// FinishReason distinguishes normal completion from length truncation.
type FinishReason string

const (
	FinishStop   FinishReason = "stop"
	FinishLength FinishReason = "length"
	FinishOther  FinishReason = "other"
)

// CompletionRequest is the narrow request contract to a completion provider.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// CompletionResult is the narrow response contract.
type CompletionResult struct {
	Content      string
	FinishReason FinishReason
}

// Completer is a chat-completion backend.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	Name() string
}

// Embedder turns text into a fixed-length vector. Input beyond MaxInputChars
// is truncated before sending, never split into multiple calls.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// ProviderError wraps any non-success provider response. The provider's
// diagnostic text is preserved verbatim for operator debugging.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err is (or wraps) a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

func providerErr(name string, err error) error {
	return &ProviderError{Provider: name, Err: err}
}

func providerErrf(name, format string, args ...interface{}) error {
	return &ProviderError{Provider: name, Err: fmt.Errorf(format, args...)}
}

// truncateRunes bounds text to max runes before an embedding call.
func truncateRunes(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
