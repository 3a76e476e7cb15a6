package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

// compatibleCompleter talks to any OpenAI-compatible chat completions
// endpoint over plain HTTP. The base endpoint is resolved once here.
type compatibleCompleter struct {
	httpClient *http.Client
	name       string
	endpoint   string
	apiKey     string
	model      string
}

func newCompatibleCompleter(name, apiKey, endpoint, model string) *compatibleCompleter {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &compatibleCompleter{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		name:       name,
		endpoint:   normalizeCompatibleEndpoint(endpoint),
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
	}
}

func (c *compatibleCompleter) Name() string { return c.name }

func (c *compatibleCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if c.apiKey == "" {
		return nil, providerErr(c.name, errors.New("api key is empty"))
	}

	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.UserPrompt})

	payload := map[string]interface{}{
		"model":    c.model,
		"messages": messages,
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}
	body, _ := json.Marshal(payload)

	respBody, err := c.post(ctx, "/v1/chat/completions", body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, providerErr(c.name, err)
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return nil, providerErrf(c.name, "%s", result.Error.Message)
	}
	if strings.TrimSpace(result.Message) != "" && len(result.Choices) == 0 {
		return nil, providerErrf(c.name, "%s", result.Message)
	}
	if len(result.Choices) == 0 {
		return nil, providerErrf(c.name, "empty response from AI")
	}

	choice := result.Choices[0]
	return &CompletionResult{
		Content:      choice.Message.Content,
		FinishReason: mapOpenAIFinishReason(choice.FinishReason),
	}, nil
}

// compatibleEmbedder talks to an OpenAI-compatible embeddings endpoint.
type compatibleEmbedder struct {
	httpClient    *http.Client
	name          string
	endpoint      string
	apiKey        string
	model         string
	maxInputChars int
}

func newCompatibleEmbedder(name, apiKey, endpoint, model string, maxInputChars int) *compatibleEmbedder {
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &compatibleEmbedder{
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		name:          name,
		endpoint:      normalizeCompatibleEndpoint(endpoint),
		apiKey:        strings.TrimSpace(apiKey),
		model:         model,
		maxInputChars: maxInputChars,
	}
}

func (c *compatibleEmbedder) Model() string { return c.model }

func (c *compatibleEmbedder) Embed(ctx context.Context, input string) ([]float32, error) {
	if c.apiKey == "" {
		return nil, providerErr(c.name, errors.New("api key is empty"))
	}
	input = truncateRunes(input, c.maxInputChars)
	if strings.TrimSpace(input) == "" {
		return nil, providerErr(c.name, errors.New("empty embedding input"))
	}

	body, _ := json.Marshal(map[string]interface{}{
		"model": c.model,
		"input": input,
	})

	respBody, err := post(ctx, c.httpClient, c.name, c.endpoint+"/v1/embeddings", c.apiKey, body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, providerErr(c.name, err)
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return nil, providerErrf(c.name, "%s", result.Error.Message)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, providerErrf(c.name, "empty embedding response")
	}
	return result.Data[0].Embedding, nil
}

func (c *compatibleCompleter) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	return post(ctx, c.httpClient, c.name, c.endpoint+path, c.apiKey, body)
}

func post(ctx context.Context, client *http.Client, name, url, apiKey string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, providerErr(name, err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, providerErr(name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providerErr(name, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, providerErr(name, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}
	return respBody, nil
}

func normalizeCompatibleEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		cleaned := strings.TrimRight(base, "/")
		return strings.TrimSuffix(cleaned, "/v1")
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/v1")
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
