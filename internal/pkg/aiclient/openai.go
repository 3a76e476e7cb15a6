package aiclient

import (
	"context"
	"errors"
	neturl "net/url"
	"strings"

	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

// openAICompleter drives chat completions through the official OpenAI SDK.
type openAICompleter struct {
	client openaiclient.Client
	name   string
	model  string
}

func newOpenAICompleter(name, apiKey, endpoint, model string) *openAICompleter {
	if model == "" {
		model = "gpt-4o-mini"
	}

	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}

	return &openAICompleter{
		client: openaiclient.NewClient(opts...),
		name:   name,
		model:  model,
	}
}

func (c *openAICompleter) Name() string { return c.name }

func (c *openAICompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	messages := make([]openaiclient.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, openaiclient.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openaiclient.UserMessage(req.UserPrompt))

	params := openaiclient.ChatCompletionNewParams{
		Model:    openaiclient.ChatModel(c.model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openaiclient.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openaiclient.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, providerErr(c.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, providerErrf(c.name, "empty response from AI")
	}

	choice := resp.Choices[0]
	return &CompletionResult{
		Content:      choice.Message.Content,
		FinishReason: mapOpenAIFinishReason(choice.FinishReason),
	}, nil
}

func mapOpenAIFinishReason(raw string) FinishReason {
	switch raw {
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	}
	return FinishOther
}

// openAIEmbedder drives the embeddings endpoint through the official SDK.
type openAIEmbedder struct {
	client        openaiclient.Client
	name          string
	model         string
	maxInputChars int
}

func newOpenAIEmbedder(name, apiKey, endpoint, model string, maxInputChars int) *openAIEmbedder {
	if model == "" {
		model = "text-embedding-3-small"
	}

	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}

	return &openAIEmbedder{
		client:        openaiclient.NewClient(opts...),
		name:          name,
		model:         model,
		maxInputChars: maxInputChars,
	}
}

func (c *openAIEmbedder) Model() string { return c.model }

func (c *openAIEmbedder) Embed(ctx context.Context, input string) ([]float32, error) {
	input = truncateRunes(input, c.maxInputChars)
	if strings.TrimSpace(input) == "" {
		return nil, providerErr(c.name, errors.New("empty embedding input"))
	}

	resp, err := c.client.Embeddings.New(ctx, openaiclient.EmbeddingNewParams{
		Model: openaiclient.EmbeddingModel(c.model),
		Input: openaiclient.EmbeddingNewParamsInputUnion{
			OfString: openaiclient.String(input),
		},
	})
	if err != nil {
		return nil, providerErr(c.name, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, providerErrf(c.name, "empty embedding response")
	}

	raw := resp.Data[0].Embedding
	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}
	return vector, nil
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		if path == "" {
			path = "/v1"
		} else {
			path += "/v1"
		}
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
