package aiclient

import (
	"context"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicCompleter drives chat completions through the Anthropic SDK.
type anthropicCompleter struct {
	client anthropicclient.Client
	name   string
	model  string
}

func newAnthropicCompleter(name, apiKey, endpoint, model string) *anthropicCompleter {
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}

	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(0),
	}
	if endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}

	return &anthropicCompleter{
		client: anthropicclient.NewClient(opts...),
		name:   name,
		model:  model,
	}
}

func (c *anthropicCompleter) Name() string { return c.name }

func (c *anthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropicclient.MessageNewParams{
		Model:     anthropicclient.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropicclient.MessageParam{
			anthropicclient.NewUserMessage(anthropicclient.NewTextBlock(req.UserPrompt)),
		},
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		params.System = []anthropicclient.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropicclient.Float(req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, providerErr(c.name, err)
	}

	var full strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			full.WriteString(block.Text)
		}
	}
	content := full.String()
	if strings.TrimSpace(content) == "" {
		return nil, providerErrf(c.name, "empty response from AI")
	}

	return &CompletionResult{
		Content:      content,
		FinishReason: mapAnthropicStopReason(msg.StopReason),
	}, nil
}

func mapAnthropicStopReason(reason anthropicclient.StopReason) FinishReason {
	switch reason {
	case anthropicclient.StopReasonEndTurn, anthropicclient.StopReasonStopSequence:
		return FinishStop
	case anthropicclient.StopReasonMaxTokens:
		return FinishLength
	}
	return FinishOther
}
