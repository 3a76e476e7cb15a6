package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/aiclient"
	"go.uber.org/zap"
)

// scriptedCompleter replays a fixed sequence of results or errors.
type scriptedCompleter struct {
	script  []scriptStep
	calls   int
	prompts []string
}

type scriptStep struct {
	content string
	finish  aiclient.FinishReason
	err     error
}

func (s *scriptedCompleter) Complete(ctx context.Context, req aiclient.CompletionRequest) (*aiclient.CompletionResult, error) {
	if s.calls >= len(s.script) {
		return nil, errors.New("scripted completer exhausted")
	}
	step := s.script[s.calls]
	s.calls++
	s.prompts = append(s.prompts, req.UserPrompt)
	if step.err != nil {
		return nil, step.err
	}
	return &aiclient.CompletionResult{Content: step.content, FinishReason: step.finish}, nil
}

func (s *scriptedCompleter) Name() string { return "scripted" }

func TestCompleteWithContinuation(t *testing.T) {
	req := aiclient.CompletionRequest{UserPrompt: "summarize the page"}

	t.Run("clean stop makes one call", func(t *testing.T) {
		c := &scriptedCompleter{script: []scriptStep{
			{content: "full summary", finish: aiclient.FinishStop},
		}}
		got, err := completeWithContinuation(context.Background(), c, req, zap.NewNop())
		if err != nil {
			t.Fatalf("completeWithContinuation: %v", err)
		}
		if got != "full summary" || c.calls != 1 {
			t.Fatalf("got %q after %d calls", got, c.calls)
		}
	})

	t.Run("truncation continues until stop", func(t *testing.T) {
		c := &scriptedCompleter{script: []scriptStep{
			{content: "part one ", finish: aiclient.FinishLength},
			{content: "part two", finish: aiclient.FinishStop},
		}}
		got, err := completeWithContinuation(context.Background(), c, req, zap.NewNop())
		if err != nil {
			t.Fatalf("completeWithContinuation: %v", err)
		}
		if got != "part one part two" || c.calls != 2 {
			t.Fatalf("got %q after %d calls", got, c.calls)
		}
		if !strings.Contains(c.prompts[1], "part one") {
			t.Fatal("continuation prompt must carry the accumulated text")
		}
		if !strings.Contains(c.prompts[1], "summarize the page") {
			t.Fatal("continuation prompt must re-submit the original task")
		}
	})

	t.Run("continuations capped at two", func(t *testing.T) {
		c := &scriptedCompleter{script: []scriptStep{
			{content: "a", finish: aiclient.FinishLength},
			{content: "b", finish: aiclient.FinishLength},
			{content: "c", finish: aiclient.FinishLength},
			{content: "never", finish: aiclient.FinishStop},
		}}
		got, err := completeWithContinuation(context.Background(), c, req, zap.NewNop())
		if err != nil {
			t.Fatalf("completeWithContinuation: %v", err)
		}
		if got != "abc" || c.calls != 3 {
			t.Fatalf("got %q after %d calls, want abc after 3", got, c.calls)
		}
	})

	t.Run("failed continuation keeps partial", func(t *testing.T) {
		c := &scriptedCompleter{script: []scriptStep{
			{content: "partial text", finish: aiclient.FinishLength},
			{err: errors.New("provider overloaded")},
		}}
		got, err := completeWithContinuation(context.Background(), c, req, zap.NewNop())
		if err != nil {
			t.Fatalf("partial must be kept, got error %v", err)
		}
		if got != "partial text" {
			t.Fatalf("got %q, want the accumulated partial", got)
		}
	})

	t.Run("initial failure propagates", func(t *testing.T) {
		c := &scriptedCompleter{script: []scriptStep{
			{err: errors.New("provider down")},
		}}
		if _, err := completeWithContinuation(context.Background(), c, req, zap.NewNop()); err == nil {
			t.Fatal("want error from failed initial call")
		}
	})
}
