package summarize

import (
	"context"

	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/aiclient"
	"go.uber.org/zap"
)

// maxContinuations bounds worst-case latency for one page.
const maxContinuations = 2

// completeWithContinuation issues the completion call and, while the provider
// reports length truncation, up to maxContinuations strictly sequential
// follow-up calls. A failed continuation keeps the partial text already
// accumulated rather than discarding it.
func completeWithContinuation(ctx context.Context, completer aiclient.Completer, req aiclient.CompletionRequest, log *zap.Logger) (string, error) {
	res, err := completer.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	content := res.Content

	for attempt := 1; attempt <= maxContinuations && res.FinishReason == aiclient.FinishLength; attempt++ {
		contReq := req
		contReq.UserPrompt = continuationPrompt(req.UserPrompt, content)

		res, err = completer.Complete(ctx, contReq)
		if err != nil {
			log.Warn("continuation call failed, keeping partial summary",
				zap.Int("attempt", attempt), zap.Error(err))
			return content, nil
		}
		content += res.Content
	}
	return content, nil
}
