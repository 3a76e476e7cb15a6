// Package summarize runs the page summarization pipeline: classify the OCR
// text, assemble an optionally RAG-augmented prompt, call the completion
// provider with bounded continuation, validate grounding, sanitize, score and
// gate persistence.
package summarize

import (
	"errors"
	"fmt"

	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"github.com/muminalshawaf/book-extractor-sub002/internal/modules/grounding"
)

// ErrMalformedInput marks requests rejected before any external call:
// missing identifying keys or empty source text.
var ErrMalformedInput = errors.New("malformed input")

// ErrPageNotFound means no OCR row exists for the requested page.
var ErrPageNotFound = errors.New("page not found")

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	// OutcomePublished means the summary passed the gate and was stored.
	OutcomePublished Outcome = "published"
	// OutcomeRejected means the grounding gate blocked persistence. This is
	// an expected business outcome, not a failure.
	OutcomeRejected Outcome = "rejected"
)

// Result is what one pipeline run produced. On OutcomeRejected, Summary is
// the unpersisted candidate so callers can inspect what was blocked.
type Result struct {
	Outcome         Outcome                   `json:"outcome"`
	Summary         *models.PageSummary       `json:"summary"`
	ComplianceScore int                       `json:"complianceScore"`
	Violations      []grounding.ViolationCode `json:"violations,omitempty"`
}

func malformedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformedInput}, args...)...)
}
