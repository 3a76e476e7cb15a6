package summarize

import (
	"encoding/json"
	"regexp"
	"strings"
)

// defaultConfidence is assumed when the model omits or mangles the metadata
// trailer; mid-range so a single derived violation still fails the default
// gate under the subtractive strategy.
const defaultConfidence = 70

// parsedResponse is the completion output split into summary body and
// self-reported metadata.
type parsedResponse struct {
	Markdown     string
	Confidence   int
	SelfReported []string
}

var metaComment = regexp.MustCompile(`(?s)<!--\s*meta\s+(\{.*?\})\s*-->`)

type metaTrailer struct {
	Confidence *int     `json:"confidence"`
	Violations []string `json:"violations"`
}

// parseResponse strips the metadata trailer from the model output. Responses
// without a parseable trailer are kept whole with default confidence; the
// validator derives violations independently either way.
func parseResponse(raw string) parsedResponse {
	out := parsedResponse{Markdown: strings.TrimSpace(raw), Confidence: defaultConfidence}

	matches := metaComment.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return out
	}
	last := matches[len(matches)-1]

	var meta metaTrailer
	if err := json.Unmarshal([]byte(raw[last[2]:last[3]]), &meta); err != nil {
		return out
	}

	out.Markdown = strings.TrimSpace(raw[:last[0]] + raw[last[1]:])
	if meta.Confidence != nil {
		c := *meta.Confidence
		if c < 0 {
			c = 0
		}
		if c > 100 {
			c = 100
		}
		out.Confidence = c
	}
	out.SelfReported = meta.Violations
	return out
}
