package summarize

import (
	"strings"

	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// buildStructured derives the stored section breakdown from the sanitized
// Markdown so readers don't re-parse it. Section word counts cover the text
// between a heading and the next heading of any level.
func buildStructured(summary string) *models.SummaryStructured {
	src := []byte(summary)
	out := &models.SummaryStructured{
		WordCount: len(strings.Fields(summary)),
	}

	type span struct {
		text      string
		lineStart int // first byte of the heading line
		bodyStart int // first byte after the heading text
	}
	var headings []span

	root := markdown.Parser().Parse(text.NewReader(src))
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		seg := heading.Lines().At(0)
		start := seg.Start
		for start > 0 && src[start-1] != '\n' {
			start--
		}
		headings = append(headings, span{
			text:      string(heading.Text(src)),
			lineStart: start,
			bodyStart: seg.Stop,
		})
		return ast.WalkSkipChildren, nil
	})

	for i, h := range headings {
		end := len(src)
		if i+1 < len(headings) {
			end = headings[i+1].lineStart
		}
		body := string(src[h.bodyStart:end])
		out.Sections = append(out.Sections, models.StructuredSection{
			Title:     h.text,
			WordCount: len(strings.Fields(body)),
		})
	}
	return out
}
