package grounding

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section describes one canonical summary section the validator knows about.
// Heading variants cover both supported languages; matching is
// case-insensitive and punctuation-tolerant.
type Section struct {
	DisplayName string
	Violation   ViolationCode
	variants    []string // normalized heading texts
}

var sections = []Section{
	{
		DisplayName: "Formulas & Equations",
		Violation:   ViolationFormulasNotInOCR,
		variants: []string{
			"formulas & equations",
			"formulas and equations",
			"formulas equations",
			"equations & formulas",
			"الصيغ والمعادلات",
			"القوانين والمعادلات",
			"المعادلات والصيغ",
		},
	},
	{
		DisplayName: "Examples & Applications",
		Violation:   ViolationApplicationsNotInOCR,
		variants: []string{
			"examples & applications",
			"examples and applications",
			"applications & examples",
			"أمثلة وتطبيقات",
			"الأمثلة والتطبيقات",
			"التطبيقات والأمثلة",
		},
	},
}

// SectionForViolation returns the canonical section a violation refers to.
func SectionForViolation(code ViolationCode) (Section, bool) {
	for _, s := range sections {
		if s.Violation == code {
			return s, true
		}
	}
	return Section{}, false
}

func (s Section) matches(headingText string) bool {
	normalized := normalizeHeading(headingText)
	for _, v := range s.variants {
		if normalized == v {
			return true
		}
	}
	return false
}

func normalizeHeading(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range lowered {
		switch r {
		case ':', '：', '.', '،', ',', '؛', ';', '*', '_', '#':
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var markdown = goldmark.New()

// headingSpan is one Markdown heading with the byte offset of its line start.
type headingSpan struct {
	Level int
	Text  string
	Start int // offset of the first byte of the heading line
}

// scanHeadings parses src as Markdown and returns all headings in document
// order with their byte offsets.
func scanHeadings(src []byte) []headingSpan {
	root := markdown.Parser().Parse(text.NewReader(src))

	var spans []headingSpan
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}

		seg := heading.Lines().At(0)
		spans = append(spans, headingSpan{
			Level: heading.Level,
			Text:  string(heading.Text(src)),
			Start: lineStart(src, seg.Start),
		})
		return ast.WalkSkipChildren, nil
	})
	return spans
}

// lineStart walks back from offset to the beginning of its line.
func lineStart(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	for offset > 0 && src[offset-1] != '\n' {
		offset--
	}
	return offset
}

// ContainsSection reports whether the summary carries the given canonical
// section as a heading.
func ContainsSection(summary string, section Section) bool {
	for _, h := range scanHeadings([]byte(summary)) {
		if section.matches(h.Text) {
			return true
		}
	}
	return false
}
