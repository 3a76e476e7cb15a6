package summarize

import "regexp"

// PageClass selects the prompt template for a page.
type PageClass string

const (
	// PageClassContent pages carry definitions, examples, questions or
	// structured section markers and get the full faithfulness prompt.
	PageClassContent PageClass = "content"
	// PageClassNonContent pages (tables of contents, dividers, blurbs) get a
	// short low-structure prompt.
	PageClassNonContent PageClass = "non-content"
)

// Classification is the typed classifier result.
type Classification struct {
	Class   PageClass
	Matched []string // names of the rules that fired
}

type classifyRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// minContentRunes is the length threshold below which a page cannot be
// classified as content regardless of marker hits.
const minContentRunes = 200

// contentRules mark instructional material in either supported language.
// Each rule counts at most once toward the density check.
var contentRules = []classifyRule{
	{"definition-en", regexp.MustCompile(`(?i)\b(definition|is defined as|refers to)\b`)},
	{"definition-ar", regexp.MustCompile(`تعريف|يعرف|يُعرف`)},
	{"example-en", regexp.MustCompile(`(?i)\bexample\s*\d*\b`)},
	{"example-ar", regexp.MustCompile(`مثال|أمثلة`)},
	{"question-numbered", regexp.MustCompile(`(?m)^\s*\d+\s*[.)\-]\s+\S`)},
	{"question-en", regexp.MustCompile(`(?i)\b(question|exercise|solve|calculate|explain why)\b`)},
	{"question-ar", regexp.MustCompile(`سؤال|أسئلة|تمرين|احسب|فسر|علل`)},
	{"section-marker", regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+\S|(?m)^\s*(lesson|chapter|unit|الدرس|الفصل|الوحدة)\b`)},
	{"formula", regexp.MustCompile(`[\p{L}\p{N})\]]\s*=\s*[\p{L}\p{N}(\[−+-]`)},
}

// tocLeader matches table-of-contents dot leaders ending in a page number.
var tocLeader = regexp.MustCompile(`(?m)\.{3,}\s*\d+\s*$`)

// minContentHits is how many distinct content rules must fire.
const minContentHits = 2

// Classify decides which prompt template a page gets. The decision combines a
// length threshold with marker density from a fixed rule table; pages
// dominated by table-of-contents leader lines are always non-content.
func Classify(ocrText string) Classification {
	result := Classification{Class: PageClassNonContent}

	if len(tocLeader.FindAllStringIndex(ocrText, 4)) >= 3 {
		result.Matched = append(result.Matched, "toc-leaders")
		return result
	}
	if len([]rune(ocrText)) < minContentRunes {
		return result
	}

	for _, rule := range contentRules {
		if rule.Pattern.MatchString(ocrText) {
			result.Matched = append(result.Matched, rule.Name)
		}
	}
	if len(result.Matched) >= minContentHits {
		result.Class = PageClassContent
	}
	return result
}
