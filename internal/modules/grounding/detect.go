package grounding

import "regexp"

// MarkerKind identifies which grounding fact a detector derives from source text.
type MarkerKind string

const (
	MarkerFormulas MarkerKind = "formulas"
	MarkerExamples MarkerKind = "examples"
)

// Detection is the typed result of a marker scan over OCR text.
type Detection struct {
	Kind    MarkerKind `json:"kind"`
	Found   bool       `json:"found"`
	Matched []string   `json:"matched,omitempty"` // rule names that fired
}

// markerRule is one entry of the detector rule table.
type markerRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Formula marker rules. The source corpus is bilingual (English/Arabic school
// books), so keyword rules cover both languages.
var formulaRules = []markerRule{
	{"equation-assignment", regexp.MustCompile(`[\p{L}\p{N})\]]\s*=\s*[\p{L}\p{N}(\[−+-]`)},
	{"tex-inline", regexp.MustCompile(`\$[^$\n]+\$`)},
	{"tex-command", regexp.MustCompile(`\\(frac|sqrt|sum|int|times|cdot|Delta|alpha|beta|lambda)\b`)},
	{"math-operator", regexp.MustCompile(`[±×÷√∑∫≤≥≠∝Δπθλ]`)},
	{"relation-chain", regexp.MustCompile(`\d\s*[+\-*/^]\s*\d`)},
	{"keyword-en", regexp.MustCompile(`(?i)\b(equation|formula|law of|theorem)\b`)},
	{"keyword-ar", regexp.MustCompile(`قانون|معادلة|الصيغة|صيغة|نظرية`)},
}

// Worked-example marker rules.
var exampleRules = []markerRule{
	{"example-numbered-en", regexp.MustCompile(`(?i)\bexample\s*\d*\s*[:.）)]?`)},
	{"worked-example-en", regexp.MustCompile(`(?i)\bworked example\b`)},
	{"problem-numbered-en", regexp.MustCompile(`(?i)\b(problem|exercise)\s+\d+`)},
	{"solution-en", regexp.MustCompile(`(?i)\bsolution\s*:`)},
	{"example-ar", regexp.MustCompile(`مثال|أمثلة`)},
	{"exercise-ar", regexp.MustCompile(`تدريب|تمرين|مسألة`)},
	{"solution-ar", regexp.MustCompile(`الحل\s*[:：]`)},
}

// DetectFormulas scans OCR text for equation-like patterns, recognizable
// formula notation, and explicit law/equation keywords.
func DetectFormulas(ocrText string) Detection {
	return scan(MarkerFormulas, ocrText, formulaRules)
}

// DetectExamples scans OCR text for worked-example phrasing in either
// supported language.
func DetectExamples(ocrText string) Detection {
	return scan(MarkerExamples, ocrText, exampleRules)
}

func scan(kind MarkerKind, text string, rules []markerRule) Detection {
	d := Detection{Kind: kind}
	for _, rule := range rules {
		if rule.Pattern.MatchString(text) {
			d.Found = true
			d.Matched = append(d.Matched, rule.Name)
		}
	}
	return d
}
