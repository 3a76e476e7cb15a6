package grounding

import (
	"regexp"
	"sort"
)

// SanitizeResult is the sanitizer's output.
type SanitizeResult struct {
	SanitizedContent string
	WasSanitized     bool
	RemovedSections  []string
	Violations       []ViolationCode
}

var excessBlankLines = regexp.MustCompile(`\n{4,}`)

// Sanitize removes exactly the summary sections named by the violations,
// leaving every other byte untouched. For each violation the matching
// canonical heading is located and the text from that heading up to (but
// excluding) the next heading of equal or higher level, or end of document,
// is deleted. The sanitizer never rewrites or backfills; omission is strictly
// preferred over fabrication.
func Sanitize(summary string, violations []ViolationCode) SanitizeResult {
	result := SanitizeResult{
		SanitizedContent: summary,
		Violations:       violations,
	}
	if len(violations) == 0 {
		return result
	}

	src := []byte(summary)
	headings := scanHeadings(src)

	type cut struct{ start, end int }
	var cuts []cut

	for _, violation := range violations {
		section, ok := SectionForViolation(violation)
		if !ok {
			continue
		}
		for i, h := range headings {
			if !section.matches(h.Text) {
				continue
			}
			end := len(src)
			for _, next := range headings[i+1:] {
				if next.Level <= h.Level {
					end = next.Start
					break
				}
			}
			cuts = append(cuts, cut{start: h.Start, end: end})
			result.RemovedSections = append(result.RemovedSections, section.DisplayName)
			break
		}
	}

	if len(cuts) == 0 {
		return result
	}

	// Apply removals back to front so earlier offsets stay valid.
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].start > cuts[j].start })
	out := string(src)
	for _, c := range cuts {
		out = out[:c.start] + out[c.end:]
	}

	out = excessBlankLines.ReplaceAllString(out, "\n\n")

	result.SanitizedContent = out
	result.WasSanitized = true
	return result
}
