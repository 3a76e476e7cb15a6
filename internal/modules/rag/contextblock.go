package rag

import (
	"fmt"
	"strings"
)

const ellipsis = "..."

// BuildContextBlock concatenates retrieval results into a prompt block,
// stopping once the running character total would exceed maxLength. The
// entry that would overflow is truncated to fit the remaining budget and
// suffixed with an ellipsis; later, lower-ranked entries are dropped
// entirely rather than further truncated.
func BuildContextBlock(results []Context, maxLength int) string {
	if len(results) == 0 || maxLength <= 0 {
		return ""
	}

	var b strings.Builder
	used := 0
	for _, r := range results {
		entry := formatEntry(r)
		entryLen := len([]rune(entry))
		remaining := maxLength - used

		if entryLen <= remaining {
			b.WriteString(entry)
			used += entryLen
			continue
		}

		cut := remaining - len([]rune(ellipsis))
		if cut > 0 {
			b.WriteString(string([]rune(entry)[:cut]))
			b.WriteString(ellipsis)
		}
		break
	}
	return b.String()
}

func formatEntry(r Context) string {
	if strings.TrimSpace(r.Title) != "" {
		return fmt.Sprintf("Page %d (%s): %s\n\n", r.PageNumber, r.Title, r.Content)
	}
	return fmt.Sprintf("Page %d: %s\n\n", r.PageNumber, r.Content)
}
