package summarize

import (
	"fmt"
	"strings"

	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
)

// metaTrailerInstruction asks the model for a machine-readable trailer the
// parser strips back out. The HTML comment form keeps it invisible if a raw
// response ever reaches a renderer.
const metaTrailerInstruction = `After the summary, on its own final line, append exactly one HTML comment of the form:
<!--meta {"confidence": <0-100 integer>, "violations": ["<code>", ...]} -->
Report a violation code FORMULAS_NOT_IN_OCR or APPLICATIONS_NOT_IN_OCR if you included a section whose content is not explicitly present in the page text. Use an empty violations array otherwise.`

const contentSystemPrompt = `You summarize textbook pages into structured Markdown for students.
Strict faithfulness rule: only extract what is explicitly written on the page. Never add outside knowledge, never invent formulas, examples, questions or answers that are not on the page. If something is not on the page, omit it.
Write in the same language as the page text.`

const nonContentSystemPrompt = `You describe non-instructional book pages (tables of contents, unit dividers, front matter) in one short Markdown paragraph.
Only state what is visibly on the page. Write in the same language as the page text.`

// contentSkeleton is the required section layout for instructional pages.
// Heading names match the validator's canonical section registry.
func contentSkeleton(structured *models.OCRStructured) string {
	var b strings.Builder
	b.WriteString("Structure the summary with these Markdown sections, in order:\n")
	b.WriteString("## Overview\n")
	b.WriteString("## Concepts & Definitions\n")
	if structured == nil || structured.HasQuestions {
		b.WriteString("## Q&A (include every question on the page with its full answer; only if the page contains questions)\n")
	}
	b.WriteString("## Examples & Applications (only if the page contains worked examples or applications)\n")
	b.WriteString("## Formulas & Equations (only if the page contains formulas or equations)\n")
	b.WriteString("Omit any conditional section whose material is not on the page. Do not rename the headings.")
	return b.String()
}

// buildUserPrompt assembles the final prompt as context block (if any), then
// the verbatim page text, then the task instructions.
func buildUserPrompt(class PageClass, page *models.BookPage, contextBlock string) string {
	var b strings.Builder

	if contextBlock != "" {
		b.WriteString("Context from earlier pages of the same book (background only, do not summarize it):\n\n")
		b.WriteString(contextBlock)
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Page %d", page.PageNumber))
	if strings.TrimSpace(page.Title) != "" {
		b.WriteString(" - " + page.Title)
	}
	b.WriteString(":\n\n")
	b.WriteString(page.OCRText)
	b.WriteString("\n\n")

	if class == PageClassContent {
		b.WriteString("Summarize this page.\n")
		b.WriteString(contentSkeleton(page.OCRStructured))
	} else {
		b.WriteString("Describe this page in one short paragraph.")
	}
	b.WriteString("\n\n")
	b.WriteString(metaTrailerInstruction)
	return b.String()
}

func systemPromptFor(class PageClass) string {
	if class == PageClassContent {
		return contentSystemPrompt
	}
	return nonContentSystemPrompt
}

// continuationPrompt re-submits the accumulated text with an instruction to
// resume exactly where the previous response was cut off.
func continuationPrompt(originalPrompt, accumulated string) string {
	var b strings.Builder
	b.WriteString(originalPrompt)
	b.WriteString("\n\nYour previous response was cut off by the length limit. It ended with:\n\n")
	b.WriteString(tailOf(accumulated, 2000))
	b.WriteString("\n\nContinue exactly where you left off. Do not repeat anything already written and do not restart the summary.")
	return b.String()
}

func tailOf(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[len(runes)-max:])
}
