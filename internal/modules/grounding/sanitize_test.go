package grounding

import (
	"strings"
	"testing"
)

const summaryWithFabrications = `# Page Summary

## Overview

Plants convert sunlight into chemical energy through photosynthesis.

## Formulas & Equations

$$E=mc^2$$

This relation governs mass-energy equivalence.

## Examples & Applications

Example 1: Solar panels on rooftops.

## Questions & Answers

Q: Where does photosynthesis occur?
A: In the chloroplasts.
`

func TestSanitizeRemovesFabricatedSections(t *testing.T) {
	violations := []ViolationCode{ViolationFormulasNotInOCR, ViolationApplicationsNotInOCR}

	got := Sanitize(summaryWithFabrications, violations)

	if !got.WasSanitized {
		t.Fatal("WasSanitized = false, want true")
	}
	if len(got.RemovedSections) != 2 {
		t.Fatalf("RemovedSections = %v, want 2 entries", got.RemovedSections)
	}
	wantRemoved := map[string]bool{"Formulas & Equations": true, "Examples & Applications": true}
	for _, name := range got.RemovedSections {
		if !wantRemoved[name] {
			t.Fatalf("unexpected removed section %q", name)
		}
	}

	for _, absent := range []string{"Formulas & Equations", "E=mc^2", "Examples & Applications", "Solar panels"} {
		if strings.Contains(got.SanitizedContent, absent) {
			t.Fatalf("sanitized content still contains %q", absent)
		}
	}
	for _, present := range []string{"## Overview", "photosynthesis", "## Questions & Answers", "chloroplasts"} {
		if !strings.Contains(got.SanitizedContent, present) {
			t.Fatalf("sanitized content lost %q", present)
		}
	}
}

// Section-scoped removal: content in unrelated sections must be byte-identical
// before and after sanitization.
func TestSanitizeLeavesOtherSectionsByteIdentical(t *testing.T) {
	overview := "## Overview\n\nCells divide by mitosis in somatic tissue.\n\n"
	formulas := "## Formulas & Equations\n\n$$x = vt$$\n\n"
	qa := "## Questions & Answers\n\nQ: What is mitosis?\nA: Cell division.\n"
	input := overview + formulas + qa

	got := Sanitize(input, []ViolationCode{ViolationFormulasNotInOCR})

	if got.SanitizedContent != overview+qa {
		t.Fatalf("sanitized content not byte-identical outside removed section:\n%q\nwant:\n%q", got.SanitizedContent, overview+qa)
	}
}

func TestSanitizeRemovesTrailingSectionToEOF(t *testing.T) {
	input := "## Overview\n\nSound travels as pressure waves.\n\n## Formulas & Equations\n\n$$v = f\\lambda$$\n"

	got := Sanitize(input, []ViolationCode{ViolationFormulasNotInOCR})

	if strings.Contains(got.SanitizedContent, "Formulas") {
		t.Fatalf("trailing section not removed: %q", got.SanitizedContent)
	}
	if !strings.Contains(got.SanitizedContent, "pressure waves") {
		t.Fatalf("overview damaged: %q", got.SanitizedContent)
	}
}

func TestSanitizeRespectsHeadingLevels(t *testing.T) {
	// A deeper heading after the violating section belongs to it and must go;
	// removal stops at the next heading of equal or higher level.
	input := "## Formulas & Equations\n\n$$a$$\n\n### Derivation\n\nsteps\n\n## Overview\n\nkept\n"

	got := Sanitize(input, []ViolationCode{ViolationFormulasNotInOCR})

	if strings.Contains(got.SanitizedContent, "Derivation") {
		t.Fatalf("subsection of removed section survived: %q", got.SanitizedContent)
	}
	if !strings.Contains(got.SanitizedContent, "## Overview") {
		t.Fatalf("sibling section lost: %q", got.SanitizedContent)
	}
}

func TestSanitizeNoViolationsIsIdentity(t *testing.T) {
	got := Sanitize(summaryWithFabrications, nil)
	if got.WasSanitized {
		t.Fatal("WasSanitized = true for empty violation set")
	}
	if got.SanitizedContent != summaryWithFabrications {
		t.Fatal("content changed without violations")
	}
}

func TestSanitizeMatchesArabicHeadings(t *testing.T) {
	input := "## نظرة عامة\n\nالنص الأصلي\n\n## الصيغ والمعادلات\n\n$$E=mc^2$$\n\n## أسئلة وأجوبة\n\nسؤال وجواب\n"

	got := Sanitize(input, []ViolationCode{ViolationFormulasNotInOCR})

	if strings.Contains(got.SanitizedContent, "المعادلات") {
		t.Fatalf("arabic formula section survived: %q", got.SanitizedContent)
	}
	if !strings.Contains(got.SanitizedContent, "نظرة عامة") || !strings.Contains(got.SanitizedContent, "أسئلة وأجوبة") {
		t.Fatalf("unrelated arabic sections damaged: %q", got.SanitizedContent)
	}
	if got.RemovedSections[0] != "Formulas & Equations" {
		t.Fatalf("RemovedSections = %v, want canonical display name", got.RemovedSections)
	}
}

func TestSanitizeIsIdempotentForIdenticalInput(t *testing.T) {
	violations := []ViolationCode{ViolationFormulasNotInOCR}
	first := Sanitize(summaryWithFabrications, violations)
	second := Sanitize(summaryWithFabrications, violations)

	if first.SanitizedContent != second.SanitizedContent {
		t.Fatal("sanitized content differs across identical runs")
	}
	if len(first.RemovedSections) != len(second.RemovedSections) {
		t.Fatal("removed sections differ across identical runs")
	}
}
