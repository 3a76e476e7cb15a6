package grounding

// Validate independently re-derives grounding facts from the source OCR text
// and cross-checks them against the summary's section structure. The
// generation step is never trusted to self-certify faithfulness; its
// self-reported violations are unioned in, not substituted.
func Validate(ocrText, summary string, selfReported []string) []ViolationCode {
	var derived []ViolationCode

	if formulaSection, ok := SectionForViolation(ViolationFormulasNotInOCR); ok {
		if ContainsSection(summary, formulaSection) && !DetectFormulas(ocrText).Found {
			derived = append(derived, ViolationFormulasNotInOCR)
		}
	}
	if exampleSection, ok := SectionForViolation(ViolationApplicationsNotInOCR); ok {
		if ContainsSection(summary, exampleSection) && !DetectExamples(ocrText).Found {
			derived = append(derived, ViolationApplicationsNotInOCR)
		}
	}

	return UnionViolations(derived, selfReported)
}
