package grounding

// ViolationCode names a specific grounding failure: a summary section whose
// content cannot be traced back to the source OCR text.
type ViolationCode string

const (
	// ViolationFormulasNotInOCR: the summary carries a "Formulas & Equations"
	// section but the source text contains no equation-like patterns.
	ViolationFormulasNotInOCR ViolationCode = "FORMULAS_NOT_IN_OCR"

	// ViolationApplicationsNotInOCR: the summary carries an
	// "Examples & Applications" section but the source has no worked-example markers.
	ViolationApplicationsNotInOCR ViolationCode = "APPLICATIONS_NOT_IN_OCR"
)

// ParseViolation maps a raw code (e.g. self-reported by the generation step)
// to a known ViolationCode. Unknown codes are dropped.
func ParseViolation(raw string) (ViolationCode, bool) {
	switch ViolationCode(raw) {
	case ViolationFormulasNotInOCR:
		return ViolationFormulasNotInOCR, true
	case ViolationApplicationsNotInOCR:
		return ViolationApplicationsNotInOCR, true
	}
	return "", false
}

// UnionViolations merges independently derived and self-reported violations,
// preserving derivation order and deduplicating.
func UnionViolations(derived []ViolationCode, selfReported []string) []ViolationCode {
	seen := make(map[ViolationCode]struct{}, len(derived)+len(selfReported))
	out := make([]ViolationCode, 0, len(derived)+len(selfReported))
	for _, v := range derived {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, raw := range selfReported {
		v, ok := ParseViolation(raw)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Codes renders violations as plain strings for storage.
func Codes(violations []ViolationCode) []string {
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = string(v)
	}
	return out
}
