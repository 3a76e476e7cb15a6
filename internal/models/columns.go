package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// FloatVector stores an embedding as a JSON array column.
// A nil vector is stored as SQL NULL so "missing embedding" is queryable.
type FloatVector []float32

func (v FloatVector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal([]float32(v))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (v *FloatVector) Scan(value interface{}) error {
	if v == nil {
		return fmt.Errorf("models.FloatVector: Scan on nil pointer")
	}
	if value == nil {
		*v = nil
		return nil
	}

	var raw string
	switch t := value.(type) {
	case []byte:
		raw = string(t)
	case string:
		raw = t
	default:
		return fmt.Errorf("models.FloatVector: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*v = nil
		return nil
	}

	var arr []float32
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return fmt.Errorf("models.FloatVector: %w", err)
	}
	*v = arr
	return nil
}

// ValidationMeta records the grounding validator's findings for a summary.
type ValidationMeta struct {
	Violations      []string `json:"violations"`
	RemovedSections []string `json:"removedSections"`
	WasSanitized    bool     `json:"wasSanitized"`
}

func (m ValidationMeta) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *ValidationMeta) Scan(value interface{}) error {
	return scanJSONColumn("models.ValidationMeta", value, m)
}

// StructuredSection is one detected section of OCR text or a summary.
type StructuredSection struct {
	Title     string `json:"title"`
	WordCount int    `json:"wordCount,omitempty"`
}

// OCRStructured is the OCR collaborator's structured breakdown of a page.
type OCRStructured struct {
	Sections     []StructuredSection `json:"sections,omitempty"`
	HasQuestions bool                `json:"hasQuestions"`
	HasFormulas  bool                `json:"hasFormulas"`
	HasExamples  bool                `json:"hasExamples"`
}

func (o OCRStructured) Value() (driver.Value, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *OCRStructured) Scan(value interface{}) error {
	return scanJSONColumn("models.OCRStructured", value, o)
}

// SummaryStructured is the structured breakdown of a generated summary.
type SummaryStructured struct {
	Sections  []StructuredSection `json:"sections,omitempty"`
	WordCount int                 `json:"wordCount"`
}

func (s SummaryStructured) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SummaryStructured) Scan(value interface{}) error {
	return scanJSONColumn("models.SummaryStructured", value, s)
}

func scanJSONColumn(name string, value interface{}, out interface{}) error {
	if value == nil {
		return nil
	}

	var raw []byte
	switch t := value.(type) {
	case []byte:
		raw = t
	case string:
		raw = []byte(t)
	default:
		return fmt.Errorf("%s: unsupported Scan type %T", name, value)
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
