package models

import "time"

// Summary lifecycle states. A row with an empty status is treated as published
// for rows written before the column existed.
const (
	SummaryStatusPublished = "published"
	SummaryStatusRejected  = "rejected"
)

// BookPage is the OCR input boundary: raw extraction for one document page,
// written by the OCR collaborator.
type BookPage struct {
	Base
	BookID        string         `json:"bookId"        gorm:"uniqueIndex:idx_book_page;not null"`
	PageNumber    int            `json:"pageNumber"    gorm:"uniqueIndex:idx_book_page;not null"`
	Title         string         `json:"title"`
	OCRText       string         `json:"ocrText"       gorm:"type:longtext"`
	OCRConfidence float64        `json:"ocrConfidence"`
	OCRStructured *OCRStructured `json:"ocrStructured,omitempty" gorm:"type:json"`
}

func (BookPage) TableName() string { return "book_pages" }

// PageSummary is one validated summary per document page.
//
// Invariant: a row with SummaryMarkdown set has a ComplianceScore at or above
// the configured minimum at the time it was written. Rejected runs store a
// marker row instead: Status is "rejected", SummaryMarkdown is empty, and
// ComplianceScore records the failing score of that run so the rejection is
// inspectable; such rows never carry summary content and are not served as
// summaries. Rows are replaced wholesale on regeneration; embeddings are
// updated independently.
type PageSummary struct {
	Base
	BookID     string `json:"bookId"     gorm:"uniqueIndex:idx_summary_book_page;not null"`
	PageNumber int    `json:"pageNumber" gorm:"uniqueIndex:idx_summary_book_page;not null"`
	Title      string `json:"title"`

	// Source text as it existed at generation time; ground truth for validation.
	OCRText       string         `json:"ocrText"       gorm:"type:longtext"`
	OCRConfidence float64        `json:"ocrConfidence"`
	OCRStructured *OCRStructured `json:"ocrStructured,omitempty" gorm:"type:json"`

	SummaryMarkdown   string             `json:"summaryMarkdown"   gorm:"type:longtext"`
	SummaryStructured *SummaryStructured `json:"summaryStructured,omitempty" gorm:"type:json"`

	Confidence      int            `json:"confidence"`      // [0,100], self-reported by the model
	ComplianceScore int            `json:"complianceScore"` // [0,100], gates persistence
	ValidationMeta  ValidationMeta `json:"validationMeta"  gorm:"type:json"`
	Status          string         `json:"status"          gorm:"index"`

	Embedding          FloatVector `json:"-"              gorm:"type:json"`
	EmbeddingModel     string      `json:"embeddingModel,omitempty"`
	EmbeddingUpdatedAt *time.Time  `json:"embeddingUpdatedAt,omitempty"`

	ProviderUsed string `json:"providerUsed"`
}

func (PageSummary) TableName() string { return "page_summaries" }

// HasEmbedding reports whether this row carries a vector for the given model.
// A vector computed by a different model version counts as missing; vectors
// are regenerated wholesale on model change.
func (p *PageSummary) HasEmbedding(model string) bool {
	return len(p.Embedding) > 0 && p.EmbeddingModel == model
}
