package rag

import (
	"context"
	"time"

	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"gorm.io/gorm"
)

// GormStore implements VectorStore over the page_summaries table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) ListEmbedded(ctx context.Context, bookID string, maxPage int, model string) ([]models.PageSummary, error) {
	var rows []models.PageSummary
	err := s.db.WithContext(ctx).
		Where("book_id = ? AND page_number <= ?", bookID, maxPage).
		Where("embedding IS NOT NULL AND embedding_model = ?", model).
		Order("page_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListByBook(ctx context.Context, bookID string) ([]models.PageSummary, error) {
	var rows []models.PageSummary
	err := s.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("page_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) UpdateEmbedding(ctx context.Context, id string, vector models.FloatVector, model string, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.PageSummary{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"embedding":            vector,
			"embedding_model":      model,
			"embedding_updated_at": at,
		}).Error
}
