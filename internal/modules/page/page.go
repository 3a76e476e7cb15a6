// Package page is the OCR input boundary: collaborators push raw extraction
// rows here, keyed by (bookId, pageNumber).
package page

import (
	"context"
	"errors"
	"strings"

	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidPage = errors.New("invalid page")

// Service persists and serves OCR page rows.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Upsert stores an OCR row, replacing any prior extraction for the same page.
func (s *Service) Upsert(ctx context.Context, row *models.BookPage) error {
	if strings.TrimSpace(row.BookID) == "" || row.PageNumber < 1 {
		return ErrInvalidPage
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "book_id"}, {Name: "page_number"}},
			UpdateAll: true,
		}).
		Create(row).Error
}

// Get returns the OCR row, or (nil, nil) when absent.
func (s *Service) Get(ctx context.Context, bookID string, pageNumber int) (*models.BookPage, error) {
	var row models.BookPage
	err := s.db.WithContext(ctx).
		Where("book_id = ? AND page_number = ?", bookID, pageNumber).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
