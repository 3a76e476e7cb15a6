package summarize

import (
	"context"
	"errors"

	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary of the pipeline. Lookups return
// (nil, nil) when no row exists.
type Store interface {
	GetPage(ctx context.Context, bookID string, pageNumber int) (*models.BookPage, error)
	GetSummary(ctx context.Context, bookID string, pageNumber int) (*models.PageSummary, error)
	// UpsertSummary replaces the row keyed by (book_id, page_number) wholesale.
	UpsertSummary(ctx context.Context, row *models.PageSummary) error
	DeleteSummary(ctx context.Context, bookID string, pageNumber int) error
}

// GormStore implements Store over MySQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) GetPage(ctx context.Context, bookID string, pageNumber int) (*models.BookPage, error) {
	var page models.BookPage
	err := s.db.WithContext(ctx).
		Where("book_id = ? AND page_number = ?", bookID, pageNumber).
		First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *GormStore) GetSummary(ctx context.Context, bookID string, pageNumber int) (*models.PageSummary, error) {
	var row models.PageSummary
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

func (s *GormStore) UpsertSummary(ctx context.Context, row *models.PageSummary) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "book_id"}, {Name: "page_number"}},
			UpdateAll: true,
		}).
		Create(row).Error
}

func (s *GormStore) DeleteSummary(ctx context.Context, bookID string, pageNumber int) error {
	return s.db.WithContext(ctx).
		Where("book_id = ? AND page_number = ?", bookID, pageNumber).
		Delete(&models.PageSummary{}).Error
}
