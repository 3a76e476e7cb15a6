package rag

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"go.uber.org/zap"
)

// BackfillReport aggregates one backfill run.
type BackfillReport struct {
	TotalPages  int     `json:"totalPages"`
	Processed   int     `json:"processed"`
	Errors      int     `json:"errors"`
	SuccessRate float64 `json:"successRate"`
}

// Backfill embeds every summary row of the book missing an embedding for the
// current model, or all rows when force is set. Work runs in batches of
// batchSize concurrent embedding calls with a jittered 1–2 s pause between
// batches to respect provider rate limits. One item's failure is counted and
// does not abort its siblings; cancellation is cooperative and checked
// between batches, never mid-request.
func (s *Service) Backfill(ctx context.Context, bookID string, force bool, batchSize int) (*BackfillReport, error) {
	if batchSize <= 0 {
		batchSize = 5
	}

	rows, err := s.store.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	model := s.embedder.Model()
	pending := make([]*models.PageSummary, 0, len(rows))
	for i := range rows {
		if force || !rows[i].HasEmbedding(model) {
			pending = append(pending, &rows[i])
		}
	}

	report := &BackfillReport{TotalPages: len(rows)}

	var mu sync.Mutex
	for start := 0; start < len(pending); start += batchSize {
		if ctx.Err() != nil {
			s.log.Info("backfill cancelled",
				zap.String("bookId", bookID), zap.Int("processed", report.Processed))
			break
		}
		if start > 0 {
			s.sleep(ctx, jitteredDelay())
			if ctx.Err() != nil {
				break
			}
		}

		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}

		var wg sync.WaitGroup
		for _, row := range pending[start:end] {
			wg.Add(1)
			go func(row *models.PageSummary) {
				defer wg.Done()
				err := s.embedRow(ctx, row, model)

				mu.Lock()
				report.Processed++
				if err != nil {
					report.Errors++
				}
				mu.Unlock()

				if err != nil {
					s.log.Warn("backfill item failed",
						zap.String("bookId", row.BookID),
						zap.Int("page", row.PageNumber),
						zap.Error(err))
				}
			}(row)
		}
		wg.Wait()
	}

	if report.Processed > 0 {
		report.SuccessRate = float64(report.Processed-report.Errors) / float64(report.Processed)
	} else {
		report.SuccessRate = 1
	}
	return report, nil
}

func (s *Service) embedRow(ctx context.Context, row *models.PageSummary, model string) error {
	vector, err := s.embedder.Embed(ctx, row.OCRText)
	if err != nil {
		return err
	}
	return s.store.UpdateEmbedding(ctx, row.ID, vector, model, time.Now())
}

func jitteredDelay() time.Duration {
	return time.Second + time.Duration(rand.Int64N(int64(time.Second)))
}
