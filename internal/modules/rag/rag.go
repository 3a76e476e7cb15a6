// Package rag assembles retrieval-augmented context from previously
// processed pages of the same book using vector similarity. Context is a
// quality enhancement, not a correctness dependency: every failure inside
// this package degrades to an empty result and never escalates.
package rag

import (
	"context"
	"math"
	"time"

	"github.com/muminalshawaf/book-extractor-sub002/internal/config"
	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/aiclient"
	"go.uber.org/zap"
)

// Context is one retrieved page, transient per query.
type Context struct {
	PageID     string
	PageNumber int
	Title      string
	Content    string
	Summary    string
	Similarity float64
}

// VectorStore is the slice of the summary store the retriever and the
// backfill job need.
type VectorStore interface {
	// ListEmbedded returns rows of the book with page_number <= maxPage that
	// carry an embedding computed by the given model.
	ListEmbedded(ctx context.Context, bookID string, maxPage int, model string) ([]models.PageSummary, error)
	// ListByBook returns every summary row of the book.
	ListByBook(ctx context.Context, bookID string) ([]models.PageSummary, error)
	// UpdateEmbedding replaces the vector of one row.
	UpdateEmbedding(ctx context.Context, id string, vector models.FloatVector, model string, at time.Time) error
}

// Service is the context retriever plus the embedding backfill job.
type Service struct {
	cfg      config.RAGConfig
	embedder aiclient.Embedder
	store    VectorStore
	log      *zap.Logger

	// sleep is injectable so tests can observe inter-batch delays.
	sleep func(ctx context.Context, d time.Duration)
}

func NewService(cfg config.RAGConfig, embedder aiclient.Embedder, store VectorStore, log *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		embedder: embedder,
		store:    store,
		log:      log,
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
}

// Retrieve finds similar earlier pages for the query text. Disabled config
// short-circuits before any provider call. Errors at any step are absorbed
// into an empty result.
func (s *Service) Retrieve(ctx context.Context, bookID string, pageNumber int, query string) []Context {
	if !s.cfg.Enabled {
		return nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.Warn("rag query embedding failed, continuing without context",
			zap.String("bookId", bookID), zap.Int("page", pageNumber), zap.Error(err))
		return nil
	}

	rows, err := s.store.ListEmbedded(ctx, bookID, pageNumber, s.embedder.Model())
	if err != nil {
		s.log.Warn("rag candidate lookup failed, continuing without context",
			zap.String("bookId", bookID), zap.Int("page", pageNumber), zap.Error(err))
		return nil
	}

	return rankCandidates(rows, vector, s.cfg.SimilarityThreshold, s.cfg.MaxContextPages)
}

// rankCandidates scores rows by cosine similarity descending, drops those
// below the threshold and truncates to maxPages.
func rankCandidates(rows []models.PageSummary, query []float32, threshold float64, maxPages int) []Context {
	results := make([]Context, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		sim := cosineSimilarity(query, row.Embedding)
		if sim < threshold {
			continue
		}
		results = append(results, Context{
			PageID:     row.ID,
			PageNumber: row.PageNumber,
			Title:      row.Title,
			Content:    row.OCRText,
			Summary:    row.SummaryMarkdown,
			Similarity: sim,
		})
	}

	// insertion sort by similarity descending; candidate sets are small
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Similarity > results[j-1].Similarity; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}

	if maxPages > 0 && len(results) > maxPages {
		results = results[:maxPages]
	}
	if len(results) == 0 {
		return nil
	}
	return results
}

func cosineSimilarity(a []float32, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
