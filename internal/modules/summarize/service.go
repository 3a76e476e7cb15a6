package summarize

import (
	"context"
	"strings"
	"time"

	"github.com/muminalshawaf/book-extractor-sub002/internal/config"
	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"github.com/muminalshawaf/book-extractor-sub002/internal/modules/grounding"
	"github.com/muminalshawaf/book-extractor-sub002/internal/modules/rag"
	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/aiclient"
	"go.uber.org/zap"
)

// ContextRetriever supplies similar earlier pages. *rag.Service satisfies it.
type ContextRetriever interface {
	Retrieve(ctx context.Context, bookID string, pageNumber int, query string) []rag.Context
}

// Invalidator signals collaborators that a cached summary is stale.
type Invalidator interface {
	Invalidate(ctx context.Context, bookID string, pageNumber int)
}

// Service runs the summarization pipeline. Each call is a stateless,
// independent unit of work; nothing mutable is shared across concurrent runs.
type Service struct {
	cfg       *config.AppConfig
	store     Store
	completer aiclient.Completer
	embedder  aiclient.Embedder
	retriever ContextRetriever
	strategy  grounding.ScoreStrategy
	cache     Invalidator
	log       *zap.Logger
}

func NewService(cfg *config.AppConfig, store Store, completer aiclient.Completer, embedder aiclient.Embedder, retriever ContextRetriever, strategy grounding.ScoreStrategy, cache Invalidator, log *zap.Logger) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		completer: completer,
		embedder:  embedder,
		retriever: retriever,
		strategy:  strategy,
		cache:     cache,
		log:       log,
	}
}

// GetOrGenerate returns the stored summary, running the pipeline lazily on a
// miss. A stored rejection marker is returned as-is; rejection is terminal
// until an explicit regenerate request.
func (s *Service) GetOrGenerate(ctx context.Context, bookID string, pageNumber int) (*Result, error) {
	if err := validateKey(bookID, pageNumber); err != nil {
		return nil, err
	}

	existing, err := s.store.GetSummary(ctx, bookID, pageNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		outcome := OutcomePublished
		if existing.Status == models.SummaryStatusRejected {
			outcome = OutcomeRejected
		}
		return &Result{
			Outcome:         outcome,
			Summary:         existing,
			ComplianceScore: existing.ComplianceScore,
			Violations:      violationsOf(existing),
		}, nil
	}

	return s.Generate(ctx, bookID, pageNumber)
}

// Generate runs the full pipeline unconditionally, replacing any stored row.
func (s *Service) Generate(ctx context.Context, bookID string, pageNumber int) (*Result, error) {
	if err := validateKey(bookID, pageNumber); err != nil {
		return nil, err
	}

	page, err := s.store.GetPage(ctx, bookID, pageNumber)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrPageNotFound
	}
	if strings.TrimSpace(page.OCRText) == "" {
		return nil, malformedf("page %s/%d has empty ocr text", bookID, pageNumber)
	}

	classification := Classify(page.OCRText)

	var contextBlock string
	if s.retriever != nil && classification.Class == PageClassContent {
		results := s.retriever.Retrieve(ctx, bookID, pageNumber, page.OCRText)
		contextBlock = rag.BuildContextBlock(results, s.cfg.RAG.MaxContextLength)
	}

	raw, err := completeWithContinuation(ctx, s.completer, aiclient.CompletionRequest{
		SystemPrompt: systemPromptFor(classification.Class),
		UserPrompt:   buildUserPrompt(classification.Class, page, contextBlock),
		Temperature:  s.cfg.AI.Temperature,
		MaxTokens:    s.cfg.AI.MaxTokens,
	}, s.log)
	if err != nil {
		return nil, err
	}

	parsed := parseResponse(raw)
	violations := grounding.Validate(page.OCRText, parsed.Markdown, parsed.SelfReported)
	sanitized := grounding.Sanitize(parsed.Markdown, violations)
	score := s.strategy.Score(parsed.Confidence, violations)

	row := &models.PageSummary{
		BookID:        bookID,
		PageNumber:    pageNumber,
		Title:         page.Title,
		OCRText:       page.OCRText,
		OCRConfidence: page.OCRConfidence,
		OCRStructured: page.OCRStructured,

		Confidence:      parsed.Confidence,
		ComplianceScore: score,
		ValidationMeta: models.ValidationMeta{
			Violations:      grounding.Codes(sanitized.Violations),
			RemovedSections: sanitized.RemovedSections,
			WasSanitized:    sanitized.WasSanitized,
		},
		ProviderUsed: s.completer.Name(),
	}

	if score < s.cfg.Compliance.MinScore {
		// Persist a rejection marker with no summary content so the state is
		// terminal until an explicit regenerate request.
		row.Status = models.SummaryStatusRejected
		if err := s.store.UpsertSummary(ctx, row); err != nil {
			return nil, err
		}
		s.log.Info("grounding gate blocked summary",
			zap.String("bookId", bookID), zap.Int("page", pageNumber),
			zap.Int("score", score), zap.Int("minScore", s.cfg.Compliance.MinScore),
			zap.Strings("violations", grounding.Codes(violations)))
		return &Result{
			Outcome:         OutcomeRejected,
			Summary:         row,
			ComplianceScore: score,
			Violations:      violations,
		}, nil
	}

	row.Status = models.SummaryStatusPublished
	row.SummaryMarkdown = sanitized.SanitizedContent
	row.SummaryStructured = buildStructured(sanitized.SanitizedContent)
	s.embedRow(ctx, row)

	if err := s.store.UpsertSummary(ctx, row); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, bookID, pageNumber)
	}

	s.log.Info("summary published",
		zap.String("bookId", bookID), zap.Int("page", pageNumber),
		zap.Int("score", score), zap.Bool("sanitized", sanitized.WasSanitized),
		zap.String("class", string(classification.Class)))
	return &Result{
		Outcome:         OutcomePublished,
		Summary:         row,
		ComplianceScore: score,
		Violations:      violations,
	}, nil
}

// Regenerate deletes the stored row so the next read regenerates lazily. It
// does not itself invoke generation.
func (s *Service) Regenerate(ctx context.Context, bookID string, pageNumber int) error {
	if err := validateKey(bookID, pageNumber); err != nil {
		return err
	}
	if err := s.store.DeleteSummary(ctx, bookID, pageNumber); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, bookID, pageNumber)
	}
	return nil
}

// embedRow computes the synchronous embedding that serves later RAG queries.
// Failure leaves the vector empty for the backfill job to repair.
func (s *Service) embedRow(ctx context.Context, row *models.PageSummary) {
	if s.embedder == nil {
		return
	}
	vector, err := s.embedder.Embed(ctx, row.OCRText)
	if err != nil {
		s.log.Warn("synchronous embedding failed, deferring to backfill",
			zap.String("bookId", row.BookID), zap.Int("page", row.PageNumber), zap.Error(err))
		return
	}
	now := time.Now()
	row.Embedding = vector
	row.EmbeddingModel = s.embedder.Model()
	row.EmbeddingUpdatedAt = &now
}

func validateKey(bookID string, pageNumber int) error {
	if strings.TrimSpace(bookID) == "" {
		return malformedf("missing book id")
	}
	if pageNumber < 1 {
		return malformedf("invalid page number %d", pageNumber)
	}
	return nil
}

func violationsOf(row *models.PageSummary) []grounding.ViolationCode {
	var out []grounding.ViolationCode
	for _, raw := range row.ValidationMeta.Violations {
		if code, ok := grounding.ParseViolation(raw); ok {
			out = append(out, code)
		}
	}
	return out
}
