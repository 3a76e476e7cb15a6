// Package app wires configuration, storage, providers and modules into the
// HTTP application.
package app

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/muminalshawaf/book-extractor-sub002/internal/config"
	"github.com/muminalshawaf/book-extractor-sub002/internal/database"
	"github.com/muminalshawaf/book-extractor-sub002/internal/middleware"
	"github.com/muminalshawaf/book-extractor-sub002/internal/modules/grounding"
	"github.com/muminalshawaf/book-extractor-sub002/internal/modules/page"
	"github.com/muminalshawaf/book-extractor-sub002/internal/modules/rag"
	"github.com/muminalshawaf/book-extractor-sub002/internal/modules/summarize"
	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/aiclient"
	redisc "github.com/muminalshawaf/book-extractor-sub002/internal/pkg/redis"
	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the assembled application.
type App struct {
	cfg    *config.AppConfig
	log    *zap.Logger
	db     *gorm.DB
	redis  *redisc.Client
	router *gin.Engine
}

// New connects storage, resolves the AI provider adapters once, and
// registers all routes.
func New(log *zap.Logger, cfg *config.AppConfig) (*App, error) {
	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := redisc.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	completer, err := aiclient.NewCompleter(&cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("completion provider: %w", err)
	}
	embedder, err := aiclient.NewEmbedder(&cfg.AI, &cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}

	strategy, err := grounding.NewScoreStrategy(cfg.Compliance.Strategy, cfg.Compliance.ViolationPenalty)
	if err != nil {
		return nil, err
	}

	vectorStore := rag.NewGormStore(db)
	ragSvc := rag.NewService(cfg.RAG, embedder, vectorStore, log.Named("rag"))

	summarySvc := summarize.NewService(
		cfg,
		summarize.NewGormStore(db),
		completer,
		embedder,
		ragSvc,
		strategy,
		summarize.NewRedisInvalidator(rc, log.Named("cache")),
		log.Named("summarize"),
	)

	pageSvc := page.NewService(db, log.Named("page"))
	tasks := taskqueue.NewService(rc)

	summaryCache := middleware.HTTPCache(rc, log.Named("httpcache"), middleware.HTTPCacheOptions{}, summaryCacheKey)

	a := &App{
		cfg:   cfg,
		log:   log,
		db:    db,
		redis: rc,
	}
	a.router = a.buildRouter(
		page.NewHandler(pageSvc),
		summarize.NewHandler(summarySvc, summaryCache),
		rag.NewHandler(ragSvc, tasks, log.Named("backfill")),
	)
	return a, nil
}

// summaryCacheKey keys the summary read cache by the same (bookId, page) key
// the invalidator deletes after a write.
func summaryCacheKey(c *gin.Context) (string, bool) {
	pageNumber, err := strconv.Atoi(c.Param("page"))
	if err != nil || pageNumber < 1 {
		return "", false
	}
	return summarize.CacheKey(c.Param("bookId"), pageNumber), true
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() *gin.Engine { return a.router }

// Shutdown releases held resources.
func (a *App) Shutdown() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.redis.Raw().Close()
}
