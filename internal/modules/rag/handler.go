package rag

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/response"
	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

const taskTypeBackfill = "embedding-backfill"

// Handler runs embedding backfills as tracked background tasks and exposes
// task status and cancellation.
type Handler struct {
	svc   *Service
	tasks *taskqueue.Service
	log   *zap.Logger
}

func NewHandler(svc *Service, tasks *taskqueue.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, tasks: tasks, log: log}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/embeddings/backfill", h.startBackfill)
	r.GET("/tasks/:id", h.getTask)
	r.POST("/tasks/:id/cancel", h.cancelTask)
}

type backfillRequest struct {
	BookID          string `json:"bookId" binding:"required"`
	ForceRegenerate bool   `json:"forceRegenerate"`
	BatchSize       int    `json:"batchSize"`
}

func (h *Handler) startBackfill(c *gin.Context) {
	var req backfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "bookId is required")
		return
	}

	// One backfill per book at a time; a duplicate request returns the
	// existing task.
	task, err := h.tasks.Enqueue(c.Request.Context(), taskTypeBackfill, req, req.BookID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task.Status == taskqueue.TaskPending {
		go h.runBackfill(task.ID, req)
	}
	response.Accepted(c, task)
}

// runBackfill executes one backfill task to completion. The registered
// context makes operator cancellation cooperative: the batch loop observes
// it between batches.
func (h *Handler) runBackfill(taskID string, req backfillRequest) {
	ctx, err := h.tasks.Register(context.Background(), taskID)
	if err != nil {
		h.log.Error("backfill task registration failed", zap.String("task", taskID), zap.Error(err))
		return
	}

	report, err := h.svc.Backfill(ctx, req.BookID, req.ForceRegenerate, req.BatchSize)
	statusCtx := context.Background()
	switch {
	case err != nil:
		_ = h.tasks.UpdateStatus(statusCtx, taskID, taskqueue.TaskFailed, nil, err.Error())
	case ctx.Err() != nil:
		_ = h.tasks.UpdateStatus(statusCtx, taskID, taskqueue.TaskCancelled, report, "cancelled")
	default:
		_ = h.tasks.UpdateStatus(statusCtx, taskID, taskqueue.TaskCompleted, report, "")
	}
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

func (h *Handler) cancelTask(c *gin.Context) {
	if err := h.tasks.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}
