package page

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/muminalshawaf/book-extractor-sub002/internal/models"
	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/pages", h.upsert)
	r.GET("/pages/:bookId/:page", h.get)
}

type upsertRequest struct {
	BookID        string                `json:"bookId" binding:"required"`
	PageNumber    int                   `json:"pageNumber" binding:"required"`
	Title         string                `json:"title"`
	OCRText       string                `json:"ocrText" binding:"required"`
	OCRConfidence float64               `json:"ocrConfidence"`
	OCRStructured *models.OCRStructured `json:"ocrStructured,omitempty"`
}

func (h *Handler) upsert(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "bookId, pageNumber and ocrText are required")
		return
	}

	row := &models.BookPage{
		BookID:        req.BookID,
		PageNumber:    req.PageNumber,
		Title:         req.Title,
		OCRText:       req.OCRText,
		OCRConfidence: req.OCRConfidence,
		OCRStructured: req.OCRStructured,
	}
	if err := h.svc.Upsert(c.Request.Context(), row); err != nil {
		if errors.Is(err, ErrInvalidPage) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, row)
}

func (h *Handler) get(c *gin.Context) {
	bookID := c.Param("bookId")
	pageNumber, err := strconv.Atoi(c.Param("page"))
	if err != nil || pageNumber < 1 {
		response.BadRequest(c, "invalid page number")
		return
	}

	row, err := h.svc.Get(c.Request.Context(), bookID, pageNumber)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, row)
}
