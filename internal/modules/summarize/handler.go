package summarize

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/aiclient"
	"github.com/muminalshawaf/book-extractor-sub002/internal/pkg/response"
)

// Handler exposes the summary pipeline over HTTP. readCache, when non-nil,
// caches GET responses under the key the invalidator deletes.
type Handler struct {
	svc       *Service
	readCache gin.HandlerFunc
}

func NewHandler(svc *Service, readCache gin.HandlerFunc) *Handler {
	return &Handler{svc: svc, readCache: readCache}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	if h.readCache != nil {
		r.GET("/books/:bookId/pages/:page/summary", h.readCache, h.getSummary)
	} else {
		r.GET("/books/:bookId/pages/:page/summary", h.getSummary)
	}
	r.POST("/summaries/generate", h.generate)
	r.DELETE("/summaries/:bookId/:page", h.regenerate)
}

func (h *Handler) getSummary(c *gin.Context) {
	bookID, page, ok := pageParams(c)
	if !ok {
		return
	}

	result, err := h.svc.GetOrGenerate(c.Request.Context(), bookID, page)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	writeResult(c, result)
}

type generateRequest struct {
	BookID     string `json:"bookId" binding:"required"`
	PageNumber int    `json:"pageNumber" binding:"required"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "bookId and pageNumber are required")
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), req.BookID, req.PageNumber)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	writeResult(c, result)
}

func (h *Handler) regenerate(c *gin.Context) {
	bookID, page, ok := pageParams(c)
	if !ok {
		return
	}

	if err := h.svc.Regenerate(c.Request.Context(), bookID, page); err != nil {
		writePipelineError(c, err)
		return
	}
	response.NoContent(c)
}

// writeResult distinguishes the gate rejection from transport failures so
// callers can decide to force regeneration instead of retrying.
func writeResult(c *gin.Context, result *Result) {
	if result.Outcome == OutcomeRejected {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"ok":      0,
			"code":    http.StatusUnprocessableEntity,
			"message": "grounding gate blocked summary",
			"result":  result,
		})
		return
	}
	response.OK(c, result)
}

func writePipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMalformedInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrPageNotFound):
		response.NotFoundMsg(c, "page not found")
	case aiclient.IsProviderError(err):
		response.BadGateway(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

func pageParams(c *gin.Context) (string, int, bool) {
	bookID := c.Param("bookId")
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		response.BadRequest(c, "invalid page number")
		return "", 0, false
	}
	return bookID, page, true
}
