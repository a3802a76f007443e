package ai

import (
	"errors"

	"github.com/amirhjalali/notes-core/internal/models"
	"github.com/amirhjalali/notes-core/internal/pkg/pagination"
	"github.com/amirhjalali/notes-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/generations")
	g.GET("", h.listFailedGenerations)
	g.GET("/:id", h.getFailedGeneration)
	g.POST("/:id/retry", h.retryGeneration)
}

// GET /generations?status=...
func (h *Handler) listFailedGenerations(c *gin.Context) {
	q := pagination.FromContext(c)

	tx := h.svc.db.WithContext(c.Request.Context()).
		Model(&models.FailedGenerationModel{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		tx = tx.Where("status = ?", status)
	}

	var items []models.FailedGenerationModel
	pag, err := pagination.Paginate(tx, q, &items)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{"data": items, "pagination": pag})
}

// GET /generations/:id
func (h *Handler) getFailedGeneration(c *gin.Context) {
	record, err := h.svc.GetFailedGeneration(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "generation not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, record)
}

// POST /generations/:id/retry
func (h *Handler) retryGeneration(c *gin.Context) {
	result, err := h.svc.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "generation not found")
		case errors.Is(err, ErrGenerationResolved), errors.Is(err, ErrGenerationAbandoned), errors.Is(err, ErrRetryExhausted):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, result)
}
