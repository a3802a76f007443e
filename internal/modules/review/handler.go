package review

import (
	"errors"
	"strconv"

	"github.com/amirhjalali/notes-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/review/queue", h.reviewQueue)
	rg.POST("/notes/:id/review", h.recordReview)
	rg.POST("/notes/:id/review/skip", h.skipReview)
	rg.GET("/notes/:id/quiz", h.quiz)
}

type reviewDTO struct {
	Quality *int `json:"quality" binding:"required"`
}

type skipDTO struct {
	Days int `json:"days"`
}

// GET /review/queue?limit=20
func (h *Handler) reviewQueue(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notes, err := h.svc.ReviewQueue(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, notes)
}

// POST /notes/:id/review
func (h *Handler) recordReview(c *gin.Context) {
	var dto reviewDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.svc.RecordReview(c.Request.Context(), c.Param("id"), *dto.Quality)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidQuality):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "note not found")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, note)
}

// POST /notes/:id/review/skip
func (h *Handler) skipReview(c *gin.Context) {
	var dto skipDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Days == 0 {
		dto.Days = 1
	}

	note, err := h.svc.SkipReview(c.Request.Context(), c.Param("id"), dto.Days)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSkip):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "note not found")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, note)
}

// GET /notes/:id/quiz
func (h *Handler) quiz(c *gin.Context) {
	quiz, err := h.svc.GenerateQuizQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "note not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, quiz)
}
