package tagging

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
	g := rg.Group("/notes/:id/tags")
	g.GET("/suggestions", h.suggestTags)
	g.POST("", h.applyTags)
	g.POST("/manual", h.recordManualTag)
	g.DELETE("/:tag", h.removeTag)
}

type applyTagsDTO struct {
	Tags          []string `json:"tags" binding:"required"`
	AutoExtracted bool     `json:"auto_extracted"`
}

type manualTagDTO struct {
	Tag string `json:"tag" binding:"required"`
}

// GET /notes/:id/tags/suggestions?limit=5
func (h *Handler) suggestTags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	suggestions, err := h.svc.SuggestTags(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "note not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, suggestions)
}

// POST /notes/:id/tags
func (h *Handler) applyTags(c *gin.Context) {
	var dto applyTagsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.svc.ApplyTags(c.Request.Context(), c.Param("id"), dto.Tags, dto.AutoExtracted)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "note not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"tags": note.Tags})
}

// POST /notes/:id/tags/manual
func (h *Handler) recordManualTag(c *gin.Context) {
	var dto manualTagDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.svc.RecordManualTagAddition(c.Request.Context(), c.Param("id"), dto.Tag)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "note not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"tags": note.Tags})
}

// DELETE /notes/:id/tags/:tag
func (h *Handler) removeTag(c *gin.Context) {
	note, err := h.svc.RemoveTag(c.Request.Context(), c.Param("id"), c.Param("tag"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "note not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"tags": note.Tags})
}
