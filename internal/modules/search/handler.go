package search

import (
	"errors"

	"github.com/amirhjalali/notes-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/search")
	g.POST("", h.search)
	g.POST("/context", h.relevantContext)
}

type searchDTO struct {
	Query      string  `json:"query" binding:"required"`
	Limit      int     `json:"limit"`
	Threshold  float64 `json:"threshold"`
	NotebookID string  `json:"notebook_id"`
	MaxChars   int     `json:"max_chars"`
}

func (dto *searchDTO) toQuery() Query {
	return Query{
		Text:       dto.Query,
		Limit:      dto.Limit,
		Threshold:  dto.Threshold,
		NotebookID: dto.NotebookID,
	}
}

// POST /search
func (h *Handler) search(c *gin.Context) {
	var dto searchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	matches, err := h.svc.Search(c.Request.Context(), dto.toQuery())
	if err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, matches)
}

// POST /search/context
func (h *Handler) relevantContext(c *gin.Context) {
	var dto searchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.GetRelevantContext(c.Request.Context(), dto.toQuery(), dto.MaxChars)
	if err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, result)
}
