package note

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
	g := rg.Group("/notes")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.remove)

	nb := rg.Group("/notebooks")
	nb.POST("", h.createNotebook)
	nb.GET("", h.listNotebooks)
}

type createDTO struct {
	Type       models.NoteType `json:"type"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	SourceURL  string          `json:"source_url"`
	Tags       []string        `json:"tags"`
	NotebookID string          `json:"notebook_id"`
}

type createNotebookDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// POST /notes
func (h *Handler) create(c *gin.Context) {
	var dto createDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.svc.Create(c.Request.Context(), CreateInput{
		Type:       dto.Type,
		Title:      dto.Title,
		Content:    dto.Content,
		SourceURL:  dto.SourceURL,
		Tags:       dto.Tags,
		NotebookID: dto.NotebookID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyContent):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "notebook not found")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, note)
}

// GET /notes
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	filter := ListFilter{
		NotebookID: c.Query("notebook_id"),
		Status:     models.ProcessStatus(c.Query("status")),
		Type:       models.NoteType(c.Query("type")),
		Tag:        c.Query("tag"),
		Domain:     c.Query("domain"),
	}

	var notes []models.NoteModel
	meta, err := pagination.Paginate(h.svc.ListQuery(c.Request.Context(), filter), q, &notes)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"data": notes, "pagination": meta})
}

// GET /notes/:id
func (h *Handler) get(c *gin.Context) {
	note, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "note not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, note)
}

// DELETE /notes/:id
func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "note not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// POST /notebooks
func (h *Handler) createNotebook(c *gin.Context) {
	var dto createNotebookDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	nb, err := h.svc.CreateNotebook(c.Request.Context(), dto.Name, dto.Description)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, nb)
}

// GET /notebooks
func (h *Handler) listNotebooks(c *gin.Context) {
	notebooks, err := h.svc.ListNotebooks(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, notebooks)
}
