package engine

import (
	"errors"

	"github.com/amirhjalali/notes-core/internal/pkg/response"
	"github.com/amirhjalali/notes-core/internal/pkg/taskqueue"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc      *Service
	maxBatch int
}

func NewHandler(svc *Service, maxBatch int) *Handler {
	return &Handler{svc: svc, maxBatch: maxBatch}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/notes/:id/process", h.processNote)
	rg.POST("/notes/process-batch", h.processBatch)
	rg.GET("/notes/process/:jobId", h.jobStatus)
}

type batchDTO struct {
	NoteIDs []string `json:"note_ids" binding:"required"`
}

// POST /notes/:id/process
//
// Returns 202 with a job ID when queued, or 200 with the settled note when
// the queue is unavailable and the pipeline ran inline.
func (h *Handler) processNote(c *gin.Context) {
	outcome, err := h.svc.ProcessWithQueue(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNoteNotFound):
			response.NotFound(c, "note not found")
		case errors.Is(err, ErrAlreadyProcessing):
			response.Conflict(c, "note is already being processed")
		default:
			response.InternalError(c, err)
		}
		return
	}

	if outcome.Queued {
		response.Accepted(c, gin.H{
			"queued": true,
			"job_id": outcome.JobID,
		})
		return
	}
	response.OK(c, gin.H{
		"queued": false,
		"note":   outcome.Note,
	})
}

// POST /notes/process-batch
func (h *Handler) processBatch(c *gin.Context) {
	var dto batchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.ProcessBatch(c.Request.Context(), dto.NoteIDs, h.maxBatch)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrBatchTooLarge):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, result)
}

// GET /notes/process/:jobId
func (h *Handler) jobStatus(c *gin.Context) {
	status, err := h.svc.JobStatus(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		if errors.Is(err, taskqueue.ErrUnavailable) {
			response.Conflict(c, "job queue is unavailable")
			return
		}
		response.InternalError(c, err)
		return
	}
	if status == nil {
		response.NotFound(c, "job not found")
		return
	}
	response.OK(c, status)
}
