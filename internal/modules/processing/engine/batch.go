package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/amirhjalali/notes-core/internal/models"
	"golang.org/x/sync/errgroup"
)

const batchConcurrency = 4

var (
	ErrEmptyBatch    = errors.New("batch contains no note IDs")
	ErrBatchTooLarge = errors.New("batch exceeds the maximum size")
)

// BatchItem is the per-note outcome within a batch request.
type BatchItem struct {
	NoteID string `json:"note_id"`
	Status string `json:"status"` // queued | completed | failed | skipped | not_found
	JobID  string `json:"job_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult aggregates a batch processing request. Every submitted ID is
// accounted for exactly once; one bad ID never aborts the rest.
type BatchResult struct {
	Total     int         `json:"total"`
	Queued    int         `json:"queued"`
	Completed int         `json:"completed"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	NotFound  int         `json:"not_found"`
	Items     []BatchItem `json:"items"`
}

// ProcessBatch dispatches processing for up to maxBatch notes, running a
// bounded number of pipelines concurrently and settling every ID.
func (s *Service) ProcessBatch(ctx context.Context, noteIDs []string, maxBatch int) (*BatchResult, error) {
	if len(noteIDs) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(noteIDs) > maxBatch {
		return nil, ErrBatchTooLarge
	}

	result := &BatchResult{
		Total: len(noteIDs),
		Items: make([]BatchItem, len(noteIDs)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, id := range noteIDs {
		i, id := i, id
		g.Go(func() error {
			item := s.processOne(gctx, id)
			mu.Lock()
			result.Items[i] = item
			switch item.Status {
			case "queued":
				result.Queued++
			case "completed":
				result.Completed++
			case "skipped":
				result.Skipped++
			case "not_found":
				result.NotFound++
			default:
				result.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result, nil
}

func (s *Service) processOne(ctx context.Context, noteID string) BatchItem {
	item := BatchItem{NoteID: noteID}

	outcome, err := s.ProcessWithQueue(ctx, noteID)
	switch {
	case errors.Is(err, ErrNoteNotFound):
		item.Status = "not_found"
	case errors.Is(err, ErrAlreadyProcessing):
		item.Status = "skipped"
	case err != nil:
		item.Status = "failed"
		item.Error = err.Error()
	case outcome.Queued:
		item.Status = "queued"
		item.JobID = outcome.JobID
	case outcome.Note.ProcessStatus == models.ProcessFailed:
		item.Status = "failed"
		if outcome.Note.ProcessingError != nil {
			item.Error = *outcome.Note.ProcessingError
		}
	default:
		item.Status = "completed"
	}
	return item
}
