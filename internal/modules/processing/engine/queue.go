package engine

import (
	"context"
	"errors"
	"time"

	"github.com/amirhjalali/notes-core/internal/models"
	"github.com/amirhjalali/notes-core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

// jobTimeout bounds a single background processing run.
const jobTimeout = 5 * time.Minute

// Outcome describes how a processing request was dispatched. Exactly one
// of Queued/Note is meaningful: a queued request reports the job ID to
// poll, a direct run returns the terminally-settled note.
type Outcome struct {
	Queued bool
	JobID  string
	Note   *models.NoteModel
}

// ProcessWithQueue claims a note and dispatches processing. The queue is
// preferred; when it is unavailable the pipeline runs synchronously in the
// request so a missing Redis never blocks ingestion. The claim taken here
// is handed off to the queued job by resetting the note to PENDING, and
// re-taken by the worker goroutine when the job starts.
func (s *Service) ProcessWithQueue(ctx context.Context, noteID string) (*Outcome, error) {
	if err := s.Claim(ctx, noteID); err != nil {
		return nil, err
	}

	job, err := s.queue.Enqueue(ctx, noteID)
	if err != nil {
		if !errors.Is(err, taskqueue.ErrUnavailable) {
			s.log.Warn("enqueue failed, running pipeline directly",
				zap.String("note_id", noteID),
				zap.Error(err),
			)
		}
		note, perr := s.Process(ctx, noteID)
		if perr != nil {
			return nil, perr
		}
		return &Outcome{Note: note}, nil
	}

	// Hand the claim to the job: the worker re-claims when it picks the
	// note up, and a crash between here and there leaves PENDING, not a
	// permanently stuck PROCESSING.
	if err := s.db.WithContext(ctx).Model(&models.NoteModel{}).
		Where("id = ?", noteID).
		Update("process_status", models.ProcessPending).Error; err != nil {
		return nil, err
	}

	go s.runJob(job.ID, noteID)
	return &Outcome{Queued: true, JobID: job.ID}, nil
}

// runJob executes a queued job in the background, mirroring pipeline
// progress onto the job record.
func (s *Service) runJob(jobID, noteID string) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.queue.MarkActive(ctx, jobID); err != nil {
		s.log.Warn("mark job active failed", zap.String("job_id", jobID), zap.Error(err))
	}

	if err := s.Claim(ctx, noteID); err != nil {
		if errors.Is(err, ErrAlreadyProcessing) {
			// Another worker holds the note; let it finish.
			s.log.Debug("job skipped, note already claimed",
				zap.String("job_id", jobID),
				zap.String("note_id", noteID),
			)
			return
		}
		_ = s.queue.Fail(ctx, jobID, err.Error())
		return
	}

	_ = s.queue.SetProgress(ctx, jobID, 10)

	note, err := s.Process(ctx, noteID)
	if err != nil {
		_ = s.queue.Fail(ctx, jobID, err.Error())
		return
	}

	if note.ProcessStatus == models.ProcessFailed {
		msg := "processing failed"
		if note.ProcessingError != nil {
			msg = *note.ProcessingError
		}
		_ = s.queue.Fail(ctx, jobID, msg)
		return
	}

	result := map[string]interface{}{
		"note_id":         note.ID,
		"summary":         note.Summary,
		"extraction_tier": note.ExtractionTier,
	}
	if err := s.queue.Complete(ctx, jobID, result); err != nil {
		s.log.Warn("complete job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

// JobStatus looks up a queued job by ID.
func (s *Service) JobStatus(ctx context.Context, jobID string) (*taskqueue.JobStatus, error) {
	return s.queue.GetStatus(ctx, jobID)
}
