package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisc "github.com/amirhjalali/notes-core/internal/pkg/redis"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable signals that the queue backend cannot be reached. Callers
// are expected to fall back to direct synchronous processing; the error is
// never surfaced to the end caller.
var ErrUnavailable = errors.New("task queue unavailable")

// JobState is the queue-native lifecycle state of a job.
type JobState string

const (
	JobWaiting   JobState = "waiting"
	JobDelayed   JobState = "delayed"
	JobActive    JobState = "active"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Status is the simplified state vocabulary exposed to external consumers.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// SimplifyState collapses queue-native states for external consumers.
func SimplifyState(state JobState) Status {
	switch state {
	case JobWaiting, JobDelayed:
		return StatusPending
	case JobActive:
		return StatusProcessing
	case JobCompleted:
		return StatusCompleted
	default:
		return StatusFailed
	}
}

// Job is a unit of note-processing work stored in Redis.
type Job struct {
	ID          string          `json:"id"`
	NoteID      string          `json:"note_id"`
	State       JobState        `json:"state"`
	Progress    int             `json:"progress"` // 0-100
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// JobStatus is the externally visible view of a job.
type JobStatus struct {
	ID          string          `json:"id"`
	NoteID      string          `json:"note_id"`
	Status      Status          `json:"status"`
	Progress    int             `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
}

func (j *Job) Status() *JobStatus {
	return &JobStatus{
		ID:          j.ID,
		NoteID:      j.NoteID,
		Status:      SimplifyState(j.State),
		Progress:    j.Progress,
		Result:      j.Result,
		Error:       j.Error,
		Attempts:    j.Attempts,
		MaxAttempts: j.MaxAttempts,
	}
}

const (
	keyPrefix          = "notes:job:"
	keyIndex           = "notes:jobs:index"  // sorted set: score=created_at, member=job_id
	keyByNote          = "notes:jobs:bynote" // hash: note_id -> job_id, for active dedup
	jobTTL             = 7 * 24 * time.Hour
	enqueueTimeout     = 3 * time.Second
	defaultMaxAttempts = 3
)

// Service manages the Redis-backed processing queue. A nil backend client is
// tolerated: every Enqueue then reports ErrUnavailable so callers degrade to
// direct execution.
type Service struct {
	rc *redisc.Client
}

func NewService(rc *redisc.Client) *Service {
	return &Service{rc: rc}
}

func (s *Service) jobKey(id string) string { return keyPrefix + id }

func (s *Service) unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Enqueue submits a note for background processing. It fails fast with
// ErrUnavailable when the backend cannot be reached instead of hanging.
// An existing non-terminal job for the same note is returned as-is.
func (s *Service) Enqueue(ctx context.Context, noteID string) (*Job, error) {
	if s.rc == nil {
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()

	existingID, err := s.rc.Raw().HGet(ctx, keyByNote, noteID).Result()
	if err != nil && err != redis.Nil {
		return nil, s.unavailable(err)
	}
	if existingID != "" {
		existing, err := s.GetJob(ctx, existingID)
		if err == nil && existing != nil && !terminalState(existing.State) {
			return existing, nil
		}
	}

	now := time.Now()
	job := &Job{
		ID:          uuid.New().String(),
		NoteID:      noteID,
		State:       JobWaiting,
		Attempts:    0,
		MaxAttempts: defaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}

	pipe := s.rc.Raw().TxPipeline()
	pipe.Set(ctx, s.jobKey(job.ID), data, jobTTL)
	pipe.ZAdd(ctx, keyIndex, redis.Z{
		Score:  float64(job.CreatedAt.UnixMilli()),
		Member: job.ID,
	})
	pipe.HSet(ctx, keyByNote, noteID, job.ID)
	pipe.Expire(ctx, keyByNote, jobTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, s.unavailable(err)
	}
	return job, nil
}

// GetJob retrieves a job by ID. Returns (nil, nil) when the ID is unknown.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	if s.rc == nil {
		return nil, ErrUnavailable
	}
	data, err := s.rc.Raw().Get(ctx, s.jobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, s.unavailable(err)
	}
	var job Job
	return &job, json.Unmarshal(data, &job)
}

// GetStatus returns the simplified status for a job, or (nil, nil) if unknown.
func (s *Service) GetStatus(ctx context.Context, id string) (*JobStatus, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil || job == nil {
		return nil, err
	}
	return job.Status(), nil
}

// MarkActive transitions a job to active and bumps its attempt counter.
func (s *Service) MarkActive(ctx context.Context, id string) error {
	return s.update(ctx, id, func(job *Job) {
		job.State = JobActive
		job.Attempts++
	})
}

// SetProgress records pipeline progress (clamped to 0-100).
func (s *Service) SetProgress(ctx context.Context, id string, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return s.update(ctx, id, func(job *Job) {
		job.Progress = progress
	})
}

// Complete marks a job completed with an optional result payload.
func (s *Service) Complete(ctx context.Context, id string, result interface{}) error {
	var raw json.RawMessage
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return err
		}
		raw = b
	}
	return s.update(ctx, id, func(job *Job) {
		job.State = JobCompleted
		job.Progress = 100
		job.Result = raw
	})
}

// Fail marks a job failed with an application-level error message. This is
// distinct from ErrUnavailable, which is a connection-level condition.
func (s *Service) Fail(ctx context.Context, id string, errMsg string) error {
	return s.update(ctx, id, func(job *Job) {
		job.State = JobFailed
		job.Error = errMsg
	})
}

func (s *Service) update(ctx context.Context, id string, mutate func(*Job)) error {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", id)
	}

	mutate(job)
	job.UpdatedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	pipe := s.rc.Raw().TxPipeline()
	pipe.Set(ctx, s.jobKey(id), data, jobTTL)
	if terminalState(job.State) {
		pipe.HDel(ctx, keyByNote, job.NoteID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return s.unavailable(err)
	}
	return nil
}

func terminalState(state JobState) bool {
	return state == JobCompleted || state == JobFailed
}
