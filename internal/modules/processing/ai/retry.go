package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhjalali/notes-core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrGenerationResolved is returned when retrying an already resolved record.
	ErrGenerationResolved = errors.New("generation already resolved")
	// ErrGenerationAbandoned is returned when retrying an abandoned record.
	ErrGenerationAbandoned = errors.New("generation abandoned")
	// ErrRetryExhausted is returned when attempts have reached max_attempts.
	ErrRetryExhausted = errors.New("max retry attempts reached")
)

const defaultMaxGenerationAttempts = 5

// RetryResult reports the outcome of a retry attempt.
type RetryResult struct {
	Status            models.GenerationStatus     `json:"status"`
	Resolved          bool                        `json:"resolved"`
	Draft             *models.GeneratedDraftModel `json:"draft,omitempty"`
	Error             *APIErrorDetail             `json:"error,omitempty"`
	AttemptsRemaining int                         `json:"attempts_remaining"`
}

// RecordFailure persists a FailedGeneration for a completion call that threw,
// so it can be replayed later. The originating call counts as attempt one.
func (s *Service) RecordFailure(ctx context.Context, generationType string, req models.GenerationRequest, callErr error) (*models.FailedGenerationModel, error) {
	req.SchemaVersion = models.GenerationRequestSchemaVersion
	detail := ParseAPIError(callErr, "")

	next := CalculateNextRetryTime(1)
	record := models.FailedGenerationModel{
		GenerationType: generationType,
		RequestData:    req,
		Status:         models.GenerationPending,
		Attempts:       1,
		MaxAttempts:    defaultMaxGenerationAttempts,
		Error:          detail.Message,
		ErrorCode:      detail.Code,
		NextRetryAt:    &next,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}

	s.log.Warn("generation failed, recorded for retry",
		zap.String("id", record.ID),
		zap.String("type", generationType),
		zap.String("error", detail.Message),
	)
	return &record, nil
}

// GetFailedGeneration loads a failed-generation record by ID.
func (s *Service) GetFailedGeneration(ctx context.Context, id string) (*models.FailedGenerationModel, error) {
	var record models.FailedGenerationModel
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Retry replays the recorded generation. Terminal records and exhausted
// attempt budgets are rejected; exhaustion transitions the record to
// abandoned so no component retries it automatically afterwards.
func (s *Service) Retry(ctx context.Context, id string) (*RetryResult, error) {
	record, err := s.GetFailedGeneration(ctx, id)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case models.GenerationResolved:
		return nil, ErrGenerationResolved
	case models.GenerationAbandoned:
		return nil, ErrGenerationAbandoned
	}

	if record.Attempts >= record.MaxAttempts {
		record.Status = models.GenerationAbandoned
		if err := s.db.WithContext(ctx).Model(record).Update("status", models.GenerationAbandoned).Error; err != nil {
			return nil, err
		}
		return nil, ErrRetryExhausted
	}

	if record.RequestData.SchemaVersion != models.GenerationRequestSchemaVersion {
		return nil, fmt.Errorf("unsupported request schema version %d", record.RequestData.SchemaVersion)
	}

	record.Status = models.GenerationRetrying
	if err := s.db.WithContext(ctx).Model(record).Update("status", models.GenerationRetrying).Error; err != nil {
		return nil, err
	}

	text, genErr := s.client.Complete(ctx, record.RequestData.SystemPrompt, record.RequestData.Prompt, CompleteOptions{
		MaxTokens:   record.RequestData.MaxTokens,
		Temperature: record.RequestData.Temperature,
	})
	if genErr != nil {
		return s.recordRetryFailure(ctx, record, genErr)
	}

	draft := models.GeneratedDraftModel{
		GenerationType: record.GenerationType,
		Text:           text,
		RefID:          record.RequestData.RefID,
	}
	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&draft).Error; err != nil {
			return err
		}
		return tx.Model(record).Updates(map[string]interface{}{
			"status":            models.GenerationResolved,
			"resolved_at":       now,
			"resolved_draft_id": draft.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("generation retry resolved",
		zap.String("id", record.ID),
		zap.String("draft_id", draft.ID),
	)
	return &RetryResult{
		Status:            models.GenerationResolved,
		Resolved:          true,
		Draft:             &draft,
		AttemptsRemaining: record.MaxAttempts - record.Attempts,
	}, nil
}

func (s *Service) recordRetryFailure(ctx context.Context, record *models.FailedGenerationModel, genErr error) (*RetryResult, error) {
	detail := ParseAPIError(genErr, "")

	attempts := record.Attempts + 1
	if attempts > record.MaxAttempts {
		attempts = record.MaxAttempts
	}
	next := CalculateNextRetryTime(attempts)

	updates := map[string]interface{}{
		"status":        models.GenerationRetrying,
		"attempts":      attempts,
		"error":         detail.Message,
		"error_code":    detail.Code,
		"next_retry_at": next,
	}
	if details, err := jsonMarshal(detail); err == nil {
		updates["error_details"] = string(details)
	}
	if err := s.db.WithContext(ctx).Model(record).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.log.Warn("generation retry failed",
		zap.String("id", record.ID),
		zap.Int("attempts", attempts),
		zap.Int("max_attempts", record.MaxAttempts),
		zap.String("error", detail.Message),
	)
	return &RetryResult{
		Status:            models.GenerationRetrying,
		Resolved:          false,
		Error:             &detail,
		AttemptsRemaining: record.MaxAttempts - attempts,
	}, nil
}
