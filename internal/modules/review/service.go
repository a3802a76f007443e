package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhjalali/notes-core/internal/models"
	"github.com/amirhjalali/notes-core/internal/modules/processing/ai"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultQueueLimit = 20

var (
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
	ErrInvalidSkip    = errors.New("skip days must be positive")
)

// Service schedules note reviews with SM-2 and generates recall quizzes.
type Service struct {
	db  *gorm.DB
	ai  *ai.Service
	log *zap.Logger
}

func NewService(db *gorm.DB, aiSvc *ai.Service, log *zap.Logger) *Service {
	return &Service{db: db, ai: aiSvc, log: log}
}

// RecordReview applies a review result to a note's schedule. The next
// review time is derived from the new interval, anchored at now.
func (s *Service) RecordReview(ctx context.Context, noteID string, quality int) (*models.NoteModel, error) {
	if quality < 0 || quality > 5 {
		return nil, ErrInvalidQuality
	}

	var note models.NoteModel
	if err := s.db.WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		return nil, err
	}

	next := NextState(SM2State{
		EaseFactor:   note.EaseFactor,
		IntervalDays: note.IntervalDays,
		Repetitions:  note.Repetitions,
	}, quality)

	now := time.Now()
	nextReview := now.AddDate(0, 0, next.IntervalDays)
	note.EaseFactor = next.EaseFactor
	note.IntervalDays = next.IntervalDays
	note.Repetitions = next.Repetitions
	note.LastReviewedAt = &now
	note.NextReviewAt = &nextReview

	if err := s.db.WithContext(ctx).Model(&models.NoteModel{}).
		Where("id = ?", note.ID).
		Updates(map[string]interface{}{
			"ease_factor":      note.EaseFactor,
			"interval_days":    note.IntervalDays,
			"repetitions":      note.Repetitions,
			"last_reviewed_at": note.LastReviewedAt,
			"next_review_at":   note.NextReviewAt,
		}).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// SkipReview pushes a note's next review out by the given number of days
// without touching the SM-2 state.
func (s *Service) SkipReview(ctx context.Context, noteID string, days int) (*models.NoteModel, error) {
	if days <= 0 {
		return nil, ErrInvalidSkip
	}

	var note models.NoteModel
	if err := s.db.WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		return nil, err
	}

	nextReview := time.Now().AddDate(0, 0, days)
	note.NextReviewAt = &nextReview
	if err := s.db.WithContext(ctx).Model(&models.NoteModel{}).
		Where("id = ?", note.ID).
		Update("next_review_at", nextReview).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// ReviewQueue returns notes due for review, oldest due date first. Notes
// that have never been scheduled are not part of the queue.
func (s *Service) ReviewQueue(ctx context.Context, limit int) ([]models.NoteModel, error) {
	if limit <= 0 {
		limit = defaultQueueLimit
	}

	var notes []models.NoteModel
	err := s.db.WithContext(ctx).
		Where("next_review_at IS NOT NULL AND next_review_at <= ?", time.Now()).
		Order("next_review_at asc").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

// GenerateQuizQuestion produces a recall question for a note from its
// distilled content. Unprocessed notes fall back to raw content.
func (s *Service) GenerateQuizQuestion(ctx context.Context, noteID string) (*ai.Quiz, error) {
	var note models.NoteModel
	if err := s.db.WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		return nil, err
	}

	summary := note.Summary
	if summary == "" {
		summary = note.Excerpt
	}
	if summary == "" {
		summary = note.Content
	}
	if summary == "" {
		return nil, fmt.Errorf("note %s has no content to quiz on", note.ID)
	}

	return s.ai.GenerateQuiz(ctx, note.ID, note.Title, summary, note.KeyInsights)
}
