package engine

import (
	"context"
	"errors"

	"github.com/amirhjalali/notes-core/internal/models"
)

var (
	// ErrNoteNotFound is returned when the referenced note does not exist.
	ErrNoteNotFound = errors.New("note not found")
	// ErrAlreadyProcessing is returned when a second request tries to claim
	// a note that is mid-pipeline. Callers should poll rather than retry.
	ErrAlreadyProcessing = errors.New("note is already being processed")
)

// Claim atomically transitions a note into PROCESSING, guaranteeing
// at-most-one in-flight processing attempt per note. A read-then-write
// check would be racy under concurrent requests; the single conditional
// update makes claiming atomic without a separate lock table. The caller
// owns the processing slot until it writes a terminal status, or PENDING
// when handing off to the queue.
func (s *Service) Claim(ctx context.Context, noteID string) error {
	res := s.db.WithContext(ctx).Model(&models.NoteModel{}).
		Where("id = ? AND (process_status IS NULL OR process_status <> ?)", noteID, models.ProcessProcessing).
		Updates(map[string]interface{}{
			"process_status":   models.ProcessProcessing,
			"processing_error": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// Zero rows matched: tell a missing note apart from a claimed one.
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.NoteModel{}).
		Where("id = ?", noteID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNoteNotFound
	}
	return ErrAlreadyProcessing
}
