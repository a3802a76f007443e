package review

import (
	"context"
	"testing"
	"time"

	"github.com/amirhjalali/notes-core/internal/models"
	"github.com/amirhjalali/notes-core/internal/modules/processing/ai"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.NoteModel{},
		&models.FailedGenerationModel{},
		&models.GeneratedDraftModel{},
	))
	return db
}

func newTestService(t *testing.T, client ai.Client) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	aiSvc := ai.NewService(db, client, "", zap.NewNop())
	return NewService(db, aiSvc, zap.NewNop()), db
}

func seedNote(t *testing.T, db *gorm.DB, note *models.NoteModel) *models.NoteModel {
	t.Helper()
	if note.EaseFactor == 0 {
		note.EaseFactor = 2.5
	}
	require.NoError(t, db.Create(note).Error)
	return note
}

func TestRecordReviewSchedulesNextReview(t *testing.T) {
	svc, db := newTestService(t, nil)
	note := seedNote(t, db, &models.NoteModel{Content: "x"})

	updated, err := svc.RecordReview(context.Background(), note.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Repetitions)
	assert.Equal(t, 1, updated.IntervalDays)
	require.NotNil(t, updated.NextReviewAt)
	require.NotNil(t, updated.LastReviewedAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 1), *updated.NextReviewAt, time.Minute)

	var stored models.NoteModel
	require.NoError(t, db.First(&stored, "id = ?", note.ID).Error)
	assert.Equal(t, 1, stored.Repetitions)
	assert.InDelta(t, 2.6, stored.EaseFactor, 1e-9)
}

func TestRecordReviewRejectsInvalidQuality(t *testing.T) {
	svc, db := newTestService(t, nil)
	note := seedNote(t, db, &models.NoteModel{Content: "x"})

	for _, q := range []int{-1, 6, 100} {
		_, err := svc.RecordReview(context.Background(), note.ID, q)
		assert.ErrorIs(t, err, ErrInvalidQuality, "q=%d", q)
	}
}

func TestSkipReviewLeavesSM2StateAlone(t *testing.T) {
	svc, db := newTestService(t, nil)
	note := seedNote(t, db, &models.NoteModel{
		Content:      "x",
		EaseFactor:   2.1,
		IntervalDays: 6,
		Repetitions:  2,
	})

	updated, err := svc.SkipReview(context.Background(), note.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, updated.NextReviewAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 3), *updated.NextReviewAt, time.Minute)

	var stored models.NoteModel
	require.NoError(t, db.First(&stored, "id = ?", note.ID).Error)
	assert.InDelta(t, 2.1, stored.EaseFactor, 1e-9)
	assert.Equal(t, 6, stored.IntervalDays)
	assert.Equal(t, 2, stored.Repetitions)
}

func TestSkipReviewRejectsNonPositiveDays(t *testing.T) {
	svc, db := newTestService(t, nil)
	note := seedNote(t, db, &models.NoteModel{Content: "x"})

	_, err := svc.SkipReview(context.Background(), note.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidSkip)
	_, err = svc.SkipReview(context.Background(), note.ID, -2)
	assert.ErrorIs(t, err, ErrInvalidSkip)
}

func TestReviewQueueOrdersByDueDate(t *testing.T) {
	svc, db := newTestService(t, nil)

	overdue := time.Now().Add(-48 * time.Hour)
	dueNow := time.Now().Add(-time.Minute)
	future := time.Now().Add(72 * time.Hour)

	older := seedNote(t, db, &models.NoteModel{Content: "older", NextReviewAt: &overdue})
	newer := seedNote(t, db, &models.NoteModel{Content: "newer", NextReviewAt: &dueNow})
	seedNote(t, db, &models.NoteModel{Content: "future", NextReviewAt: &future})
	seedNote(t, db, &models.NoteModel{Content: "unscheduled"})

	queue, err := svc.ReviewQueue(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, older.ID, queue[0].ID)
	assert.Equal(t, newer.ID, queue[1].ID)
}

func TestReviewQueueHonorsLimit(t *testing.T) {
	svc, db := newTestService(t, nil)

	for i := 0; i < 5; i++ {
		due := time.Now().Add(-time.Duration(i+1) * time.Hour)
		seedNote(t, db, &models.NoteModel{Content: "n", NextReviewAt: &due})
	}

	queue, err := svc.ReviewQueue(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, queue, 3)
}

type quizClient struct{}

func (quizClient) Complete(context.Context, string, string, ai.CompleteOptions) (string, error) {
	return `{"question":"What was the key point?","answer":"The key point."}`, nil
}

func (quizClient) Embed(context.Context, string) ([]float32, error) { return nil, nil }

func TestGenerateQuizQuestion(t *testing.T) {
	svc, db := newTestService(t, quizClient{})
	note := seedNote(t, db, &models.NoteModel{
		Content: "raw",
		Summary: "A summary.",
		Title:   "T",
	})

	quiz, err := svc.GenerateQuizQuestion(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, "What was the key point?", quiz.Question)
	assert.Equal(t, "The key point.", quiz.Answer)
}

func TestGenerateQuizQuestionNeedsContent(t *testing.T) {
	svc, db := newTestService(t, quizClient{})
	note := seedNote(t, db, &models.NoteModel{})

	_, err := svc.GenerateQuizQuestion(context.Background(), note.ID)
	assert.Error(t, err)
}
