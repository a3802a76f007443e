package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/amirhjalali/notes-core/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeClient struct {
	completeFn func(ctx context.Context, systemPrompt, prompt string, opts CompleteOptions) (string, error)
	embedFn    func(ctx context.Context, text string) ([]float32, error)
}

func (f *fakeClient) Complete(ctx context.Context, systemPrompt, prompt string, opts CompleteOptions) (string, error) {
	if f.completeFn == nil {
		return "", errors.New("complete not stubbed")
	}
	return f.completeFn(ctx, systemPrompt, prompt, opts)
}

func (f *fakeClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedFn == nil {
		return nil, errors.New("embed not stubbed")
	}
	return f.embedFn(ctx, text)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.FailedGenerationModel{},
		&models.GeneratedDraftModel{},
	))
	return db
}

func newTestService(t *testing.T, client Client) *Service {
	t.Helper()
	return NewService(newTestDB(t), client, "", zap.NewNop())
}

func seedFailure(t *testing.T, svc *Service) *models.FailedGenerationModel {
	t.Helper()
	record, err := svc.RecordFailure(context.Background(), "note:annotate", models.GenerationRequest{
		Prompt:       "summarize this",
		SystemPrompt: "you summarize",
		MaxTokens:    700,
		RefID:        "note-1",
	}, errors.New("provider timeout"))
	require.NoError(t, err)
	return record
}

func TestRecordFailureCountsOriginalCall(t *testing.T) {
	svc := newTestService(t, &fakeClient{})
	record := seedFailure(t, svc)

	assert.Equal(t, 1, record.Attempts)
	assert.Equal(t, models.GenerationPending, record.Status)
	assert.Equal(t, defaultMaxGenerationAttempts, record.MaxAttempts)
	assert.Equal(t, "provider timeout", record.Error)
	require.NotNil(t, record.NextRetryAt)
	assert.Equal(t, models.GenerationRequestSchemaVersion, record.RequestData.SchemaVersion)
}

func TestRetrySuccessResolvesWithDraft(t *testing.T) {
	client := &fakeClient{
		completeFn: func(_ context.Context, systemPrompt, prompt string, opts CompleteOptions) (string, error) {
			assert.Equal(t, "you summarize", systemPrompt)
			assert.Equal(t, "summarize this", prompt)
			assert.Equal(t, 700, opts.MaxTokens)
			return "a fine summary", nil
		},
	}
	svc := newTestService(t, client)
	record := seedFailure(t, svc)

	result, err := svc.Retry(context.Background(), record.ID)
	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, models.GenerationResolved, result.Status)
	require.NotNil(t, result.Draft)
	assert.Equal(t, "a fine summary", result.Draft.Text)
	assert.Equal(t, "note-1", result.Draft.RefID)

	stored, err := svc.GetFailedGeneration(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationResolved, stored.Status)
	assert.NotNil(t, stored.ResolvedAt)
	require.NotNil(t, stored.ResolvedDraftID)
	assert.Equal(t, result.Draft.ID, *stored.ResolvedDraftID)
}

func TestRetryFailureIncrementsAttempts(t *testing.T) {
	client := &fakeClient{
		completeFn: func(context.Context, string, string, CompleteOptions) (string, error) {
			return "", errors.New("still down")
		},
	}
	svc := newTestService(t, client)
	record := seedFailure(t, svc)

	result, err := svc.Retry(context.Background(), record.ID)
	require.NoError(t, err)
	assert.False(t, result.Resolved)
	assert.Equal(t, models.GenerationRetrying, result.Status)
	assert.Equal(t, record.MaxAttempts-2, result.AttemptsRemaining)

	stored, err := svc.GetFailedGeneration(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Attempts)
	assert.Equal(t, models.GenerationRetrying, stored.Status)
	assert.Equal(t, "still down", stored.Error)
	require.NotNil(t, stored.NextRetryAt)
}

func TestRetryAttemptsNeverExceedMax(t *testing.T) {
	client := &fakeClient{
		completeFn: func(context.Context, string, string, CompleteOptions) (string, error) {
			return "", errors.New("still down")
		},
	}
	svc := newTestService(t, client)
	record := seedFailure(t, svc)

	require.NoError(t, svc.db.Model(record).Update("attempts", record.MaxAttempts-1).Error)

	result, err := svc.Retry(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.AttemptsRemaining)

	stored, err := svc.GetFailedGeneration(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.MaxAttempts, stored.Attempts)
}

func TestRetryExhaustedAbandonsRecord(t *testing.T) {
	svc := newTestService(t, &fakeClient{})
	record := seedFailure(t, svc)
	require.NoError(t, svc.db.Model(record).Update("attempts", record.MaxAttempts).Error)

	_, err := svc.Retry(context.Background(), record.ID)
	assert.ErrorIs(t, err, ErrRetryExhausted)

	stored, err := svc.GetFailedGeneration(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationAbandoned, stored.Status)

	// Once abandoned, further retries are rejected with the terminal error.
	_, err = svc.Retry(context.Background(), record.ID)
	assert.ErrorIs(t, err, ErrGenerationAbandoned)
}

func TestRetryRejectsTerminalRecords(t *testing.T) {
	svc := newTestService(t, &fakeClient{})

	resolved := seedFailure(t, svc)
	require.NoError(t, svc.db.Model(resolved).Update("status", models.GenerationResolved).Error)
	_, err := svc.Retry(context.Background(), resolved.ID)
	assert.ErrorIs(t, err, ErrGenerationResolved)

	abandoned := seedFailure(t, svc)
	require.NoError(t, svc.db.Model(abandoned).Update("status", models.GenerationAbandoned).Error)
	_, err = svc.Retry(context.Background(), abandoned.ID)
	assert.ErrorIs(t, err, ErrGenerationAbandoned)
}

func TestRetryUnknownRecord(t *testing.T) {
	svc := newTestService(t, &fakeClient{})
	_, err := svc.Retry(context.Background(), "missing-id")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAnnotateRecordsFailedGeneration(t *testing.T) {
	client := &fakeClient{
		completeFn: func(context.Context, string, string, CompleteOptions) (string, error) {
			return "", errors.New("boom")
		},
	}
	svc := newTestService(t, client)

	_, err := svc.Annotate(context.Background(), "note-9", "Title", "some text")
	require.Error(t, err)

	var records []models.FailedGenerationModel
	require.NoError(t, svc.db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "note:annotate", records[0].GenerationType)
	assert.Equal(t, "note-9", records[0].RequestData.RefID)
	assert.NotEmpty(t, records[0].RequestData.Prompt)
}
