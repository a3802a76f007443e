package note

import (
	"context"
	"testing"

	"github.com/amirhjalali/notes-core/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.NoteModel{},
		&models.NotebookModel{},
		&models.NoteEmbeddingModel{},
		&models.NoteTopicModel{},
	))
	return NewService(db, zap.NewNop()), db
}

func TestCreateDefaultsToTextType(t *testing.T) {
	svc, _ := newTestService(t)

	note, err := svc.Create(context.Background(), CreateInput{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, models.NoteTypeText, note.Type)
	assert.NotEmpty(t, note.ID)
	assert.InDelta(t, 2.5, note.EaseFactor, 1e-9)
	assert.Equal(t, models.ProcessStatus(""), note.ProcessStatus)
}

func TestCreateLinkDerivesDomain(t *testing.T) {
	svc, _ := newTestService(t)

	note, err := svc.Create(context.Background(), CreateInput{
		Type:      models.NoteTypeLink,
		SourceURL: "https://www.example.com/article",
	})
	require.NoError(t, err)
	assert.Equal(t, "example.com", note.Domain)
}

func TestCreateRejectsEmptyNote(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Content: "   "})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestCreateWithUnknownNotebook(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		Content:    "x",
		NotebookID: "missing",
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateInNotebook(t *testing.T) {
	svc, _ := newTestService(t)

	nb, err := svc.CreateNotebook(context.Background(), "work", "")
	require.NoError(t, err)

	note, err := svc.Create(context.Background(), CreateInput{
		Content:    "x",
		NotebookID: nb.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, note.NotebookID)
	assert.Equal(t, nb.ID, *note.NotebookID)
}

func TestGetPreloadsNotebook(t *testing.T) {
	svc, _ := newTestService(t)

	nb, err := svc.CreateNotebook(context.Background(), "work", "")
	require.NoError(t, err)
	created, err := svc.Create(context.Background(), CreateInput{Content: "x", NotebookID: nb.ID})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Notebook)
	assert.Equal(t, "work", got.Notebook.Name)
}

func TestListQueryFilters(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Content: "a", Tags: []string{"go"}})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{Content: "b", Tags: []string{"rust"}})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{
		Type:      models.NoteTypeLink,
		SourceURL: "https://example.com/x",
	})
	require.NoError(t, err)

	var byTag []models.NoteModel
	require.NoError(t, svc.ListQuery(context.Background(), ListFilter{Tag: "go"}).Find(&byTag).Error)
	require.Len(t, byTag, 1)
	assert.Equal(t, "a", byTag[0].Content)

	var byType []models.NoteModel
	require.NoError(t, svc.ListQuery(context.Background(), ListFilter{Type: models.NoteTypeLink}).Find(&byType).Error)
	assert.Len(t, byType, 1)

	var byDomain []models.NoteModel
	require.NoError(t, svc.ListQuery(context.Background(), ListFilter{Domain: "example.com"}).Find(&byDomain).Error)
	assert.Len(t, byDomain, 1)

	var all []models.NoteModel
	require.NoError(t, svc.ListQuery(context.Background(), ListFilter{}).Find(&all).Error)
	assert.Len(t, all, 3)
}

func TestDeleteRemovesDerivedRows(t *testing.T) {
	svc, db := newTestService(t)

	note, err := svc.Create(context.Background(), CreateInput{Content: "x"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.NoteEmbeddingModel{
		NoteID: note.ID,
		Vector: models.Float32Array{1, 2},
		Dim:    2,
	}).Error)

	require.NoError(t, svc.Delete(context.Background(), note.ID))

	var count int64
	require.NoError(t, db.Model(&models.NoteModel{}).Where("id = ?", note.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.NoteEmbeddingModel{}).Where("note_id = ?", note.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteUnknownNote(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
