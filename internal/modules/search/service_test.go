package search

import (
	"context"
	"strings"
	"testing"

	"github.com/amirhjalali/notes-core/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeEmbedder struct {
	vector []float32
}

func (f fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vector, nil
}

func newTestService(t *testing.T, queryVec []float32) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.NoteModel{}, &models.NoteEmbeddingModel{}))
	return NewService(db, fakeEmbedder{vector: queryVec}, zap.NewNop()), db
}

func seedEmbeddedNote(t *testing.T, db *gorm.DB, title string, vec []float32, notebookID *string) *models.NoteModel {
	t.Helper()
	note := models.NoteModel{Title: title, Content: title, NotebookID: notebookID}
	require.NoError(t, db.Create(&note).Error)
	require.NoError(t, db.Create(&models.NoteEmbeddingModel{
		NoteID:        note.ID,
		Vector:        models.Float32Array(vec),
		Dim:           len(vec),
		SchemaVersion: models.EmbeddingSchemaVersion,
	}).Error)
	return &note
}

func TestSearchRanksBySimilarity(t *testing.T) {
	svc, db := newTestService(t, []float32{1, 0, 0})

	best := seedEmbeddedNote(t, db, "best", []float32{1, 0, 0}, nil)
	near := seedEmbeddedNote(t, db, "near", []float32{0.9, 0.1, 0}, nil)
	seedEmbeddedNote(t, db, "orthogonal", []float32{0, 1, 0}, nil)

	matches, err := svc.Search(context.Background(), Query{Text: "query", Threshold: 0.5})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, best.ID, matches[0].Note.ID)
	assert.Equal(t, near.ID, matches[1].Note.ID)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
}

func TestSearchEmptyIndexReturnsEmpty(t *testing.T) {
	svc, _ := newTestService(t, []float32{1, 0})

	matches, err := svc.Search(context.Background(), Query{Text: "anything"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchThresholdFiltersWeakMatches(t *testing.T) {
	svc, db := newTestService(t, []float32{1, 0})
	seedEmbeddedNote(t, db, "weak", []float32{0.2, 0.98}, nil)

	matches, err := svc.Search(context.Background(), Query{Text: "q", Threshold: 0.9})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchSkipsMismatchedDimensions(t *testing.T) {
	svc, db := newTestService(t, []float32{1, 0, 0})
	seedEmbeddedNote(t, db, "old-model", []float32{1, 0}, nil)
	hit := seedEmbeddedNote(t, db, "current", []float32{1, 0, 0}, nil)

	matches, err := svc.Search(context.Background(), Query{Text: "q", Threshold: 0.5})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, hit.ID, matches[0].Note.ID)
}

func TestSearchNotebookFilter(t *testing.T) {
	svc, db := newTestService(t, []float32{1, 0})

	nb := models.NotebookModel{Name: "work"}
	require.NoError(t, db.AutoMigrate(&models.NotebookModel{}))
	require.NoError(t, db.Create(&nb).Error)

	inBook := seedEmbeddedNote(t, db, "in", []float32{1, 0}, &nb.ID)
	seedEmbeddedNote(t, db, "out", []float32{1, 0}, nil)

	matches, err := svc.Search(context.Background(), Query{Text: "q", NotebookID: nb.ID})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, inBook.ID, matches[0].Note.ID)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc, _ := newTestService(t, []float32{1})
	_, err := svc.Search(context.Background(), Query{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchLimit(t *testing.T) {
	svc, db := newTestService(t, []float32{1, 0})
	for i := 0; i < 5; i++ {
		seedEmbeddedNote(t, db, "n", []float32{1, 0}, nil)
	}

	matches, err := svc.Search(context.Background(), Query{Text: "q", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestGetRelevantContextRespectsBudget(t *testing.T) {
	svc, db := newTestService(t, []float32{1, 0})

	long := seedEmbeddedNote(t, db, "long", []float32{1, 0}, nil)
	require.NoError(t, db.Model(long).Update("summary", strings.Repeat("a", 50)).Error)
	short := seedEmbeddedNote(t, db, "short", []float32{0.95, 0.05}, nil)
	require.NoError(t, db.Model(short).Update("summary", "tiny").Error)

	result, err := svc.GetRelevantContext(context.Background(), Query{Text: "q"}, 60)
	require.NoError(t, err)

	// The top match fits; the second would exceed the budget and is skipped.
	require.Len(t, result.Sources, 1)
	assert.Equal(t, long.ID, result.Sources[0].NoteID)
	assert.LessOrEqual(t, len([]rune(result.Context)), 60)
}

func TestGetRelevantContextIncludesSources(t *testing.T) {
	svc, db := newTestService(t, []float32{1, 0})
	a := seedEmbeddedNote(t, db, "alpha", []float32{1, 0}, nil)
	b := seedEmbeddedNote(t, db, "beta", []float32{0.9, 0.1}, nil)

	result, err := svc.GetRelevantContext(context.Background(), Query{Text: "q"}, 4000)
	require.NoError(t, err)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, a.ID, result.Sources[0].NoteID)
	assert.Equal(t, b.ID, result.Sources[1].NoteID)
	assert.Contains(t, result.Context, "alpha")
	assert.Contains(t, result.Context, "beta")
}
