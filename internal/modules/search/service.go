package search

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/amirhjalali/notes-core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultLimit     = 10
	maxLimit         = 50
	defaultThreshold = 0.25
	defaultMaxChars  = 8000
)

var ErrEmptyQuery = errors.New("query must not be empty")

// Embedder produces the query vector for semantic search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service answers semantic-similarity queries over the stored note
// embeddings. Vectors are scanned in memory; the corpus is a personal
// note collection, not a web index.
type Service struct {
	db       *gorm.DB
	embedder Embedder
	log      *zap.Logger
}

func NewService(db *gorm.DB, embedder Embedder, log *zap.Logger) *Service {
	return &Service{db: db, embedder: embedder, log: log}
}

// Query is a semantic search request.
type Query struct {
	Text       string
	Limit      int
	Threshold  float64 // minimum similarity; <=0 uses the default
	NotebookID string  // restrict to one notebook when set
}

// Match is a scored search hit. Snippet is the best short text available
// for result lists.
type Match struct {
	Note       models.NoteModel `json:"note"`
	Similarity float64          `json:"similarity"`
	Snippet    string           `json:"snippet"`
}

// Search embeds the query and ranks notes by cosine similarity. An empty
// index or a query with no hits above the threshold returns an empty
// slice, never an error.
func (s *Service) Search(ctx context.Context, q Query) ([]Match, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrEmptyQuery
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	threshold := q.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	queryVec, err := s.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, err
	}

	var embeddings []models.NoteEmbeddingModel
	if err := s.db.WithContext(ctx).Find(&embeddings).Error; err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return []Match{}, nil
	}

	type scored struct {
		noteID string
		score  float64
	}
	candidates := make([]scored, 0, len(embeddings))
	for _, e := range embeddings {
		score := cosineSimilarity(queryVec, e.Vector)
		if score < threshold {
			continue
		}
		candidates = append(candidates, scored{noteID: e.NoteID, score: score})
	}
	if len(candidates) == 0 {
		return []Match{}, nil
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	ids := make([]string, len(candidates))
	scoreByID := make(map[string]float64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.noteID
		scoreByID[c.noteID] = c.score
	}

	noteQuery := s.db.WithContext(ctx).Where("id IN ?", ids)
	if q.NotebookID != "" {
		noteQuery = noteQuery.Where("notebook_id = ?", q.NotebookID)
	}
	var notes []models.NoteModel
	if err := noteQuery.Find(&notes).Error; err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(notes))
	for _, n := range notes {
		matches = append(matches, Match{
			Note:       n,
			Similarity: scoreByID[n.ID],
			Snippet:    snippetOf(&n),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ContextResult is a search-backed context bundle for downstream prompts.
type ContextResult struct {
	Context string          `json:"context"`
	Sources []ContextSource `json:"sources"`
}

type ContextSource struct {
	NoteID     string  `json:"note_id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// GetRelevantContext assembles the most similar notes into a single text
// block bounded by maxChars, greedily taking whole notes in similarity
// order. Each included note is listed in Sources.
func (s *Service) GetRelevantContext(ctx context.Context, q Query, maxChars int) (*ContextResult, error) {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}

	matches, err := s.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	result := &ContextResult{Sources: []ContextSource{}}
	var b strings.Builder
	for _, m := range matches {
		block := contextBlock(&m.Note)
		if b.Len() > 0 && utf8.RuneCountInString(b.String())+utf8.RuneCountInString(block) > maxChars {
			continue
		}
		if utf8.RuneCountInString(block) > maxChars {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString(block)
		result.Sources = append(result.Sources, ContextSource{
			NoteID:     m.Note.ID,
			Title:      m.Note.Title,
			Similarity: m.Similarity,
		})
	}
	result.Context = b.String()
	return result, nil
}

func snippetOf(note *models.NoteModel) string {
	if note.Excerpt != "" {
		return note.Excerpt
	}
	if note.Summary != "" {
		return note.Summary
	}
	return note.Content
}

// contextBlock prefers the distilled summary over the full body.
func contextBlock(note *models.NoteModel) string {
	var b strings.Builder
	if note.Title != "" {
		b.WriteString("# " + note.Title + "\n")
	}
	body := note.Summary
	if body == "" {
		body = note.Excerpt
	}
	if body == "" {
		body = note.Content
	}
	b.WriteString(body)
	if len(note.KeyInsights) > 0 {
		b.WriteString("\n- " + strings.Join(note.KeyInsights, "\n- "))
	}
	return b.String()
}
