package note

import (
	"context"
	"errors"
	neturl "net/url"
	"strings"

	"github.com/amirhjalali/notes-core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrEmptyContent = errors.New("note content must not be empty")

// Service owns note ingestion and retrieval. Enrichment (summaries, tags,
// embeddings) is applied later by the processing pipeline; ingestion only
// captures what the client sent plus cheap derived provenance.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// CreateInput is the ingestion payload.
type CreateInput struct {
	Type       models.NoteType
	Title      string
	Content    string
	SourceURL  string
	Tags       []string
	NotebookID string
}

// Create ingests a note. A link note may carry an empty body; everything
// else needs content.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.NoteModel, error) {
	if in.Type == "" {
		in.Type = models.NoteTypeText
	}
	in.Content = strings.TrimSpace(in.Content)
	in.SourceURL = strings.TrimSpace(in.SourceURL)
	if in.Content == "" && in.SourceURL == "" {
		return nil, ErrEmptyContent
	}

	note := models.NoteModel{
		Type:       in.Type,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		SourceURL:  in.SourceURL,
		Tags:       models.StringArray(in.Tags),
		EaseFactor: 2.5,
	}
	if in.NotebookID != "" {
		var nb models.NotebookModel
		if err := s.db.WithContext(ctx).First(&nb, "id = ?", in.NotebookID).Error; err != nil {
			return nil, err
		}
		note.NotebookID = &nb.ID
	}
	if in.SourceURL != "" {
		note.Domain = domainOf(in.SourceURL)
	}

	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, err
	}

	s.log.Info("note ingested",
		zap.String("note_id", note.ID),
		zap.String("type", string(note.Type)),
	)
	return &note, nil
}

// Get fetches a note by ID with its notebook preloaded.
func (s *Service) Get(ctx context.Context, id string) (*models.NoteModel, error) {
	var note models.NoteModel
	err := s.db.WithContext(ctx).Preload("Notebook").First(&note, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListFilter narrows a note listing.
type ListFilter struct {
	NotebookID string
	Status     models.ProcessStatus
	Type       models.NoteType
	Tag        string
	Domain     string
}

// ListQuery builds the filtered base query for listing; pagination is
// applied by the handler.
func (s *Service) ListQuery(ctx context.Context, f ListFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.NoteModel{}).Order("created_at desc")
	if f.NotebookID != "" {
		q = q.Where("notebook_id = ?", f.NotebookID)
	}
	if f.Status != "" {
		q = q.Where("process_status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Domain != "" {
		q = q.Where("domain = ?", f.Domain)
	}
	if f.Tag != "" {
		// Tags are stored as a JSON array in a text column.
		q = q.Where("tags LIKE ?", "%\""+f.Tag+"\"%")
	}
	return q
}

// Delete soft-deletes a note and removes its embedding.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.NoteModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Unscoped().Delete(&models.NoteEmbeddingModel{}, "note_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.NoteTopicModel{}, "note_id = ?", id).Error
	})
}

// CreateNotebook creates a named notebook.
func (s *Service) CreateNotebook(ctx context.Context, name, description string) (*models.NotebookModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("notebook name must not be empty")
	}
	nb := models.NotebookModel{Name: name, Description: description}
	if err := s.db.WithContext(ctx).Create(&nb).Error; err != nil {
		return nil, err
	}
	return &nb, nil
}

func domainOf(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// ListNotebooks returns all notebooks, newest first.
func (s *Service) ListNotebooks(ctx context.Context) ([]models.NotebookModel, error) {
	var notebooks []models.NotebookModel
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&notebooks).Error
	return notebooks, err
}
