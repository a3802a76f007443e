package engine

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/amirhjalali/notes-core/internal/models"
	"github.com/amirhjalali/notes-core/internal/modules/processing/ai"
	"github.com/amirhjalali/notes-core/internal/modules/processing/extract"
	"github.com/amirhjalali/notes-core/internal/modules/tagging"
	"github.com/amirhjalali/notes-core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const excerptMaxRunes = 280

// Service runs the note enrichment pipeline: content extraction,
// summarization, tagging and embedding. Work arrives either through the
// Redis-backed queue or, when the queue is unavailable, through direct
// synchronous execution.
type Service struct {
	db        *gorm.DB
	queue     *taskqueue.Service
	ai        *ai.Service
	extractor *extract.Extractor
	tagging   *tagging.Service
	log       *zap.Logger
}

func NewService(db *gorm.DB, queue *taskqueue.Service, aiSvc *ai.Service, extractor *extract.Extractor, taggingSvc *tagging.Service, log *zap.Logger) *Service {
	return &Service{
		db:        db,
		queue:     queue,
		ai:        aiSvc,
		extractor: extractor,
		tagging:   taggingSvc,
		log:       log,
	}
}

// Process executes the full pipeline for a note the caller has already
// claimed. It always leaves the note in a terminal status: COMPLETED with
// enriched fields, or FAILED with the error message recorded on the note.
// Pipeline failures are written to the note, not returned; only infra
// errors (DB unreachable) produce a non-nil error.
func (s *Service) Process(ctx context.Context, noteID string) (*models.NoteModel, error) {
	var note models.NoteModel
	if err := s.db.WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	extracted, extractErr := s.extractor.Extract(ctx, &note)
	if extractErr != nil {
		// Degraded, not fatal: the raw tier still feeds the rest of the
		// pipeline and the tier field records what happened.
		s.log.Warn("processing with raw-tier content",
			zap.String("note_id", note.ID),
			zap.Error(extractErr),
		)
	}

	note.FullContent = extracted.Text
	note.Excerpt = makeExcerpt(extracted.Text)
	note.ExtractionTier = extracted.Tier
	note.Domain = extracted.Domain
	note.Favicon = extracted.Favicon
	if note.Title == "" {
		note.Title = extracted.Title
	}

	annotation, err := s.ai.Annotate(ctx, note.ID, note.Title, extracted.Text)
	if err != nil {
		return s.markFailed(ctx, &note, err)
	}

	note.Summary = annotation.Summary
	note.KeyInsights = models.StringArray(annotation.KeyInsights)
	note.Topics = models.StringArray(annotation.Topics)
	merged, added := tagging.Union(note.Tags, annotation.Tags)
	note.Tags = models.StringArray(merged)

	if err := s.syncTopics(ctx, note.ID, annotation.Topics); err != nil {
		s.log.Warn("topic sync failed", zap.String("note_id", note.ID), zap.Error(err))
	}
	s.tagging.RecordAutoApplied(ctx, added, annotation.Topics)

	if err := s.storeEmbedding(ctx, &note); err != nil {
		return s.markFailed(ctx, &note, err)
	}

	note.ProcessStatus = models.ProcessCompleted
	note.ProcessingError = nil
	if err := s.db.WithContext(ctx).Save(&note).Error; err != nil {
		return nil, err
	}

	s.log.Info("note processed",
		zap.String("note_id", note.ID),
		zap.String("tier", note.ExtractionTier),
		zap.Int("tags", len(note.Tags)),
	)
	return &note, nil
}

// storeEmbedding embeds the note's canonical text and upserts the vector.
func (s *Service) storeEmbedding(ctx context.Context, note *models.NoteModel) error {
	vector, err := s.ai.Embed(ctx, canonicalText(note))
	if err != nil {
		return err
	}

	embedding := models.NoteEmbeddingModel{
		NoteID:        note.ID,
		Vector:        models.Float32Array(vector),
		Dim:           len(vector),
		Model:         s.ai.EmbeddingModelName(),
		SchemaVersion: models.EmbeddingSchemaVersion,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "note_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"vector", "dim", "model", "schema_version", "updated_at",
		}),
	}).Create(&embedding).Error
}

// canonicalText is the text layout fed to the embedding model. Changing
// its shape requires bumping models.EmbeddingSchemaVersion.
func canonicalText(note *models.NoteModel) string {
	parts := make([]string, 0, 4)
	if note.Title != "" {
		parts = append(parts, note.Title)
	}
	if note.Summary != "" {
		parts = append(parts, note.Summary)
	}
	if len(note.KeyInsights) > 0 {
		parts = append(parts, strings.Join(note.KeyInsights, "\n"))
	}
	body := note.FullContent
	if body == "" {
		body = note.Content
	}
	if body != "" {
		parts = append(parts, body)
	}
	return strings.Join(parts, "\n\n")
}

// syncTopics mirrors the note's topic list into the normalized join table.
func (s *Service) syncTopics(ctx context.Context, noteID string, topics []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", noteID).Delete(&models.NoteTopicModel{}).Error; err != nil {
			return err
		}
		for _, name := range topics {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			var topic models.TopicModel
			if err := tx.Where("name = ?", name).
				FirstOrCreate(&topic, models.TopicModel{Name: name}).Error; err != nil {
				return err
			}
			join := models.NoteTopicModel{NoteID: noteID, TopicID: topic.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&join).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) markFailed(ctx context.Context, note *models.NoteModel, cause error) (*models.NoteModel, error) {
	msg := cause.Error()
	note.ProcessStatus = models.ProcessFailed
	note.ProcessingError = &msg

	err := s.db.WithContext(ctx).Model(&models.NoteModel{}).
		Where("id = ?", note.ID).
		Updates(map[string]interface{}{
			"process_status":   models.ProcessFailed,
			"processing_error": msg,
			"full_content":     note.FullContent,
			"excerpt":          note.Excerpt,
			"extraction_tier":  note.ExtractionTier,
			"domain":           note.Domain,
			"favicon":          note.Favicon,
			"title":            note.Title,
		}).Error
	if err != nil {
		return nil, err
	}

	s.log.Error("note processing failed",
		zap.String("note_id", note.ID),
		zap.Error(cause),
	)
	return note, nil
}

func makeExcerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= excerptMaxRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:excerptMaxRunes])) + "…"
}
