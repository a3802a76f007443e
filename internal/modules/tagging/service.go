package tagging

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/amirhjalali/notes-core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Suggestion is a candidate tag with a normalized confidence score and the
// signal it came from.
type Suggestion struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"` // auto-extracted | co-occurrence | manual-history
}

const (
	SourceAutoExtracted = "auto-extracted"
	SourceCoOccurrence  = "co-occurrence"
	SourceManualHistory = "manual-history"
)

// Service suggests, applies and removes note tags, and maintains the
// frequency/co-occurrence statistics that improve suggestions over time.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Union merges add into existing as a case-insensitive set union, preserving
// existing order and casing. It returns the merged list and the subset of
// add that was actually new.
func Union(existing, add []string) (merged, added []string) {
	merged = append(merged, existing...)
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	for _, t := range add {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, t)
		added = append(added, t)
	}
	return merged, added
}

// ApplyTags unions tags into the note's tag set. Applying an already present
// tag is a no-op, so repeated calls are idempotent. Provenance (auto vs.
// manual) is recorded for downstream suggestion learning.
func (s *Service) ApplyTags(ctx context.Context, noteID string, tags []string, autoExtracted bool) (*models.NoteModel, error) {
	var note models.NoteModel
	if err := s.db.WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		return nil, err
	}

	merged, added := Union(note.Tags, tags)
	if len(added) == 0 {
		return &note, nil
	}

	note.Tags = merged
	if err := s.db.WithContext(ctx).Model(&note).Update("tags", note.Tags).Error; err != nil {
		return nil, err
	}

	source := models.TagSourceManual
	if autoExtracted {
		source = models.TagSourceAuto
	}
	if err := s.recordStats(ctx, source, added, note.Topics); err != nil {
		s.log.Warn("tag stat update failed", zap.String("note_id", noteID), zap.Error(err))
	}
	return &note, nil
}

// RecordManualTagAddition applies a single manually chosen tag and
// strengthens its future suggestion weight for similar content.
func (s *Service) RecordManualTagAddition(ctx context.Context, noteID, tag string) (*models.NoteModel, error) {
	return s.ApplyTags(ctx, noteID, []string{tag}, false)
}

// RemoveTag removes a tag from the note. Removing an absent tag is a no-op.
func (s *Service) RemoveTag(ctx context.Context, noteID, tag string) (*models.NoteModel, error) {
	var note models.NoteModel
	if err := s.db.WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		return nil, err
	}

	key := strings.ToLower(strings.TrimSpace(tag))
	kept := make(models.StringArray, 0, len(note.Tags))
	removed := false
	for _, t := range note.Tags {
		if strings.ToLower(t) == key {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return &note, nil
	}

	note.Tags = kept
	if err := s.db.WithContext(ctx).Model(&note).Update("tags", note.Tags).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// SuggestTags blends content-derived topics with learned manual-tag signals
// into a ranked, confidence-scored suggestion list. Tags already on the note
// are excluded.
func (s *Service) SuggestTags(ctx context.Context, noteID string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = 5
	}

	var note models.NoteModel
	if err := s.db.WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(note.Tags))
	for _, t := range note.Tags {
		present[strings.ToLower(t)] = struct{}{}
	}

	type candidate struct {
		tag    string
		score  float64
		source string
	}
	candidates := map[string]*candidate{}
	bump := func(tag string, score float64, source string) {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if key == "" {
			return
		}
		if _, ok := present[key]; ok {
			return
		}
		c, ok := candidates[key]
		if !ok {
			candidates[key] = &candidate{tag: tag, score: score, source: source}
			return
		}
		// Keep the strongest signal as the reported source.
		if score > c.score {
			c.source = source
		}
		c.score += score
	}

	// Content-derived signal: topics the pipeline extracted from this note.
	for i, topic := range note.Topics {
		bump(topic, 3.0-0.2*float64(i), SourceAutoExtracted)
	}

	// Co-occurrence signal: tags manually applied alongside these topics.
	if len(note.Topics) > 0 {
		var rows []struct {
			Tag   string
			Total int
		}
		err := s.db.WithContext(ctx).Model(&models.TagStatModel{}).
			Select("tag, SUM(count) AS total").
			Where("source = ? AND topic IN ?", models.TagSourceManual, []string(note.Topics)).
			Group("tag").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			bump(row.Tag, float64(row.Total), SourceCoOccurrence)
		}
	}

	// Manual-history signal: how often the user applies a tag at all.
	var freq []struct {
		Tag   string
		Total int
	}
	err := s.db.WithContext(ctx).Model(&models.TagStatModel{}).
		Select("tag, SUM(count) AS total").
		Where("source = ? AND topic = ?", models.TagSourceManual, "").
		Group("tag").
		Scan(&freq).Error
	if err != nil {
		return nil, err
	}
	for _, row := range freq {
		bump(row.Tag, 0.5*float64(row.Total), SourceManualHistory)
	}

	ordered := make([]*candidate, 0, len(candidates))
	var maxScore float64
	for _, c := range candidates {
		ordered = append(ordered, c)
		if c.score > maxScore {
			maxScore = c.score
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].tag < ordered[j].tag
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	suggestions := make([]Suggestion, 0, len(ordered))
	for _, c := range ordered {
		conf := 1.0
		if maxScore > 0 {
			conf = c.score / maxScore
		}
		suggestions = append(suggestions, Suggestion{
			Tag:        strings.ToLower(c.tag),
			Confidence: conf,
			Source:     c.source,
		})
	}
	return suggestions, nil
}

// RecordAutoApplied lets the processing engine register pipeline-applied
// tags without re-reading the note it is mid-way through updating.
func (s *Service) RecordAutoApplied(ctx context.Context, tags, topics []string) {
	if len(tags) == 0 {
		return
	}
	if err := s.recordStats(ctx, models.TagSourceAuto, tags, topics); err != nil {
		s.log.Warn("tag stat update failed", zap.Error(err))
	}
}

// recordStats increments the plain-frequency row for each tag and, for
// manual applications, the per-topic co-occurrence rows.
func (s *Service) recordStats(ctx context.Context, source string, tags, topics []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if err := incrementStat(tx, tag, source, ""); err != nil {
				return err
			}
			if source != models.TagSourceManual {
				continue
			}
			for _, topic := range topics {
				topic = strings.ToLower(strings.TrimSpace(topic))
				if topic == "" {
					continue
				}
				if err := incrementStat(tx, tag, source, topic); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func incrementStat(tx *gorm.DB, tag, source, topic string) error {
	var stat models.TagStatModel
	err := tx.Where("tag = ? AND source = ? AND topic = ?", tag, source, topic).
		First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stat = models.TagStatModel{Tag: tag, Source: source, Topic: topic, Count: 1}
		return tx.Create(&stat).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&stat).Update("count", gorm.Expr("count + 1")).Error
}
