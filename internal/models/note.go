package models

import "time"

// NoteType classifies how a note was captured.
type NoteType string

const (
	NoteTypeText      NoteType = "text"
	NoteTypeLink      NoteType = "link"
	NoteTypeHighlight NoteType = "highlight"
	NoteTypeImage     NoteType = "image"
)

// ProcessStatus is the note processing lifecycle state.
// The empty string means the note has never been submitted for processing.
type ProcessStatus string

const (
	ProcessPending    ProcessStatus = "PENDING"
	ProcessProcessing ProcessStatus = "PROCESSING"
	ProcessCompleted  ProcessStatus = "COMPLETED"
	ProcessFailed     ProcessStatus = "FAILED"
)

// Terminal reports whether no further automatic transition occurs from s.
func (s ProcessStatus) Terminal() bool {
	return s == ProcessCompleted || s == ProcessFailed
}

// ExtractionTier records which content-extraction tier populated FullContent.
const (
	ExtractionTierExtracted = "extracted"
	ExtractionTierRaw       = "raw"
)

// NoteModel is a captured piece of knowledge (text, link, highlight or image).
type NoteModel struct {
	Base
	Type    NoteType `json:"type"    gorm:"default:'text';index"`
	Title   string   `json:"title"`
	Content string   `json:"content" gorm:"type:longtext"`

	// Derived by the processing pipeline.
	FullContent    string      `json:"full_content"     gorm:"type:longtext"`
	Excerpt        string      `json:"excerpt"          gorm:"type:text"`
	Summary        string      `json:"summary"          gorm:"type:text"`
	KeyInsights    StringArray `json:"key_insights"     gorm:"type:longtext"`
	Topics         StringArray `json:"topics"           gorm:"type:longtext"`
	Tags           StringArray `json:"tags"             gorm:"type:longtext"`
	ExtractionTier string      `json:"extraction_tier"`

	ProcessStatus   ProcessStatus `json:"process_status"   gorm:"index"`
	ProcessingError *string       `json:"processing_error" gorm:"type:text"`

	// Provenance.
	SourceURL string `json:"source_url"`
	Domain    string `json:"domain"  gorm:"index"`
	Favicon   string `json:"favicon"`

	// Spaced repetition state.
	EaseFactor     float64    `json:"ease_factor"      gorm:"default:2.5"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	NextReviewAt   *time.Time `json:"next_review_at"   gorm:"index"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`

	NotebookID *string        `json:"notebook_id" gorm:"index"`
	Notebook   *NotebookModel `json:"notebook,omitempty" gorm:"foreignKey:NotebookID"`
}

func (NoteModel) TableName() string { return "notes" }

// NotebookModel groups notes.
type NotebookModel struct {
	Base
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
}

func (NotebookModel) TableName() string { return "notebooks" }

// NoteEmbeddingModel stores the semantic-search vector for a note.
// SchemaVersion tracks the canonical-text layout the vector was built from.
type NoteEmbeddingModel struct {
	Base
	NoteID        string       `json:"note_id" gorm:"uniqueIndex;not null"`
	Vector        Float32Array `json:"-"       gorm:"type:longtext"`
	Dim           int          `json:"dim"`
	Model         string       `json:"model"`
	SchemaVersion int          `json:"schema_version"`
}

func (NoteEmbeddingModel) TableName() string { return "note_embeddings" }

// EmbeddingSchemaVersion is bumped whenever the canonical text fed to the
// embedding model changes shape, so stale vectors can be told apart.
const EmbeddingSchemaVersion = 1
