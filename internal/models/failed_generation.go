package models

import "time"

// GenerationStatus is the lifecycle state of a failed AI generation record.
type GenerationStatus string

const (
	GenerationPending   GenerationStatus = "pending"
	GenerationRetrying  GenerationStatus = "retrying"
	GenerationResolved  GenerationStatus = "resolved"
	GenerationAbandoned GenerationStatus = "abandoned"
)

// Terminal reports whether no further retries are permitted.
func (s GenerationStatus) Terminal() bool {
	return s == GenerationResolved || s == GenerationAbandoned
}

// GenerationRequest is the typed request payload captured when a generation
// fails, so a retry can replay the exact call. SchemaVersion guards against
// replaying payloads written by an older layout.
type GenerationRequest struct {
	SchemaVersion int     `json:"schema_version"`
	Prompt        string  `json:"prompt"`
	SystemPrompt  string  `json:"system_prompt,omitempty"`
	MaxTokens     int     `json:"max_tokens,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	RefID         string  `json:"ref_id,omitempty"`
}

// GenerationRequestSchemaVersion is the current GenerationRequest layout.
const GenerationRequestSchemaVersion = 1

// FailedGenerationModel records an AI generation that threw, together with
// its retry bookkeeping. attempts never exceeds max_attempts.
type FailedGenerationModel struct {
	Base
	GenerationType  string            `json:"generation_type" gorm:"index;not null"`
	RequestData     GenerationRequest `json:"request_data"    gorm:"type:longtext;serializer:json"`
	Status          GenerationStatus  `json:"status"          gorm:"default:'pending';index"`
	Attempts        int               `json:"attempts"        gorm:"default:0"`
	MaxAttempts     int               `json:"max_attempts"    gorm:"default:5"`
	Error           string            `json:"error"           gorm:"type:text"`
	ErrorCode       string            `json:"error_code"`
	ErrorDetails    string            `json:"error_details"   gorm:"type:text"`
	NextRetryAt     *time.Time        `json:"next_retry_at"`
	ResolvedAt      *time.Time        `json:"resolved_at"`
	ResolvedDraftID *string           `json:"resolved_draft_id"`
}

func (FailedGenerationModel) TableName() string { return "failed_generations" }

// GeneratedDraftModel holds the text produced by a successful retry.
type GeneratedDraftModel struct {
	Base
	GenerationType string `json:"generation_type"`
	Text           string `json:"text" gorm:"type:longtext"`
	RefID          string `json:"ref_id" gorm:"index"`
}

func (GeneratedDraftModel) TableName() string { return "generated_drafts" }
