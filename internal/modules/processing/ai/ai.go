package ai

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles AI completion, embedding, and failed-generation retry
// bookkeeping.
type Service struct {
	db             *gorm.DB
	client         Client
	embeddingModel string
	log            *zap.Logger
}

func NewService(db *gorm.DB, client Client, embeddingModel string, log *zap.Logger) *Service {
	if strings.TrimSpace(embeddingModel) == "" {
		embeddingModel = defaultEmbeddingModel
	}
	return &Service{db: db, client: client, embeddingModel: embeddingModel, log: log}
}

// EmbeddingModelName reports which model produced stored vectors.
func (s *Service) EmbeddingModelName() string { return s.embeddingModel }
