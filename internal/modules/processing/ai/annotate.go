package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhjalali/notes-core/internal/models"
	"go.uber.org/zap"
)

// Annotation is the structured result of a note annotation call.
type Annotation struct {
	Summary     string   `json:"summary"`
	KeyInsights []string `json:"key_insights"`
	Topics      []string `json:"topics"`
	Tags        []string `json:"tags"`
}

// Quiz is a generated recall question for a note.
type Quiz struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Annotate runs the summarization/topic-extraction completion over note
// text. A provider failure is recorded as a FailedGeneration so it can be
// replayed through the retry endpoint.
func (s *Service) Annotate(ctx context.Context, refID, title, text string) (*Annotation, error) {
	system, prompt := buildAnnotatePrompt(title, text)

	raw, err := s.client.Complete(ctx, system, prompt, CompleteOptions{MaxTokens: 700})
	if err != nil {
		s.recordCallFailure(ctx, "note:annotate", refID, system, prompt, 700, err)
		return nil, err
	}

	var out Annotation
	if err := unmarshalAIJSON(raw, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, fmt.Errorf("summary is empty in AI response")
	}

	out.Summary = strings.TrimSpace(out.Summary)
	out.KeyInsights = cleanList(out.KeyInsights, maxKeyInsights)
	out.Topics = cleanList(out.Topics, maxTopics)
	out.Tags = cleanList(out.Tags, maxTags)
	return &out, nil
}

// GenerateQuiz produces a recall question from a note's distilled content.
func (s *Service) GenerateQuiz(ctx context.Context, refID, title, summary string, insights []string) (*Quiz, error) {
	system, prompt := buildQuizPrompt(title, summary, insights)

	raw, err := s.client.Complete(ctx, system, prompt, CompleteOptions{MaxTokens: 300})
	if err != nil {
		s.recordCallFailure(ctx, "note:quiz", refID, system, prompt, 300, err)
		return nil, err
	}

	var quiz Quiz
	if err := unmarshalAIJSON(raw, &quiz); err != nil {
		return nil, err
	}
	if strings.TrimSpace(quiz.Question) == "" {
		return nil, fmt.Errorf("question is empty in AI response")
	}
	return &quiz, nil
}

// Embed returns the embedding vector for the given text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.client.Embed(ctx, truncateText(text, maxPromptRunes))
}

func (s *Service) recordCallFailure(ctx context.Context, generationType, refID, system, prompt string, maxTokens int, callErr error) {
	req := models.GenerationRequest{
		SystemPrompt: system,
		Prompt:       prompt,
		MaxTokens:    maxTokens,
		RefID:        refID,
	}
	if _, err := s.RecordFailure(ctx, generationType, req, callErr); err != nil {
		s.log.Error("failed to record generation failure", zap.Error(err))
	}
}

func cleanList(in []string, max int) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == max {
			break
		}
	}
	return out
}
