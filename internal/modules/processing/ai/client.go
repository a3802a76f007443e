package ai

import "context"

// CompleteOptions bounds a completion call.
type CompleteOptions struct {
	MaxTokens   int
	Temperature float64
}

// Client is the boundary to the completion/embedding provider. The concrete
// implementation is built from the configured providers; tests substitute it.
type Client interface {
	Complete(ctx context.Context, systemPrompt, prompt string, opts CompleteOptions) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
