package ai

import "context"

// CompletionRequest is one blocking call to a provider backend.
type CompletionRequest struct {
	System    string
	Prompt    string
	Model     string
	MaxTokens int
}

// Completion is the raw provider response. Text is untrusted and possibly
// malformed; the dispatcher owns parsing it into a task result shape.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Provider is one language-model backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}
