package service

import (
	"context"
)

// CompletionRequest is a single-turn prompt for a generative model.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// GenerativeClient returns best-effort text for a prompt. The text may wrap JSON in prose
// or markdown; callers coerce it. Errors mean the backend was unreachable or refused.
type GenerativeClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
