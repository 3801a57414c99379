package services

import "context"

// CompletionService is the upstream used by the fetch pipelines
type CompletionService interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (*CompletionResponse, error)
	Configured() bool
}

// Compile-time interface verification
var _ CompletionService = (*AnthropicService)(nil)
