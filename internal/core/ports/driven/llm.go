package driven

import (
	"context"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

// CompletionResult is the runtime's reply to a chat completion request.
type CompletionResult struct {
	// Content is the assistant message text.
	Content string

	// Usage is the runtime's token accounting.
	Usage domain.Usage
}

// CompletionService generates chat completions on the backing runtime.
type CompletionService interface {
	// Complete sends the messages and returns the first choice.
	Complete(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions) (*CompletionResult, error)
}
