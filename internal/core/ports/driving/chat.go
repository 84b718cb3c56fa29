package driving

import (
	"context"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

// AskOptions configure a single question.
type AskOptions struct {
	// Group, when set, grounds the answer with the best-matching chunk
	// from that retrieval group.
	Group string

	// Completion holds the sampling parameters.
	Completion domain.CompletionOptions
}

// ChatService answers natural-language questions, optionally grounded in a
// retrieval group.
type ChatService interface {
	// Ask runs the question synchronously and returns the answer.
	Ask(ctx context.Context, question string, opts AskOptions) (*domain.Answer, error)

	// AskAsync dispatches the question on a detached worker and returns
	// the answer ID immediately. The finished answer goes to the
	// configured sink; there is no cancellation or progress reporting.
	AskAsync(ctx context.Context, question string, opts AskOptions) (string, error)
}
