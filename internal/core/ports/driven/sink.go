package driven

import "github.com/calder-labs/askdoc-cli/internal/core/domain"

// AnswerSink receives completed answers from the asynchronous completion
// path. Delivery is fire-and-forget: there is no cancellation and no
// progress reporting back to the caller.
type AnswerSink interface {
	// Deliver records a finished answer.
	Deliver(answer domain.Answer) error
}
