package driven

import "context"

// EmbeddingService turns text into a fixed-length vector by calling the
// backing inference runtime. Every call produces a fresh vector; there is no
// caching or local fallback. All vectors compared against each other must
// come from the same model.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Failures wrap domain.ErrEmbeddingFailed.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}
