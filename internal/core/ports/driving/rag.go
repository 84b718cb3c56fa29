package driving

import (
	"context"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

// IngestResult summarises one document ingestion.
type IngestResult struct {
	// FileID is the runtime-assigned ID of the uploaded document.
	FileID domain.FileID

	// Group is the group the document was indexed into.
	Group string

	// Chunks is how many chunks were embedded and appended.
	Chunks int

	// PartSize is the chunk size the group uses.
	PartSize int
}

// RAGService builds and queries local retrieval indexes.
type RAGService interface {
	// Ingest uploads the file at path, chunks it, embeds every chunk and
	// appends the records to the named group, persisting the whole group.
	// The group is created lazily with the configured part size on its
	// first ingestion.
	Ingest(ctx context.Context, path, group string) (*IngestResult, error)

	// Retrieve embeds the query, finds the single best-matching record in
	// the named group and materialises its chunk text. found=false with a
	// nil error means the group holds no records; that is a reportable
	// outcome, not a failure.
	Retrieve(ctx context.Context, query, group string) (*domain.Retrieval, bool, error)
}
