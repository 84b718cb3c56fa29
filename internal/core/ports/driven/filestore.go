package driven

import (
	"context"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

// FileInfo describes a file stored in the backing runtime.
type FileInfo struct {
	ID   domain.FileID
	Name string
	Size int64
}

// FileService stores and retrieves document files in the backing runtime.
// Documents are immutable once uploaded; the runtime assigns the FileID.
type FileService interface {
	// Upload stores the named file's content and returns the assigned ID.
	Upload(ctx context.Context, name string, content []byte) (domain.FileID, error)

	// Content fetches the raw text of a stored file.
	Content(ctx context.Context, id domain.FileID) (string, error)

	// List returns all stored files.
	List(ctx context.Context) ([]FileInfo, error)

	// Delete removes a stored file.
	Delete(ctx context.Context, id domain.FileID) error
}
