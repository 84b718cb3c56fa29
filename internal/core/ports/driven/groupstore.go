package driven

import (
	"context"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

// GroupStore persists retrieval groups, one addressable storage unit per
// group name.
//
// Save is an atomic whole-unit overwrite, never a partial append: after
// Append+Save, a Load must reconstruct an equal group. The store performs no
// locking of its own; callers must serialize writes to the same group
// (single-writer assumption).
type GroupStore interface {
	// Load reads the named group. Returns domain.ErrGroupNotFound when no
	// storage unit exists for the name.
	Load(ctx context.Context, name string) (domain.Group, error)

	// Save overwrites the group's storage unit with its full contents.
	Save(ctx context.Context, group domain.Group) error

	// List returns the names of all persisted groups, sorted.
	List(ctx context.Context) ([]string, error)

	// Delete removes the named group's storage unit.
	// Returns domain.ErrGroupNotFound when it does not exist.
	Delete(ctx context.Context, name string) error

	// Close releases resources.
	Close() error
}
