package driven

import "github.com/calder-labs/askdoc-cli/internal/core/domain"

// SettingsStore loads and persists application settings.
// The settings object is the only owner of configuration; core operations
// receive it as an explicit parameter, never via ambient lookup.
type SettingsStore interface {
	// Load reads settings from storage, falling back to defaults for a
	// missing file.
	Load() (domain.Settings, error)

	// Save persists the settings.
	Save(domain.Settings) error

	// Watch invokes fn with freshly loaded settings whenever the backing
	// file changes. It returns a stop function.
	Watch(fn func(domain.Settings)) (stop func(), err error)

	// Path returns the storage location, for display.
	Path() string
}
