package domain

import "time"

// Default configuration values.
const (
	// DefaultBaseURL is the backing inference runtime's API address.
	DefaultBaseURL = "http://localhost:8400"

	// DefaultEngine is the processing engine the runtime must have loaded.
	DefaultEngine = "llama-cpp"

	// DefaultModel is the chat completion model.
	DefaultModel = "llama3.2-3b-instruct"

	// DefaultEmbeddingModel is the embedding model.
	DefaultEmbeddingModel = "nomic-embed-text-v1.5"

	// DefaultPartSize is the chunk size used when ingesting documents.
	DefaultPartSize = 1024

	// Group storage backends.
	StorageFile   = "file"
	StorageSQLite = "sqlite"

	// DefaultModelInstallTimeout bounds the poll loop that waits for a
	// pulled model to become available.
	DefaultModelInstallTimeout = 10 * time.Minute
)

// Settings is the explicit configuration object threaded through every core
// operation. It is read-only input here; it is owned and mutated only by the
// settings store.
type Settings struct {
	// Engine is the processing engine required by the runtime.
	Engine string

	// Model is the chat completion model name.
	Model string

	// EmbeddingModel is the model used to produce vectors.
	EmbeddingModel string

	// BaseURL is the runtime's API base address.
	BaseURL string

	// Logging enables verbose diagnostics on stderr.
	Logging bool

	// DataDir is where groups, answers and other local state live.
	// Empty means ~/.askdoc/data.
	DataDir string

	// PartSize is the chunk size for new groups.
	PartSize int

	// Storage selects the group store backend, "file" or "sqlite".
	Storage string
}

// DefaultSettings returns settings with sensible defaults for a local,
// single-user installation.
func DefaultSettings() Settings {
	return Settings{
		Engine:         DefaultEngine,
		Model:          DefaultModel,
		EmbeddingModel: DefaultEmbeddingModel,
		BaseURL:        DefaultBaseURL,
		Logging:        false,
		PartSize:       DefaultPartSize,
		Storage:        StorageFile,
	}
}

// Validate reports whether the settings can drive the core.
func (s Settings) Validate() error {
	if s.Engine == "" {
		return invalidInput("engine name is required")
	}
	if s.Model == "" {
		return invalidInput("model name is required")
	}
	if s.EmbeddingModel == "" {
		return invalidInput("embedding model name is required")
	}
	if s.BaseURL == "" {
		return invalidInput("base URL is required")
	}
	if s.PartSize <= 0 {
		return invalidInput("part size must be positive")
	}
	if s.Storage != StorageFile && s.Storage != StorageSQLite {
		return invalidInput("storage must be file or sqlite")
	}
	return nil
}
