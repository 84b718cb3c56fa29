package driven

import "context"

// ModelInfo describes a model known to the runtime.
type ModelInfo struct {
	// Name is the model handle.
	Name string

	// Running reports whether the model is loaded and serving.
	Running bool
}

// EngineInfo describes a processing engine installed in the runtime.
type EngineInfo struct {
	// Name is the engine identifier.
	Name string

	// Version is the installed engine version.
	Version string

	// UpdateAvailable reports whether a newer engine version exists.
	UpdateAvailable bool
}

// HardwareInfo is the runtime's view of the local machine.
type HardwareInfo struct {
	GPU       string
	VRAMBytes int64
	RAMBytes  int64
}

// RuntimeManager brings the backing inference runtime, its processing engine
// and models into a ready state, and exposes the lifecycle operations the
// thin CLI passthroughs need.
//
// EnsureReady runs the full bootstrap cascade: install the runtime binary if
// absent, start the process if not running, install/update the engine, and
// (when modelNeeded) pull and start the configured model. Every stage is
// idempotent. EnsureReady blocks the calling goroutine for the whole
// cascade, including the bounded model-install poll.
type RuntimeManager interface {
	// EnsureReady drives the bootstrap cascade to completion.
	EnsureReady(ctx context.Context, modelNeeded bool) error

	// Restart stops the runtime and re-runs the full cascade.
	Restart(ctx context.Context, modelNeeded bool) error

	// Health probes the runtime's health endpoint.
	Health(ctx context.Context) error

	// Hardware reports the runtime's hardware survey.
	Hardware(ctx context.Context) (*HardwareInfo, error)

	// Models lists the models the runtime knows about.
	Models(ctx context.Context) ([]ModelInfo, error)

	// PullModel installs a model, blocking until it is listed or the
	// bounded poll window elapses (domain.ErrModelInstallTimeout).
	PullModel(ctx context.Context, model string) error

	// StartModel loads an installed model for serving.
	StartModel(ctx context.Context, model string) error

	// Engines lists installed processing engines.
	Engines(ctx context.Context) ([]EngineInfo, error)
}
