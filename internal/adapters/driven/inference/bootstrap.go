package inference

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/calder-labs/askdoc-cli/internal/logger"
)

// The bootstrap cascade walks the runtime through
//
//	ServiceAbsent -> ServiceInstalled -> ServiceRunning -> EngineReady -> ModelReady
//
// Every stage is idempotent, so re-running the cascade on an already-ready
// runtime is cheap. The cascade itself talks to the runtime with plain
// single-attempt calls; only the public request path layers the one-shot
// recover-and-retry policy on top.

// EnsureReady drives the bootstrap cascade to completion.
// When modelNeeded is true the configured chat model is ensured as well.
func (c *Client) EnsureReady(ctx context.Context, modelNeeded bool) error {
	model := ""
	if modelNeeded {
		model = c.cfg.Model
	}
	return c.ensureReady(ctx, model)
}

// Restart stops the runtime and re-runs the full cascade.
func (c *Client) Restart(ctx context.Context, modelNeeded bool) error {
	model := ""
	if modelNeeded {
		model = c.cfg.Model
	}
	return c.restart(ctx, model)
}

// ensureReady runs the cascade up to (and including) readiness of the given
// model; an empty model stops after the engine stage. Readiness is cached
// per session so repeated calls are no-ops.
func (c *Client) ensureReady(ctx context.Context, model string) error {
	c.bootMu.Lock()
	defer c.bootMu.Unlock()

	if c.serviceReady && (model == "" || c.modelReady[model]) {
		return nil
	}

	logger.Section("Runtime Bootstrap")

	if !c.serviceReady {
		if err := c.proc.install(ctx); err != nil {
			return fmt.Errorf("bootstrap stage install: %w", err)
		}
		if err := c.ensureRunning(ctx); err != nil {
			return fmt.Errorf("bootstrap stage start: %w", err)
		}
		if err := c.ensureEngine(ctx); err != nil {
			return fmt.Errorf("bootstrap stage engine: %w", err)
		}
		c.serviceReady = true
	}

	if model != "" && !c.modelReady[model] {
		if err := c.ensureModel(ctx, model); err != nil {
			return fmt.Errorf("bootstrap stage model: %w", err)
		}
		c.modelReady[model] = true
	}

	return nil
}

// restart forgets all cached readiness, stops the runtime and re-runs the
// cascade.
func (c *Client) restart(ctx context.Context, model string) error {
	c.bootMu.Lock()
	c.serviceReady = false
	c.modelReady = make(map[string]bool)
	c.stopRuntime(ctx)
	c.bootMu.Unlock()

	return c.ensureReady(ctx, model)
}

// stopRuntime asks the runtime to shut down and kills any process we
// spawned. Best effort: a runtime that is already gone is fine.
func (c *Client) stopRuntime(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, DefaultProbeTimeout)
	defer cancel()

	if _, err := c.do(probeCtx, http.MethodPost, "/v1/admin/stop", nil); err != nil {
		logger.Debug("Stop request failed (runtime may already be down): %v", err)
	}
	c.proc.kill()
}

// Health probes the runtime's health endpoint with a short timeout.
// This is a plain probe: it never triggers the cascade.
func (c *Client) Health(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, DefaultProbeTimeout)
	defer cancel()

	data, err := c.do(probeCtx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("health probe: %w", err)
	}

	var resp healthResponse
	if err := decode("/healthz", data, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("health probe: runtime reports status %q", resp.Status)
	}

	return nil
}

// ensureRunning starts the runtime process when the health probe fails and
// waits for it to come up.
func (c *Client) ensureRunning(ctx context.Context) error {
	if err := c.Health(ctx); err == nil {
		logger.Debug("Runtime already running at %s", c.cfg.BaseURL)
		return nil
	}

	if err := c.proc.start(ctx); err != nil {
		return err
	}

	deadline := time.Now().Add(c.cfg.StartTimeout)
	for {
		if err := c.Health(ctx); err == nil {
			logger.Info("Runtime is up at %s", c.cfg.BaseURL)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("runtime did not become healthy within %s: %w",
				c.cfg.StartTimeout, domain.ErrServiceUnavailable)
		}

		select {
		case <-time.After(c.cfg.PollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ensureEngine verifies the configured processing engine is installed and
// current, self-updating the runtime first when it reports an available
// update, and copies the native shared component into place if missing.
func (c *Client) ensureEngine(ctx context.Context) error {
	health, err := c.health(ctx)
	if err != nil {
		return err
	}

	if health.UpdateAvailable {
		logger.Info("Runtime self-update available, updating")
		if err := c.selfUpdate(ctx); err != nil {
			return fmt.Errorf("runtime self-update: %w", err)
		}
	}

	engines, err := c.enginesRaw(ctx)
	if err != nil {
		return err
	}

	installed := false
	for _, e := range engines {
		if e.Name != c.cfg.Engine {
			continue
		}
		installed = true
		if e.UpdateAvailable {
			logger.Info("Engine %s update available, updating", c.cfg.Engine)
			if _, err := c.do(ctx, http.MethodPost, "/v1/engines/"+c.cfg.Engine+"/update", nil); err != nil {
				return fmt.Errorf("update engine %s: %w", c.cfg.Engine, err)
			}
		}
		break
	}

	if !installed {
		logger.Info("Engine %s not installed, installing", c.cfg.Engine)
		if _, err := c.do(ctx, http.MethodPost, "/v1/engines/"+c.cfg.Engine+"/install", nil); err != nil {
			return fmt.Errorf("install engine %s: %w", c.cfg.Engine, err)
		}
	}

	if err := copyFileIfMissing(c.cfg.SharedLibSource, c.cfg.SharedLibDest); err != nil {
		return err
	}

	return nil
}

// selfUpdate stops the runtime, reinstalls it and brings it back up.
func (c *Client) selfUpdate(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, DefaultProbeTimeout)
	if _, err := c.do(probeCtx, http.MethodPost, "/v1/admin/stop", nil); err != nil {
		logger.Debug("Stop before self-update failed: %v", err)
	}
	cancel()
	c.proc.kill()

	if err := c.proc.install(ctx); err != nil {
		return err
	}
	return c.ensureRunning(ctx)
}

// ensureModel makes the given model installed and running.
// Installation waits until the runtime lists the model by name; the poll is
// bounded by the configured install timeout.
func (c *Client) ensureModel(ctx context.Context, model string) error {
	models, err := c.modelsRaw(ctx)
	if err != nil {
		return err
	}

	state, known := modelState(models, model)
	if !known {
		logger.Info("Model %s not installed, pulling", model)
		if _, err := c.do(ctx, http.MethodPost, "/v1/models/pull", pullModelRequest{Model: model}); err != nil {
			return fmt.Errorf("pull model %s: %w", model, err)
		}
		if err := c.waitForModel(ctx, model); err != nil {
			return err
		}
		state = modelStateInstalled
	}

	if state != modelStateRunning {
		logger.Info("Starting model %s", model)
		data, err := c.do(ctx, http.MethodPost, "/v1/models/start", startModelRequest{Model: model})
		if err != nil {
			return fmt.Errorf("start model %s: %w", model, err)
		}

		var resp startModelResponse
		if err := decode("/v1/models/start", data, &resp); err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("start model %s: runtime refused: %s", model, resp.Message)
		}
	}

	return nil
}

// waitForModel polls the model listing until the named model appears.
// Matching by name rather than list-length change keeps the wait correct
// when something else installs models concurrently.
func (c *Client) waitForModel(ctx context.Context, model string) error {
	deadline := time.Now().Add(c.cfg.ModelInstallTimeout)

	for {
		models, err := c.modelsRaw(ctx)
		if err == nil {
			if _, found := modelState(models, model); found {
				logger.Info("Model %s is available", model)
				return nil
			}
		} else {
			logger.Debug("Model poll failed: %v", err)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("model %s not available after %s: %w",
				model, c.cfg.ModelInstallTimeout, domain.ErrModelInstallTimeout)
		}

		select {
		case <-time.After(c.cfg.PollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// modelState looks a model up by name in a listing.
func modelState(models []driven.ModelInfo, name string) (state string, found bool) {
	for _, m := range models {
		if m.Name == name {
			if m.Running {
				return modelStateRunning, true
			}
			return modelStateInstalled, true
		}
	}
	return "", false
}

// health fetches and decodes the health document (single attempt).
func (c *Client) health(ctx context.Context) (*healthResponse, error) {
	probeCtx, cancel := context.WithTimeout(ctx, DefaultProbeTimeout)
	defer cancel()

	data, err := c.do(probeCtx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return nil, fmt.Errorf("health probe: %w", err)
	}

	var resp healthResponse
	if err := decode("/healthz", data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// modelsRaw lists models with a single attempt, for use inside the cascade.
func (c *Client) modelsRaw(ctx context.Context) ([]driven.ModelInfo, error) {
	data, err := c.do(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return parseModels(data)
}

// enginesRaw lists engines with a single attempt, for use inside the cascade.
func (c *Client) enginesRaw(ctx context.Context) ([]driven.EngineInfo, error) {
	data, err := c.do(ctx, http.MethodGet, "/v1/engines", nil)
	if err != nil {
		return nil, fmt.Errorf("list engines: %w", err)
	}
	return parseEngines(data)
}

func parseModels(data []byte) ([]driven.ModelInfo, error) {
	var resp modelsResponse
	if err := decode("/v1/models", data, &resp); err != nil {
		return nil, err
	}

	models := make([]driven.ModelInfo, len(resp.Data))
	for i, m := range resp.Data {
		models[i] = driven.ModelInfo{Name: m.ID, Running: m.State == modelStateRunning}
	}
	return models, nil
}

func parseEngines(data []byte) ([]driven.EngineInfo, error) {
	var resp enginesResponse
	if err := decode("/v1/engines", data, &resp); err != nil {
		return nil, err
	}

	engines := make([]driven.EngineInfo, len(resp.Data))
	for i, e := range resp.Data {
		engines[i] = driven.EngineInfo{Name: e.Name, Version: e.Version, UpdateAvailable: e.UpdateAvailable}
	}
	return engines, nil
}

// Models lists the models the runtime knows about, through the guarded
// request path.
func (c *Client) Models(ctx context.Context) ([]driven.ModelInfo, error) {
	data, err := c.request(ctx, http.MethodGet, "/v1/models", nil, "")
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return parseModels(data)
}

// Engines lists installed processing engines, through the guarded request
// path.
func (c *Client) Engines(ctx context.Context) ([]driven.EngineInfo, error) {
	data, err := c.request(ctx, http.MethodGet, "/v1/engines", nil, "")
	if err != nil {
		return nil, fmt.Errorf("list engines: %w", err)
	}
	return parseEngines(data)
}

// PullModel installs a model and blocks until it is listed, bounded by the
// configured install timeout.
func (c *Client) PullModel(ctx context.Context, model string) error {
	if _, err := c.request(ctx, http.MethodPost, "/v1/models/pull", pullModelRequest{Model: model}, ""); err != nil {
		return fmt.Errorf("pull model %s: %w", model, err)
	}
	return c.waitForModel(ctx, model)
}

// StartModel loads an installed model for serving.
func (c *Client) StartModel(ctx context.Context, model string) error {
	data, err := c.request(ctx, http.MethodPost, "/v1/models/start", startModelRequest{Model: model}, "")
	if err != nil {
		return fmt.Errorf("start model %s: %w", model, err)
	}

	var resp startModelResponse
	if err := decode("/v1/models/start", data, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("start model %s: runtime refused: %s", model, resp.Message)
	}

	return nil
}
