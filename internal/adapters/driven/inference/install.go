package inference

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/calder-labs/askdoc-cli/internal/logger"
)

// installerRetryMax is how many times the installer download is retried.
// Distinct from the request layer's one-shot policy: downloads are large and
// flaky networks are the common case.
const installerRetryMax = 3

// runtimeProcess manages the local runtime executable: one-time
// download-and-silent-install, spawning, and best-effort termination of a
// process we spawned ourselves.
type runtimeProcess struct {
	binaryPath   string
	installerURL string
	installArgs  []string
	startArgs    []string
	settleTime   time.Duration

	mu  sync.Mutex
	cmd *exec.Cmd
}

// installed reports whether the runtime executable is present.
func (p *runtimeProcess) installed() bool {
	if p.binaryPath == "" {
		return true // externally managed runtime, nothing to install
	}
	_, err := os.Stat(p.binaryPath)
	return err == nil
}

// install downloads the installer and runs it silently. Idempotent: a
// present binary makes this a no-op.
func (p *runtimeProcess) install(ctx context.Context) error {
	if p.installed() {
		return nil
	}
	if p.installerURL == "" {
		return fmt.Errorf("runtime binary %q missing and no installer URL configured", p.binaryPath)
	}

	logger.Info("Runtime missing, downloading installer from %s", p.installerURL)

	installerPath, err := p.download(ctx)
	if err != nil {
		return fmt.Errorf("download installer: %w", err)
	}
	defer os.Remove(installerPath)

	args := p.installArgs
	if len(args) == 0 {
		args = []string{"--silent"}
	}

	cmd := exec.CommandContext(ctx, installerPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("run installer: %w: %s", err, out)
	}

	if !p.installed() {
		return fmt.Errorf("installer finished but %q is still missing", p.binaryPath)
	}

	logger.Info("Runtime installed at %s", p.binaryPath)
	return nil
}

// download fetches the installer to a temp file with retries.
func (p *runtimeProcess) download(ctx context.Context) (string, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = installerRetryMax
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", p.installerURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("installer download returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "askdoc-installer-*")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	if err := os.Chmod(tmp.Name(), 0700); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

// start spawns the runtime process and waits the fixed settle time.
// The health probe afterwards is the caller's responsibility.
func (p *runtimeProcess) start(ctx context.Context) error {
	if p.binaryPath == "" {
		return fmt.Errorf("runtime not reachable and no binary path configured to start it")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	logger.Info("Starting runtime process: %s", p.binaryPath)

	cmd := exec.Command(p.binaryPath, p.startArgs...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn runtime: %w", err)
	}
	p.cmd = cmd

	// Reap the child when it exits so it never lingers as a zombie.
	go func() { _ = cmd.Wait() }()

	settle := p.settleTime
	if settle <= 0 {
		settle = 2 * time.Second
	}

	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// kill terminates a process we spawned. No-op for externally started
// runtimes.
func (p *runtimeProcess) kill() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		p.cmd = nil
	}
}

// copyFileIfMissing copies src to dst when dst does not exist. Used to put
// the engine's native shared component into place.
func copyFileIfMissing(src, dst string) error {
	if src == "" || dst == "" {
		return nil
	}
	if _, err := os.Stat(dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open shared component %q: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create shared component directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create shared component %q: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy shared component: %w", err)
	}

	return out.Close()
}
