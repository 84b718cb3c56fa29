// Package inference is the HTTP adapter for the backing inference runtime.
// It couples two responsibilities the rest of the program sees separately:
// typed endpoint calls (embeddings, completions, files, models, engines,
// threads) and the bootstrap cascade that brings a cold runtime to a ready
// state before any call is made.
//
// Every outbound request is wrapped in a one-shot recover-and-retry policy:
// attempt once; on a retryable failure stop the runtime, redo the full
// cascade and attempt exactly once more. A second failure is terminal for
// that call. There is no unbounded retry loop.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"golang.org/x/time/rate"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/calder-labs/askdoc-cli/internal/logger"
)

// Ensure Client implements the runtime-facing ports.
var (
	_ driven.EmbeddingService  = (*Client)(nil)
	_ driven.CompletionService = (*Client)(nil)
	_ driven.FileService       = (*Client)(nil)
	_ driven.RuntimeManager    = (*Client)(nil)
	_ driven.ThreadService     = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultTimeout      = 120 * time.Second
	DefaultProbeTimeout = 3 * time.Second
	DefaultStartTimeout = 45 * time.Second
	DefaultSettleTime   = 2 * time.Second
	DefaultPollInterval = 2 * time.Second

	// DefaultRequestsPerSecond bounds how hard ingestion hammers the local
	// runtime; embedding a large document issues one call per chunk.
	DefaultRequestsPerSecond = 20
	DefaultBurstSize         = 40
)

// Config holds configuration for the runtime client.
type Config struct {
	// BaseURL is the runtime's API base address.
	BaseURL string

	// Engine is the processing engine the bootstrap cascade must ensure.
	Engine string

	// Model is the chat completion model.
	Model string

	// EmbeddingModel is the embedding model.
	EmbeddingModel string

	// Timeout is the per-request timeout (default 120s; completions on
	// small machines are slow).
	Timeout time.Duration

	// BinaryPath is where the runtime executable lives or gets installed.
	// Empty means the runtime is managed externally.
	BinaryPath string

	// InstallerURL is the download source for the one-time silent install.
	InstallerURL string

	// InstallArgs are passed to the installer (default: --silent).
	InstallArgs []string

	// StartArgs are passed to the runtime binary when spawning it.
	StartArgs []string

	// SharedLibSource/SharedLibDest describe the native shared component
	// the engine needs; the source is copied into place when the
	// destination is missing. Both empty disables the copy.
	SharedLibSource string
	SharedLibDest   string

	// SettleTime is the fixed wait after spawning the runtime process.
	SettleTime time.Duration

	// StartTimeout bounds how long the cascade waits for a spawned
	// runtime to answer its health probe.
	StartTimeout time.Duration

	// PollInterval is the fixed wait between model-install polls.
	PollInterval time.Duration

	// ModelInstallTimeout bounds the model-install poll loop.
	ModelInstallTimeout time.Duration

	// RequestsPerSecond and BurstSize configure the outbound rate limiter.
	RequestsPerSecond float64
	BurstSize         int
}

// Client talks to the backing inference runtime.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	retry      retrypolicy.RetryPolicy[[]byte]
	proc       *runtimeProcess

	// bootMu serializes the cascade; readiness flags make repeated
	// EnsureReady calls cheap within one session.
	bootMu       sync.Mutex
	serviceReady bool
	modelReady   map[string]bool
}

// rawBody carries a pre-encoded request body with its content type.
type rawBody struct {
	contentType string
	data        []byte
}

// NewClient creates a runtime client from settings.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SettleTime == 0 {
		cfg.SettleTime = DefaultSettleTime
	}
	if cfg.StartTimeout == 0 {
		cfg.StartTimeout = DefaultStartTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ModelInstallTimeout == 0 {
		cfg.ModelInstallTimeout = domain.DefaultModelInstallTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		proc: &runtimeProcess{
			binaryPath:   cfg.BinaryPath,
			installerURL: cfg.InstallerURL,
			installArgs:  cfg.InstallArgs,
			startArgs:    cfg.StartArgs,
			settleTime:   cfg.SettleTime,
		},
		modelReady: make(map[string]bool),
	}

	c.retry = retrypolicy.Builder[[]byte]().
		HandleIf(func(_ []byte, err error) bool { return isRetryable(err) }).
		WithMaxRetries(1).
		Build()

	return c
}

// isRetryable reports whether a restart could plausibly fix the failure.
// Invalid input, a rejected model handle, a contract-violating response and
// caller cancellation are terminal; everything else (connection refused,
// 5xx, stale engine state) goes through the recovery cascade once.
func isRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrUnsupportedModelHandle):
		return false
	case errors.Is(err, domain.ErrInvalidInput):
		return false
	case errors.Is(err, domain.ErrMalformedResponse):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// request performs one guarded call: ensure readiness, attempt, and on a
// retryable failure restart the runtime and attempt exactly once more.
// model is the model the call depends on; empty means none.
func (c *Client) request(ctx context.Context, method, endpoint string, body any, model string) ([]byte, error) {
	if err := c.ensureReady(ctx, model); err != nil {
		return nil, fmt.Errorf("bootstrap before %s %s: %w", method, endpoint, err)
	}

	data, err := failsafe.GetWithExecution(func(exec failsafe.Execution[[]byte]) ([]byte, error) {
		if exec.Attempts() > 1 {
			logger.Warn("%s %s failed (%v), restarting runtime for one retry", method, endpoint, exec.LastError())
			if rerr := c.restart(ctx, model); rerr != nil {
				return nil, fmt.Errorf("recovery restart: %w", rerr)
			}
		}
		return c.do(ctx, method, endpoint, body)
	}, c.retry)
	if err != nil {
		if !isRetryable(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%s %s failed after restart and retry: %w: %w", method, endpoint, domain.ErrServiceUnavailable, err)
	}

	return data, nil
}

// do performs a single HTTP exchange with no recovery.
// GET/DELETE carry no body; POST/PUT carry a body and content type.
func (c *Client) do(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	contentType := ""

	switch b := body.(type) {
	case nil:
	case rawBody:
		reader = bytes.NewReader(b.data)
		contentType = b.contentType
	default:
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(method, endpoint, resp.StatusCode, data)
	}

	return data, nil
}

// statusError maps a non-2xx response to an error, recognising the known
// non-retryable handle rejection.
func (c *Client) statusError(method, endpoint string, status int, body []byte) error {
	var env errorEnvelope
	msg := ""
	if json.Unmarshal(body, &env) == nil {
		msg = env.Error.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	if strings.Contains(strings.ToLower(msg), "unsupported model handle") {
		return fmt.Errorf("%s %s: %w", method, endpoint, domain.ErrUnsupportedModelHandle)
	}

	return fmt.Errorf("%s %s: runtime returned status %d: %s", method, endpoint, status, msg)
}

// Embed generates a vector embedding for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body := embeddingsRequest{Input: text, Model: c.cfg.EmbeddingModel}

	data, err := c.request(ctx, http.MethodPost, "/v1/embeddings", body, c.cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}

	var resp embeddingsResponse
	if err := decode("/v1/embeddings", data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: /v1/embeddings: %w: empty embedding data",
			domain.ErrEmbeddingFailed, domain.ErrMalformedResponse)
	}

	return resp.Data[0].Embedding, nil
}

// ModelName returns the embedding model in use.
func (c *Client) ModelName() string {
	return c.cfg.EmbeddingModel
}

// Complete sends a chat completion request and returns the first choice.
func (c *Client) Complete(
	ctx context.Context, messages []domain.Message, opts domain.CompletionOptions,
) (*driven.CompletionResult, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("complete: %w: no messages", domain.ErrInvalidInput)
	}

	body := completionRequest{
		Messages:         messages,
		Model:            c.cfg.Model,
		Stream:           false,
		MaxTokens:        opts.MaxTokens,
		Temperature:      opts.Temperature,
		TopP:             opts.TopP,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	}

	data, err := c.request(ctx, http.MethodPost, "/v1/chat/completions", body, c.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	var resp completionResponse
	if err := decode("/v1/chat/completions", data, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("/v1/chat/completions: %w: no choices", domain.ErrMalformedResponse)
	}

	return &driven.CompletionResult{
		Content: resp.Choices[0].Message.Content,
		Usage: domain.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Upload stores a document file in the runtime and returns the assigned ID.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (domain.FileID, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", name, err)
	}
	if _, err := fw.Write(content); err != nil {
		return "", fmt.Errorf("upload %q: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %q: %w", name, err)
	}

	data, err := c.request(ctx, http.MethodPost, "/v1/files",
		rawBody{contentType: w.FormDataContentType(), data: buf.Bytes()}, "")
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", name, err)
	}

	var resp uploadResponse
	if err := decode("/v1/files", data, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("/v1/files: %w: missing file id", domain.ErrMalformedResponse)
	}

	return domain.FileID(resp.ID), nil
}

// Content fetches the raw text of a stored file.
func (c *Client) Content(ctx context.Context, id domain.FileID) (string, error) {
	data, err := c.request(ctx, http.MethodGet, "/v1/files/"+string(id)+"/content", nil, "")
	if err != nil {
		return "", fmt.Errorf("fetch file %s content: %w", id, err)
	}
	return string(data), nil
}

// List returns all files stored in the runtime.
func (c *Client) List(ctx context.Context) ([]driven.FileInfo, error) {
	data, err := c.request(ctx, http.MethodGet, "/v1/files", nil, "")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	var resp filesResponse
	if err := decode("/v1/files", data, &resp); err != nil {
		return nil, err
	}

	files := make([]driven.FileInfo, len(resp.Data))
	for i, f := range resp.Data {
		files[i] = driven.FileInfo{ID: domain.FileID(f.ID), Name: f.Name, Size: f.Size}
	}

	return files, nil
}

// Delete removes a stored file.
func (c *Client) Delete(ctx context.Context, id domain.FileID) error {
	if _, err := c.request(ctx, http.MethodDelete, "/v1/files/"+string(id), nil, ""); err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	return nil
}

// Threads lists stored conversation threads.
func (c *Client) Threads(ctx context.Context) ([]driven.ThreadInfo, error) {
	data, err := c.request(ctx, http.MethodGet, "/v1/threads", nil, "")
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	var resp threadsResponse
	if err := decode("/v1/threads", data, &resp); err != nil {
		return nil, err
	}

	threads := make([]driven.ThreadInfo, len(resp.Data))
	for i, th := range resp.Data {
		threads[i] = driven.ThreadInfo{ID: th.ID, Title: th.Title}
	}

	return threads, nil
}

// DeleteThread removes a stored thread.
func (c *Client) DeleteThread(ctx context.Context, id string) error {
	if _, err := c.request(ctx, http.MethodDelete, "/v1/threads/"+id, nil, ""); err != nil {
		return fmt.Errorf("delete thread %s: %w", id, err)
	}
	return nil
}

// Hardware reports the runtime's hardware survey.
func (c *Client) Hardware(ctx context.Context) (*driven.HardwareInfo, error) {
	data, err := c.request(ctx, http.MethodGet, "/v1/hardware", nil, "")
	if err != nil {
		return nil, fmt.Errorf("hardware survey: %w", err)
	}

	var resp hardwareResponse
	if err := decode("/v1/hardware", data, &resp); err != nil {
		return nil, err
	}

	return &driven.HardwareInfo{
		GPU:       resp.GPU,
		VRAMBytes: resp.VRAMBytes,
		RAMBytes:  resp.RAMBytes,
	}, nil
}
