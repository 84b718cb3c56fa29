package inference

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

// fakeRuntime is an httptest-backed runtime with per-route hit counting.
// Routes are keyed "METHOD /path"; unset routes fall back to a healthy
// default so the bootstrap cascade passes without per-test boilerplate.
type fakeRuntime struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	handlers map[string]http.HandlerFunc
}

func newFakeRuntime(t *testing.T) *fakeRuntime {
	f := &fakeRuntime{
		t:        t,
		hits:     make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRuntime) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.hits[key]++
	h := f.handlers[key]
	f.mu.Unlock()

	if h != nil {
		h(w, r)
		return
	}

	// Healthy defaults for the cascade.
	switch key {
	case "GET /healthz":
		fmt.Fprint(w, `{"status":"ok","version":"1.0.0","update_available":false}`)
	case "GET /v1/engines":
		fmt.Fprint(w, `{"data":[{"name":"llama-cpp","version":"1.0.0","update_available":false}]}`)
	case "GET /v1/models":
		fmt.Fprint(w, `{"data":[{"id":"embed-test","state":"running"},{"id":"chat-test","state":"running"}]}`)
	case "POST /v1/admin/stop":
		w.WriteHeader(http.StatusOK)
	default:
		f.t.Errorf("unexpected request: %s", key)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeRuntime) on(key string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[key] = h
}

func (f *fakeRuntime) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func newTestClient(f *fakeRuntime) *Client {
	return NewClient(Config{
		BaseURL:             f.srv.URL,
		Engine:              "llama-cpp",
		Model:               "chat-test",
		EmbeddingModel:      "embed-test",
		PollInterval:        10 * time.Millisecond,
		StartTimeout:        200 * time.Millisecond,
		ModelInstallTimeout: 100 * time.Millisecond,
	})
}

func TestEmbed(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"embedding":[0.1,0.2,0.3]}]}`)
	})

	c := newTestClient(f)
	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	// The cascade ran exactly once before the call: one probe for the
	// running check and one for the engine update check.
	assert.Equal(t, 2, f.count("GET /healthz"))
	assert.Equal(t, 1, f.count("GET /v1/engines"))
}

func TestEmbed_RetriesOnceAfterRestart(t *testing.T) {
	f := newFakeRuntime(t)

	var calls int
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"error":{"message":"engine wedged"}}`, http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"data":[{"embedding":[1]}]}`)
	})

	c := newTestClient(f)
	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)

	assert.Equal(t, 2, calls)
	// The retry went through a full restart: stop plus a second cascade.
	assert.Equal(t, 1, f.count("POST /v1/admin/stop"))
	assert.Equal(t, 2, f.count("GET /v1/engines"))
}

func TestEmbed_SecondFailureIsTerminal(t *testing.T) {
	f := newFakeRuntime(t)

	var calls int
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"still wedged"}}`, http.StatusInternalServerError)
	})

	c := newTestClient(f)
	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)

	// Exactly two attempts, never more.
	assert.Equal(t, 2, calls)
}

func TestEmbed_UnsupportedModelHandleDoesNotRetry(t *testing.T) {
	f := newFakeRuntime(t)

	var calls int
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"unsupported model handle"}}`, http.StatusBadRequest)
	})

	c := newTestClient(f)
	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedModelHandle)
	assert.NotErrorIs(t, err, domain.ErrServiceUnavailable)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, f.count("POST /v1/admin/stop"))
}

func TestEmbed_MalformedResponseDoesNotRetry(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": "not an array"}`)
	})

	c := newTestClient(f)
	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Equal(t, 0, f.count("POST /v1/admin/stop"))
}

func TestEmbed_EmptyEmbeddingIsMalformed(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})

	c := newTestClient(f)
	_, err := c.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestComplete(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"choices":[{"message":{"content":"The answer is 42."}}],
			"usage":{"prompt_tokens":10,"completion_tokens":7,"total_tokens":17}
		}`)
	})

	c := newTestClient(f)
	res, err := c.Complete(context.Background(), []domain.Message{
		{Role: domain.RoleUser, Content: "What is the answer?"},
	}, domain.DefaultCompletionOptions())
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", res.Content)
	assert.Equal(t, 17, res.Usage.TotalTokens)
}

func TestComplete_NoMessages(t *testing.T) {
	f := newFakeRuntime(t)
	c := newTestClient(f)

	_, err := c.Complete(context.Background(), nil, domain.DefaultCompletionOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, f.count("POST /v1/chat/completions"))
}

func TestUploadAndContent(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("POST /v1/files", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.txt", header.Filename)
		fmt.Fprint(w, `{"id":"file-7"}`)
	})
	f.on("GET /v1/files/file-7/content", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Raw text. Exactly as stored.")
	})

	c := newTestClient(f)
	id, err := c.Upload(context.Background(), "notes.txt", []byte("Raw text. Exactly as stored."))
	require.NoError(t, err)
	assert.Equal(t, domain.FileID("file-7"), id)

	text, err := c.Content(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Raw text. Exactly as stored.", text)
}

func TestBootstrap_PullsMissingModel(t *testing.T) {
	f := newFakeRuntime(t)

	var pulled bool
	var polls int
	f.on("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if !pulled || polls < 3 {
			fmt.Fprint(w, `{"data":[{"id":"chat-test","state":"running"}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"chat-test","state":"running"},{"id":"embed-test","state":"installed"}]}`)
	})
	f.on("POST /v1/models/pull", func(w http.ResponseWriter, r *http.Request) {
		pulled = true
		w.WriteHeader(http.StatusOK)
	})
	f.on("POST /v1/models/start", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"message":""}`)
	})
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"embedding":[1]}]}`)
	})

	c := newTestClient(f)
	_, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)

	assert.True(t, pulled)
	assert.Equal(t, 1, f.count("POST /v1/models/start"))
}

func TestBootstrap_ModelInstallTimeout(t *testing.T) {
	f := newFakeRuntime(t)

	// The model never shows up in the listing, no matter how often pulled.
	f.on("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})
	f.on("POST /v1/models/pull", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(f)
	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelInstallTimeout)
}

func TestBootstrap_StartModelRefused(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"embed-test","state":"installed"},{"id":"chat-test","state":"running"}]}`)
	})
	f.on("POST /v1/models/start", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"message":"out of memory"}`)
	})

	c := newTestClient(f)
	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestBootstrap_InstallsMissingEngine(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("GET /v1/engines", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})
	f.on("POST /v1/engines/llama-cpp/install", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"embedding":[1]}]}`)
	})

	c := newTestClient(f)
	_, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("POST /v1/engines/llama-cpp/install"))
}

func TestBootstrap_UpdatesStaleEngine(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("GET /v1/engines", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"name":"llama-cpp","version":"0.9.0","update_available":true}]}`)
	})
	f.on("POST /v1/engines/llama-cpp/update", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"embedding":[1]}]}`)
	})

	c := newTestClient(f)
	_, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("POST /v1/engines/llama-cpp/update"))
}

func TestBootstrap_CachedAcrossCalls(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"embedding":[1]}]}`)
	})

	c := newTestClient(f)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.Embed(ctx, "hello")
		require.NoError(t, err)
	}

	// Readiness is cached: one cascade serves all three calls.
	assert.Equal(t, 2, f.count("GET /healthz"))
	assert.Equal(t, 1, f.count("GET /v1/engines"))
}

func TestHealth(t *testing.T) {
	f := newFakeRuntime(t)
	c := newTestClient(f)

	require.NoError(t, c.Health(context.Background()))

	f.on("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"degraded"}`)
	})
	assert.Error(t, c.Health(context.Background()))
}

func TestModelsAndEngines(t *testing.T) {
	f := newFakeRuntime(t)
	c := newTestClient(f)
	ctx := context.Background()

	models, err := c.Models(ctx)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "embed-test", models[0].Name)
	assert.True(t, models[0].Running)

	engines, err := c.Engines(ctx)
	require.NoError(t, err)
	require.Len(t, engines, 1)
	assert.Equal(t, "llama-cpp", engines[0].Name)
}

func TestThreads(t *testing.T) {
	f := newFakeRuntime(t)
	f.on("GET /v1/threads", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"t1","title":"First chat"}]}`)
	})
	f.on("DELETE /v1/threads/t1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(f)
	ctx := context.Background()

	threads, err := c.Threads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "First chat", threads[0].Title)

	require.NoError(t, c.DeleteThread(ctx, "t1"))
}
