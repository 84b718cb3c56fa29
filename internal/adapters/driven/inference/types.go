package inference

import (
	"encoding/json"
	"fmt"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

// Typed request/response structures for every runtime endpoint. Responses
// are decoded defensively: a shape that does not match the contract fails
// with domain.ErrMalformedResponse instead of surfacing nil-field panics.

// errorEnvelope is the runtime's error body, returned with non-2xx statuses.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// embeddingsRequest is the POST /v1/embeddings payload.
type embeddingsRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

// embeddingsResponse is the POST /v1/embeddings reply.
type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// completionRequest is the POST /v1/chat/completions payload.
type completionRequest struct {
	Messages         []domain.Message `json:"messages"`
	Model            string           `json:"model"`
	Stream           bool             `json:"stream"`
	MaxTokens        int              `json:"max_tokens"`
	Temperature      float64          `json:"temperature"`
	TopP             float64          `json:"top_p"`
	FrequencyPenalty float64          `json:"frequency_penalty"`
	PresencePenalty  float64          `json:"presence_penalty"`
}

// completionResponse is the POST /v1/chat/completions reply.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// uploadResponse is the POST /v1/files reply.
type uploadResponse struct {
	ID string `json:"id"`
}

// filesResponse is the GET /v1/files reply.
type filesResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Size int64  `json:"size"`
	} `json:"data"`
}

// Model states reported by GET /v1/models.
const (
	modelStateRunning   = "running"
	modelStateInstalled = "installed"
)

// modelsResponse is the GET /v1/models reply.
type modelsResponse struct {
	Data []struct {
		ID    string `json:"id"`
		State string `json:"state"`
	} `json:"data"`
}

// pullModelRequest is the POST /v1/models/pull payload.
type pullModelRequest struct {
	Model string `json:"model"`
}

// startModelRequest is the POST /v1/models/start payload.
type startModelRequest struct {
	Model string `json:"model"`
}

// startModelResponse is the POST /v1/models/start reply.
type startModelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// enginesResponse is the GET /v1/engines reply.
type enginesResponse struct {
	Data []struct {
		Name            string `json:"name"`
		Version         string `json:"version"`
		UpdateAvailable bool   `json:"update_available"`
	} `json:"data"`
}

// healthResponse is the GET /healthz reply.
type healthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	UpdateAvailable bool   `json:"update_available"`
}

// hardwareResponse is the GET /v1/hardware reply.
type hardwareResponse struct {
	GPU       string `json:"gpu"`
	VRAMBytes int64  `json:"vram_bytes"`
	RAMBytes  int64  `json:"ram_bytes"`
}

// threadsResponse is the GET /v1/threads reply.
type threadsResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"data"`
}

// decode unmarshals a response body into out, converting shape failures
// into the malformed-response error.
func decode(endpoint string, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", endpoint, domain.ErrMalformedResponse, err)
	}
	return nil
}
