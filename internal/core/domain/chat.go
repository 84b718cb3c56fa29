package domain

import "fmt"

// Chat message roles accepted by the completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions are the sampling parameters for a completion call.
type CompletionOptions struct {
	// MaxTokens caps the generated length.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64

	// TopP is the nucleus sampling cutoff.
	TopP float64
}

// DefaultCompletionOptions returns conservative sampling defaults.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		MaxTokens:   1024,
		Temperature: 0.7,
		TopP:        0.9,
	}
}

// Usage is the token accounting reported by the runtime.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Retrieval is a materialised best-match chunk: the output of a retrieval
// request against a group.
type Retrieval struct {
	// Group is the group that was searched.
	Group string

	// FileID is the source document of the winning chunk.
	FileID FileID

	// Part is the winning chunk's index within the document.
	Part int

	// Text is the chunk content, reproduced by re-chunking the document.
	Text string

	// Similarity is the cosine similarity of the winning record.
	Similarity float64
}

// Answer is the result of a question, with optional retrieval context.
// The asynchronous sink receives the same structure as the synchronous path.
type Answer struct {
	// ID identifies the answer; used as the file name by the async sink.
	ID string

	// Question is the original user question.
	Question string

	// Content is the model's reply.
	Content string

	// Context is the retrieval that grounded the answer, nil when the
	// question was asked without a group.
	Context *Retrieval

	// Usage is the runtime's token accounting.
	Usage Usage
}

// invalidInput wraps ErrInvalidInput with a descriptive message.
func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
