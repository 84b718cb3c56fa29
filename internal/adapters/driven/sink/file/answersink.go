// Package file persists asynchronously produced answers as JSON documents,
// one file per answer, so they can be collected after the producing command
// has returned.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure AnswerSink implements the interface.
var _ driven.AnswerSink = (*AnswerSink)(nil)

// answerDocument is the on-disk shape of a delivered answer.
type answerDocument struct {
	ID       string            `json:"id"`
	Question string            `json:"question"`
	Content  string            `json:"content"`
	Context  *domain.Retrieval `json:"context,omitempty"`
	Usage    struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// AnswerSink writes answers into a directory, named by answer ID.
type AnswerSink struct {
	dir string
}

// NewAnswerSink creates a sink writing into dir.
func NewAnswerSink(dir string) (*AnswerSink, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create answers directory: %w", err)
	}
	return &AnswerSink{dir: dir}, nil
}

// Deliver writes the answer atomically via a temp file rename.
func (s *AnswerSink) Deliver(answer domain.Answer) error {
	if answer.ID == "" {
		return fmt.Errorf("deliver answer: %w: missing answer id", domain.ErrInvalidInput)
	}

	doc := answerDocument{
		ID:       answer.ID,
		Question: answer.Question,
		Content:  answer.Content,
		Context:  answer.Context,
	}
	doc.Usage.PromptTokens = answer.Usage.PromptTokens
	doc.Usage.CompletionTokens = answer.Usage.CompletionTokens
	doc.Usage.TotalTokens = answer.Usage.TotalTokens

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode answer %s: %w", answer.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".answer-*")
	if err != nil {
		return fmt.Errorf("deliver answer %s: %w", answer.ID, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("deliver answer %s: %w", answer.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("deliver answer %s: %w", answer.ID, err)
	}

	final := filepath.Join(s.dir, answer.ID+".json")
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("deliver answer %s: %w", answer.ID, err)
	}

	return nil
}

// Dir returns the directory answers are written to.
func (s *AnswerSink) Dir() string {
	return s.dir
}
