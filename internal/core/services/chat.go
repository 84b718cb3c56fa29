package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driving"
	"github.com/calder-labs/askdoc-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// groundedPrompt frames the retrieved chunk for the model.
const groundedPrompt = "You are a helpful assistant. Answer the question using the following context.\n\nContext:\n%s"

// plainPrompt is used when no retrieval group is given.
const plainPrompt = "You are a helpful assistant. Answer the question concisely."

// ChatService answers questions, optionally grounded in a retrieval group.
type ChatService struct {
	rag         driving.RAGService
	completions driven.CompletionService
	sink        driven.AnswerSink

	// workers tracks in-flight async answers so the process can drain
	// them before exiting; a worker outliving main loses its sink write.
	workers sync.WaitGroup
}

// NewChatService creates a chat service. The sink receives answers produced
// by the asynchronous path; it must not be nil if AskAsync is used.
func NewChatService(
	rag driving.RAGService,
	completions driven.CompletionService,
	sink driven.AnswerSink,
) *ChatService {
	return &ChatService{
		rag:         rag,
		completions: completions,
		sink:        sink,
	}
}

// Ask answers the question synchronously.
func (s *ChatService) Ask(ctx context.Context, question string, opts driving.AskOptions) (*domain.Answer, error) {
	return s.ask(ctx, uuid.NewString(), question, opts)
}

// AskAsync dispatches the question on a detached worker and returns the
// answer ID immediately. The finished answer goes to the sink; failures are
// logged, not reported back.
func (s *ChatService) AskAsync(ctx context.Context, question string, opts driving.AskOptions) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("ask: %w: question is required", domain.ErrInvalidInput)
	}
	if s.sink == nil {
		return "", fmt.Errorf("ask: %w: no answer sink configured", domain.ErrInvalidInput)
	}

	id := uuid.NewString()

	// Detached from the caller's context: the caller returns immediately
	// and must not be able to cancel the worker.
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		answer, err := s.ask(context.Background(), id, question, opts)
		if err != nil {
			logger.Error("Async answer %s failed: %v", id, err)
			return
		}
		if err := s.sink.Deliver(*answer); err != nil {
			logger.Error("Async answer %s delivery failed: %v", id, err)
		}
	}()

	return id, nil
}

// Wait blocks until every in-flight async answer has been delivered to the
// sink. The composition root calls it before the process exits.
func (s *ChatService) Wait() {
	s.workers.Wait()
}

func (s *ChatService) ask(ctx context.Context, id, question string, opts driving.AskOptions) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("ask: %w: question is required", domain.ErrInvalidInput)
	}

	completion := opts.Completion
	if completion == (domain.CompletionOptions{}) {
		completion = domain.DefaultCompletionOptions()
	}

	var retrieval *domain.Retrieval
	system := plainPrompt

	if opts.Group != "" {
		r, found, err := s.rag.Retrieve(ctx, question, opts.Group)
		if err != nil {
			return nil, fmt.Errorf("ask: %w", err)
		}
		if found {
			retrieval = r
			system = fmt.Sprintf(groundedPrompt, r.Text)
			logger.Debug("Grounding answer with file %s part %d", r.FileID, r.Part)
		} else {
			logger.Info("Group %q gave no context, answering ungrounded", opts.Group)
		}
	}

	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: question},
	}

	result, err := s.completions.Complete(ctx, messages, completion)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	return &domain.Answer{
		ID:       id,
		Question: question,
		Content:  result.Content,
		Context:  retrieval,
		Usage:    result.Usage,
	}, nil
}
