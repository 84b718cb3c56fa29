package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/calder-labs/askdoc-cli/internal/chunker"
	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driving"
	"github.com/calder-labs/askdoc-cli/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// supportedExtensions are the plain-text formats ingestion accepts.
// Binary formats would embed garbage; they are rejected up front.
var supportedExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
}

// RAGService builds and queries retrieval groups.
type RAGService struct {
	groups   driven.GroupStore
	files    driven.FileService
	embedder driven.EmbeddingService
	settings domain.Settings

	// groupLocks serializes writers per group name. Saves are whole-unit
	// overwrites, so two unserialized ingests into one group would lose
	// one writer's records.
	mu         sync.Mutex
	groupLocks map[string]*sync.Mutex
}

// NewRAGService creates a RAG service. Settings are an explicit input; the
// service never reads configuration from the environment.
func NewRAGService(
	groups driven.GroupStore,
	files driven.FileService,
	embedder driven.EmbeddingService,
	settings domain.Settings,
) *RAGService {
	return &RAGService{
		groups:     groups,
		files:      files,
		embedder:   embedder,
		settings:   settings,
		groupLocks: make(map[string]*sync.Mutex),
	}
}

// lockGroup returns the mutex for a group name, creating it on first use.
func (s *RAGService) lockGroup(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.groupLocks[name]
	if !ok {
		l = &sync.Mutex{}
		s.groupLocks[name] = l
	}
	return l
}

// Ingest uploads a document, chunks it, embeds every chunk and appends the
// records to the named group.
func (s *RAGService) Ingest(ctx context.Context, path, group string) (*driving.IngestResult, error) {
	if path == "" {
		return nil, fmt.Errorf("ingest: %w: file path is required", domain.ErrInvalidInput)
	}
	if group == "" {
		return nil, fmt.Errorf("ingest: %w: group name is required", domain.ErrInvalidInput)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("ingest %q: %w: %q", path, domain.ErrUnsupportedFileType, ext)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %q: %w", path, err)
	}
	text := string(content)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("ingest %q: %w: file is empty", path, domain.ErrInvalidInput)
	}

	logger.Section("Ingest")
	logger.Info("Ingesting %q into group %q", path, group)

	fileID, err := s.files.Upload(ctx, filepath.Base(path), content)
	if err != nil {
		return nil, fmt.Errorf("ingest: upload %q: %w", path, err)
	}
	logger.Debug("Uploaded as file %s", fileID)

	chunks := chunkDocument(text, s.settings.PartSize)
	logger.Info("Split into %d chunks (part size %d)", len(chunks), s.settings.PartSize)

	// Embedding dominates ingest time; do it before taking the group lock
	// so concurrent ingests into one group only serialize the store write.
	records := make([]domain.EmbeddingRecord, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("ingest: embed chunk %d: %w", i, err)
		}
		records[i] = domain.EmbeddingRecord{FileID: fileID, Part: i, Embedding: vector}
		logger.Debug("Chunk %d embedded: %d dimensions", i, len(vector))
	}

	lock := s.lockGroup(group)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.groups.Load(ctx, group)
	if errors.Is(err, domain.ErrGroupNotFound) {
		g = domain.NewGroup(group, s.settings.PartSize)
		logger.Debug("Group %q created with part size %d", group, g.PartSize)
	} else if err != nil {
		return nil, fmt.Errorf("ingest: load group %q: %w", group, err)
	}

	for _, rec := range records {
		g = g.Append(rec)
	}

	if err := s.groups.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("ingest: save group %q: %w", group, err)
	}
	logger.Info("Group %q now holds %d records", group, g.Len())

	return &driving.IngestResult{
		FileID:   fileID,
		Group:    group,
		Chunks:   len(chunks),
		PartSize: g.PartSize,
	}, nil
}

// Retrieve embeds the query, scans the group for the best-matching record
// and materialises its chunk text from the source document.
func (s *RAGService) Retrieve(ctx context.Context, query, group string) (*domain.Retrieval, bool, error) {
	if strings.TrimSpace(query) == "" {
		return nil, false, fmt.Errorf("retrieve: %w: query is required", domain.ErrInvalidInput)
	}
	if group == "" {
		return nil, false, fmt.Errorf("retrieve: %w: group name is required", domain.ErrInvalidInput)
	}

	logger.Section("Retrieve")
	logger.Debug("Query %q against group %q", query, group)

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("retrieve: embed query: %w", err)
	}

	g, err := s.groups.Load(ctx, group)
	if err != nil {
		return nil, false, fmt.Errorf("retrieve: load group %q: %w", group, err)
	}

	match, found, err := g.FindBest(queryVec)
	if err != nil {
		return nil, false, fmt.Errorf("retrieve: search group %q: %w", group, err)
	}
	if !found {
		logger.Info("Group %q holds no records", group)
		return nil, false, nil
	}
	logger.Info("Best match: file %s part %d (similarity %.4f)",
		match.Record.FileID, match.Record.Part, match.Similarity)

	text, err := s.materialize(ctx, g, match.Record)
	if err != nil {
		return nil, false, err
	}

	return &domain.Retrieval{
		Group:      group,
		FileID:     match.Record.FileID,
		Part:       match.Record.Part,
		Text:       text,
		Similarity: match.Similarity,
	}, true, nil
}

// materialize reproduces the winning chunk's text by re-fetching the source
// document and re-chunking it with the group's part size. Determinism of the
// chunker makes the stored part index addressable.
func (s *RAGService) materialize(ctx context.Context, g domain.Group, rec domain.EmbeddingRecord) (string, error) {
	text, err := s.files.Content(ctx, rec.FileID)
	if err != nil {
		return "", fmt.Errorf("retrieve: fetch document %s: %w", rec.FileID, err)
	}

	chunks := chunkDocument(text, g.PartSize)
	if rec.Part < 0 || rec.Part >= len(chunks) {
		return "", fmt.Errorf(
			"retrieve: document %s yields %d chunks at part size %d, record points at part %d",
			rec.FileID, len(chunks), g.PartSize, rec.Part)
	}

	return chunks[rec.Part], nil
}

// chunkDocument is the shared ingest/materialise chunking rule: a document
// no longer than the part size is one chunk, whole and untrimmed; anything
// longer goes through the sentence chunker.
func chunkDocument(text string, partSize int) []string {
	if len(text) <= partSize {
		return []string{text}
	}
	return chunker.Split(text, partSize)
}
