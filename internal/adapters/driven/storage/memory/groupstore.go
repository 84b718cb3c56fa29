// Package memory provides an in-memory GroupStore for tests and ephemeral
// sessions. Nothing survives process exit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure GroupStore implements the interface.
var _ driven.GroupStore = (*GroupStore)(nil)

// GroupStore keeps groups in a map. Unlike the durable stores it is safe for
// concurrent use, which keeps tests simple.
type GroupStore struct {
	mu     sync.RWMutex
	groups map[string]domain.Group
}

// NewGroupStore creates an empty in-memory group store.
func NewGroupStore() *GroupStore {
	return &GroupStore{groups: make(map[string]domain.Group)}
}

// Load returns a copy of the named group.
func (s *GroupStore) Load(_ context.Context, name string) (domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[name]
	if !ok {
		return domain.Group{}, fmt.Errorf("group %q: %w", name, domain.ErrGroupNotFound)
	}

	// Copy records so callers cannot mutate the stored group.
	cp := group
	cp.Embeddings = make([]domain.EmbeddingRecord, len(group.Embeddings))
	copy(cp.Embeddings, group.Embeddings)

	return cp, nil
}

// Save stores the group's full contents.
func (s *GroupStore) Save(_ context.Context, group domain.Group) error {
	if group.Name == "" {
		return fmt.Errorf("save group: %w: empty group name", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := group
	cp.Embeddings = make([]domain.EmbeddingRecord, len(group.Embeddings))
	copy(cp.Embeddings, group.Embeddings)
	s.groups[group.Name] = cp

	return nil
}

// List returns all group names, sorted.
func (s *GroupStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// Delete removes the named group.
func (s *GroupStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[name]; !ok {
		return fmt.Errorf("group %q: %w", name, domain.ErrGroupNotFound)
	}
	delete(s.groups, name)

	return nil
}

// Close releases resources.
func (s *GroupStore) Close() error {
	return nil
}
