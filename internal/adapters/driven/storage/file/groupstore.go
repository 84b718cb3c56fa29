// Package file provides the default GroupStore: one JSON file per group.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure GroupStore implements the interface.
var _ driven.GroupStore = (*GroupStore)(nil)

const groupExt = ".json"

// GroupStore persists each group as a single JSON file under a data
// directory. Saves write the whole group to a temp file and rename it over
// the old one, so a group file is never left partially written.
type GroupStore struct {
	dir string
}

// NewGroupStore creates a group store rooted at dataDir/groups.
// If dataDir is empty, defaults to ~/.askdoc/data.
func NewGroupStore(dataDir string) (*GroupStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".askdoc", "data")
	}

	dir := filepath.Join(dataDir, "groups")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating groups directory: %w", err)
	}

	return &GroupStore{dir: dir}, nil
}

// Load reads the named group from its JSON file.
func (s *GroupStore) Load(_ context.Context, name string) (domain.Group, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Group{}, fmt.Errorf("group %q: %w", name, domain.ErrGroupNotFound)
		}
		return domain.Group{}, fmt.Errorf("read group %q: %w", name, err)
	}

	var group domain.Group
	if err := json.Unmarshal(data, &group); err != nil {
		return domain.Group{}, fmt.Errorf("decode group %q: %w", name, err)
	}
	group.Name = name

	return group, nil
}

// Save writes the group's full contents atomically.
func (s *GroupStore) Save(_ context.Context, group domain.Group) error {
	if group.Name == "" {
		return fmt.Errorf("save group: %w: empty group name", domain.ErrInvalidInput)
	}

	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("encode group %q: %w", group.Name, err)
	}

	// Whole-unit overwrite: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(s.dir, ".group-*")
	if err != nil {
		return fmt.Errorf("save group %q: %w", group.Name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("save group %q: %w", group.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save group %q: %w", group.Name, err)
	}

	if err := os.Rename(tmpPath, s.path(group.Name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save group %q: %w", group.Name, err)
	}

	return nil
}

// List returns the names of all persisted groups, sorted.
func (s *GroupStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), groupExt) {
			continue
		}
		name, err := url.PathUnescape(strings.TrimSuffix(entry.Name(), groupExt))
		if err != nil {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// Delete removes the named group's file.
func (s *GroupStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("group %q: %w", name, domain.ErrGroupNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete group %q: %w", name, err)
	}
	return nil
}

// Close releases resources.
func (s *GroupStore) Close() error {
	return nil
}

// Dir returns the directory holding the group files.
func (s *GroupStore) Dir() string {
	return s.dir
}

// path maps a group name to its storage unit. Names are escaped so any
// group name is addressable as a file.
func (s *GroupStore) path(name string) string {
	return filepath.Join(s.dir, url.PathEscape(name)+groupExt)
}
