// Package file is the TOML-backed settings adapter. Settings live in a
// single file under the user's config directory and are handed to the core
// as an explicit parameter object.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/calder-labs/askdoc-cli/internal/logger"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// settingsFile is the on-disk TOML shape. Kept separate from the domain
// type so file keys stay stable if the domain struct is reorganised.
type settingsFile struct {
	Engine         string `toml:"engine"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	BaseURL        string `toml:"base_url"`
	Logging        bool   `toml:"logging"`
	DataDir        string `toml:"data_dir"`
	PartSize       int    `toml:"part_size"`
	Storage        string `toml:"storage"`
}

// SettingsStore reads and writes settings as TOML.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// NewSettingsStore creates a settings store under configDir.
// If configDir is empty, defaults to ~/.askdoc/config.toml.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".askdoc")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from disk. A missing file yields the defaults; keys
// absent from the file keep their default values.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings: %w", err)
	}

	var f settingsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return settings, fmt.Errorf("parse settings: %w", err)
	}

	if f.Engine != "" {
		settings.Engine = f.Engine
	}
	if f.Model != "" {
		settings.Model = f.Model
	}
	if f.EmbeddingModel != "" {
		settings.EmbeddingModel = f.EmbeddingModel
	}
	if f.BaseURL != "" {
		settings.BaseURL = f.BaseURL
	}
	if f.DataDir != "" {
		settings.DataDir = f.DataDir
	}
	if f.PartSize > 0 {
		settings.PartSize = f.PartSize
	}
	if f.Storage != "" {
		settings.Storage = f.Storage
	}
	settings.Logging = f.Logging

	return settings, nil
}

// Save persists settings with restricted permissions.
func (s *SettingsStore) Save(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := settingsFile{
		Engine:         settings.Engine,
		Model:          settings.Model,
		EmbeddingModel: settings.EmbeddingModel,
		BaseURL:        settings.BaseURL,
		Logging:        settings.Logging,
		DataDir:        settings.DataDir,
		PartSize:       settings.PartSize,
		Storage:        settings.Storage,
	}

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Watch reloads settings whenever the config file changes and feeds the
// result to fn. Editors that replace the file on save (write to temp then
// rename) are handled by watching the directory rather than the file.
func (s *SettingsStore) Watch(fn func(domain.Settings)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch settings directory: %w", err)
	}

	done := make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.filePath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				settings, err := s.Load()
				if err != nil {
					logger.Warn("Settings reload failed: %v", err)
					continue
				}
				fn(settings)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Settings watcher error: %v", err)
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		watcher.Close()
	}

	return stop, nil
}

// Path returns the configuration file path, for display.
func (s *SettingsStore) Path() string {
	return s.filePath
}
