// Command askdoc is a local RAG assistant: it ingests plain-text documents
// into named retrieval groups and answers questions grounded in the best
// matching chunk, served by a local inference runtime it manages itself.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/calder-labs/askdoc-cli/internal/adapters/driven/config/file"
	"github.com/calder-labs/askdoc-cli/internal/adapters/driven/inference"
	sinkfile "github.com/calder-labs/askdoc-cli/internal/adapters/driven/sink/file"
	storagefile "github.com/calder-labs/askdoc-cli/internal/adapters/driven/storage/file"
	"github.com/calder-labs/askdoc-cli/internal/adapters/driven/storage/sqlite"
	"github.com/calder-labs/askdoc-cli/internal/adapters/driving/cli"
	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/calder-labs/askdoc-cli/internal/core/services"
	"github.com/calder-labs/askdoc-cli/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	settingsStore, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("settings at %s: %w", settingsStore.Path(), err)
	}

	logger.SetVerbose(settings.Logging)

	dataDir := settings.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dataDir = filepath.Join(home, ".askdoc", "data")
	}

	groups, err := newGroupStore(settings, dataDir)
	if err != nil {
		return fmt.Errorf("open group store: %w", err)
	}
	defer groups.Close()

	sink, err := sinkfile.NewAnswerSink(filepath.Join(dataDir, "answers"))
	if err != nil {
		return fmt.Errorf("open answer sink: %w", err)
	}

	client := inference.NewClient(inference.Config{
		BaseURL:        settings.BaseURL,
		Engine:         settings.Engine,
		Model:          settings.Model,
		EmbeddingModel: settings.EmbeddingModel,
	})

	rag := services.NewRAGService(groups, client, client, settings)
	chat := services.NewChatService(rag, client, sink)

	cli.SetServices(cli.Services{
		Chat:     chat,
		RAG:      rag,
		Groups:   groups,
		Runtime:  client,
		Files:    client,
		Threads:  client,
		Settings: settingsStore,
	})

	// Hot-reload of the verbose flag; other settings apply on next start.
	stopWatch, err := settingsStore.Watch(func(s domain.Settings) {
		logger.SetVerbose(s.Logging)
	})
	if err != nil {
		logger.Warn("Settings watch unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	err = cli.Execute()

	// Drain in-flight async answers so their sink writes land before the
	// process exits.
	chat.Wait()

	return err
}

func newGroupStore(settings domain.Settings, dataDir string) (driven.GroupStore, error) {
	switch settings.Storage {
	case domain.StorageSQLite:
		return sqlite.NewGroupStore(dataDir)
	default:
		return storagefile.NewGroupStore(dataDir)
	}
}
