// Package cli is the cobra-based command surface. Commands hold no business
// logic; they validate arguments, call the injected services and format the
// result.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driving"
	"github.com/calder-labs/askdoc-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Set by main through SetServices; commands check for
// nil and fail with a descriptive message so partial wiring is caught early.
var (
	chatService   driving.ChatService
	ragService    driving.RAGService
	groupStore    driven.GroupStore
	runtime       driven.RuntimeManager
	fileService   driven.FileService
	threadService driven.ThreadService
	settingsStore driven.SettingsStore
)

var verbose bool

// Services bundles everything the command surface needs.
type Services struct {
	Chat     driving.ChatService
	RAG      driving.RAGService
	Groups   driven.GroupStore
	Runtime  driven.RuntimeManager
	Files    driven.FileService
	Threads  driven.ThreadService
	Settings driven.SettingsStore
}

// SetServices injects the wired services into the command surface.
func SetServices(s Services) {
	chatService = s.Chat
	ragService = s.RAG
	groupStore = s.Groups
	runtime = s.Runtime
	fileService = s.Files
	threadService = s.Threads
	settingsStore = s.Settings
}

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "Ask questions about your own documents, locally",
	Long: `askdoc ingests plain-text documents into named retrieval groups and
answers questions grounded in the best-matching chunk, using a local
inference runtime. No document or question leaves the machine.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// The settings file may already have enabled verbose logging;
		// only an explicitly passed flag overrides it.
		if cmd.Root().PersistentFlags().Changed("verbose") {
			logger.SetVerbose(verbose)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostics on stderr")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
