package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/calder-labs/askdoc-cli/internal/adapters/driving/tui"
)

var chatGroup string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session",
	Long: `Opens an interactive chat with the local model. With --group, every
question is grounded in the best-matching chunk from that retrieval group.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatGroup, "group", "g", "", "retrieval group to ground answers in")
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	return tui.Run(chatService, chatGroup)
}
