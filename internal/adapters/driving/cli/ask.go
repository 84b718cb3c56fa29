package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driving"
)

var (
	askGroup       string
	askAsync       bool
	askMaxTokens   int
	askTemperature float64
	askTopP        float64
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question, optionally grounded in a group",
	Long: `Asks the local model a question. With --group, the best-matching chunk
from that retrieval group is provided as context. With --async, the command
returns an answer ID immediately and the finished answer is written to the
answers directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askGroup, "group", "g", "", "retrieval group to ground the answer in")
	askCmd.Flags().BoolVar(&askAsync, "async", false, "dispatch the question and return immediately")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 1024, "maximum tokens to generate")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", 0.7, "sampling temperature")
	askCmd.Flags().Float64Var(&askTopP, "top-p", 0.9, "nucleus sampling cutoff")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	opts := driving.AskOptions{
		Group: askGroup,
		Completion: domain.CompletionOptions{
			MaxTokens:   askMaxTokens,
			Temperature: askTemperature,
			TopP:        askTopP,
		},
	}

	ctx := context.Background()

	if askAsync {
		id, err := chatService.AskAsync(ctx, args[0], opts)
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		cmd.Printf("Answer %s dispatched.\n", id)
		return nil
	}

	answer, err := chatService.Ask(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Content)
	if answer.Context != nil {
		cmd.Println()
		cmd.Printf("Context: group %s, file %s, part %d (similarity %.2f)\n",
			answer.Context.Group, answer.Context.FileID, answer.Context.Part, answer.Context.Similarity)
	}

	return nil
}
