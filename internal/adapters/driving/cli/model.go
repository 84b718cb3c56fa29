package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage models on the inference runtime",
}

var modelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed models",
	Args:  cobra.NoArgs,
	RunE:  runModelList,
}

var modelPullCmd = &cobra.Command{
	Use:   "pull [name]",
	Short: "Install a model, waiting until it is available",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelPull,
}

var modelStartCmd = &cobra.Command{
	Use:   "start [name]",
	Short: "Load an installed model for serving",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelStart,
}

func init() {
	modelCmd.AddCommand(modelListCmd, modelPullCmd, modelStartCmd)
	rootCmd.AddCommand(modelCmd)
}

func runModelList(cmd *cobra.Command, _ []string) error {
	if runtime == nil {
		return errors.New("runtime manager not configured")
	}

	models, err := runtime.Models(context.Background())
	if err != nil {
		return fmt.Errorf("list models failed: %w", err)
	}

	if len(models) == 0 {
		cmd.Println("No models installed.")
		return nil
	}
	for _, m := range models {
		state := "installed"
		if m.Running {
			state = "running"
		}
		cmd.Printf("%s\t%s\n", m.Name, state)
	}
	return nil
}

func runModelPull(cmd *cobra.Command, args []string) error {
	if runtime == nil {
		return errors.New("runtime manager not configured")
	}

	cmd.Printf("Pulling %s, this can take a while...\n", args[0])
	if err := runtime.PullModel(context.Background(), args[0]); err != nil {
		return fmt.Errorf("pull model failed: %w", err)
	}
	cmd.Printf("Model %s is available.\n", args[0])
	return nil
}

func runModelStart(cmd *cobra.Command, args []string) error {
	if runtime == nil {
		return errors.New("runtime manager not configured")
	}

	if err := runtime.StartModel(context.Background(), args[0]); err != nil {
		return fmt.Errorf("start model failed: %w", err)
	}
	cmd.Printf("Model %s is running.\n", args[0])
	return nil
}
