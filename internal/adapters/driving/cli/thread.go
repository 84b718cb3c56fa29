package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var threadCmd = &cobra.Command{
	Use:   "thread",
	Short: "Manage conversation threads stored on the runtime",
}

var threadListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored threads",
	Args:  cobra.NoArgs,
	RunE:  runThreadList,
}

var threadDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored thread",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadDelete,
}

func init() {
	threadCmd.AddCommand(threadListCmd, threadDeleteCmd)
	rootCmd.AddCommand(threadCmd)
}

func runThreadList(cmd *cobra.Command, _ []string) error {
	if threadService == nil {
		return errors.New("thread service not configured")
	}

	threads, err := threadService.Threads(context.Background())
	if err != nil {
		return fmt.Errorf("list threads failed: %w", err)
	}

	if len(threads) == 0 {
		cmd.Println("No threads.")
		return nil
	}
	for _, th := range threads {
		cmd.Printf("%s\t%s\n", th.ID, th.Title)
	}
	return nil
}

func runThreadDelete(cmd *cobra.Command, args []string) error {
	if threadService == nil {
		return errors.New("thread service not configured")
	}

	if err := threadService.DeleteThread(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete thread failed: %w", err)
	}
	cmd.Printf("Thread %s deleted.\n", args[0])
	return nil
}
