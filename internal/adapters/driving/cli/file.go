package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage documents stored on the inference runtime",
}

var fileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runFileList,
}

var fileDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileDelete,
}

func init() {
	fileCmd.AddCommand(fileListCmd, fileDeleteCmd)
	rootCmd.AddCommand(fileCmd)
}

func runFileList(cmd *cobra.Command, _ []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	files, err := fileService.List(context.Background())
	if err != nil {
		return fmt.Errorf("list files failed: %w", err)
	}

	if len(files) == 0 {
		cmd.Println("No files stored.")
		return nil
	}
	for _, f := range files {
		cmd.Printf("%s\t%s\t%d bytes\n", f.ID, f.Name, f.Size)
	}
	return nil
}

func runFileDelete(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	if err := fileService.Delete(context.Background(), domain.FileID(args[0])); err != nil {
		return fmt.Errorf("delete file failed: %w", err)
	}
	cmd.Printf("File %s deleted.\n", args[0])
	return nil
}
