package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestGroup string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Index a document into a retrieval group",
	Long: `Uploads a plain-text document, splits it into chunks, embeds every chunk
and appends the records to the named group. The group is created on first
use with the configured part size.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestGroup, "group", "g", "", "retrieval group to index into (required)")
	_ = ingestCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	res, err := ragService.Ingest(context.Background(), args[0], ingestGroup)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %s into group %q: %d chunks (part size %d), file %s\n",
		args[0], res.Group, res.Chunks, res.PartSize, res.FileID)
	return nil
}
