package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage retrieval groups",
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	Args:  cobra.NoArgs,
	RunE:  runGroupList,
}

var groupShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a group's record count and part size",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupShow,
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a group and its stored embeddings",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupDelete,
}

func init() {
	groupCmd.AddCommand(groupListCmd, groupShowCmd, groupDeleteCmd)
	rootCmd.AddCommand(groupCmd)
}

func runGroupList(cmd *cobra.Command, _ []string) error {
	if groupStore == nil {
		return errors.New("group store not configured")
	}

	names, err := groupStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("list groups failed: %w", err)
	}

	if len(names) == 0 {
		cmd.Println("No groups.")
		return nil
	}
	for _, name := range names {
		cmd.Println(name)
	}
	return nil
}

func runGroupShow(cmd *cobra.Command, args []string) error {
	if groupStore == nil {
		return errors.New("group store not configured")
	}

	g, err := groupStore.Load(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("show group failed: %w", err)
	}

	cmd.Printf("Group:     %s\n", g.Name)
	cmd.Printf("Part size: %d\n", g.PartSize)
	cmd.Printf("Records:   %d\n", g.Len())
	return nil
}

func runGroupDelete(cmd *cobra.Command, args []string) error {
	if groupStore == nil {
		return errors.New("group store not configured")
	}

	if err := groupStore.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete group failed: %w", err)
	}

	cmd.Printf("Group %q deleted.\n", args[0])
	return nil
}
