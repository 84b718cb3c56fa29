package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show runtime health and hardware",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if runtime == nil {
		return errors.New("runtime manager not configured")
	}

	ctx := context.Background()

	if err := runtime.Health(ctx); err != nil {
		cmd.Printf("Runtime:  unreachable (%v)\n", err)
		return nil
	}
	cmd.Println("Runtime:  healthy")

	hw, err := runtime.Hardware(ctx)
	if err != nil {
		return fmt.Errorf("hardware survey failed: %w", err)
	}

	if hw.GPU != "" {
		cmd.Printf("GPU:      %s (%.1f GiB VRAM)\n", hw.GPU, gib(hw.VRAMBytes))
	} else {
		cmd.Println("GPU:      none")
	}
	cmd.Printf("RAM:      %.1f GiB\n", gib(hw.RAMBytes))

	engines, err := runtime.Engines(ctx)
	if err != nil {
		return fmt.Errorf("list engines failed: %w", err)
	}
	for _, e := range engines {
		suffix := ""
		if e.UpdateAvailable {
			suffix = " (update available)"
		}
		cmd.Printf("Engine:   %s %s%s\n", e.Name, e.Version, suffix)
	}

	return nil
}

func gib(bytes int64) float64 {
	return float64(bytes) / (1 << 30)
}
