package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("load settings failed: %w", err)
	}

	switch args[0] {
	case "engine":
		cmd.Println(settings.Engine)
	case "model":
		cmd.Println(settings.Model)
	case "embedding_model":
		cmd.Println(settings.EmbeddingModel)
	case "base_url":
		cmd.Println(settings.BaseURL)
	case "logging":
		cmd.Println(settings.Logging)
	case "data_dir":
		cmd.Println(settings.DataDir)
	case "part_size":
		cmd.Println(settings.PartSize)
	case "storage":
		cmd.Println(settings.Storage)
	default:
		return fmt.Errorf("unknown setting %q", args[0])
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("load settings failed: %w", err)
	}

	key, value := args[0], args[1]
	switch key {
	case "engine":
		settings.Engine = value
	case "model":
		settings.Model = value
	case "embedding_model":
		settings.EmbeddingModel = value
	case "base_url":
		settings.BaseURL = value
	case "logging":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: logging must be true or false", domain.ErrInvalidInput)
		}
		settings.Logging = b
	case "data_dir":
		settings.DataDir = value
	case "part_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: part_size must be an integer", domain.ErrInvalidInput)
		}
		settings.PartSize = n
	case "storage":
		settings.Storage = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("save settings failed: %w", err)
	}

	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	cmd.Println(settingsStore.Path())
	return nil
}
