package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/khrees2412/jobdeck/internal/app"
	"github.com/khrees2412/jobdeck/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage configuration",
	Long:        "View and update configuration settings",
	Annotations: map[string]string{skipApp: "true"},
}

// settableKeys are the keys config set accepts.
var settableKeys = []string{
	"store.driver",
	"store.dir",
	"store.redis_url",
	"store.prefix",
	"catalog.path",
	"viewport.cell_width",
	"viewport.width",
	"session.user",
}

var showConfigCmd = &cobra.Command{
	Use:         "show",
	Short:       "Display current configuration",
	Annotations: map[string]string{skipApp: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(); err != nil {
			return err
		}

		cmd.Println(titleStyle.Render("Configuration"))
		cmd.Printf("%s %s\n", labelStyle.Render("Config File:"), config.Path())
		for _, key := range settableKeys {
			value := config.Get(key)
			if value == "" {
				value = mutedStyle.Render("(not set)")
			}
			cmd.Printf("%s %s\n", labelStyle.Render(key+":"), valueStyle.Render(value))
		}
		return nil
	},
}

var setConfigCmd = &cobra.Command{
	Use:         "set",
	Short:       "Update a configuration value",
	Annotations: map[string]string{skipApp: "true"},
	Example: `  jobdeck config set --key store.driver --value file
  jobdeck config set --key store.redis_url --value redis://localhost:6379/0
  jobdeck config set --key viewport.width --value 1280
  jobdeck config set --key session.user --value ada`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		if key == "" {
			return fmt.Errorf("%w: --key is required", app.ErrInvalidArgument)
		}
		if !slices.Contains(settableKeys, key) {
			return fmt.Errorf("%w: key must be one of: %s", app.ErrInvalidArgument, strings.Join(settableKeys, ", "))
		}

		// An invalid file can still be fixed with set.
		if _, err := config.Load(); err != nil && !errors.Is(err, config.ErrInvalid) {
			return err
		}
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}

		// Reload so a bad value is reported now rather than on the next command.
		if _, err := config.Load(); err != nil {
			cmd.Println(errorStyle.Render("Warning:"), err)
		}
		cmd.Printf("✓ Configuration updated: %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)

	// Flags for set command
	setConfigCmd.Flags().String("key", "", "Configuration key")
	setConfigCmd.Flags().String("value", "", "Configuration value")
}
