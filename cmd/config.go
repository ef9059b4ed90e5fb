package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlpilot/cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path, _ := config.Path()
		exportDir := cfg.ExportDir
		if exportDir == "" {
			exportDir = "(XDG data dir)"
		}
		data := pterm.TableData{
			{"Key", "Value"},
			{"api_url", cfg.APIURL},
			{"timeout", cfg.Timeout.String()},
			{"log_level", cfg.LogLevel},
			{"export_dir", exportDir},
			{"mode", cfg.Mode},
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		pterm.Info.Printf("Config file: %s (SQLPILOT_* environment variables take precedence)\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting in the config file",
	Long:  fmt.Sprintf("Change a setting in the config file. Keys: %s.", strings.Join(config.Keys(), ", ")),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		pterm.Success.Printf("%s set to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
