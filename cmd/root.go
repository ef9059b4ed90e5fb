// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the SQLPilot CLI.
// It implements subcommands for managing backend connections, browsing
// schemas, running SQL or natural-language queries and exporting results,
// using the Cobra CLI framework with pterm for terminal output.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
	noHints     bool
	apiURL      string
)

// errReported marks a failure the notifier already showed to the user.
var errReported = errors.New("reported")

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sqlpilot",
	Short: "SQLPilot CLI for querying databases through the SQLPilot backend",
	Long: `SQLPilot is a command-line workbench for the SQLPilot backend. It manages
registered database connections, shows their schemas, runs SQL or
natural-language questions and exports results as CSV or JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion(cmd)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application. Ctrl-C cancels the running request
// without an error message.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}
	stop()
	switch {
	case apperrors.IsCanceled(err) || errors.Is(err, context.Canceled):
		os.Exit(130)
	case errors.Is(err, errReported):
	case isTransportError(err):
		// the transport notifier already printed it
	default:
		pterm.Error.Println(logging.Mask(apperrors.UserMessage(err)))
	}
	os.Exit(1)
}

func isTransportError(err error) bool {
	var e *apperrors.E
	return errors.As(err, &e)
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&noHints, "no-hints", false, "Do not print troubleshooting hints after network errors")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API base URL (overrides config and SQLPILOT_API_URL)")
}
