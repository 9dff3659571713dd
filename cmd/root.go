// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for askdata.
// It implements the subcommands for asking questions about a dataset, running
// an interactive chat session, inspecting datasets and managing the API key,
// using the Cobra CLI framework with a pterm terminal UI.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"askdata/cli/internal/config"
	"askdata/cli/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	showVersion bool
	verbose     bool

	// cfg is loaded once before any subcommand runs.
	cfg config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "askdata",
	Short: "Ask questions about tabular data in plain language",
	Long: `askdata answers natural-language questions about a tabular dataset.

Each question is turned into a small program by a completion service, the
program runs in a restricted interpreter against the data, and its table,
chart or value is explained back in plain language.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if _, err := logging.New(cfg.LogLevel, verbose); err != nil {
			return err
		}
		logging.L().Debug("configuration loaded",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Resolved().Model),
			zap.String("profile", cfg.Profile))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	err := rootCmd.Execute()
	_ = logging.L().Sync()
	if err != nil {
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, logging.PresentError("Error", err))
		}
		os.Exit(exitCode(err))
	}
}

// shownError marks an error the command already presented to the user.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
}
