// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and completion provider",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion()
	},
}

func printVersion() {
	llm := cfg.LLM.Resolved()
	fmt.Printf("askdata %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	fmt.Printf("provider %s, model %s\n", llm.Provider, llm.Model)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
