// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"askdata/cli/internal/config"
	apperrors "askdata/cli/internal/errors"
	"askdata/cli/internal/keychain"
	"askdata/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	keyProvider string
	keyClearAll bool
)

// keyCmd groups the API key subcommands.
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the completion service API key",
	Long: `The key commands store, remove and inspect the completion service API key.
Keys are kept in the OS keychain, one per provider. ASKDATA_API_KEY takes
precedence over a stored key.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an API key in the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := targetProvider()
		if err != nil {
			return err
		}
		promptText := fmt.Sprintf("Enter %s API key: ", provider)
		key, err := readSecret(promptText)
		if err != nil {
			return err
		}
		if key == "" {
			return apperrors.New(apperrors.KindUsage, "API key is required")
		}

		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			fmt.Println("   Export ASKDATA_API_KEY instead.")
			return apperrors.Wrap(apperrors.KindConfig, "keychain unavailable", err)
		}
		if err := km.SaveAPIKey(provider, key); err != nil {
			fmt.Println("❌ Failed to save the API key securely.")
			return err
		}

		fmt.Printf("✅ %s API key saved (%s)\n", provider, maskKey(key))
		fmt.Println("   You're ready to run 'askdata ask'")
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored API keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return apperrors.Wrap(apperrors.KindConfig, "keychain unavailable", err)
		}
		if keyClearAll {
			if err := km.ClearAll(config.Providers...); err != nil {
				return err
			}
			fmt.Println("✅ All stored API keys have been removed")
			return nil
		}
		provider, err := targetProvider()
		if err != nil {
			return err
		}
		if err := km.ClearAPIKey(provider); err != nil {
			return err
		}
		fmt.Printf("✅ %s API key removed\n", provider)
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API key of each provider comes from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, kerr := keychain.GetManager()
		data := pterm.TableData{{"Provider", "Key", "Source"}}
		for _, p := range config.Providers {
			key, source := "", "not set"
			if p == cfg.LLM.Provider && os.Getenv("ASKDATA_API_KEY") != "" {
				key, source = os.Getenv("ASKDATA_API_KEY"), "ASKDATA_API_KEY"
			} else if kerr == nil {
				if k, err := km.LoadAPIKey(p); err == nil {
					key, source = k, "keychain"
				}
			}
			name := p
			if p == cfg.LLM.Provider {
				name += " (active)"
			}
			data = append(data, []string{name, maskKey(key), source})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

// targetProvider is --provider, or the configured provider.
func targetProvider() (string, error) {
	p := strings.ToLower(strings.TrimSpace(keyProvider))
	if p == "" {
		return cfg.LLM.Provider, nil
	}
	for _, known := range config.Providers {
		if p == known {
			return p, nil
		}
	}
	return "", apperrors.New(apperrors.KindUsage,
		fmt.Sprintf("unknown provider %q (available: %s)", p, strings.Join(config.Providers, ", ")))
}

// readSecret reads a line without echo on a terminal, or plainly from a pipe.
func readSecret(promptText string) (string, error) {
	if isTerminal(os.Stdin) {
		fmt.Print(promptText)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		terminal.ClearPreviousLines(len(promptText))
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", apperrors.Wrap(apperrors.KindUsage, "could not read the API key from stdin", err)
	}
	return strings.TrimSpace(line), nil
}

// maskKey keeps the first and last characters of a key.
func maskKey(key string) string {
	switch {
	case key == "":
		return "-"
	case len(key) <= 8:
		return "****"
	}
	return key[:4] + strings.Repeat("*", 6) + key[len(key)-4:]
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd, keyClearCmd, keyStatusCmd)
	keyCmd.PersistentFlags().StringVar(&keyProvider, "provider", "", "Provider the key belongs to (defaults to the configured provider)")
	keyClearCmd.Flags().BoolVar(&keyClearAll, "all", false, "Remove the keys of every provider")
}
