// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"askdata/cli/internal/prompt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage dataset profiles",
	Long: `Dataset profiles describe a kind of dataset: its columns, cleaning rules,
synonyms and how explanations are framed. The built-in profiles can be
extended or overridden with YAML files in the profiles directory of the
askdata config directory.`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available dataset profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := loadProfiles()
		if err != nil {
			return err
		}
		return pterm.DefaultTable.WithHasHeader().WithData(profileTable(profiles, cfg.Profile)).Render()
	},
}

func profileTable(profiles map[string]*prompt.Profile, active string) pterm.TableData {
	data := pterm.TableData{{"Name", "Description", "Columns", "Origin"}}
	for _, name := range prompt.ProfileNames(profiles) {
		p := profiles[name]
		if name == active {
			name += " (default)"
		}
		data = append(data, []string{name, p.Description, fmt.Sprint(len(p.Columns)), p.Origin})
	}
	data = append(data, []string{profileNone, "Columns and roles inferred from the data", "-", "built-in"})
	return data
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
}
