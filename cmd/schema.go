// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"askdata/cli/internal/dataset"
	"askdata/cli/internal/dsn"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var schemaFlags sourceFlags

// schemaCmd shows what askdata infers about a dataset before any question.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the columns and inferred roles of a dataset",
	Long: `The schema command loads a dataset and shows each column with the role
inferred for it (identifier, categorical, numeric, date or text), which numeric
columns are stored as text, and the detected date layouts. For a database with
several tables and no --table, the tables are listed instead.

The password in a database URL is replaced with *** in the output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := schemaFlags.source()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Data source")).
			WithPadding(1).
			Println(maskPassword(source))
		pterm.Println()

		typ := dsn.DetectSourceType(source)
		if info, err := dsn.ParseInfo(source); err == nil {
			printSourceInfo(info)
		}
		if typ.IsDatabase() && schemaFlags.table == "" && schemaFlags.query == "" {
			tables, err := dataset.Tables(ctx, source)
			if err != nil {
				return err
			}
			if len(tables) != 1 {
				pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprintf("%d tables:", len(tables)))
				for _, t := range tables {
					pterm.Println("  • " + t)
				}
				pterm.Println()
				pterm.Println("Choose one with --table to see its columns.")
				return nil
			}
		}

		ds, err := loadDataset(ctx, source, dataset.Query{Table: schemaFlags.table, SQL: schemaFlags.query})
		if err != nil {
			return err
		}
		_, profile, err := chooseDescriptor(ds, schemaFlags.profile)
		if err != nil {
			return err
		}
		types, err := dataset.ColumnTypes(ctx, source, schemaFlags.table)
		if err != nil {
			return err
		}

		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Dataset: ") +
			pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(ds.Name()) +
			pterm.Gray(fmt.Sprintf("  %d rows", ds.Len())))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Profile: ") + profile)
		pterm.Println()
		return pterm.DefaultTable.WithHasHeader().WithData(columnTable(ds.Columns(), types)).Render()
	},
}

// columnTable lists the inferred columns; types adds the declared SQL type
// of each column when the source has one.
func columnTable(cols []dataset.Column, types map[string]string) pterm.TableData {
	header := []string{"Column", "Role", "Notes"}
	if types != nil {
		header = append(header, "Database type")
	}
	data := pterm.TableData{header}
	for _, c := range cols {
		var notes []string
		if c.NumericText {
			notes = append(notes, "numbers stored as text")
		}
		if c.DateLayout != "" {
			notes = append(notes, "layout "+c.DateLayout)
		}
		row := []string{c.Name, string(c.Role), strings.Join(notes, ", ")}
		if types != nil {
			row = append(row, types[c.Name])
		}
		data = append(data, row)
	}
	return data
}

func printSourceInfo(info *dsn.DSNInfo) {
	line := func(label, value string) {
		if value != "" {
			pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint(label) + value)
		}
	}
	line("→ Type:     ", string(info.Type))
	line("→ Host:     ", strings.Trim(info.Host+":"+info.Port, ":"))
	line("→ User:     ", info.User)
	line("→ Database: ", info.Database)
	pterm.Println()
}

// maskPassword replaces the password in a database URL with asterisks.
// File paths are returned unchanged.
func maskPassword(source string) string {
	u, err := url.Parse(source)
	if err != nil {
		return maskPasswordSimple(source)
	}
	if u.User == nil {
		return source
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return source
	}
	u.User = url.UserPassword(u.User.Username(), "***")
	return strings.Replace(u.String(), "%2A%2A%2A", "***", 1)
}

// maskPasswordSimple performs simple string-based password masking for
// sources that don't parse as URLs.
func maskPasswordSimple(source string) string {
	atIndex := strings.LastIndex(source, "@")
	if atIndex == -1 {
		return source
	}
	beforeAt := source[:atIndex]
	colonIndex := strings.LastIndex(beforeAt, ":")
	if colonIndex == -1 {
		return source
	}
	// The colon may belong to the scheme rather than the credentials.
	protocolEnd := strings.Index(source, "://")
	if protocolEnd != -1 && colonIndex < protocolEnd+3 {
		return source
	}
	return source[:colonIndex+1] + "***" + source[atIndex:]
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	addSourceFlags(schemaCmd, &schemaFlags)
}
