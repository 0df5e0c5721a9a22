// ABOUTME: CLI commands for exporting and importing wellness data.
// ABOUTME: Supports JSON, YAML, CSV, and ZIP export plus JSON import.
package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportTable  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export wellness data",
	Long: `Export wellness data in various formats.

FORMATS:

  json   Full JSON export (suitable for backup/restore)
  yaml   YAML export with entries grouped by factor name
  csv    One table as CSV: factors, factor_entries, or metric_entries
  zip    ZIP archive with one CSV per table

OPTIONS:

  --output, -o   Write to file instead of stdout (zip always writes a file)
  --table, -t    Table for csv export (default factor_entries)

EXAMPLES:

  wellness export json -o backup.json
  wellness export yaml
  wellness export csv --table metric_entries > checkins.csv
  wellness export zip -o wellness.zip`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "csv", "zip"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml":
			data, err = storage.ExportYAML(repo)
		case "csv":
			var buf bytes.Buffer
			err = storage.ExportCSV(repo, exportTable, &buf)
			data = buf.Bytes()
		case "zip":
			data, err = storage.ExportZIP(repo)
			if exportOutput == "" {
				exportOutput = fmt.Sprintf("wellness-export-%s.zip", time.Now().Format("20060102"))
			}
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, csv, or zip)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Print(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import wellness data from JSON",
	Long: `Import wellness data from a JSON backup file.

This imports factors, factor entries, and check-ins from a previously
exported JSON file. Factor entries are merged per (factor, day); duplicate
factor or check-in IDs cause an error.

EXAMPLES:

  wellness import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if err := storage.ImportJSON(repo, data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportTable, "table", "t", storage.TableFactorEntries, "table for csv export")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
