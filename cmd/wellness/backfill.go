// ABOUTME: CLI command for padding unlogged factor days.
// ABOUTME: Records every missing day since the first entry as not completed.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	backfillDryRun bool
	backfillAsOf   string
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Record unlogged days as missed",
	Long: `Record every unlogged day as not completed, for each active factor.

The window runs from the earliest entry of any factor through --as-of
(default today). Days already logged are never changed, and archived
factors are skipped. Running it twice inserts nothing the second time.

Streaks and correlations already treat unlogged days as missed, so
backfill changes what is stored, not what the analysis reports.

EXAMPLES:

  wellness backfill --dry-run    # Count missing days
  wellness backfill              # Write them`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := parseAsOf(backfillAsOf)
		if err != nil {
			return err
		}

		report, err := svc.Backfill(cmd.Context(), asOf, backfillDryRun)
		if err != nil {
			return fmt.Errorf("failed to backfill: %w", err)
		}
		if report.Start == nil {
			fmt.Println("No entries yet, nothing to backfill.")
			return nil
		}

		faint := color.New(color.Faint)
		missing := 0
		for _, f := range report.Factors {
			missing += f.Missing
			if f.Missing == 0 {
				continue
			}
			fmt.Printf("  %s %s\n", padRight(truncate(f.FactorName, 24), 24),
				faint.Sprintf("%d missing", f.Missing))
		}

		if report.DryRun {
			color.Yellow("Dry run: would fill %d days from %s to %s", missing, report.Start, report.End)
			return nil
		}
		color.Green("✓ Filled %d days from %s to %s", report.TotalInserted, report.Start, report.End)
		return nil
	},
}

func init() {
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "count missing days without writing")
	backfillCmd.Flags().StringVar(&backfillAsOf, "as-of", "", "last day to fill (default today)")
	rootCmd.AddCommand(backfillCmd)
}
