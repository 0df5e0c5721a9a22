// ABOUTME: CLI command for wellbeing averages.
// ABOUTME: Averages each metric field over a date range, skipping missing values.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/wellness/internal/models"
	"github.com/spf13/cobra"
)

var (
	summaryFrom string
	summaryTo   string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Average every wellbeing field",
	Long: `Average every wellbeing field over a date range.

Each field is averaged only over check-ins that recorded it, so the count
differs per field. Fields never recorded show n/a.

EXAMPLES:

  wellness summary
  wellness summary --from 2025-01-01 --to 2025-01-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := parseRange(summaryFrom, summaryTo)
		if err != nil {
			return err
		}

		s, err := svc.MetricSummary(cmd.Context(), r)
		if err != nil {
			return fmt.Errorf("failed to summarize: %w", err)
		}
		if s.TotalEntries == 0 {
			fmt.Println("No check-ins found.")
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Printf("%d check-ins %s\n", s.TotalEntries,
			faint.Sprintf("(%s to %s)", s.DateRange.Start, s.DateRange.End))
		for _, f := range models.AllMetricFields {
			agg := s.Fields[f]
			fmt.Printf("  %s %s %s\n",
				padRight(string(f), 18),
				padRight(agg.Average.String(), 6),
				faint.Sprintf("n=%d", agg.Count))
		}
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryFrom, "from", "", "start date (inclusive)")
	summaryCmd.Flags().StringVar(&summaryTo, "to", "", "end date (inclusive)")
	rootCmd.AddCommand(summaryCmd)
}
