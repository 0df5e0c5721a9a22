// ABOUTME: CLI command for factor streak statistics.
// ABOUTME: Shows completion rate, current streak, and longest streak per factor.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/wellness/internal/analytics"
	"github.com/harperreed/wellness/internal/models"
	"github.com/spf13/cobra"
)

var (
	statsAsOf string
	statsAll  bool
)

var statsCmd = &cobra.Command{
	Use:     "stats [factor]",
	Aliases: []string{"streaks"},
	Short:   "Show factor streaks and completion rates",
	Long: `Show completion rate, current streak, and longest streak for one factor
or every active factor.

Every factor is measured over the same window: from the earliest entry of
any factor through --as-of (default today). Unlogged days count as missed.
The current streak ends at --as-of, so a day not yet logged breaks it.

OUTPUT FORMAT:

  Each line shows: FACTOR  DONE/TOTAL  RATE  CURRENT  LONGEST

EXAMPLES:

  wellness stats                       # All active factors
  wellness stats Exercise              # One factor
  wellness stats --all                 # Include archived factors
  wellness stats --as-of 2025-03-31    # As of the end of March`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := parseAsOf(statsAsOf)
		if err != nil {
			return err
		}

		var stats []analytics.FactorStats
		if len(args) == 1 {
			st, err := svc.FactorStats(cmd.Context(), args[0], asOf)
			if err != nil {
				return fmt.Errorf("failed to compute stats: %w", err)
			}
			stats = append(stats, *st)
		} else {
			stats, err = svc.AllFactorStats(cmd.Context(), asOf, statsAll)
			if err != nil {
				return fmt.Errorf("failed to compute stats: %w", err)
			}
		}

		if len(stats) == 0 {
			fmt.Println("No factors found.")
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Println(faint.Sprintf("%s %s %s %s %s",
			padRight("FACTOR", 24), padRight("DONE", 9), padRight("RATE", 7),
			padRight("CURRENT", 8), "LONGEST"))
		for _, st := range stats {
			fmt.Printf("%s %s %s %s %d\n",
				padRight(truncate(st.FactorName, 24), 24),
				padRight(fmt.Sprintf("%d/%d", st.CompletedDays, st.TotalDays), 9),
				padRight(fmt.Sprintf("%.1f%%", st.CompletionRate), 7),
				streakCell(st.CurrentStreak, 8),
				st.LongestStreak)
		}
		return nil
	},
}

// streakCell pads a current streak to width, then highlights a live one.
func streakCell(n, width int) string {
	cell := padRight(strconv.Itoa(n), width)
	if n > 0 {
		return color.GreenString("%s", cell)
	}
	return cell
}

// parseAsOf parses an optional reference date, defaulting to today.
func parseAsOf(raw string) (models.Date, error) {
	if raw == "" {
		return models.Today(), nil
	}
	d, err := parseDate(raw)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid --as-of date: %s", raw)
	}
	return d, nil
}

func init() {
	statsCmd.Flags().StringVar(&statsAsOf, "as-of", "", "reference date (default today)")
	statsCmd.Flags().BoolVarP(&statsAll, "all", "a", false, "include archived factors")
	rootCmd.AddCommand(statsCmd)
}
