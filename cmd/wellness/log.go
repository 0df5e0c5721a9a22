// ABOUTME: CLI commands for logging factors and reviewing factor entries.
// ABOUTME: Provides log (upsert per day), entries (factor history), and day (one date).
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/spf13/cobra"
)

var (
	logDate   string
	logMissed bool
	logNotes  string

	entriesFrom string
	entriesTo   string
)

var logCmd = &cobra.Command{
	Use:   "log <factor>",
	Short: "Log a factor for a day",
	Long: `Record whether a factor was done on a day. Defaults to done, today.

Each factor has at most one entry per day: logging the same day again
overwrites the earlier entry.

EXAMPLES:

  wellness log Exercise                        # Done today
  wellness log Alcohol --missed                # Not done today
  wellness log Meditation --date yesterday
  wellness log Exercise --date 2025-03-01 --notes "5k run"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := models.Today()
		if logDate != "" {
			var err error
			date, err = parseDate(logDate)
			if err != nil {
				return fmt.Errorf("invalid date: %s", logDate)
			}
		}

		f, e, err := svc.LogFactor(args[0], date, !logMissed, logNotes)
		if err != nil {
			return fmt.Errorf("failed to log factor: %w", err)
		}

		if e.Completed {
			color.Green("✓ Logged %s done on %s", f.Name, e.Date)
		} else {
			color.Yellow("✗ Logged %s missed on %s", f.Name, e.Date)
		}
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(e.ID.String()[:8]))
		return nil
	},
}

var entriesCmd = &cobra.Command{
	Use:   "entries <factor>",
	Short: "Show the logged history of a factor",
	Long: `Show every logged day for a factor, oldest first.

OUTPUT FORMAT:

  Each line shows: DATE  STATUS  (NOTES)

EXAMPLES:

  wellness entries Exercise
  wellness entries Exercise --from 2025-01-01 --to 2025-01-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := storage.FindFactor(repo, args[0])
		if err != nil {
			return fmt.Errorf("factor not found: %s", args[0])
		}
		r, err := parseRange(entriesFrom, entriesTo)
		if err != nil {
			return err
		}

		entries, err := repo.ListFactorEntries(&f.ID, r)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		if len(entries) == 0 {
			fmt.Printf("No entries for %s.\n", f.Name)
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range entries {
			notes := ""
			if e.Notes != nil && *e.Notes != "" {
				notes = faint.Sprintf(" (%s)", truncate(*e.Notes, 30))
			}
			fmt.Printf("%s %s%s\n", e.Date, statusMark(true, e.Completed), notes)
		}
		return nil
	},
}

var dayCmd = &cobra.Command{
	Use:   "day [date]",
	Short: "Show every factor and check-in for a day",
	Long: `Show the status of each active factor and all wellbeing check-ins on a
date. Defaults to today.

EXAMPLES:

  wellness day
  wellness day yesterday
  wellness day 2025-03-01`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := models.Today()
		if len(args) == 1 {
			var err error
			date, err = parseDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid date: %s", args[0])
			}
		}
		r := &models.DateRange{Start: &date, End: &date}

		factors, err := repo.ListFactors(false)
		if err != nil {
			return fmt.Errorf("failed to list factors: %w", err)
		}
		entries, err := repo.ListFactorEntries(nil, r)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		byFactor := make(map[string]*models.FactorEntry, len(entries))
		for _, e := range entries {
			byFactor[e.FactorID.String()] = e
		}

		fmt.Println(color.New(color.Bold).Sprint(date.String()))
		if len(factors) == 0 {
			fmt.Println("  No factors found.")
		}
		for _, f := range factors {
			e, logged := byFactor[f.ID.String()]
			completed := logged && e.Completed
			fmt.Printf("  %s %s\n", padRight(truncate(f.Name, 24), 24), statusMark(logged, completed))
		}

		metrics, err := repo.ListMetricEntries(r, 0)
		if err != nil {
			return fmt.Errorf("failed to list check-ins: %w", err)
		}
		if len(metrics) > 0 {
			fmt.Println()
			for _, m := range metrics {
				printMetricLine(m)
			}
		}
		return nil
	},
}

func statusMark(logged, completed bool) string {
	switch {
	case !logged:
		return color.New(color.Faint).Sprint("-")
	case completed:
		return color.GreenString("✓ done")
	default:
		return color.YellowString("✗ missed")
	}
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// parseDate accepts YYYY-MM-DD, "today", or "yesterday".
func parseDate(s string) (models.Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return models.Today(), nil
	case "yesterday":
		return models.Today().AddDays(-1), nil
	}
	return models.ParseDate(s)
}

// parseRange builds an optional inclusive date range from two flags.
func parseRange(from, to string) (*models.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	r := &models.DateRange{}
	if from != "" {
		d, err := parseDate(from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from date: %s", from)
		}
		r.Start = &d
	}
	if to != "" {
		d, err := parseDate(to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to date: %s", to)
		}
		r.End = &d
	}
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return nil, fmt.Errorf("--from %s is after --to %s", r.Start, r.End)
	}
	return r, nil
}

func init() {
	logCmd.Flags().StringVarP(&logDate, "date", "d", "", "day to log (YYYY-MM-DD, today, yesterday)")
	logCmd.Flags().BoolVar(&logMissed, "missed", false, "record the factor as not done")
	logCmd.Flags().StringVar(&logNotes, "notes", "", "notes for the entry")

	entriesCmd.Flags().StringVar(&entriesFrom, "from", "", "start date (inclusive)")
	entriesCmd.Flags().StringVar(&entriesTo, "to", "", "end date (inclusive)")

	rootCmd.AddCommand(logCmd, entriesCmd, dayCmd)
}
