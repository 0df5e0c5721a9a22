// ABOUTME: CLI commands for wellbeing check-ins.
// ABOUTME: Supports add, list, show, edit, and delete of mood and related scales.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/wellness/internal/models"
	"github.com/spf13/cobra"
)

// scaleFlags maps flag names to the optional wellbeing fields they set.
var scaleFlags = []struct {
	name  string
	field models.MetricField
}{
	{"energy", models.FieldEnergy},
	{"stress", models.FieldStress},
	{"anxiety", models.FieldAnxiety},
	{"rumination", models.FieldRumination},
	{"anger", models.FieldAnger},
	{"health", models.FieldGeneralHealth},
	{"sleep", models.FieldSleepQuality},
	{"sweating", models.FieldSweating},
	{"libido", models.FieldLibido},
}

var (
	moodAddValues  = map[models.MetricField]*float64{}
	moodEditValues = map[models.MetricField]*float64{}

	moodAt    string
	moodDate  string
	moodNotes string

	moodListFrom  string
	moodListTo    string
	moodListLimit int

	moodEditScore float64
	moodEditAt    string
	moodEditNotes string
)

var moodCmd = &cobra.Command{
	Use:     "mood",
	Aliases: []string{"m"},
	Short:   "Record and review wellbeing check-ins",
	Long: `Record and review wellbeing check-ins.

A check-in always has a mood score. Energy, stress, anxiety, rumination,
anger, general health, sleep quality, sweating, and libido are optional.
Several check-ins can share a day; analysis averages them.

EXAMPLES:

  wellness mood add 7
  wellness mood add 4 --stress 8 --anxiety 6 --notes "deadline"
  wellness mood add 8 --sleep 9 --date yesterday
  wellness mood list --from 2025-03-01
  wellness mood edit abc12345 --stress 2
  wellness mood delete abc12345`,
}

var moodAddCmd = &cobra.Command{
	Use:     "add <score>",
	Aliases: []string{"a"},
	Short:   "Record a check-in",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid score: %s", args[0])
		}

		m := models.NewMetricEntry(score)
		if err := applyScaleFlags(cmd, m, moodAddValues); err != nil {
			return err
		}

		switch {
		case moodAt != "" && moodDate != "":
			return fmt.Errorf("use either --at or --date, not both")
		case moodAt != "":
			t, err := parseTime(moodAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", moodAt)
			}
			m.WithTime(t)
		case moodDate != "":
			d, err := parseDate(moodDate)
			if err != nil {
				return fmt.Errorf("invalid date: %s", moodDate)
			}
			now := time.Now()
			m.WithTime(time.Date(d.Year, d.Month, d.Day, now.Hour(), now.Minute(), 0, 0, time.Local))
		}

		if moodNotes != "" {
			m.WithNotes(moodNotes)
		}

		if err := repo.CreateMetricEntry(m); err != nil {
			return fmt.Errorf("failed to create check-in: %w", err)
		}

		color.Green("✓ Added check-in")
		printMetricLine(m)
		return nil
	},
}

var moodListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List check-ins, most recent first",
	Long: `List recent wellbeing check-ins.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  mood=N  FIELD=N ...  (NOTES)

  The ID is an 8-character prefix you can use with show, edit, and delete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := parseRange(moodListFrom, moodListTo)
		if err != nil {
			return err
		}
		entries, err := repo.ListMetricEntries(r, moodListLimit)
		if err != nil {
			return fmt.Errorf("failed to list check-ins: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No check-ins found.")
			return nil
		}
		for _, m := range entries {
			printMetricLine(m)
		}
		return nil
	},
}

var moodShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a check-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := repo.GetMetricEntry(args[0])
		if err != nil {
			return fmt.Errorf("check-in not found: %s", args[0])
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s %s\n", faint.Sprint(m.ID.String()[:8]), m.Time.Format("2006-01-02 15:04"))
		for _, f := range models.AllMetricFields {
			v, ok := m.Value(f)
			if !ok {
				fmt.Printf("  %s %s\n", padRight(string(f), 18), faint.Sprint("-"))
				continue
			}
			fmt.Printf("  %s %s\n", padRight(string(f), 18), formatScale(v))
		}
		if m.Notes != nil && *m.Notes != "" {
			fmt.Printf("  %s %s\n", padRight("notes", 18), *m.Notes)
		}
		return nil
	},
}

var moodEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change values on a check-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := repo.GetMetricEntry(args[0])
		if err != nil {
			return fmt.Errorf("check-in not found: %s", args[0])
		}

		if cmd.Flags().Changed("score") {
			m.With(models.FieldMood, moodEditScore)
		}
		if err := applyScaleFlags(cmd, m, moodEditValues); err != nil {
			return err
		}
		if moodEditAt != "" {
			t, err := parseTime(moodEditAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", moodEditAt)
			}
			m.WithTime(t)
		}
		if cmd.Flags().Changed("notes") {
			m.WithNotes(moodEditNotes)
		}

		if err := repo.UpdateMetricEntry(m); err != nil {
			return fmt.Errorf("failed to update check-in: %w", err)
		}

		color.Green("✓ Updated check-in")
		printMetricLine(m)
		return nil
	},
}

var moodDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a check-in",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := repo.GetMetricEntry(args[0])
		if err != nil {
			return fmt.Errorf("check-in not found: %s", args[0])
		}
		if err := repo.DeleteMetricEntry(m.ID.String()); err != nil {
			return fmt.Errorf("failed to delete check-in: %w", err)
		}

		color.Yellow("✗ Deleted check-in")
		printMetricLine(m)
		return nil
	},
}

// applyScaleFlags copies every scale flag the user set onto m.
func applyScaleFlags(cmd *cobra.Command, m *models.MetricEntry, values map[models.MetricField]*float64) error {
	for _, sf := range scaleFlags {
		if !cmd.Flags().Changed(sf.name) {
			continue
		}
		v, ok := values[sf.field]
		if !ok {
			return fmt.Errorf("no flag bound for %s", sf.field)
		}
		m.With(sf.field, *v)
	}
	return nil
}

func bindScaleFlags(cmd *cobra.Command, values map[models.MetricField]*float64) {
	for _, sf := range scaleFlags {
		v := new(float64)
		values[sf.field] = v
		cmd.Flags().Float64Var(v, sf.name, 0, string(sf.field))
	}
}

func printMetricLine(m *models.MetricEntry) {
	faint := color.New(color.Faint)
	line := fmt.Sprintf("%s %s mood=%s",
		faint.Sprint(m.ID.String()[:8]),
		faint.Sprint(m.Time.Format("2006-01-02 15:04")),
		formatScale(m.MoodScore))
	for _, sf := range scaleFlags {
		if v, ok := m.Value(sf.field); ok {
			line += fmt.Sprintf(" %s=%s", sf.name, formatScale(v))
		}
	}
	if m.Notes != nil && *m.Notes != "" {
		line += faint.Sprintf(" (%s)", truncate(*m.Notes, 30))
	}
	fmt.Println(line)
}

func formatScale(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func init() {
	bindScaleFlags(moodAddCmd, moodAddValues)
	moodAddCmd.Flags().StringVar(&moodAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	moodAddCmd.Flags().StringVarP(&moodDate, "date", "d", "", "day of the check-in (YYYY-MM-DD, today, yesterday)")
	moodAddCmd.Flags().StringVar(&moodNotes, "notes", "", "notes for the check-in")

	moodListCmd.Flags().StringVar(&moodListFrom, "from", "", "start date (inclusive)")
	moodListCmd.Flags().StringVar(&moodListTo, "to", "", "end date (inclusive)")
	moodListCmd.Flags().IntVarP(&moodListLimit, "limit", "n", 20, "max number of results")

	bindScaleFlags(moodEditCmd, moodEditValues)
	moodEditCmd.Flags().Float64Var(&moodEditScore, "score", 0, "mood score")
	moodEditCmd.Flags().StringVar(&moodEditAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	moodEditCmd.Flags().StringVar(&moodEditNotes, "notes", "", "notes for the check-in")

	moodCmd.AddCommand(moodAddCmd, moodListCmd, moodShowCmd, moodEditCmd, moodDeleteCmd)
	rootCmd.AddCommand(moodCmd)
}
