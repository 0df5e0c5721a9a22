// ABOUTME: CLI command for factor and wellbeing correlations.
// ABOUTME: Lists per-factor Pearson r against one field, or a full matrix with top pairs.
package main

import (
	"fmt"
	"math"

	"github.com/fatih/color"
	"github.com/harperreed/wellness/internal/analytics"
	"github.com/harperreed/wellness/internal/insights"
	"github.com/harperreed/wellness/internal/models"
	"github.com/spf13/cobra"
)

var (
	correlateField   string
	correlateFrom    string
	correlateTo      string
	correlateAsOf    string
	correlateMatrix  bool
	correlateFactors []string
	correlateFields  []string
	correlateTop     int
)

var correlateCmd = &cobra.Command{
	Use:     "correlate",
	Aliases: []string{"corr"},
	Short:   "Correlate factors with wellbeing",
	Long: `Compute Pearson correlation between lifestyle factors and wellbeing fields.

Each factor becomes a daily 1/0 series over the window from the earliest
entry through --as-of, with unlogged days counted as 0. Wellbeing values are
averaged per day, and only days that have a check-in are compared.

A coefficient is n/a when fewer than two days overlap or when either side
never changes (a factor done every single day, for instance).

MODES:

  default    r between each active factor and --field
  --matrix   every pair among the selected factors and fields, plus the
             --top strongest pairs by absolute value

EXAMPLES:

  wellness correlate                              # vs mood_score
  wellness correlate --field stress_level
  wellness correlate --from 2025-01-01 --to 2025-03-31
  wellness correlate --matrix --top 5
  wellness correlate --matrix --factors Exercise,Alcohol --fields mood_score,sleep_quality`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := parseRange(correlateFrom, correlateTo)
		if err != nil {
			return err
		}
		asOf, err := parseAsOf(correlateAsOf)
		if err != nil {
			return err
		}

		if correlateMatrix {
			return runCorrelationMatrix(cmd, r, asOf)
		}

		if !models.IsValidMetricField(correlateField) {
			return fmt.Errorf("unknown metric field: %s", correlateField)
		}
		field := models.MetricField(correlateField)

		results, err := svc.FactorCorrelations(cmd.Context(), field, r, asOf)
		if err != nil {
			return fmt.Errorf("failed to correlate: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No factors found.")
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Println(faint.Sprintf("%s %s %s", padRight("FACTOR", 24), padRight(string(field), 8), "DAYS"))
		for _, c := range results {
			fmt.Printf("%s %s %s\n",
				padRight(truncate(c.FactorName, 24), 24),
				colorCoefficient(c.Coefficient, 8),
				faint.Sprintf("%d", c.Samples))
		}
		return nil
	},
}

func runCorrelationMatrix(cmd *cobra.Command, r *models.DateRange, asOf models.Date) error {
	fields := make([]models.MetricField, 0, len(correlateFields))
	for _, f := range correlateFields {
		fields = append(fields, models.MetricField(f))
	}

	res, err := svc.CorrelationMatrix(cmd.Context(), insights.MatrixRequest{
		Factors: correlateFactors,
		Fields:  fields,
		Range:   r,
		AsOf:    asOf,
		Top:     correlateTop,
	})
	if err != nil {
		return fmt.Errorf("failed to build matrix: %w", err)
	}

	if len(res.TopPairs) == 0 {
		fmt.Println("No correlated pairs found.")
		return nil
	}

	fmt.Printf("Top %d of %d variables\n", len(res.TopPairs), len(res.Matrix.Labels))
	for _, p := range res.TopPairs {
		fmt.Printf("  %s %s %s\n",
			padRight(truncate(p.A, 22), 22),
			padRight(truncate(p.B, 22), 22),
			colorCoefficient(p.Coefficient, 0))
	}
	return nil
}

// colorCoefficient pads a coefficient to width and highlights moderate or
// stronger relationships.
func colorCoefficient(s analytics.Stat, width int) string {
	cell := padRight(s.String(), width)
	v, ok := s.Get()
	switch {
	case !ok:
		return color.New(color.Faint).Sprint(cell)
	case math.Abs(v) < 0.3:
		return cell
	case v > 0:
		return color.GreenString("%s", cell)
	default:
		return color.RedString("%s", cell)
	}
}

func init() {
	correlateCmd.Flags().StringVarP(&correlateField, "field", "f", string(models.FieldMood), "wellbeing field to correlate against")
	correlateCmd.Flags().StringVar(&correlateFrom, "from", "", "start date (inclusive)")
	correlateCmd.Flags().StringVar(&correlateTo, "to", "", "end date (inclusive)")
	correlateCmd.Flags().StringVar(&correlateAsOf, "as-of", "", "last day of factor history (default today)")
	correlateCmd.Flags().BoolVar(&correlateMatrix, "matrix", false, "correlate every pair of factors and fields")
	correlateCmd.Flags().StringSliceVar(&correlateFactors, "factors", nil, "factors for --matrix (default all active)")
	correlateCmd.Flags().StringSliceVar(&correlateFields, "fields", nil, "wellbeing fields for --matrix (default all)")
	correlateCmd.Flags().IntVarP(&correlateTop, "top", "n", 10, "number of strongest pairs for --matrix")
	rootCmd.AddCommand(correlateCmd)
}
