// ABOUTME: CLI commands for managing lifestyle factors.
// ABOUTME: Supports add, list, show, edit, archive, unarchive, delete, and categories.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/spf13/cobra"
)

var (
	factorCategory     string
	factorListAll      bool
	factorEditName     string
	factorEditCategory string
)

var factorCmd = &cobra.Command{
	Use:     "factor",
	Aliases: []string{"factors", "f"},
	Short:   "Manage lifestyle factors",
	Long: `Manage the lifestyle factors you log each day.

A factor is a yes/no daily habit such as exercise, meditation, or alcohol.
Factors can be referenced by name (case-insensitive) or by ID prefix.

EXAMPLES:

  wellness factor add Exercise --category fitness
  wellness factor list --all
  wellness factor show Exercise
  wellness factor edit Exercise --name Running
  wellness factor archive Running
  wellness factor categories`,
}

var factorAddCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"a"},
	Short:   "Create a factor",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("factor name is required")
		}

		f := models.NewFactor(name).WithCategory(factorCategory)
		if err := repo.CreateFactor(f); err != nil {
			return fmt.Errorf("failed to create factor: %w", err)
		}

		color.Green("✓ Added factor %s", f.Name)
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(f.ID.String()[:8]),
			f.Category)
		return nil
	},
}

var factorListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List factors",
	Long: `List tracked factors.

OUTPUT FORMAT:

  Each line shows: ID  NAME  CATEGORY  (archived)

  Archived factors are hidden unless --all is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		factors, err := repo.ListFactors(factorListAll)
		if err != nil {
			return fmt.Errorf("failed to list factors: %w", err)
		}

		if len(factors) == 0 {
			fmt.Println("No factors found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, f := range factors {
			status := ""
			if !f.IsActive {
				status = faint.Sprint(" (archived)")
			}
			fmt.Printf("%s %s %s%s\n",
				faint.Sprint(f.ID.String()[:8]),
				padRight(truncate(f.Name, 24), 24),
				f.Category,
				status)
		}
		return nil
	},
}

var factorShowCmd = &cobra.Command{
	Use:   "show <factor>",
	Short: "Show a factor with its streaks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := storage.FindFactor(repo, args[0])
		if err != nil {
			return fmt.Errorf("factor not found: %s", args[0])
		}

		st, err := svc.FactorStats(cmd.Context(), f.ID.String(), models.Today())
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s %s\n", faint.Sprint(f.ID.String()[:8]), color.New(color.Bold).Sprint(f.Name))
		fmt.Printf("  Category:   %s\n", f.Category)
		fmt.Printf("  Active:     %t\n", f.IsActive)
		fmt.Printf("  Created:    %s\n", f.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("  Completed:  %d/%d days (%.1f%%)\n", st.CompletedDays, st.TotalDays, st.CompletionRate)
		fmt.Printf("  Current:    %d days\n", st.CurrentStreak)
		fmt.Printf("  Longest:    %d days\n", st.LongestStreak)
		return nil
	},
}

var factorEditCmd = &cobra.Command{
	Use:   "edit <factor>",
	Short: "Rename or recategorize a factor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if factorEditName == "" && factorEditCategory == "" {
			return fmt.Errorf("nothing to change: use --name or --category")
		}

		f, err := storage.FindFactor(repo, args[0])
		if err != nil {
			return fmt.Errorf("factor not found: %s", args[0])
		}
		if factorEditName != "" {
			f.Name = factorEditName
		}
		if factorEditCategory != "" {
			f.Category = factorEditCategory
		}
		if err := repo.UpdateFactor(f); err != nil {
			return fmt.Errorf("failed to update factor: %w", err)
		}

		color.Green("✓ Updated factor %s", f.Name)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(f.ID.String()[:8]), f.Category)
		return nil
	},
}

var factorArchiveCmd = &cobra.Command{
	Use:   "archive <factor>",
	Short: "Hide a factor from daily logging and analysis",
	Long: `Archive a factor. Its history is kept, but it no longer appears in
'factor list', stats, correlations, or backfill. Use 'factor unarchive' to
bring it back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFactorActive(args[0], false)
	},
}

var factorUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <factor>",
	Short: "Restore an archived factor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFactorActive(args[0], true)
	},
}

func setFactorActive(ref string, active bool) error {
	f, err := storage.FindFactor(repo, ref)
	if err != nil {
		return fmt.Errorf("factor not found: %s", ref)
	}
	f.IsActive = active
	if err := repo.UpdateFactor(f); err != nil {
		return fmt.Errorf("failed to update factor: %w", err)
	}

	if active {
		color.Green("✓ Restored factor %s", f.Name)
	} else {
		color.Yellow("✗ Archived factor %s", f.Name)
	}
	return nil
}

var factorDeleteCmd = &cobra.Command{
	Use:     "delete <factor>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a factor and all of its entries",
	Long: `Delete a factor by name or ID prefix.

CAUTION:

  This permanently deletes the factor and every logged entry for it.
  Use 'factor archive' to hide a factor while keeping its history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := storage.FindFactor(repo, args[0])
		if err != nil {
			return fmt.Errorf("factor not found: %s", args[0])
		}
		if err := repo.DeleteFactor(f.ID.String()); err != nil {
			return fmt.Errorf("failed to delete factor: %w", err)
		}

		color.Yellow("✗ Deleted factor %s", f.Name)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(f.ID.String()[:8]))
		return nil
	},
}

var factorCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List factor categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cats, err := repo.ListCategories()
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		if len(cats) == 0 {
			fmt.Println("No categories found.")
			return nil
		}
		for _, c := range cats {
			fmt.Println(c)
		}
		return nil
	},
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	factorAddCmd.Flags().StringVarP(&factorCategory, "category", "c", "", "category (default general)")
	factorListCmd.Flags().BoolVarP(&factorListAll, "all", "a", false, "include archived factors")
	factorEditCmd.Flags().StringVar(&factorEditName, "name", "", "new name")
	factorEditCmd.Flags().StringVarP(&factorEditCategory, "category", "c", "", "new category")

	factorCmd.AddCommand(factorAddCmd, factorListCmd, factorShowCmd, factorEditCmd,
		factorArchiveCmd, factorUnarchiveCmd, factorDeleteCmd, factorCategoriesCmd)
	rootCmd.AddCommand(factorCmd)
}
