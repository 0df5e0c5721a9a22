// ABOUTME: Root Cobra command for wellness CLI.
// ABOUTME: Loads config, builds the logger, and manages the storage lifecycle.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/wellness/internal/config"
	"github.com/harperreed/wellness/internal/insights"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDirFlag string
	backendFlag string
	verbose     bool

	cfg    *config.Config
	repo   storage.Repository
	svc    *insights.Service
	logger *log.Logger
)

// commands that manage their own storage or need none
var skipStorage = map[string]bool{
	"help":          true,
	"version":       true,
	"migrate":       true,
	"install-skill": true,
}

var rootCmd = &cobra.Command{
	Use:   "wellness",
	Short: "Lifestyle factor streaks and wellbeing correlations",
	Long: `Wellness tracks daily lifestyle factors and wellbeing check-ins, then tells
you how they relate.

WHAT IT TRACKS:

  Factors     binary daily habits: exercise, meditation, alcohol, screen time...
  Check-ins   mood_score plus optional energy, stress, anxiety, rumination,
              anger, general_health, sleep_quality, sweating, libido

QUICK START:

  $ wellness factor add Exercise --category fitness   # Track a habit
  $ wellness log Exercise                            # Mark it done today
  $ wellness log Alcohol --missed                    # Mark it not done
  $ wellness mood add 7 --stress 3 --sleep 8         # Record a check-in
  $ wellness stats                                   # Streaks for all factors

ANALYSIS:

  $ wellness summary --from 2025-01-01      # Average of every wellbeing field
  $ wellness correlate --field mood_score   # Which habits track your mood
  $ wellness correlate --matrix --top 5     # Strongest pairs overall
  $ wellness backfill --dry-run             # Count unlogged days

MCP INTEGRATION:

  Run 'wellness mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "wellness": { "command": "wellness", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  SQLite by default at ~/.local/share/wellness/wellness.db. Set "backend":
  "badger" in ~/.config/wellness/config.json (or pass --backend badger) to use
  the embedded Badger store under ~/.local/share/wellness/kv.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dataDirFlag != "" {
			cfg.DataDir = dataDirFlag
		}
		if backendFlag != "" {
			cfg.Backend = backendFlag
		}

		logger, err = newLogger(cfg, verbose)
		if err != nil {
			return err
		}

		if skipStorage[cmd.Name()] {
			return nil
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		svc = insights.NewService(repo, logger)
		logger.Debug("storage opened", "backend", cfg.GetBackend(), "data_dir", cfg.GetDataDir())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo == nil {
			return nil
		}
		err := repo.Close()
		repo = nil
		svc = nil
		return err
	},
}

// newLogger writes to stderr since stdout carries command output and the MCP stream.
func newLogger(c *config.Config, debug bool) (*log.Logger, error) {
	level, err := c.GetLogLevel()
	if err != nil {
		return nil, err
	}
	if debug {
		level = log.DebugLevel
	}
	l := log.New(os.Stderr)
	l.SetLevel(level)
	l.SetPrefix("wellness")
	return l, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.local/share/wellness)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: sqlite or badger")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
