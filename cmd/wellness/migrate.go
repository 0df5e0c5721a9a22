// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Moves factors, factor entries, and check-ins between SQLite and Badger.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/wellness/internal/config"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom  string
	migrateTo    string
	migrateForce bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy all data between storage backends",
	Long: `Copy every factor, factor entry, and check-in from one storage backend to
the other under the same data directory.

BACKENDS:

  sqlite   <data-dir>/wellness.db
  badger   <data-dir>/kv/

The destination must be empty. Use --force to wipe it first. The source is
never modified; switch backends afterwards by setting "backend" in
~/.config/wellness/config.json.

EXAMPLES:

  wellness migrate --from sqlite --to badger
  wellness migrate --from badger --to sqlite --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("--from and --to are both %s", migrateFrom)
		}

		srcPath, err := cfg.StoragePath(migrateFrom)
		if err != nil {
			return err
		}
		dstPath, err := cfg.StoragePath(migrateTo)
		if err != nil {
			return err
		}
		if err := requireSource(migrateFrom, srcPath); err != nil {
			return err
		}

		src, err := cfg.OpenBackend(migrateFrom)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", migrateFrom, err)
		}
		defer src.Close()

		dst, err := openEmptyDestination(migrateTo, dstPath)
		if err != nil {
			return err
		}
		defer dst.Close()

		logger.Info("migrating", "from", srcPath, "to", dstPath)
		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %s to %s", migrateFrom, migrateTo)
		fmt.Printf("  %d factors, %d factor entries, %d check-ins\n",
			summary.Factors, summary.FactorEntries, summary.MetricEntries)
		return nil
	},
}

// requireSource refuses to migrate from a backend that was never written.
func requireSource(backend, path string) error {
	if backend == config.BackendBadger {
		ok, err := storage.IsDirNonEmpty(path)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no badger data at %s", path)
		}
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no sqlite database at %s", path)
	}
	return nil
}

func openEmptyDestination(backend, path string) (storage.Repository, error) {
	dst, err := cfg.OpenBackend(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", backend, err)
	}
	empty, err := isEmpty(dst)
	if err != nil {
		dst.Close()
		return nil, err
	}
	if empty {
		return dst, nil
	}

	dst.Close()
	if !migrateForce {
		return nil, fmt.Errorf("%s already holds data at %s (use --force to replace it)", backend, path)
	}

	color.Yellow("✗ Wiping existing %s data at %s", backend, path)
	if err := removeStorage(backend, path); err != nil {
		return nil, err
	}
	dst, err = cfg.OpenBackend(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen %s: %w", backend, err)
	}
	return dst, nil
}

func isEmpty(repo storage.Repository) (bool, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return false, fmt.Errorf("failed to read destination: %w", err)
	}
	return len(data.Factors) == 0 && len(data.FactorEntries) == 0 && len(data.MetricEntries) == 0, nil
}

func removeStorage(backend, path string) error {
	if backend == config.BackendBadger {
		return os.RemoveAll(path)
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.BackendSQLite, "source backend (sqlite or badger)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendBadger, "destination backend (sqlite or badger)")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "replace existing data at the destination")
	rootCmd.AddCommand(migrateCmd)
}
