package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/iocache"
	"github.com/huangsam/annofabcli/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendFromConfig resolves the history backend; empty means none.
func historyBackendFromConfig() (schema.DatabaseBackend, string, error) {
	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("history-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup(cmd *cobra.Command) error {
	if err := loadConfigFile(cmd); err != nil {
		return err
	}
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no response cache for history commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(cmd *cobra.Command, _ []string) error {
	return historySetup(cmd)
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup(cmd *cobra.Command) error {
	if err := loadConfigFile(cmd); err != nil {
		return err
	}
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(cmd *cobra.Command, _ []string) error {
	return historyMigrateSetup(cmd)
}

// historyStore returns the configured history store or exits.
func historyStore() contract.HistoryStore {
	store := iocache.Manager.GetHistoryStore()
	if store == nil {
		contract.LogFatal("History tracking is disabled", errors.New("set --history-backend or ANNOFAB_HISTORY_BACKEND"))
	}
	return store
}

// historyCmd focused on statistics history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup. They need neither credentials nor a project.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded statistics runs and exports",
	Long: `Manage the history of 'statistics list_annotation_count' runs.

Each run stores the command, project, timing, options and every counted row,
so annotation progress can be tracked over time.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics and connection info
  clear   - Remove all recorded runs
  export  - Export runs and counts to Parquet files
  migrate - Upgrade or roll back the history schema

Examples:
  # Record runs in SQLite
  annofabcli statistics list_annotation_count -p prj1 --history-backend sqlite

  # Export for BI tools
  annofabcli history export --history-backend sqlite --output-file progress`,
}

// historyClearCmd clears the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded statistics runs",
	Long: `Delete all recorded runs and counts from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearHistory(cfg.HistoryBackend, contract.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display history statistics and connection details",
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := historyStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Write <output-file>.runs.parquet and <output-file>.annotation_counts.parquet.

Examples:
  annofabcli history export --history-backend sqlite --output-file progress`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportHistory(os.Stdout, iocache.Manager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the statistics history store.

Examples:
  # Migrate to the latest version
  annofabcli history migrate --history-backend sqlite

  # Roll back everything
  annofabcli history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
