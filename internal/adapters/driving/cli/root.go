// Package cli implements the shelfsync command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/shelfsync/shelfsync-cli/internal/adapters/driven/config/file"
	storagefile "github.com/shelfsync/shelfsync-cli/internal/adapters/driven/storage/file"
	"github.com/shelfsync/shelfsync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/shelfsync/shelfsync-cli/internal/connectors/storefront"
	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
	"github.com/shelfsync/shelfsync-cli/internal/core/services"
	"github.com/shelfsync/shelfsync-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
)

// Wired services, populated by setupServices before any subcommand runs.
var (
	appSettings   domain.Settings
	settingsStore *configfile.SettingsStore
	sessionStore  *storagefile.SessionStore
	snapshotStore *storagefile.SnapshotStore
	recoveryStore *storagefile.RecoveryStore
	runStore      *sqlite.Store
	client        *storefront.Client

	syncRunner driving.SyncRunner
	merger     driving.Merger
	reporter   driving.Reporter
)

var rootCmd = &cobra.Command{
	Use:   "shelfsync",
	Short: "Synchronise a local e-book library with its storefront",
	Long: `shelfsync maintains a local canonical snapshot of an e-book library.
It paginates the storefront catalog, enriches each item with descriptions
and reviews at a safe request cadence, folds in externally collected
recovery files, and reports on the consistency of the result.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if syncRunner != nil {
			// Already wired, e.g. by a test injecting fakes.
			return nil
		}
		return setupServices(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.shelfsync)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.shelfsync)")
}

// Execute runs the CLI.
func Execute() error {
	defer teardownServices()
	return rootCmd.Execute()
}

// setupServices builds the store and service graph from flags and config.
func setupServices(ctx context.Context) error {
	var err error

	settingsStore, err = configfile.NewSettingsStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	settings, err := settingsStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if flagDataDir != "" {
		settings.DataDir = flagDataDir
	}
	appSettings = *settings

	sessionStore, err = storagefile.NewSessionStore(appSettings.DataDir)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	snapshotStore, err = storagefile.NewSnapshotStore(appSettings.DataDir)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	recoveryStore, err = storagefile.NewRecoveryStore(appSettings.DataDir)
	if err != nil {
		return fmt.Errorf("open recovery store: %w", err)
	}
	runStore, err = sqlite.NewStore(appSettings.DataDir)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}

	client = storefront.NewClient(storefront.ConfigFromSettings(appSettings), sessionStore)

	loader := services.NewRecoveryLoader(recoveryStore)
	merger = services.NewMergeService(snapshotStore, loader, appSettings)
	syncRunner = services.NewSyncPipeline(client, runStore, snapshotStore, merger, appSettings)
	reporter = services.NewReportService(snapshotStore)

	return nil
}

func teardownServices() {
	if client != nil {
		client.Close() //nolint:errcheck
	}
	if runStore != nil {
		runStore.Close() //nolint:errcheck
	}
}
