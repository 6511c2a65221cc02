package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
)

var (
	flagSyncList      string
	flagSyncSkipMerge bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the catalog and enrich every item",
	Long: `Paginates the storefront catalog, enriches each item one request at a
time with a fixed delay, and folds the results into a new snapshot.
The run stops on the first hard failure, keeping everything obtained so
far; use "shelfsync retry" to continue over the remainder.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&flagSyncList, "list", "",
		"identity-list file restricting the run to a known subset")
	syncCmd.Flags().BoolVar(&flagSyncSkipMerge, "skip-merge", false,
		"enrich without writing a new snapshot")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncRunner == nil {
		return errors.New("sync service not configured")
	}

	ctx := cmd.Context()

	opts := driving.RunOptions{SkipMerge: flagSyncSkipMerge}
	if flagSyncList != "" {
		scope, err := snapshotStore.LoadIdentityList(ctx, flagSyncList)
		if err != nil {
			return fmt.Errorf("load identity list: %w", err)
		}
		opts.Scope = scope
		cmd.Printf("Run scoped to %d identities from %s\n", len(scope), flagSyncList)
	}

	cmd.Println("Starting sync run...")
	result, err := runWithProgress(ctx, cmd, func() (*driving.RunResult, error) {
		return syncRunner.Run(ctx, opts)
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printRunResult(cmd, result)
	return nil
}

// runWithProgress executes a run while printing progress updates.
func runWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	run func() (*driving.RunResult, error),
) (*driving.RunResult, error) {
	type outcome struct {
		result *driving.RunResult
		err    error
	}
	outCh := make(chan outcome, 1)
	go func() {
		result, err := run()
		outCh <- outcome{result, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case out := <-outCh:
			if lastCount > 0 {
				cmd.Println()
			}
			return out.result, out.err
		case <-ticker.C:
			// Check progress (ignore status error - best effort)
			status, statusErr := syncRunner.Status(ctx)
			if statusErr == nil && status != nil && status.ItemsProcessed > lastCount {
				cmd.Printf("\rEnriching... %d items (%d partial)",
					status.ItemsProcessed, status.Counts.Partial)
				lastCount = status.ItemsProcessed
			}
		}
	}
}

// printRunResult prints the final run summary.
func printRunResult(cmd *cobra.Command, result *driving.RunResult) {
	run := result.Run

	cmd.Printf("Run %s: %s\n", run.ID, run.State)
	cmd.Printf("  Listed:       %d items", result.ItemsListed)
	if result.TotalReported > 0 && result.TotalReported != result.ItemsListed {
		cmd.Printf(" (server reported %d)", result.TotalReported)
	}
	cmd.Println()
	cmd.Printf("  Enriched:     %d success, %d partial\n", run.Counts.Success, run.Counts.Partial)

	if run.State == domain.RunStoppedOnError && run.LastFailure != nil {
		cmd.Printf("  Stopped at:   %s (%s)\n", run.LastFailure.Identity, run.LastFailure.Reason)
		cmd.Printf("  Run \"shelfsync retry\" with a fresh session to continue.\n")
	}
	if result.SnapshotName != "" {
		cmd.Printf("  Snapshot:     %s\n", result.SnapshotName)
	}
}
