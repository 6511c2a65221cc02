package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
)

var retryCmd = &cobra.Command{
	Use:   "retry [run-id]",
	Short: "Resume a stopped run over its unresolved remainder",
	Long: `Continues a run that stopped on a hard failure. Only items the run has
not already enriched are requested again; everything obtained before the
stop is kept. Without a run id the most recent stopped run is resumed.

Hard failures usually mean the session context went stale: capture a
fresh one with "shelfsync session set" first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRetry,
}

func init() {
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	if syncRunner == nil {
		return errors.New("sync service not configured")
	}

	ctx := cmd.Context()

	runID := ""
	if len(args) > 0 {
		runID = args[0]
	}

	cmd.Println("Resuming run...")
	result, err := runWithProgress(ctx, cmd, func() (*driving.RunResult, error) {
		return syncRunner.Resume(ctx, runID)
	})
	if err != nil {
		return fmt.Errorf("retry failed: %w", err)
	}

	printRunResult(cmd, result)
	return nil
}
