package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
)

var flagMergeWatch bool

var mergeCmd = &cobra.Command{
	Use:   "merge [source-file...]",
	Short: "Fold recovery sources into a new snapshot",
	Long: `Merges the latest snapshot with recovery source files from the recovery
directory. Without arguments the configured precedence order is used,
with any unlisted files appended last; naming source files overrides
that order for this merge (later arguments win on conflicts).

The result is written as a new snapshot version; the previous snapshot
is left untouched.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().BoolVar(&flagMergeWatch, "watch", false,
		"keep running and re-merge whenever a recovery file appears or changes")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	if merger == nil {
		return errors.New("merge service not configured")
	}

	if err := mergeOnce(cmd, args); err != nil {
		return err
	}
	if !flagMergeWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, err := recoveryStore.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch recovery directory: %w", err)
	}

	cmd.Println("Watching recovery directory; Ctrl-C to stop.")
	for name := range events {
		cmd.Printf("Recovery source %s changed; merging...\n", name)
		if err := mergeOnce(cmd, args); err != nil {
			// A failed merge leaves the previous snapshot intact, so the
			// watch keeps going.
			cmd.PrintErrf("merge failed: %v\n", err)
		}
	}
	return nil
}

func mergeOnce(cmd *cobra.Command, sources []string) error {
	outcome, err := merger.Merge(cmd.Context(), driving.MergeRequest{Sources: sources})
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	printMergeOutcome(cmd, outcome)
	return nil
}

func printMergeOutcome(cmd *cobra.Command, outcome *driving.MergeOutcome) {
	meta := outcome.Snapshot.Metadata
	cmd.Printf("Snapshot %s: %d books, %d without descriptions\n",
		outcome.SnapshotName, meta.TotalBooks, meta.BooksWithoutDescriptions)

	if len(outcome.ConfirmedEmpty) > 0 {
		cmd.Printf("  Confirmed empty upstream: %d\n", len(outcome.ConfirmedEmpty))
	}
	if len(outcome.Collisions) > 0 {
		cmd.Printf("  Duplicate identities (later record kept):\n")
		for _, id := range outcome.Collisions {
			cmd.Printf("    %s\n", id)
		}
	}
	for _, name := range outcome.SkippedSources {
		cmd.Printf("  Skipped malformed source: %s\n", name)
	}
}
