package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored snapshot versions, oldest first",
	RunE:  runSnapshots,
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
}

func runSnapshots(cmd *cobra.Command, _ []string) error {
	if snapshotStore == nil {
		return errors.New("snapshot store not configured")
	}

	names, err := snapshotStore.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(names) == 0 {
		cmd.Println("No snapshots yet. Run \"shelfsync sync\" or \"shelfsync merge\" first.")
		return nil
	}

	for _, name := range names {
		cmd.Println(name)
	}
	return nil
}
