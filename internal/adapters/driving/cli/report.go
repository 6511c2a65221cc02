package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
)

var (
	flagReportDiff         bool
	flagReportBefore       string
	flagReportAfter        string
	flagReportWriteMissing string
)

var reportCmd = &cobra.Command{
	Use:   "report [snapshot]",
	Short: "Audit a snapshot before promoting it",
	Long: `Builds a consistency report over a snapshot: total books, books whose
description is still missing versus confirmed empty upstream, and the
binding breakdown. Without a snapshot name the latest one is reported.

With --diff, compares two snapshot versions instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&flagReportDiff, "diff", false,
		"compare two snapshot versions instead of reporting one")
	reportCmd.Flags().StringVar(&flagReportBefore, "before", "",
		"older snapshot for --diff (default: the one preceding --after)")
	reportCmd.Flags().StringVar(&flagReportAfter, "after", "",
		"newer snapshot for --diff (default: latest)")
	reportCmd.Flags().StringVar(&flagReportWriteMissing, "write-missing", "",
		"write the missing-description identities to this file, usable with \"sync --list\"")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reporter == nil {
		return errors.New("report service not configured")
	}

	ctx := cmd.Context()

	if flagReportDiff {
		diff, err := reporter.Diff(ctx, flagReportBefore, flagReportAfter)
		if err != nil {
			return fmt.Errorf("diff snapshots: %w", err)
		}
		printDiff(cmd, diff)
		return nil
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	report, err := reporter.Report(ctx, name, nil)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	printReport(cmd, report)

	if flagReportWriteMissing != "" {
		if err := writeMissingList(cmd, name, flagReportWriteMissing); err != nil {
			return err
		}
	}
	return nil
}

func printReport(cmd *cobra.Command, report *driving.ConsistencyReport) {
	cmd.Printf("Total books:            %d\n", report.TotalBooks)
	cmd.Printf("Missing descriptions:   %d\n", len(report.MissingDescriptions))
	cmd.Printf("Confirmed empty:        %d\n", len(report.ConfirmedEmpty))
	if report.DuplicateIdentities > 0 {
		cmd.Printf("Duplicate identities:   %d\n", report.DuplicateIdentities)
	}

	if len(report.BindingBreakdown) > 0 {
		cmd.Println("Bindings:")
		bindings := make([]string, 0, len(report.BindingBreakdown))
		for binding := range report.BindingBreakdown {
			bindings = append(bindings, binding)
		}
		sort.Strings(bindings)
		for _, binding := range bindings {
			cmd.Printf("  %-20s %d\n", binding, report.BindingBreakdown[binding])
		}
	}

	for _, id := range report.MissingDescriptions {
		cmd.Printf("missing: %s\n", id)
	}
}

func printDiff(cmd *cobra.Command, diff *driving.SnapshotDiff) {
	cmd.Printf("Added:                %d\n", len(diff.Added))
	cmd.Printf("Removed:              %d\n", len(diff.Removed))
	cmd.Printf("Descriptions gained:  %d\n", len(diff.DescriptionsGained))
	cmd.Printf("Descriptions lost:    %d\n", len(diff.DescriptionsLost))

	for _, id := range diff.DescriptionsGained {
		cmd.Printf("gained: %s\n", id)
	}
	for _, id := range diff.DescriptionsLost {
		cmd.Printf("lost:   %s\n", id)
	}
}

// writeMissingList writes the missing-description subset as an
// identity-list file so a follow-up run can target exactly those items.
func writeMissingList(cmd *cobra.Command, name, path string) error {
	ctx := cmd.Context()

	var (
		snapshot *domain.LibrarySnapshot
		err      error
	)
	if name == "" {
		snapshot, err = snapshotStore.Latest(ctx)
	} else {
		snapshot, err = snapshotStore.Load(ctx, name)
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	var entries []domain.IdentityListEntry
	for _, id := range snapshot.MissingDescriptions() {
		entry := domain.IdentityListEntry{Identity: id}
		if book := snapshot.Find(id); book != nil {
			entry.Title = book.Title
			entry.Authors = book.Authors
		}
		entries = append(entries, entry)
	}

	if err := snapshotStore.SaveIdentityList(ctx, path, entries); err != nil {
		return fmt.Errorf("write identity list: %w", err)
	}
	cmd.Printf("Wrote %d identities to %s\n", len(entries), path)
	return nil
}
