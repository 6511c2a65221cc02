package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	storagefile "github.com/shelfsync/shelfsync-cli/internal/adapters/driven/storage/file"
	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
)

// mockSyncRunner implements driving.SyncRunner for testing.
type mockSyncRunner struct {
	result    *driving.RunResult
	runErr    error
	resumedID string
}

func (m *mockSyncRunner) Run(_ context.Context, _ driving.RunOptions) (*driving.RunResult, error) {
	return m.result, m.runErr
}

func (m *mockSyncRunner) Resume(_ context.Context, runID string) (*driving.RunResult, error) {
	m.resumedID = runID
	return m.result, m.runErr
}

func (m *mockSyncRunner) Status(_ context.Context) (*driving.RunStatus, error) {
	return &driving.RunStatus{}, nil
}

// mockMerger implements driving.Merger for testing.
type mockMerger struct {
	outcome *driving.MergeOutcome
	err     error
	lastReq driving.MergeRequest
}

func (m *mockMerger) Merge(_ context.Context, req driving.MergeRequest) (*driving.MergeOutcome, error) {
	m.lastReq = req
	return m.outcome, m.err
}

// mockReporter implements driving.Reporter for testing.
type mockReporter struct {
	report *driving.ConsistencyReport
	diff   *driving.SnapshotDiff
	err    error
}

func (m *mockReporter) Report(_ context.Context, _ string, _ []domain.Identity) (*driving.ConsistencyReport, error) {
	return m.report, m.err
}

func (m *mockReporter) Diff(_ context.Context, _, _ string) (*driving.SnapshotDiff, error) {
	return m.diff, m.err
}

func completedRunResult() *driving.RunResult {
	run := domain.NewSyncRun("run-1")
	run.MarkSucceeded(domain.EnrichmentRecord{
		Identity: domain.Identity{Kind: domain.VendorID, Value: "a"},
		Outcome:  domain.OutcomeSuccess,
	})
	run.State = domain.RunCompleted
	return &driving.RunResult{
		Run:          run,
		ItemsListed:  1,
		SnapshotName: "snapshot-test.json",
	}
}

// setupCLITest wires mock services and temp-dir stores, returning a
// restore func. With syncRunner set, the root command skips real wiring.
func setupCLITest(t *testing.T) func() {
	t.Helper()

	oldRunner, oldMerger, oldReporter := syncRunner, merger, reporter
	oldSnapshots, oldSessions, oldRecovery := snapshotStore, sessionStore, recoveryStore

	var err error
	dir := t.TempDir()
	snapshotStore, err = storagefile.NewSnapshotStore(dir)
	require.NoError(t, err)
	sessionStore, err = storagefile.NewSessionStore(dir)
	require.NoError(t, err)
	recoveryStore, err = storagefile.NewRecoveryStore(dir)
	require.NoError(t, err)

	syncRunner = &mockSyncRunner{result: completedRunResult()}
	merger = &mockMerger{outcome: &driving.MergeOutcome{
		Snapshot:     &domain.LibrarySnapshot{},
		SnapshotName: "snapshot-test.json",
	}}
	reporter = &mockReporter{report: &driving.ConsistencyReport{}}

	return func() {
		syncRunner, merger, reporter = oldRunner, oldMerger, oldReporter
		snapshotStore, sessionStore, recoveryStore = oldSnapshots, oldSessions, oldRecovery
	}
}

// executeCommand runs the root command with args, capturing output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
