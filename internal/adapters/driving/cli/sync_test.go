package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
)

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync", syncCmd.Use)
}

func TestSyncCmd_CompletedRun(t *testing.T) {
	cleanup := setupCLITest(t)
	defer cleanup()

	out, err := executeCommand("sync")

	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1: completed")
	assert.Contains(t, out, "snapshot-test.json")
}

func TestSyncCmd_StoppedRun_SuggestsRetry(t *testing.T) {
	cleanup := setupCLITest(t)
	defer cleanup()

	run := domain.NewSyncRun("run-2")
	run.State = domain.RunStoppedOnError
	run.LastFailure = &domain.RunFailure{
		Identity: domain.Identity{Kind: domain.VendorID, Value: "b"},
		Reason:   "HTTP 500",
		At:       time.Now(),
	}
	syncRunner = &mockSyncRunner{result: &driving.RunResult{Run: run, ItemsListed: 3}}

	out, err := executeCommand("sync")

	require.NoError(t, err)
	assert.Contains(t, out, "stopped-on-error")
	assert.Contains(t, out, "vendor:b")
	assert.Contains(t, out, "shelfsync retry")
}

func TestSyncCmd_ServiceNotConfigured(t *testing.T) {
	old := syncRunner
	syncRunner = nil
	defer func() { syncRunner = old }()

	err := runSync(syncCmd, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sync service not configured")
}

func TestRetryCmd_PassesRunID(t *testing.T) {
	cleanup := setupCLITest(t)
	defer cleanup()

	runner := &mockSyncRunner{result: completedRunResult()}
	syncRunner = runner

	_, err := executeCommand("retry", "run-42")

	require.NoError(t, err)
	assert.Equal(t, "run-42", runner.resumedID)
}

func TestRetryCmd_DefaultsToLatestStopped(t *testing.T) {
	cleanup := setupCLITest(t)
	defer cleanup()

	runner := &mockSyncRunner{result: completedRunResult()}
	syncRunner = runner

	_, err := executeCommand("retry")

	require.NoError(t, err)
	assert.Equal(t, "", runner.resumedID)
}
