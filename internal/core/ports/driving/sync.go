package driving

import (
	"context"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// RunOptions configures a sync run.
type RunOptions struct {
	// Scope restricts enrichment to a known subset of identities, e.g.
	// one loaded from an identity-list file. Empty means the full
	// catalog as paginated from the listing endpoint.
	Scope []domain.IdentityListEntry

	// SkipMerge fetches and enriches without folding the results into a
	// new snapshot. Used for dry runs.
	SkipMerge bool
}

// RunResult summarises a finished (or early-stopped) run.
type RunResult struct {
	// Run is the final run state, including outcome counts and, on an
	// early stop, exactly which item triggered it and why.
	Run *domain.SyncRun

	// ItemsListed is how many catalog items pagination produced. On a
	// pagination error this reflects the preserved partial progress.
	ItemsListed int

	// TotalReported is the server-reported total item count.
	TotalReported int

	// SnapshotName names the snapshot written by the merge stage.
	// Empty when SkipMerge was set or the run produced nothing to merge.
	SnapshotName string
}

// RunStatus is a point-in-time view of an active run.
type RunStatus struct {
	RunID          string
	Running        bool
	ItemsProcessed int
	Counts         domain.RunCounts
}

// SyncRunner drives the library synchronisation pipeline.
type SyncRunner interface {
	// Run executes the pipeline: paginate the catalog, enrich items one
	// at a time with a fixed inter-request delay, stop the whole run on
	// the first hard failure while preserving everything already
	// obtained, then merge and write a new snapshot.
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)

	// Resume continues the run with the given id (or, when empty, the
	// most recent stopped run) over only its unresolved remainder. The
	// operator typically supplies a fresh session context first.
	Resume(ctx context.Context, runID string) (*RunResult, error)

	// Status reports progress of the active run, if any.
	Status(ctx context.Context) (*RunStatus, error)
}
