package driven

import (
	"context"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// RunStore persists sync run state so an interrupted run can be resumed
// as a pure continuation.
type RunStore interface {
	// Save stores or updates a run, including its attempted set and
	// succeeded records.
	Save(ctx context.Context, run *domain.SyncRun) error

	// Get loads a run by id. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.SyncRun, error)

	// LatestStopped returns the most recent run in the StoppedOnError
	// state, or domain.ErrNotFound when there is nothing to resume.
	LatestStopped(ctx context.Context) (*domain.SyncRun, error)

	// Close releases the underlying database.
	Close() error
}
