package driven

import (
	"context"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// SnapshotStore persists library snapshots. Saving always writes a new
// snapshot version; the previous canonical snapshot is never overwritten
// in place, so a caller can inspect the delta before accepting it.
type SnapshotStore interface {
	// Latest loads the most recent snapshot.
	// Returns domain.ErrNotFound when no snapshot exists yet.
	Latest(ctx context.Context) (*domain.LibrarySnapshot, error)

	// Load loads a snapshot by name.
	Load(ctx context.Context, name string) (*domain.LibrarySnapshot, error)

	// Save writes the snapshot as a new version and returns its name.
	Save(ctx context.Context, snapshot *domain.LibrarySnapshot) (string, error)

	// List returns all snapshot names, oldest first.
	List(ctx context.Context) ([]string, error)
}

// IdentityListStore reads identity-list files used to scope a targeted
// enrichment or recovery run to a known subset.
type IdentityListStore interface {
	// LoadIdentityList reads the list at the given path.
	LoadIdentityList(ctx context.Context, path string) ([]domain.IdentityListEntry, error)
}
