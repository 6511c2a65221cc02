package driving

import (
	"context"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// ConsistencyReport summarises a finished snapshot for human review
// before it is promoted to canonical.
type ConsistencyReport struct {
	TotalBooks int

	// MissingDescriptions lists identities with an empty description that
	// no source has confirmed as empty. These are candidates for a
	// targeted follow-up run.
	MissingDescriptions []domain.Identity

	// ConfirmedEmpty lists identities the upstream confirmed carry no
	// description. Reported separately from missing ones.
	ConfirmedEmpty []domain.Identity

	// DuplicateIdentities is the number of identity collisions
	// encountered during the merge that produced the snapshot.
	DuplicateIdentities int

	// BindingBreakdown counts books per binding type.
	BindingBreakdown map[string]int
}

// SnapshotDiff is a before/after comparison of two snapshots.
type SnapshotDiff struct {
	Added              []domain.Identity
	Removed            []domain.Identity
	DescriptionsGained []domain.Identity
	DescriptionsLost   []domain.Identity
}

// Reporter produces audit output over snapshots. Reporting never mutates
// a snapshot.
type Reporter interface {
	// Report builds a consistency report over the named snapshot, or the
	// latest one when name is empty.
	Report(ctx context.Context, name string, collisions []domain.Identity) (*ConsistencyReport, error)

	// Diff compares two snapshots by name. An empty after name means the
	// latest snapshot; an empty before name means the one preceding it.
	Diff(ctx context.Context, before, after string) (*SnapshotDiff, error)
}
