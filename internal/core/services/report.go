package services

import (
	"context"
	"fmt"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
)

// Ensure ReportService implements the interface.
var _ driving.Reporter = (*ReportService)(nil)

// ReportService produces consistency reports and snapshot diffs for human
// review before a snapshot is promoted to canonical. It never mutates
// snapshots.
type ReportService struct {
	snapshots driven.SnapshotStore
}

// NewReportService creates a report service.
func NewReportService(snapshots driven.SnapshotStore) *ReportService {
	return &ReportService{snapshots: snapshots}
}

// Report builds a consistency report over the named snapshot, or the
// latest one when name is empty.
func (r *ReportService) Report(ctx context.Context, name string, collisions []domain.Identity) (*driving.ConsistencyReport, error) {
	snapshot, err := r.load(ctx, name)
	if err != nil {
		return nil, err
	}
	return BuildReport(snapshot, collisions), nil
}

// Diff compares two snapshots by name. An empty after name means the
// latest snapshot; an empty before name means the one preceding after.
func (r *ReportService) Diff(ctx context.Context, before, after string) (*driving.SnapshotDiff, error) {
	names, err := r.snapshots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	if len(names) == 0 {
		return nil, domain.ErrNotFound
	}

	if after == "" {
		after = names[len(names)-1]
	}
	if before == "" {
		at := indexOf(names, after)
		if at <= 0 {
			return nil, fmt.Errorf("%w: no snapshot precedes %q", domain.ErrNotFound, after)
		}
		before = names[at-1]
	}

	prev, err := r.snapshots.Load(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", before, err)
	}
	next, err := r.snapshots.Load(ctx, after)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", after, err)
	}

	return DiffSnapshots(prev, next), nil
}

func (r *ReportService) load(ctx context.Context, name string) (*domain.LibrarySnapshot, error) {
	if name == "" {
		snapshot, err := r.snapshots.Latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("load latest snapshot: %w", err)
		}
		return snapshot, nil
	}
	snapshot, err := r.snapshots.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	return snapshot, nil
}

// BuildReport is a pure function over a finished snapshot.
func BuildReport(snapshot *domain.LibrarySnapshot, collisions []domain.Identity) *driving.ConsistencyReport {
	breakdown := make(map[string]int)
	for i := range snapshot.Books {
		binding := snapshot.Books[i].Binding
		if binding == "" {
			binding = "unknown"
		}
		breakdown[binding]++
	}

	return &driving.ConsistencyReport{
		TotalBooks:          len(snapshot.Books),
		MissingDescriptions: snapshot.MissingDescriptions(),
		ConfirmedEmpty:      snapshot.ConfirmedEmpty(),
		DuplicateIdentities: len(collisions),
		BindingBreakdown:    breakdown,
	}
}

// DiffSnapshots compares two snapshots book-by-book, keyed by identity.
func DiffSnapshots(prev, next *domain.LibrarySnapshot) *driving.SnapshotDiff {
	prevByID := make(map[string]*domain.Book, len(prev.Books))
	for i := range prev.Books {
		prevByID[prev.Books[i].Identity.String()] = &prev.Books[i]
	}
	nextByID := make(map[string]*domain.Book, len(next.Books))
	for i := range next.Books {
		nextByID[next.Books[i].Identity.String()] = &next.Books[i]
	}

	diff := &driving.SnapshotDiff{}
	for i := range next.Books {
		book := &next.Books[i]
		old, ok := prevByID[book.Identity.String()]
		if !ok {
			diff.Added = append(diff.Added, book.Identity)
			continue
		}
		if old.Description == "" && book.Description != "" {
			diff.DescriptionsGained = append(diff.DescriptionsGained, book.Identity)
		}
		if old.Description != "" && book.Description == "" {
			diff.DescriptionsLost = append(diff.DescriptionsLost, book.Identity)
		}
	}
	for i := range prev.Books {
		if _, ok := nextByID[prev.Books[i].Identity.String()]; !ok {
			diff.Removed = append(diff.Removed, prev.Books[i].Identity)
		}
	}
	return diff
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
