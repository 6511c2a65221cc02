package driving

import (
	"context"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// MergeRequest asks for a merge of the latest snapshot with fresh pipeline
// output and/or recovery sources.
type MergeRequest struct {
	// Items are freshly listed catalog entries. May be empty for a pure
	// recovery-file merge.
	Items []domain.CatalogItem

	// Enrichments maps canonical identity strings to usable enrichment
	// records from the current run.
	Enrichments map[string]domain.EnrichmentRecord

	// Sources overrides the configured recovery precedence list. Empty
	// means: configured precedence first, then any unlisted files in
	// file-name order (with a warning).
	Sources []string
}

// MergeOutcome is the result of one merge pass.
type MergeOutcome struct {
	// Snapshot is the new canonical candidate. It is written as a new
	// version; the previous snapshot is left untouched for inspection.
	Snapshot *domain.LibrarySnapshot

	// SnapshotName is the name the snapshot was saved under.
	SnapshotName string

	// Collisions lists identities that appeared more than once in the
	// inputs. Duplicates are a known upstream data-quality defect; the
	// later record wins and the collision is surfaced here.
	Collisions []domain.Identity

	// ConfirmedEmpty lists identities a recovery source confirmed as
	// having no description upstream.
	ConfirmedEmpty []domain.Identity

	// SkippedSources names recovery files rejected as malformed. They
	// are skipped loudly, never silently.
	SkippedSources []string
}

// Merger folds catalog entries, enrichment results and recovery sources
// into a new canonical snapshot.
type Merger interface {
	Merge(ctx context.Context, req MergeRequest) (*MergeOutcome, error)
}
