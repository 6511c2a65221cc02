package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
	"github.com/shelfsync/shelfsync-cli/internal/logger"
)

// Ensure MergeService implements the interface.
var _ driving.Merger = (*MergeService)(nil)

// MergeService folds catalog entries, live enrichment results and recovery
// sources into a new canonical snapshot. It exclusively owns the candidate
// snapshot during a merge pass.
type MergeService struct {
	snapshots driven.SnapshotStore
	loader    *RecoveryLoader
	settings  domain.Settings
}

// NewMergeService creates a merge service.
func NewMergeService(snapshots driven.SnapshotStore, loader *RecoveryLoader, settings domain.Settings) *MergeService {
	return &MergeService{
		snapshots: snapshots,
		loader:    loader,
		settings:  settings,
	}
}

// Merge loads the latest snapshot and the recovery sources, runs a merge
// pass and writes the result as a new snapshot version.
func (m *MergeService) Merge(ctx context.Context, req driving.MergeRequest) (*driving.MergeOutcome, error) {
	existing, err := m.snapshots.Latest(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}

	names := req.Sources
	if len(names) == 0 {
		names, err = m.loader.OrderedNames(ctx, m.settings.Merge.Precedence)
		if err != nil {
			return nil, fmt.Errorf("list recovery sources: %w", err)
		}
	}

	sources, skipped, err := m.loader.Load(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("load recovery sources: %w", err)
	}

	result := MergeSnapshot(existing, req.Items, req.Enrichments, sources, time.Now())

	name, err := m.snapshots.Save(ctx, result.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	logger.Info("Merged snapshot %s: %d books, %d without descriptions",
		name, result.Snapshot.Metadata.TotalBooks, result.Snapshot.Metadata.BooksWithoutDescriptions)

	return &driving.MergeOutcome{
		Snapshot:       result.Snapshot,
		SnapshotName:   name,
		Collisions:     result.Collisions,
		ConfirmedEmpty: result.ConfirmedEmpty,
		SkippedSources: skipped,
	}, nil
}

// MergeResult is the output of one pure merge pass.
type MergeResult struct {
	Snapshot       *domain.LibrarySnapshot
	Collisions     []domain.Identity
	ConfirmedEmpty []domain.Identity
}

// MergeSnapshot is the merge engine proper. It is a pure function: inputs
// are never mutated and the returned snapshot is a fresh value, so callers
// can inspect the delta before accepting it.
//
// Precedence rules, in application order:
//  1. existing snapshot books seed the collection, in their stored order
//  2. fresh catalog items update matching books or append new ones; a
//     duplicate identity within the inputs is a recorded collision and the
//     later record wins
//  3. usable enrichment records overwrite the enrichment-derived fields
//  4. recovery sources overwrite descriptions; when several sources carry
//     the same identity the later-declared source wins, regardless of
//     fetch dates
//
// All metadata counts are recomputed from the merged collection; incoming
// metadata counts are never trusted.
func MergeSnapshot(
	existing *domain.LibrarySnapshot,
	items []domain.CatalogItem,
	enrichments map[string]domain.EnrichmentRecord,
	sources []domain.RecoverySource,
	now time.Time,
) *MergeResult {
	out := &domain.LibrarySnapshot{}
	index := make(map[string]int)
	var collisions []domain.Identity

	// 1. Seed from the existing snapshot. Duplicates inside a stored
	// snapshot violate its invariant but are tolerated here the same way
	// as input duplicates: later wins, collision recorded.
	if existing != nil {
		for i := range existing.Books {
			book := existing.Books[i]
			key := book.Identity.String()
			if at, ok := index[key]; ok {
				out.Books[at] = book
				collisions = append(collisions, book.Identity)
				continue
			}
			index[key] = len(out.Books)
			out.Books = append(out.Books, book)
		}
	}

	// 2. Fold in fresh catalog items. An identity seen before in this
	// item list is an upstream duplicate: recorded, later wins.
	freshSeen := make(map[string]bool)
	for _, item := range items {
		key := item.Identity.String()
		if freshSeen[key] {
			collisions = append(collisions, item.Identity)
		}
		freshSeen[key] = true

		if at, ok := index[key]; ok {
			out.Books[at].ApplyCatalog(item)
			continue
		}
		index[key] = len(out.Books)
		out.Books = append(out.Books, domain.NewBook(item))
	}

	// 3. Apply live enrichment records.
	for i := range out.Books {
		rec, ok := enrichments[out.Books[i].Identity.String()]
		if !ok || !rec.Usable() {
			continue
		}
		applyEnrichment(&out.Books[i], rec)
	}

	// 4. Apply recovery sources: build the identity-keyed lookup in
	// declared order so the later-declared source wins, then overlay.
	lookup := make(map[string]string)
	for _, src := range sources {
		for _, entry := range src.Descriptions {
			lookup[entry.Identity.String()] = entry.Description
		}
	}

	var confirmedEmpty []domain.Identity
	for i := range out.Books {
		book := &out.Books[i]
		value, ok := lookup[book.Identity.String()]
		if !ok {
			continue
		}
		if value != "" {
			book.Description = value
			book.DescriptionState = domain.DescriptionPresent
			continue
		}
		// An empty recovery value confirms the upstream has nothing; the
		// book's state is left otherwise unchanged. Confirmed-empty is a
		// different state from never-attempted.
		if book.Description == "" {
			book.DescriptionState = domain.DescriptionConfirmedEmpty
			confirmedEmpty = append(confirmedEmpty, book.Identity)
		}
	}

	for _, src := range sources {
		out.Metadata.Sources = append(out.Metadata.Sources, src.Name)
	}
	out.Recount(now)

	return &MergeResult{
		Snapshot:       out,
		Collisions:     collisions,
		ConfirmedEmpty: confirmedEmpty,
	}
}

// applyEnrichment overwrites a book's enrichment-derived fields from a
// usable record. An empty description on a usable outcome is a confirmed
// absence, not a gap.
func applyEnrichment(book *domain.Book, rec domain.EnrichmentRecord) {
	book.Description = rec.Description
	if rec.Description != "" {
		book.DescriptionState = domain.DescriptionPresent
	} else {
		book.DescriptionState = domain.DescriptionConfirmedEmpty
	}
	book.AISummary = rec.AISummary
	book.ReviewSummary = rec.ReviewSummary
	book.TopReviews = rec.TopReviews
	book.ReviewsUnavailable = rec.ReviewsUnavailable
}
