package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driving"
	"github.com/shelfsync/shelfsync-cli/internal/logger"
)

// Ensure SyncPipeline implements the interface.
var _ driving.SyncRunner = (*SyncPipeline)(nil)

// SyncPipeline coordinates the library synchronisation run: paginated
// catalog fetch, serialized per-item enrichment, stop-on-first-hard-failure
// policy, run persistence for resumption, and the merge handoff.
//
// Execution is deliberately single-threaded and request-at-a-time: the
// upstream's rate-limit behaviour depends on request cadence, so there is
// no parallel fan-out of enrichment calls.
type SyncPipeline struct {
	client    driven.CatalogClient
	runs      driven.RunStore
	snapshots driven.SnapshotStore
	merger    driving.Merger
	settings  domain.Settings

	// Status tracking
	mu     sync.RWMutex
	active *driving.RunStatus
}

// NewSyncPipeline creates a sync pipeline.
func NewSyncPipeline(
	client driven.CatalogClient,
	runs driven.RunStore,
	snapshots driven.SnapshotStore,
	merger driving.Merger,
	settings domain.Settings,
) *SyncPipeline {
	return &SyncPipeline{
		client:    client,
		runs:      runs,
		snapshots: snapshots,
		merger:    merger,
		settings:  settings,
	}
}

// Run executes a fresh sync run.
func (p *SyncPipeline) Run(ctx context.Context, opts driving.RunOptions) (*driving.RunResult, error) {
	if err := p.client.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}

	var (
		items   []domain.CatalogItem
		total   int
		pageErr error
	)
	if len(opts.Scope) > 0 {
		items = itemsFromScope(opts.Scope)
		total = len(items)
		logger.Info("Run scoped to %d identities", total)
	} else {
		items, total, pageErr = p.fetchCatalog(ctx)
		if pageErr != nil {
			if len(items) == 0 {
				return nil, fmt.Errorf("fetch catalog: %w", pageErr)
			}
			// Partial progress is preserved, never discarded: the run
			// continues over the batches that did arrive.
			logger.Warn("Pagination aborted after %d of %d reported items: %v; continuing with partial catalog",
				len(items), total, pageErr)
		}
	}

	run := domain.NewSyncRun(uuid.NewString())
	return p.execute(ctx, run, items, total, opts.SkipMerge)
}

// Resume continues a stopped run over only its unresolved remainder.
func (p *SyncPipeline) Resume(ctx context.Context, runID string) (*driving.RunResult, error) {
	var (
		run *domain.SyncRun
		err error
	)
	if runID == "" {
		run, err = p.runs.LatestStopped(ctx)
	} else {
		run, err = p.runs.Get(ctx, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	if !run.Resumable() {
		return nil, fmt.Errorf("%w: run %s is %s", domain.ErrRunNotResumable, run.ID, run.State)
	}

	if err := p.client.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}

	items, total, err := p.catalogForResume(ctx)
	if err != nil {
		return nil, err
	}

	remainder := run.Remaining(items)
	logger.Info("Resuming run %s over %d unresolved items", run.ID, len(remainder))

	return p.execute(ctx, run, remainder, total, false)
}

// Status reports progress of the active run.
func (p *SyncPipeline) Status(_ context.Context) (*driving.RunStatus, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.active == nil {
		return &driving.RunStatus{}, nil
	}
	// Return a copy to avoid races with the run loop.
	status := *p.active
	return &status, nil
}

// execute runs the enrichment loop and the merge stage for the given run.
func (p *SyncPipeline) execute(
	ctx context.Context,
	run *domain.SyncRun,
	items []domain.CatalogItem,
	total int,
	skipMerge bool,
) (*driving.RunResult, error) {
	run.Start(time.Now())
	if err := p.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	p.setStatus(&driving.RunStatus{RunID: run.ID, Running: true})
	defer p.clearStatus()

	logger.Section(fmt.Sprintf("Enrichment run %s", run.ID))
	if err := p.enrich(ctx, run, items); err != nil {
		return nil, err
	}

	result := &driving.RunResult{
		Run:           run,
		ItemsListed:   len(items),
		TotalReported: total,
	}

	if !skipMerge {
		outcome, err := p.merger.Merge(ctx, driving.MergeRequest{
			Items:       items,
			Enrichments: run.Succeeded,
		})
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		result.SnapshotName = outcome.SnapshotName
	}

	logger.Info("Run %s finished: %d success, %d partial, %d hard failures",
		run.ID, run.Counts.Success, run.Counts.Partial, run.Counts.HardFailure)
	return result, nil
}

// fetchCatalog walks the listing endpoint in fixed-size batches. On any
// error it returns everything accumulated so far alongside the error.
func (p *SyncPipeline) fetchCatalog(ctx context.Context) ([]domain.CatalogItem, int, error) {
	batch := p.settings.Storefront.BatchSize
	var (
		items []domain.CatalogItem
		total int
	)

	for offset := 0; ; offset += batch {
		page, err := p.client.ListPage(ctx, offset, batch)
		if err != nil {
			return items, total, err
		}

		items = append(items, page.Items...)
		if page.TotalCount > 0 {
			total = page.TotalCount
		}
		logger.Debug("Listed batch at offset %d: %d items (total %d)", offset, len(page.Items), total)

		if !page.HasMore {
			break
		}
		if total > 0 && len(items) >= total {
			break
		}
		// A batch with no items and a continuation flag would loop
		// forever against this upstream's inconsistent pagination.
		if len(page.Items) == 0 {
			logger.Warn("Empty batch at offset %d with hasMore set; stopping pagination", offset)
			break
		}
	}

	return items, total, nil
}

// enrich runs the serialized enrichment loop. The first hard failure stops
// the whole run; successes already obtained are retained and persisted.
// The returned error is non-nil only for context cancellation or storage
// failures.
func (p *SyncPipeline) enrich(ctx context.Context, run *domain.SyncRun, items []domain.CatalogItem) error {
	now := time.Now
	processed := 0
	sinceFlush := 0

	for _, item := range items {
		key := item.Identity.String()
		if _, done := run.Succeeded[key]; done {
			continue // already covered by a previous attempt of this run
		}

		rec, err := p.client.Enrich(ctx, item.Identity)
		if err != nil {
			// Cancellation mid-run: persist progress before surfacing.
			if saveErr := p.runs.Save(context.WithoutCancel(ctx), run); saveErr != nil {
				logger.Warn("Failed to persist run %s on cancellation: %v", run.ID, saveErr)
			}
			return fmt.Errorf("enrich %s: %w", key, err)
		}

		run.MarkAttempted(item.Identity)

		if rec.Outcome == domain.OutcomeHardFailure {
			// First hard failure stops the run; earlier successes
			// are kept and still reach the merge below.
			run.Stop(domain.RunFailure{
				Identity: item.Identity,
				Reason:   rec.ErrorDetail,
				At:       now(),
			}, now())
			if err := p.runs.Save(ctx, run); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			logger.Warn("Run %s stopped on hard failure at %s: %s (%d items enriched so far)",
				run.ID, key, rec.ErrorDetail, len(run.Succeeded))
			return nil
		}

		run.MarkSucceeded(*rec)
		processed++
		sinceFlush++
		p.updateStatus(run, processed)

		if rec.Outcome == domain.OutcomePartial {
			logger.Debug("Partial outcome for %s: %s", key, rec.ErrorDetail)
		}

		if sinceFlush >= domain.DefaultPersistEvery {
			if err := p.runs.Save(ctx, run); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			sinceFlush = 0
		}
	}

	run.Complete(now())
	if err := p.runs.Save(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// catalogForResume rebuilds the catalog item list for a continuation run.
// The latest snapshot is preferred over a fresh pagination pass: it avoids
// spending listing requests and keeps the continuation targeted.
func (p *SyncPipeline) catalogForResume(ctx context.Context) ([]domain.CatalogItem, int, error) {
	snapshot, err := p.snapshots.Latest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			items, total, pageErr := p.fetchCatalog(ctx)
			if pageErr != nil && len(items) == 0 {
				return nil, 0, fmt.Errorf("fetch catalog: %w", pageErr)
			}
			return items, total, nil
		}
		return nil, 0, fmt.Errorf("load latest snapshot: %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(snapshot.Books))
	for i := range snapshot.Books {
		b := &snapshot.Books[i]
		items = append(items, domain.CatalogItem{
			Identity:    b.Identity,
			Title:       b.Title,
			Authors:     b.Authors,
			Binding:     b.Binding,
			AcquiredAt:  b.AcquiredAt,
			ReadStatus:  b.ReadStatus,
			Collections: b.Collections,
		})
	}
	return items, len(items), nil
}

func itemsFromScope(scope []domain.IdentityListEntry) []domain.CatalogItem {
	items := make([]domain.CatalogItem, 0, len(scope))
	for _, entry := range scope {
		items = append(items, domain.CatalogItem{
			Identity: entry.Identity,
			Title:    entry.Title,
			Authors:  entry.Authors,
		})
	}
	return items
}

func (p *SyncPipeline) setStatus(status *driving.RunStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = status
}

func (p *SyncPipeline) updateStatus(run *domain.SyncRun, processed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil {
		p.active.ItemsProcessed = processed
		p.active.Counts = run.Counts
	}
}

func (p *SyncPipeline) clearStatus() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = nil
}
