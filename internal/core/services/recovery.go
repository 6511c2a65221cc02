package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
	"github.com/shelfsync/shelfsync-cli/internal/logger"
)

// RecoveryLoader reads externally produced recovery source files in a
// declared, significant order. A malformed file is fatal to that source
// only: it is skipped with a loud warning and the rest keep loading.
type RecoveryLoader struct {
	store driven.RecoveryStore
}

// NewRecoveryLoader creates a loader over the given store.
func NewRecoveryLoader(store driven.RecoveryStore) *RecoveryLoader {
	return &RecoveryLoader{store: store}
}

// OrderedNames resolves the effective source order: the configured
// precedence list first (skipping entries with no matching file, with a
// warning), then any files not covered by the list in file-name order.
// Appending unlisted files is deliberate visible behaviour; precedence
// should come from configuration, not from whatever happens to be on disk.
func (l *RecoveryLoader) OrderedNames(ctx context.Context, precedence []string) ([]string, error) {
	available, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recovery sources: %w", err)
	}

	present := make(map[string]bool, len(available))
	for _, name := range available {
		present[name] = true
	}

	var ordered []string
	covered := make(map[string]bool)
	for _, name := range precedence {
		if !present[name] {
			logger.Warn("Recovery source %q is in the precedence list but has no file; skipping", name)
			continue
		}
		ordered = append(ordered, name)
		covered[name] = true
	}

	var unlisted []string
	for _, name := range available {
		if !covered[name] {
			unlisted = append(unlisted, name)
		}
	}
	sort.Strings(unlisted)
	if len(unlisted) > 0 && len(precedence) > 0 {
		logger.Warn("Recovery sources not in the precedence list, appended last: %v", unlisted)
	}

	return append(ordered, unlisted...), nil
}

// Load reads the named sources, preserving their order. Malformed or
// missing sources are returned in skipped and warned about; they never
// fail the whole load and are never silently dropped.
func (l *RecoveryLoader) Load(ctx context.Context, names []string) (sources []domain.RecoverySource, skipped []string, err error) {
	for _, name := range names {
		src, err := l.store.Load(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedSource) || errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Skipping recovery source %q: %v", name, err)
				skipped = append(skipped, name)
				continue
			}
			return nil, nil, fmt.Errorf("load recovery source %q: %w", name, err)
		}

		if src.Metadata.Stopped {
			logger.Info("Recovery source %q was aborted at %q; loading its partial contents",
				name, src.Metadata.StoppedAt)
		}
		sources = append(sources, *src)
	}
	return sources, skipped, nil
}
