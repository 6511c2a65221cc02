package driven

import (
	"context"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// CatalogPage is one batch from the listing endpoint.
type CatalogPage struct {
	// Items are the catalog entries in this batch.
	Items []domain.CatalogItem

	// TotalCount is the server-reported total item count. The upstream
	// paginates inconsistently, so the count is advisory but bounds the
	// fetch loop.
	TotalCount int

	// HasMore is the server's continuation flag.
	HasMore bool
}

// CatalogClient talks to the upstream storefront. Implementations own
// request pacing and outcome classification; they never mutate shared
// state beyond their own connection.
type CatalogClient interface {
	// ListPage fetches one listing batch at the given offset.
	// Transport and status errors are returned as errors; pagination
	// policy (abort, keep partial progress) belongs to the caller.
	ListPage(ctx context.Context, offset, size int) (*CatalogPage, error)

	// Enrich fetches and classifies the enrichment response for one
	// identity. Transport and status failures are folded into a record
	// with a hard-failure outcome; a non-nil error is reserved for
	// context cancellation, so run policy stays in the service layer.
	Enrich(ctx context.Context, id domain.Identity) (*domain.EnrichmentRecord, error)

	// Validate performs a lightweight check that the session context is
	// accepted by the upstream (a one-item listing request).
	Validate(ctx context.Context) error

	// Close releases resources.
	Close() error
}
