// Package domain contains the core business entities for shelfsync.
//
// The entities here model a personal e-book library as reported by the
// upstream storefront: catalog items from the listing endpoint, enrichment
// records from the per-item detail endpoint, recovery sources produced by
// out-of-band fetches, and the canonical merged snapshot.
//
// Domain types have no dependencies on adapters or external services.
// They are plain data with validation and small state-machine helpers.
package domain
