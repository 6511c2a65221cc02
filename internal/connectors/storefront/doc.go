// Package storefront implements the connector for the upstream e-book
// storefront: the paginated catalog listing endpoint and the GraphQL-style
// enrichment endpoint.
//
// The upstream was not designed for bulk export. It paginates
// inconsistently, returns partial responses (usable data and an error
// envelope in the same body), silently fails for specific identifiers,
// requires a short-lived anti-forgery token that can go stale mid-run, and
// enforces an undocumented rate limit. The connector's job is to tolerate
// all of that and hand the service layer cleanly classified outcomes:
//
//   - success: product payload, no error envelope
//   - partial: product payload AND error envelope; the failing sub-field
//     (typically the top-review list) is marked explicitly unavailable
//   - hard-failure: no product payload at all
//
// Requests are paced with a fixed inter-request delay. Serialization with
// a fixed delay is the only reliably safe strategy found against this
// upstream; the delay is configuration, not a constant derived from any
// documented limit.
package storefront
