// Package driven defines the outbound ports of the sync pipeline: the
// interfaces the core services need implemented by adapters (the upstream
// catalog connector, the file and SQLite stores, the session provider).
//
// Following the dependency rule, this package only imports domain types.
package driven
