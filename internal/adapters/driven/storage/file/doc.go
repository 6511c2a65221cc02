// Package file implements the file-backed stores: versioned snapshot
// files, recovery source files, identity-list files and the operator's
// session context. All writes are atomic (temp file + rename) and
// snapshots are strictly append-only: a new version never overwrites a
// previous one.
package file
