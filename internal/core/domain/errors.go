package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidIdentity indicates an identity string could not be parsed.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrMalformedSource indicates a recovery source file is missing its
	// metadata block or its descriptions list. Malformed sources are
	// rejected whole; they are never partially loaded.
	ErrMalformedSource = errors.New("malformed recovery source")

	// ErrRunInProgress indicates a sync run is already running.
	ErrRunInProgress = errors.New("sync run in progress")

	// ErrRunNotResumable indicates the run is already complete and has no
	// unresolved remainder to continue from.
	ErrRunNotResumable = errors.New("run is not resumable")

	// Session errors.

	// ErrSessionRequired indicates no session context is configured.
	// The operator must supply one via the session command.
	ErrSessionRequired = errors.New("session context required")

	// ErrSessionStale indicates the session's anti-forgery token was
	// rejected by the upstream. A fresh token may clear it, but token age
	// is not the only cause of hard failures.
	ErrSessionStale = errors.New("session context stale")
)
