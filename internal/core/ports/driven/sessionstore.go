package driven

import (
	"context"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// SessionStore supplies and persists the operator-provided session
// context. The pipeline treats the context as an opaque, time-limited
// capability: it is read-only within a run, and a stale one is replaced
// by the operator before a follow-up run.
type SessionStore interface {
	// Session returns the current session context.
	// Returns domain.ErrSessionRequired when none has been supplied.
	Session(ctx context.Context) (*domain.SessionContext, error)

	// Save persists a freshly captured session context.
	Save(ctx context.Context, session domain.SessionContext) error
}
