package driven

import (
	"context"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// RecoveryStore reads externally produced recovery source files.
type RecoveryStore interface {
	// Load reads and validates one recovery source by name. A source
	// missing its metadata block or its descriptions list fails with
	// domain.ErrMalformedSource; it is never partially loaded.
	Load(ctx context.Context, name string) (*domain.RecoverySource, error)

	// List returns the available source names in file-name order.
	List(ctx context.Context) ([]string, error)

	// Watch reports names of recovery source files as they appear or
	// change in the recovery directory. The channel closes when ctx is
	// cancelled.
	Watch(ctx context.Context) (<-chan string, error)
}
