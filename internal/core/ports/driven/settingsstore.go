package driven

import (
	"context"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// SettingsStore loads and persists pipeline settings. Rate and backoff
// constants live here, as tunable configuration rather than hard
// invariants.
type SettingsStore interface {
	// Load reads the settings, applying defaults for missing values.
	Load(ctx context.Context) (*domain.Settings, error)

	// Save persists the settings.
	Save(ctx context.Context, settings domain.Settings) error
}
