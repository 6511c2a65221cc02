package storefront

import (
	"time"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

const (
	// DefaultBaseURL is the storefront origin.
	DefaultBaseURL = "https://store.example.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// listingPath serves the paginated catalog listing.
	listingPath = "/api/catalog/items"

	// enrichPath serves the GraphQL-style enrichment queries.
	enrichPath = "/api/catalog/enrichment"
)

// Config holds the connector configuration. All values are tunable; the
// defaults are the empirically safe ones.
type Config struct {
	// BaseURL is the storefront origin.
	BaseURL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RequestDelay is the fixed delay between consecutive requests.
	RequestDelay time.Duration

	// ContentFilter restricts the listing to a content type. Empty means
	// everything.
	ContentFilter string

	// SortOrder is the listing sort order sent to the upstream.
	SortOrder string
}

// ConfigFromSettings derives a connector config from pipeline settings.
func ConfigFromSettings(settings domain.Settings) Config {
	cfg := Config{
		BaseURL:       settings.Storefront.BaseURL,
		Timeout:       settings.Timeout(),
		RequestDelay:  settings.RequestDelay(),
		ContentFilter: settings.Storefront.ContentFilter,
		SortOrder:     settings.Storefront.SortOrder,
	}
	cfg.normalise()
	return cfg
}

func (c *Config) normalise() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RequestDelay < 0 {
		c.RequestDelay = 0
	}
}
