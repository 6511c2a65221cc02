package domain

import "time"

// Default pipeline tuning. The upstream's rate limit is undocumented and
// only partially characterised empirically, so every constant here is a
// tunable default, not an invariant.
const (
	// DefaultBatchSize is the listing page size.
	DefaultBatchSize = 50

	// DefaultRequestDelayMS is the fixed inter-request delay between
	// enrichment calls, in milliseconds.
	DefaultRequestDelayMS = 1500

	// DefaultTimeoutSeconds is the HTTP request timeout.
	DefaultTimeoutSeconds = 30

	// DefaultPersistEvery is how many enriched items may accumulate
	// before the run state is flushed to the run store.
	DefaultPersistEvery = 10
)

// StorefrontSettings configures the upstream connector.
type StorefrontSettings struct {
	// BaseURL is the storefront origin.
	BaseURL string `toml:"base_url"`

	// BatchSize is the listing page size.
	BatchSize int `toml:"batch_size"`

	// RequestDelayMS is the fixed delay between consecutive enrichment
	// requests, in milliseconds. Serialised, paced requests are the only
	// reliably safe strategy found against this upstream.
	RequestDelayMS int `toml:"request_delay_ms"`

	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// ContentFilter restricts the listing to a content type
	// (e.g. "ebook"). Empty means everything.
	ContentFilter string `toml:"content_filter"`

	// SortOrder is the listing sort order sent to the upstream.
	SortOrder string `toml:"sort_order"`
}

// MergeSettings configures the snapshot merge.
type MergeSettings struct {
	// Precedence is the declared recovery source order. Later entries win
	// when two sources describe the same identity. Files present in the
	// recovery directory but absent from this list are appended after it
	// in file-name order, with a warning.
	Precedence []string `toml:"precedence"`
}

// Settings is the full pipeline configuration.
type Settings struct {
	// DataDir is where snapshots, recovery sources, the run database and
	// the session context live. Empty means ~/.shelfsync.
	DataDir string `toml:"data_dir"`

	Storefront StorefrontSettings `toml:"storefront"`
	Merge      MergeSettings      `toml:"merge"`
}

// DefaultSettings returns the empirically tuned defaults.
func DefaultSettings() Settings {
	return Settings{
		Storefront: StorefrontSettings{
			BatchSize:      DefaultBatchSize,
			RequestDelayMS: DefaultRequestDelayMS,
			TimeoutSeconds: DefaultTimeoutSeconds,
			ContentFilter:  "ebook",
			SortOrder:      "acquisition_desc",
		},
	}
}

// Normalise fills zero values with defaults so partially written config
// files keep working.
func (s *Settings) Normalise() {
	if s.Storefront.BatchSize <= 0 {
		s.Storefront.BatchSize = DefaultBatchSize
	}
	if s.Storefront.RequestDelayMS <= 0 {
		s.Storefront.RequestDelayMS = DefaultRequestDelayMS
	}
	if s.Storefront.TimeoutSeconds <= 0 {
		s.Storefront.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// RequestDelay returns the inter-request delay as a duration.
func (s *Settings) RequestDelay() time.Duration {
	return time.Duration(s.Storefront.RequestDelayMS) * time.Millisecond
}

// Timeout returns the HTTP timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.Storefront.TimeoutSeconds) * time.Second
}
