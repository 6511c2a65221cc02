package domain

import "time"

// RecoveryMetadata is the provenance block every recovery source must
// declare.
type RecoveryMetadata struct {
	// FetchDate is when the batch was collected. Precedence between
	// sources is by declared order, not by this date.
	FetchDate time.Time `json:"fetchDate"`

	// SourceType names the collection method (e.g. "traditional",
	// "ai-summary", "recursive-extraction").
	SourceType string `json:"sourceType"`

	// Stopped is true when the batch was aborted before covering its
	// whole input.
	Stopped bool `json:"stopped,omitempty"`

	// StoppedAt identifies where an aborted batch stopped.
	StoppedAt string `json:"stoppedAt,omitempty"`
}

// DescriptionEntry is one identity/description pair in a recovery source.
// An empty description is a meaningful value: it confirms the upstream has
// no description for that identity.
type DescriptionEntry struct {
	Identity    Identity `json:"identity"`
	Description string   `json:"description"`
}

// RecoverySource is a named, independently produced enrichment batch used
// to patch gaps in the canonical snapshot. Multiple sources may describe
// the same identity with different values; the merge engine resolves that
// by declared source order.
type RecoverySource struct {
	// Name identifies the source, normally its file name.
	Name string `json:"-"`

	Metadata     RecoveryMetadata   `json:"metadata"`
	Descriptions []DescriptionEntry `json:"descriptions"`
}
