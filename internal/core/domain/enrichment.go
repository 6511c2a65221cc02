package domain

// Outcome classifies one enrichment response. Every response maps to
// exactly one outcome.
type Outcome string

const (
	// OutcomeSuccess means no error envelope was present and the product
	// payload was present.
	OutcomeSuccess Outcome = "success"

	// OutcomePartial means an error envelope AND a product payload were
	// both present. This is common for some accounts: a subordinate
	// sub-field (typically the top-review list) consistently fails
	// server-side while every other field succeeds. A partial outcome
	// yields a real, usable record.
	OutcomePartial Outcome = "partial"

	// OutcomeHardFailure means no product payload at all: a transport
	// error, a non-2xx status, or an error envelope with no data.
	OutcomeHardFailure Outcome = "hard-failure"
)

// ReviewSummary is the aggregate review data for an item.
type ReviewSummary struct {
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
}

// Review is one customer review. TopReviews may be empty even when the
// summary reports a non-zero count; that divergence is expected upstream
// behaviour, not an error.
type Review struct {
	Title  string  `json:"title,omitempty"`
	Rating float64 `json:"rating,omitempty"`
	Text   string  `json:"text"`
}

// EnrichmentRecord is the result of enriching one identity.
type EnrichmentRecord struct {
	Identity Identity `json:"identity"`

	// Description is the first non-empty candidate in the fallback order
	// (primary description, structured content, AI summary). Empty string
	// on a usable outcome is a genuine, confirmed absence.
	Description string `json:"description"`

	AISummary     string        `json:"aiSummary,omitempty"`
	ReviewSummary ReviewSummary `json:"reviewSummary"`
	TopReviews    []Review      `json:"topReviews,omitempty"`

	// ReviewsUnavailable marks the review sub-field as explicitly failed
	// in a partial response.
	ReviewsUnavailable bool `json:"reviewsUnavailable,omitempty"`

	Outcome Outcome `json:"outcome"`

	// ErrorDetail is present only when Outcome != success.
	ErrorDetail string `json:"errorDetail,omitempty"`
}

// Usable reports whether the record carries real data that can be merged
// into the snapshot. Partial outcomes are usable; hard failures are not.
func (r *EnrichmentRecord) Usable() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomePartial
}
