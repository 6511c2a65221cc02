package domain

import "time"

// ReadStatus is the upstream's reading progress marker for an item.
type ReadStatus string

const (
	ReadStatusUnknown ReadStatus = ""
	ReadStatusUnread  ReadStatus = "unread"
	ReadStatusReading ReadStatus = "reading"
	ReadStatusRead    ReadStatus = "read"
)

// CatalogItem is one title as reported by the listing endpoint.
// Items are created fresh on every pagination run and never mutated in
// place; each run produces a new candidate list that is merged into the
// existing snapshot.
type CatalogItem struct {
	// Identity is the deduplication key for this item.
	Identity Identity

	// Title is the human-readable title.
	Title string

	// Authors is free text and may contain multiple comma-joined names.
	Authors string

	// Binding is the format reported by the upstream (ebook, hardcover...).
	Binding string

	// AcquiredAt is when the item entered the account's library.
	AcquiredAt time.Time

	// ReadStatus is the upstream's reading progress marker.
	ReadStatus ReadStatus

	// Collections lists the user collections the item belongs to.
	Collections []string
}

// DescriptionState records how a Book's description field got its value.
// An empty description from a successful fetch is a confirmed absence; an
// empty description on an item that was never successfully enriched is a
// gap that a follow-up run may still fill. The two must never be conflated.
type DescriptionState string

const (
	// DescriptionMissing means no enrichment or recovery source has ever
	// succeeded for this identity.
	DescriptionMissing DescriptionState = "missing"

	// DescriptionConfirmedEmpty means the upstream confirmed the item has
	// no description.
	DescriptionConfirmedEmpty DescriptionState = "confirmed-empty"

	// DescriptionPresent means a non-empty description was obtained.
	DescriptionPresent DescriptionState = "present"
)

// Book is one merged record in the canonical snapshot: the union of a
// CatalogItem and its resolved EnrichmentRecord.
type Book struct {
	Identity    Identity   `json:"identity"`
	Title       string     `json:"title"`
	Authors     string     `json:"authors"`
	Binding     string     `json:"binding,omitempty"`
	AcquiredAt  time.Time  `json:"acquiredAt"`
	ReadStatus  ReadStatus `json:"readStatus,omitempty"`
	Collections []string   `json:"collections,omitempty"`

	// Description is always a string. Empty means either a confirmed
	// absence or a never-enriched gap; DescriptionState tells them apart.
	Description      string           `json:"description"`
	DescriptionState DescriptionState `json:"descriptionState"`

	AISummary     string        `json:"aiSummary,omitempty"`
	ReviewSummary ReviewSummary `json:"reviewSummary"`
	TopReviews    []Review      `json:"topReviews,omitempty"`

	// ReviewsUnavailable is set when the review sub-field failed
	// server-side in an otherwise usable response. It is an explicit
	// "unavailable", never an inferred zero.
	ReviewsUnavailable bool `json:"reviewsUnavailable,omitempty"`
}

// NewBook builds a Book from a freshly listed catalog item. The
// description starts as a missing (never-enriched) empty string.
func NewBook(item CatalogItem) Book {
	return Book{
		Identity:         item.Identity,
		Title:            item.Title,
		Authors:          item.Authors,
		Binding:          item.Binding,
		AcquiredAt:       item.AcquiredAt,
		ReadStatus:       item.ReadStatus,
		Collections:      item.Collections,
		Description:      "",
		DescriptionState: DescriptionMissing,
	}
}

// ApplyCatalog refreshes the catalog-reported fields from a newer listing
// without touching enrichment state.
func (b *Book) ApplyCatalog(item CatalogItem) {
	b.Title = item.Title
	b.Authors = item.Authors
	b.Binding = item.Binding
	if !item.AcquiredAt.IsZero() {
		b.AcquiredAt = item.AcquiredAt
	}
	if item.ReadStatus != ReadStatusUnknown {
		b.ReadStatus = item.ReadStatus
	}
	if item.Collections != nil {
		b.Collections = item.Collections
	}
}

// IdentityListEntry scopes a targeted enrichment or recovery run to a
// known subset of the library, e.g. "items still missing descriptions".
type IdentityListEntry struct {
	Identity Identity `json:"identity"`
	Title    string   `json:"title,omitempty"`
	Authors  string   `json:"authors,omitempty"`
}
