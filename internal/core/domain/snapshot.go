package domain

import "time"

// SnapshotSchemaVersion is the current snapshot file schema version.
const SnapshotSchemaVersion = 2

// SnapshotMetadata describes a snapshot. Every count here is derived by
// recomputation over the book collection at merge time, never copied
// forward from a prior snapshot.
type SnapshotMetadata struct {
	SchemaVersion            int       `json:"schemaVersion"`
	TotalBooks               int       `json:"totalBooks"`
	BooksWithoutDescriptions int       `json:"booksWithoutDescriptions"`
	MergedAt                 time.Time `json:"mergedAt"`

	// Sources records the names of the recovery sources folded into this
	// snapshot, in the precedence order that was applied.
	Sources []string `json:"sources,omitempty"`
}

// LibrarySnapshot is the canonical merged library state.
//
// Invariants: Identity is unique across Books; every Book's Description is
// a string (possibly empty), never absent; metadata counts always match a
// recount of Books.
type LibrarySnapshot struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Books    []Book           `json:"books"`
}

// Recount recomputes the derived metadata counts from the current book
// collection and stamps the merge time.
func (s *LibrarySnapshot) Recount(now time.Time) {
	s.Metadata.SchemaVersion = SnapshotSchemaVersion
	s.Metadata.TotalBooks = len(s.Books)
	s.Metadata.MergedAt = now

	without := 0
	for i := range s.Books {
		if s.Books[i].Description == "" {
			without++
		}
	}
	s.Metadata.BooksWithoutDescriptions = without
}

// MissingDescriptions returns the identities whose description is empty
// and not confirmed empty by the upstream. These are the items a targeted
// follow-up run should cover.
func (s *LibrarySnapshot) MissingDescriptions() []Identity {
	var missing []Identity
	for i := range s.Books {
		b := &s.Books[i]
		if b.Description == "" && b.DescriptionState != DescriptionConfirmedEmpty {
			missing = append(missing, b.Identity)
		}
	}
	return missing
}

// ConfirmedEmpty returns the identities the upstream has confirmed carry
// no description. They are reported separately from missing ones.
func (s *LibrarySnapshot) ConfirmedEmpty() []Identity {
	var confirmed []Identity
	for i := range s.Books {
		b := &s.Books[i]
		if b.DescriptionState == DescriptionConfirmedEmpty {
			confirmed = append(confirmed, b.Identity)
		}
	}
	return confirmed
}

// Find returns a pointer to the book with the given identity, or nil.
func (s *LibrarySnapshot) Find(id Identity) *Book {
	key := id.String()
	for i := range s.Books {
		if s.Books[i].Identity.String() == key {
			return &s.Books[i]
		}
	}
	return nil
}
