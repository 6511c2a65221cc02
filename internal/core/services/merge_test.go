package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

func vendorID(value string) domain.Identity {
	return domain.Identity{Kind: domain.VendorID, Value: value}
}

func isbnID(value string) domain.Identity {
	return domain.Identity{Kind: domain.NumericID, Value: value}
}

func catalogItems(ids ...domain.Identity) []domain.CatalogItem {
	items := make([]domain.CatalogItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.CatalogItem{Identity: id, Title: "Title " + id.Value})
	}
	return items
}

func TestMergeSnapshot_FreshItemsOnly(t *testing.T) {
	items := catalogItems(vendorID("a"), vendorID("b"))

	result := MergeSnapshot(nil, items, nil, nil, time.Now())

	require.Len(t, result.Snapshot.Books, 2)
	assert.Equal(t, 2, result.Snapshot.Metadata.TotalBooks)
	assert.Equal(t, 2, result.Snapshot.Metadata.BooksWithoutDescriptions)
	assert.Equal(t, domain.DescriptionMissing, result.Snapshot.Books[0].DescriptionState)
	assert.Empty(t, result.Collisions)
}

func TestMergeSnapshot_EnrichmentApplied(t *testing.T) {
	items := catalogItems(vendorID("a"), vendorID("b"))
	enrichments := map[string]domain.EnrichmentRecord{
		"vendor:a": {
			Identity:    vendorID("a"),
			Description: "A story.",
			Outcome:     domain.OutcomeSuccess,
			ReviewSummary: domain.ReviewSummary{
				Count:         12,
				AverageRating: 4.5,
			},
		},
	}

	result := MergeSnapshot(nil, items, enrichments, nil, time.Now())

	a := result.Snapshot.Find(vendorID("a"))
	require.NotNil(t, a)
	assert.Equal(t, "A story.", a.Description)
	assert.Equal(t, domain.DescriptionPresent, a.DescriptionState)
	assert.Equal(t, 12, a.ReviewSummary.Count)

	b := result.Snapshot.Find(vendorID("b"))
	require.NotNil(t, b)
	assert.Equal(t, domain.DescriptionMissing, b.DescriptionState)
	assert.Equal(t, 1, result.Snapshot.Metadata.BooksWithoutDescriptions)
}

func TestMergeSnapshot_EmptyDescriptionOnSuccess_IsConfirmedEmpty(t *testing.T) {
	items := catalogItems(vendorID("a"))
	enrichments := map[string]domain.EnrichmentRecord{
		"vendor:a": {Identity: vendorID("a"), Description: "", Outcome: domain.OutcomeSuccess},
	}

	result := MergeSnapshot(nil, items, enrichments, nil, time.Now())

	a := result.Snapshot.Find(vendorID("a"))
	require.NotNil(t, a)
	// Empty from a usable fetch is a confirmed absence, not a gap.
	assert.Equal(t, domain.DescriptionConfirmedEmpty, a.DescriptionState)
}

func TestMergeSnapshot_HardFailureRecord_Ignored(t *testing.T) {
	items := catalogItems(vendorID("a"))
	enrichments := map[string]domain.EnrichmentRecord{
		"vendor:a": {Identity: vendorID("a"), Outcome: domain.OutcomeHardFailure, ErrorDetail: "HTTP 500"},
	}

	result := MergeSnapshot(nil, items, enrichments, nil, time.Now())

	a := result.Snapshot.Find(vendorID("a"))
	require.NotNil(t, a)
	assert.Equal(t, domain.DescriptionMissing, a.DescriptionState)
}

func TestMergeSnapshot_UpdatesExisting(t *testing.T) {
	first := MergeSnapshot(nil, catalogItems(vendorID("a")), map[string]domain.EnrichmentRecord{
		"vendor:a": {Identity: vendorID("a"), Description: "Original.", Outcome: domain.OutcomeSuccess},
	}, nil, time.Now())

	// A later run re-lists the item with a changed title but no new
	// enrichment: the description must survive.
	items := []domain.CatalogItem{{Identity: vendorID("a"), Title: "Retitled"}}
	second := MergeSnapshot(first.Snapshot, items, nil, nil, time.Now())

	require.Len(t, second.Snapshot.Books, 1)
	a := second.Snapshot.Find(vendorID("a"))
	assert.Equal(t, "Retitled", a.Title)
	assert.Equal(t, "Original.", a.Description)
	assert.Equal(t, domain.DescriptionPresent, a.DescriptionState)
}

func TestMergeSnapshot_Idempotent(t *testing.T) {
	items := catalogItems(vendorID("a"), isbnID("9781234567897"))
	enrichments := map[string]domain.EnrichmentRecord{
		"vendor:a": {Identity: vendorID("a"), Description: "Text.", Outcome: domain.OutcomeSuccess},
	}
	now := time.Now()

	once := MergeSnapshot(nil, items, enrichments, nil, now)
	twice := MergeSnapshot(once.Snapshot, items, enrichments, nil, now)

	assert.Equal(t, once.Snapshot.Books, twice.Snapshot.Books)
	assert.Equal(t, once.Snapshot.Metadata.TotalBooks, twice.Snapshot.Metadata.TotalBooks)
}

func TestMergeSnapshot_DuplicateIdentity_LaterWins(t *testing.T) {
	items := []domain.CatalogItem{
		{Identity: vendorID("a"), Title: "First listing"},
		{Identity: vendorID("a"), Title: "Second listing"},
	}

	result := MergeSnapshot(nil, items, nil, nil, time.Now())

	require.Len(t, result.Snapshot.Books, 1)
	assert.Equal(t, "Second listing", result.Snapshot.Books[0].Title)
	assert.Equal(t, []domain.Identity{vendorID("a")}, result.Collisions)
}

func TestMergeSnapshot_SameValueDifferentKind_NotADuplicate(t *testing.T) {
	items := []domain.CatalogItem{
		{Identity: vendorID("12345")},
		{Identity: isbnID("12345")},
	}

	result := MergeSnapshot(nil, items, nil, nil, time.Now())

	assert.Len(t, result.Snapshot.Books, 2)
	assert.Empty(t, result.Collisions)
}

func TestMergeSnapshot_RecoveryPrecedence_LaterSourceWins(t *testing.T) {
	items := catalogItems(vendorID("a"))
	// The earlier source has the fresher fetch date; declared order must
	// still win.
	sources := []domain.RecoverySource{
		{
			Name:     "traditional.json",
			Metadata: domain.RecoveryMetadata{FetchDate: time.Now()},
			Descriptions: []domain.DescriptionEntry{
				{Identity: vendorID("a"), Description: "From the first source."},
			},
		},
		{
			Name:     "ai-summary.json",
			Metadata: domain.RecoveryMetadata{FetchDate: time.Now().Add(-24 * time.Hour)},
			Descriptions: []domain.DescriptionEntry{
				{Identity: vendorID("a"), Description: "From the second source."},
			},
		},
	}

	result := MergeSnapshot(nil, items, nil, sources, time.Now())

	a := result.Snapshot.Find(vendorID("a"))
	assert.Equal(t, "From the second source.", a.Description)
	assert.Equal(t, []string{"traditional.json", "ai-summary.json"}, result.Snapshot.Metadata.Sources)
}

func TestMergeSnapshot_RecoveryConfirmsEmpty(t *testing.T) {
	items := catalogItems(vendorID("a"))
	sources := []domain.RecoverySource{
		{
			Name: "confirm.json",
			Descriptions: []domain.DescriptionEntry{
				{Identity: vendorID("a"), Description: ""},
			},
		},
	}

	result := MergeSnapshot(nil, items, nil, sources, time.Now())

	a := result.Snapshot.Find(vendorID("a"))
	assert.Equal(t, domain.DescriptionConfirmedEmpty, a.DescriptionState)
	assert.Equal(t, []domain.Identity{vendorID("a")}, result.ConfirmedEmpty)
}

func TestMergeSnapshot_RecoveryEmpty_DoesNotEraseExistingDescription(t *testing.T) {
	existing := MergeSnapshot(nil, catalogItems(vendorID("a")), map[string]domain.EnrichmentRecord{
		"vendor:a": {Identity: vendorID("a"), Description: "Have it.", Outcome: domain.OutcomeSuccess},
	}, nil, time.Now())

	sources := []domain.RecoverySource{
		{
			Name: "confirm.json",
			Descriptions: []domain.DescriptionEntry{
				{Identity: vendorID("a"), Description: ""},
			},
		},
	}
	result := MergeSnapshot(existing.Snapshot, nil, nil, sources, time.Now())

	a := result.Snapshot.Find(vendorID("a"))
	assert.Equal(t, "Have it.", a.Description)
	assert.Equal(t, domain.DescriptionPresent, a.DescriptionState)
	assert.Empty(t, result.ConfirmedEmpty)
}

func TestMergeSnapshot_PartialPaginationPreserved(t *testing.T) {
	// Pagination died after 3 of 5 notional batches: whatever arrived is
	// merged, nothing is discarded.
	items := catalogItems(vendorID("a"), vendorID("b"), vendorID("c"))

	result := MergeSnapshot(nil, items, nil, nil, time.Now())

	assert.Equal(t, 3, result.Snapshot.Metadata.TotalBooks)
}

func TestMergeSnapshot_CountScenario(t *testing.T) {
	// 100 items; 10 start without descriptions; recovery fills 8 of them
	// and confirms 2 empty; the report-facing count of books without a
	// description ends at 2 and the follow-up list at 0.
	var items []domain.CatalogItem
	enrichments := make(map[string]domain.EnrichmentRecord)
	for i := 0; i < 100; i++ {
		id := vendorID(fmt.Sprintf("item-%03d", i))
		items = append(items, domain.CatalogItem{Identity: id})
		if i >= 10 {
			enrichments[id.String()] = domain.EnrichmentRecord{
				Identity:    id,
				Description: "Filled.",
				Outcome:     domain.OutcomeSuccess,
			}
		}
	}

	var entries []domain.DescriptionEntry
	for i := 0; i < 8; i++ {
		entries = append(entries, domain.DescriptionEntry{
			Identity:    items[i].Identity,
			Description: "Recovered.",
		})
	}
	for i := 8; i < 10; i++ {
		entries = append(entries, domain.DescriptionEntry{Identity: items[i].Identity})
	}
	sources := []domain.RecoverySource{{Name: "recovery.json", Descriptions: entries}}

	result := MergeSnapshot(nil, items, enrichments, sources, time.Now())

	assert.Equal(t, 100, result.Snapshot.Metadata.TotalBooks)
	assert.Equal(t, 2, result.Snapshot.Metadata.BooksWithoutDescriptions)
	assert.Empty(t, result.Snapshot.MissingDescriptions())
	assert.Len(t, result.Snapshot.ConfirmedEmpty(), 2)
}

func TestMergeSnapshot_DoesNotMutateInputs(t *testing.T) {
	existing := &domain.LibrarySnapshot{
		Books: []domain.Book{
			{Identity: vendorID("a"), Title: "Original", DescriptionState: domain.DescriptionMissing},
		},
	}

	items := []domain.CatalogItem{{Identity: vendorID("a"), Title: "Changed"}}
	_ = MergeSnapshot(existing, items, nil, nil, time.Now())

	assert.Equal(t, "Original", existing.Books[0].Title)
}
