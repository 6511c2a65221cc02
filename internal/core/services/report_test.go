package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

func TestBuildReport(t *testing.T) {
	snapshot := &domain.LibrarySnapshot{
		Books: []domain.Book{
			{Identity: vendorID("a"), Binding: "ebook", Description: "x", DescriptionState: domain.DescriptionPresent},
			{Identity: vendorID("b"), Binding: "ebook", DescriptionState: domain.DescriptionMissing},
			{Identity: vendorID("c"), Binding: "hardcover", DescriptionState: domain.DescriptionConfirmedEmpty},
			{Identity: vendorID("d"), DescriptionState: domain.DescriptionMissing},
		},
	}

	report := BuildReport(snapshot, []domain.Identity{vendorID("a")})

	assert.Equal(t, 4, report.TotalBooks)
	assert.Equal(t, []domain.Identity{vendorID("b"), vendorID("d")}, report.MissingDescriptions)
	assert.Equal(t, []domain.Identity{vendorID("c")}, report.ConfirmedEmpty)
	assert.Equal(t, 1, report.DuplicateIdentities)
	assert.Equal(t, map[string]int{"ebook": 2, "hardcover": 1, "unknown": 1}, report.BindingBreakdown)
}

func TestDiffSnapshots(t *testing.T) {
	prev := &domain.LibrarySnapshot{
		Books: []domain.Book{
			{Identity: vendorID("kept"), Description: "same"},
			{Identity: vendorID("gained"), Description: ""},
			{Identity: vendorID("lost"), Description: "had one"},
			{Identity: vendorID("removed")},
		},
	}
	next := &domain.LibrarySnapshot{
		Books: []domain.Book{
			{Identity: vendorID("kept"), Description: "same"},
			{Identity: vendorID("gained"), Description: "now present"},
			{Identity: vendorID("lost"), Description: ""},
			{Identity: vendorID("added")},
		},
	}

	diff := DiffSnapshots(prev, next)

	assert.Equal(t, []domain.Identity{vendorID("added")}, diff.Added)
	assert.Equal(t, []domain.Identity{vendorID("removed")}, diff.Removed)
	assert.Equal(t, []domain.Identity{vendorID("gained")}, diff.DescriptionsGained)
	assert.Equal(t, []domain.Identity{vendorID("lost")}, diff.DescriptionsLost)
}

func TestDiffSnapshots_SingleRecoveredDescription(t *testing.T) {
	// The common review loop: one recovery file fixes one book, and the
	// diff should show exactly that.
	before := MergeSnapshot(nil, catalogItems(vendorID("a"), vendorID("b")), nil, nil, time.Now())

	sources := []domain.RecoverySource{
		{
			Name: "fix.json",
			Descriptions: []domain.DescriptionEntry{
				{Identity: vendorID("b"), Description: "Recovered."},
			},
		},
	}
	after := MergeSnapshot(before.Snapshot, nil, nil, sources, time.Now())

	diff := DiffSnapshots(before.Snapshot, after.Snapshot)

	require.Len(t, diff.DescriptionsGained, 1)
	assert.Equal(t, vendorID("b"), diff.DescriptionsGained[0])
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.DescriptionsLost)
}
