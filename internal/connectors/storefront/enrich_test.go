package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

func enrichServer(response string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(response)) //nolint:errcheck
	}))
}

func enrichOne(t *testing.T, response string) *domain.EnrichmentRecord {
	t.Helper()
	server := enrichServer(response)
	defer server.Close()

	client := testClient(server.URL)
	rec, err := client.Enrich(context.Background(), domain.Identity{Kind: domain.VendorID, Value: "B0OK"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func TestEnrich_Success(t *testing.T) {
	rec := enrichOne(t, `{
		"data": {"products": [{
			"itemId": "B0OK",
			"description": "A proper description.",
			"customerReviews": {
				"count": 42,
				"averageRating": 4.2,
				"topReviews": [{"title": "Loved it", "rating": 5, "text": "Great."}]
			}
		}]}
	}`)

	assert.Equal(t, domain.OutcomeSuccess, rec.Outcome)
	assert.Equal(t, "A proper description.", rec.Description)
	assert.Equal(t, 42, rec.ReviewSummary.Count)
	require.Len(t, rec.TopReviews, 1)
	assert.Equal(t, "Loved it", rec.TopReviews[0].Title)
	assert.Empty(t, rec.ErrorDetail)
}

func TestEnrich_DataAndErrors_IsPartial(t *testing.T) {
	rec := enrichOne(t, `{
		"data": {"products": [{
			"itemId": "B0OK",
			"description": "Still usable.",
			"customerReviews": {"count": 10, "averageRating": 3.9}
		}]},
		"errors": [{"message": "topReviews resolution failed", "path": ["products", 0, "customerReviews", "topReviews"]}]
	}`)

	assert.Equal(t, domain.OutcomePartial, rec.Outcome)
	assert.Equal(t, "Still usable.", rec.Description)
	// The failing sub-field is explicitly unavailable, not silently zero.
	assert.True(t, rec.ReviewsUnavailable)
	assert.Empty(t, rec.TopReviews)
	assert.Equal(t, 10, rec.ReviewSummary.Count)
	assert.Contains(t, rec.ErrorDetail, "topReviews resolution failed")
}

func TestEnrich_PartialWithoutReviewError_KeepsReviews(t *testing.T) {
	rec := enrichOne(t, `{
		"data": {"products": [{"itemId": "B0OK", "description": "Text."}]},
		"errors": [{"message": "aiSummary timed out", "path": ["products", 0, "aiSummary"]}]
	}`)

	assert.Equal(t, domain.OutcomePartial, rec.Outcome)
	assert.False(t, rec.ReviewsUnavailable)
}

func TestEnrich_ErrorsWithoutData_IsHardFailure(t *testing.T) {
	rec := enrichOne(t, `{"errors": [{"message": "product not found"}]}`)

	assert.Equal(t, domain.OutcomeHardFailure, rec.Outcome)
	assert.Contains(t, rec.ErrorDetail, "product not found")
}

func TestEnrich_EmptyProductList_IsHardFailure(t *testing.T) {
	rec := enrichOne(t, `{"data": {"products": []}}`)

	assert.Equal(t, domain.OutcomeHardFailure, rec.Outcome)
	assert.Equal(t, "empty product payload", rec.ErrorDetail)
}

func TestEnrich_TransportFailure_IsHardFailure(t *testing.T) {
	server := enrichServer("")
	server.Close() // refuse connections

	client := testClient(server.URL)
	rec, err := client.Enrich(context.Background(), domain.Identity{Kind: domain.VendorID, Value: "B0OK"})

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeHardFailure, rec.Outcome)
	assert.NotEmpty(t, rec.ErrorDetail)
}

func TestEnrich_StatusFailure_IsHardFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)
	rec, err := client.Enrich(context.Background(), domain.Identity{Kind: domain.VendorID, Value: "B0OK"})

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeHardFailure, rec.Outcome)
}

func TestEnrich_CancelledContext_ReturnsError(t *testing.T) {
	server := enrichServer(`{}`)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := testClient(server.URL)
	_, err := client.Enrich(ctx, domain.Identity{Kind: domain.VendorID, Value: "B0OK"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnrich_DescriptionFallback_ContentBlocks(t *testing.T) {
	rec := enrichOne(t, `{
		"data": {"products": [{
			"itemId": "B0OK",
			"description": "  ",
			"contentBlocks": [{"text": ""}, {"text": "From a content block."}],
			"aiSummary": "AI text."
		}]}
	}`)

	assert.Equal(t, "From a content block.", rec.Description)
}

func TestEnrich_DescriptionFallback_AISummary(t *testing.T) {
	rec := enrichOne(t, `{
		"data": {"products": [{"itemId": "B0OK", "aiSummary": "AI text."}]}
	}`)

	assert.Equal(t, "AI text.", rec.Description)
	assert.Equal(t, domain.OutcomeSuccess, rec.Outcome)
}

func TestEnrich_AllCandidatesEmpty_ConfirmedAbsence(t *testing.T) {
	rec := enrichOne(t, `{
		"data": {"products": [{"itemId": "B0OK"}]}
	}`)

	// An empty description on a success outcome is a confirmed absence.
	assert.Equal(t, domain.OutcomeSuccess, rec.Outcome)
	assert.Equal(t, "", rec.Description)
	assert.True(t, rec.Usable())
}

func TestEnrich_ZeroTopReviewsWithNonZeroCount_NotAnError(t *testing.T) {
	rec := enrichOne(t, `{
		"data": {"products": [{
			"itemId": "B0OK",
			"description": "Text.",
			"customerReviews": {"count": 17, "averageRating": 4.0, "topReviews": []}
		}]}
	}`)

	assert.Equal(t, domain.OutcomeSuccess, rec.Outcome)
	assert.Equal(t, 17, rec.ReviewSummary.Count)
	assert.Empty(t, rec.TopReviews)
	assert.False(t, rec.ReviewsUnavailable)
}
