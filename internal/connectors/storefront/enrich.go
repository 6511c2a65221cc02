package storefront

import (
	"context"
	"strings"

	"github.com/goccy/go-json"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
)

// enrichQuery selects the description, AI summary and review fields for
// one item.
const enrichQuery = `query Enrichment($itemIds: [String!]!) {
  products(itemIds: $itemIds) {
    itemId
    description
    contentBlocks { text }
    aiSummary
    customerReviews {
      count
      averageRating
      topReviews { title rating text }
    }
  }
}`

// enrichRequest is the wire request for the enrichment endpoint.
type enrichRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// enrichResponse is the GraphQL-style envelope. The co-occurrence of Data
// and Errors is the partial-outcome case and must not be treated as a
// failure.
type enrichResponse struct {
	Data   *enrichData `json:"data"`
	Errors []wireError `json:"errors"`
}

type enrichData struct {
	Products []wireProduct `json:"products"`
}

type wireProduct struct {
	ItemID        string           `json:"itemId"`
	Description   string           `json:"description"`
	ContentBlocks []wireBlock      `json:"contentBlocks"`
	AISummary     string           `json:"aiSummary"`
	Reviews       *wireReviewBlock `json:"customerReviews"`
}

type wireBlock struct {
	Text string `json:"text"`
}

type wireReviewBlock struct {
	Count         int          `json:"count"`
	AverageRating float64      `json:"averageRating"`
	TopReviews    []wireReview `json:"topReviews"`
}

type wireReview struct {
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

type wireError struct {
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

// Enrich fetches and classifies the enrichment response for one identity.
// Transport and status failures are folded into a hard-failure record; a
// non-nil error is reserved for context cancellation so that run policy
// stays with the caller.
func (c *Client) Enrich(ctx context.Context, id domain.Identity) (*domain.EnrichmentRecord, error) {
	body, err := c.postJSON(ctx, enrichPath, enrichRequest{
		Query:     enrichQuery,
		Variables: map[string]any{"itemIds": []string{id.Value}},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return hardFailure(id, err.Error()), nil
	}

	var resp enrichResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return hardFailure(id, "decode enrichment response: "+err.Error()), nil
	}

	return classify(id, &resp), nil
}

// classify maps one enrichment response to exactly one outcome.
func classify(id domain.Identity, resp *enrichResponse) *domain.EnrichmentRecord {
	var product *wireProduct
	if resp.Data != nil && len(resp.Data.Products) > 0 {
		product = &resp.Data.Products[0]
	}

	if product == nil {
		// An error envelope with no data is a hard failure, as is an
		// empty data block: either way there is nothing usable.
		detail := joinErrorMessages(resp.Errors)
		if detail == "" {
			detail = "empty product payload"
		}
		return hardFailure(id, detail)
	}

	rec := &domain.EnrichmentRecord{
		Identity:    id,
		Description: extractDescription(product),
		AISummary:   product.AISummary,
		Outcome:     domain.OutcomeSuccess,
	}

	if product.Reviews != nil {
		rec.ReviewSummary = domain.ReviewSummary{
			Count:         product.Reviews.Count,
			AverageRating: product.Reviews.AverageRating,
		}
		for _, r := range product.Reviews.TopReviews {
			rec.TopReviews = append(rec.TopReviews, domain.Review{
				Title:  r.Title,
				Rating: r.Rating,
				Text:   r.Text,
			})
		}
	}

	if len(resp.Errors) > 0 {
		// Data and errors together: a partial outcome. The failing
		// sub-field is recorded as explicitly unavailable, never
		// inferred as zero.
		rec.Outcome = domain.OutcomePartial
		rec.ErrorDetail = joinErrorMessages(resp.Errors)
		if errorsTouchReviews(resp.Errors) {
			rec.ReviewsUnavailable = true
			rec.TopReviews = nil
		}
	}

	return rec
}

// extractDescription applies the fixed fallback order: primary description
// field, then structured content, then the AI-generated summary. The first
// non-empty candidate wins; all empty yields the empty string, a genuine
// confirmed absence rather than a failure.
func extractDescription(product *wireProduct) string {
	if desc := strings.TrimSpace(product.Description); desc != "" {
		return desc
	}
	for _, block := range product.ContentBlocks {
		if text := strings.TrimSpace(block.Text); text != "" {
			return text
		}
	}
	return strings.TrimSpace(product.AISummary)
}

func hardFailure(id domain.Identity, detail string) *domain.EnrichmentRecord {
	return &domain.EnrichmentRecord{
		Identity:    id,
		Outcome:     domain.OutcomeHardFailure,
		ErrorDetail: detail,
	}
}

func joinErrorMessages(errs []wireError) string {
	var msgs []string
	for _, e := range errs {
		if e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

// errorsTouchReviews reports whether any error path points into the
// customer review sub-tree.
func errorsTouchReviews(errs []wireError) bool {
	for _, e := range errs {
		for _, seg := range e.Path {
			if s, ok := seg.(string); ok && strings.Contains(s, "customerReviews") {
				return true
			}
		}
		if strings.Contains(strings.ToLower(e.Message), "review") {
			return true
		}
	}
	return false
}
