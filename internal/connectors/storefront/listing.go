package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/shelfsync/shelfsync-cli/internal/core/domain"
	"github.com/shelfsync/shelfsync-cli/internal/core/ports/driven"
)

// listingRequest is the batch descriptor sent to the listing endpoint.
type listingRequest struct {
	ContentType string `json:"contentType,omitempty"`
	SortOrder   string `json:"sortOrder,omitempty"`
	StartIndex  int    `json:"startIndex"`
	BatchSize   int    `json:"batchSize"`
}

// listingResponse is the wire shape of one listing batch.
type listingResponse struct {
	Items      []wireItem `json:"items"`
	TotalCount int        `json:"totalCount"`
	HasMore    bool       `json:"hasMore"`
}

// wireItem is one catalog entry as the listing endpoint reports it. The
// identifier field carries both namespaces: a vendor id for most items, a
// plain numeric id (ISBN-shaped) for some.
type wireItem struct {
	ItemID          string   `json:"itemId"`
	Title           string   `json:"title"`
	Authors         string   `json:"authors"`
	Binding         string   `json:"binding"`
	AcquisitionDate string   `json:"acquisitionDate"`
	ReadStatus      string   `json:"readStatus"`
	Collections     []string `json:"collections"`
}

// ListPage fetches one listing batch at the given offset. Pagination
// policy (when to stop, what to keep on failure) belongs to the caller.
func (c *Client) ListPage(ctx context.Context, offset, size int) (*driven.CatalogPage, error) {
	body, err := c.postJSON(ctx, listingPath, listingRequest{
		ContentType: c.cfg.ContentFilter,
		SortOrder:   c.cfg.SortOrder,
		StartIndex:  offset,
		BatchSize:   size,
	})
	if err != nil {
		return nil, err
	}

	var resp listingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode listing response: %w", err)
	}

	page := &driven.CatalogPage{
		TotalCount: resp.TotalCount,
		HasMore:    resp.HasMore,
	}
	for _, item := range resp.Items {
		id := domain.ClassifyRawID(item.ItemID)
		if id.IsZero() {
			// An entry with no identifier cannot be merged or enriched.
			continue
		}
		page.Items = append(page.Items, domain.CatalogItem{
			Identity:    id,
			Title:       item.Title,
			Authors:     item.Authors,
			Binding:     item.Binding,
			AcquiredAt:  parseAcquisitionDate(item.AcquisitionDate),
			ReadStatus:  domain.ReadStatus(item.ReadStatus),
			Collections: item.Collections,
		})
	}
	return page, nil
}

// parseAcquisitionDate accepts the two date shapes the listing endpoint
// has been observed to emit. Unparseable dates degrade to the zero time
// rather than failing the batch.
func parseAcquisitionDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
