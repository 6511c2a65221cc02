package storefront

import (
	"errors"
	"fmt"
	"time"
)

// APIError represents a non-success response from the storefront.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// RateLimitError is returned when the upstream explicitly throttles us.
// The upstream's limit is undocumented; this only surfaces what it told us.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("storefront: rate limited, retry after %s", e.RetryAfter)
}

// IsUnauthorized checks if the error indicates the session context was
// rejected. The usual cause is a stale anti-forgery token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited checks if the error indicates explicit throttling.
func IsRateLimited(err error) bool {
	var rateErr *RateLimitError
	return errors.As(err, &rateErr)
}
