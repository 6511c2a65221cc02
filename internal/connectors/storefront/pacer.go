package storefront

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds).
const HeaderRetryAfter = "Retry-After"

// Pacer enforces the fixed inter-request delay and honours explicit
// throttle responses. The upstream's rate limit was discovered
// empirically and depends on request cadence, so the pacer serializes
// requests rather than budgeting volume.
type Pacer struct {
	bucket *rate.Limiter

	mu        sync.Mutex
	holdUntil time.Time
}

// NewPacer creates a pacer with the given minimum delay between requests.
// A zero delay disables proactive pacing but still honours Retry-After.
func NewPacer(delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{
		bucket: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until it is safe to issue the next request.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.bucket.Wait(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	hold := p.holdUntil
	p.mu.Unlock()

	if now := time.Now(); now.Before(hold) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(hold.Sub(now)):
		}
	}
	return nil
}

// Observe updates pacer state from a response. A 429 with Retry-After
// pushes the next request out past the indicated time.
func (p *Pacer) Observe(resp *http.Response) {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return
	}

	retryAfter := resp.Header.Get(HeaderRetryAfter)
	seconds, err := strconv.Atoi(retryAfter)
	if err != nil || seconds <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.holdUntil = time.Now().Add(time.Duration(seconds) * time.Second)
}

// HoldUntil returns the current throttle deadline, if any.
func (p *Pacer) HoldUntil() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.holdUntil
}
