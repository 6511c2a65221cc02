package storefront

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_ZeroDelay_DoesNotBlock(t *testing.T) {
	pacer := NewPacer(0)

	start := time.Now()
	require.NoError(t, pacer.Wait(context.Background()))
	require.NoError(t, pacer.Wait(context.Background()))

	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPacer_EnforcesDelay(t *testing.T) {
	pacer := NewPacer(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, pacer.Wait(context.Background()))
	require.NoError(t, pacer.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPacer_Observe_IgnoresNon429(t *testing.T) {
	pacer := NewPacer(0)

	pacer.Observe(&http.Response{StatusCode: http.StatusOK, Header: http.Header{}})

	assert.True(t, pacer.HoldUntil().IsZero())
}

func TestPacer_Observe_RetryAfterSetsHold(t *testing.T) {
	pacer := NewPacer(0)

	header := http.Header{}
	header.Set(HeaderRetryAfter, "30")
	pacer.Observe(&http.Response{StatusCode: http.StatusTooManyRequests, Header: header})

	hold := pacer.HoldUntil()
	assert.True(t, hold.After(time.Now().Add(25*time.Second)))
}

func TestPacer_Wait_CancelledDuringHold(t *testing.T) {
	pacer := NewPacer(0)
	header := http.Header{}
	header.Set(HeaderRetryAfter, "60")
	pacer.Observe(&http.Response{StatusCode: http.StatusTooManyRequests, Header: header})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pacer.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
