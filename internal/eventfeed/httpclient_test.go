package eventfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyServer fails requests at the transport level until healed, counting
// every request that reaches the wire.
type flakyServer struct {
	healthy  atomic.Bool
	requests atomic.Int64
}

func (f *flakyServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if !f.healthy.Load() {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func breakerClient(t *testing.T) (*RateLimitedHTTPClient, *time.Time) {
	t.Helper()
	client := NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 2,
		CircuitCooldown:   30 * time.Second,
	}, nil)
	t.Cleanup(func() { client.Close() })

	clock := time.Now()
	client.now = func() time.Time { return clock }
	return client, &clock
}

func TestCircuitBreakerRecoversAfterCooldown(t *testing.T) {
	feed := &flakyServer{}
	srv := httptest.NewServer(feed.handler())
	t.Cleanup(srv.Close)

	client, clock := breakerClient(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, srv.URL)
		require.Error(t, err)
	}

	// breaker is open: the next request is rejected without reaching the wire
	wired := feed.requests.Load()
	_, err := client.Get(ctx, srv.URL)
	require.ErrorContains(t, err, "circuit breaker open")
	assert.Equal(t, wired, feed.requests.Load())

	// the provider recovers, but the cooldown has not elapsed yet
	feed.healthy.Store(true)
	_, err = client.Get(ctx, srv.URL)
	require.ErrorContains(t, err, "circuit breaker open")
	assert.Equal(t, wired, feed.requests.Load())

	// past the cooldown one trial goes through, succeeds and closes the breaker
	*clock = clock.Add(31 * time.Second)
	resp, err := client.Get(ctx, srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(ctx, srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, wired+2, feed.requests.Load())
}

func TestCircuitBreakerFailedTrialReopens(t *testing.T) {
	feed := &flakyServer{}
	srv := httptest.NewServer(feed.handler())
	t.Cleanup(srv.Close)

	client, clock := breakerClient(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, srv.URL)
		require.Error(t, err)
	}

	// the trial after the cooldown reaches the wire, fails and re-opens
	*clock = clock.Add(31 * time.Second)
	wired := feed.requests.Load()
	_, err := client.Get(ctx, srv.URL)
	require.Error(t, err)
	require.NotContains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, wired+1, feed.requests.Load())

	// re-opened: held back again until the next cooldown lapses
	_, err = client.Get(ctx, srv.URL)
	require.ErrorContains(t, err, "circuit breaker open")
	assert.Equal(t, wired+1, feed.requests.Load())
}
