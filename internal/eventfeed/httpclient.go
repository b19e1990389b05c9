package eventfeed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/slip-tracker/internal/metrics"
)

// HTTPClientConfig holds tuning for the feed HTTP client.
type HTTPClientConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64       // requests per second
	CircuitBreakerMax int           // consecutive failures before the circuit opens
	CircuitCooldown   time.Duration // open time before a half-open trial request
}

// DefaultHTTPClientConfig returns the defaults used against public scoreboard
// endpoints, which throttle aggressively.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           10 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      250 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         5.0,
		CircuitBreakerMax: 5,
		CircuitCooldown:   30 * time.Second,
	}
}

// RateLimitedHTTPClient wraps retryablehttp.Client with a token-bucket rate
// limit and a consecutive-failure circuit breaker. An open breaker admits one
// half-open trial request per cooldown; a success closes it again, so a feed
// outage never wedges the client past the provider's recovery. The matcher
// runs refresh passes concurrently per league, so breaker state is mutex
// protected.
type RateLimitedHTTPClient struct {
	client            *retryablehttp.Client
	limiter           *rate.Limiter
	circuitBreakerMax int
	cooldown          time.Duration

	mu                sync.Mutex
	consecutiveErrors int
	isOpen            bool
	openedAt          time.Time
	lastError         error

	logger *logrus.Logger
	now    func() time.Time
}

// NewRateLimitedHTTPClient creates a rate-limited HTTP client.
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedHTTPClient {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = feedRetryPolicy()
	retryClient.Logger = nil

	cooldown := cfg.CircuitCooldown
	if cooldown <= 0 {
		cooldown = DefaultHTTPClientConfig().CircuitCooldown
	}

	return &RateLimitedHTTPClient{
		client:            retryClient,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		circuitBreakerMax: cfg.CircuitBreakerMax,
		cooldown:          cooldown,
		logger:            logger,
		now:               time.Now,
	}
}

// Do executes a request with rate limiting and circuit breaking. Request
// latency is observed on every attempt that reaches the wire.
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	if c.isOpen {
		if c.now().Sub(c.openedAt) < c.cooldown {
			last := c.lastError
			c.mu.Unlock()
			return nil, fmt.Errorf("circuit breaker open: %w", last)
		}
		// half open: admit one trial, hold the rest back for another cooldown
		// unless the trial closes the breaker
		c.openedAt = c.now()
	}
	c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	rreq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("wrap request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(rreq)
	metrics.FeedRequestLatency.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.consecutiveErrors++
		c.lastError = err
		if c.consecutiveErrors >= c.circuitBreakerMax {
			wasOpen := c.isOpen
			c.isOpen = true
			c.openedAt = c.now()
			if c.logger != nil && !wasOpen {
				c.logger.WithFields(logrus.Fields{
					"consecutive_errors": c.consecutiveErrors,
					"error":              err,
				}).Error("Feed circuit breaker opened")
			}
		}
		return nil, err
	}

	if resp.StatusCode < 500 {
		if c.isOpen && c.logger != nil {
			c.logger.Info("Feed circuit breaker closed after successful trial")
		}
		c.consecutiveErrors = 0
		c.isOpen = false
	}
	return resp, nil
}

// Get executes a GET request.
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Close releases idle connections.
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// feedRetryPolicy retries network errors, 429 and 5xx; other client errors
// fail immediately.
func feedRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return true, err
		}
		switch resp.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}
