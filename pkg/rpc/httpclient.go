package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qubic-network/qubicx/pkg/cache"
	"github.com/qubic-network/qubicx/pkg/utils"
	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 8 << 20

// ErrCircuitOpen is returned when every configured endpoint has its breaker open.
var ErrCircuitOpen = errors.New("circuit breaker open for all endpoints")

// StatusError is a non-2xx upstream answer.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.Code, e.URL)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// HTTPClient is a wrapper around an http.Client that implements a circuit-breaker and token-bucket.
// Every call is a single attempt against the first endpoint whose breaker is closed; failures are
// returned to the caller as-is.
type HTTPClient struct {
	endpoints []string
	client    *http.Client
	cache     cache.Store
	logger    *zap.Logger

	// token-bucket
	tokens      int64
	maxTokens   int64
	refillEvery time.Duration
	lastRefill  atomic.Value // time.Time

	// circuit-breaker
	mu       sync.Mutex
	failures map[string]int
	opened   map[string]time.Time

	breakerThreshold int
	breakerCooldown  time.Duration
}

// Opts is the set of options for a new HTTPClient.
type Opts struct {
	Endpoints       []string
	Timeout         time.Duration
	RPS             int
	Burst           int
	BreakerFailures int
	BreakerCooldown time.Duration
	HTTPClient      *http.Client
	// Cache, when set, holds successful response bodies for the TTL given per call.
	Cache  cache.Store
	Logger *zap.Logger
}

// NewHTTPWithOpts creates a new HTTPClient with the given options.
func NewHTTPWithOpts(o Opts) *HTTPClient {
	if o.RPS <= 0 {
		o.RPS = 20
	}
	if o.Burst <= 0 {
		o.Burst = 40
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.BreakerFailures <= 0 {
		o.BreakerFailures = 3
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	} else if client.Timeout == 0 {
		client.Timeout = o.Timeout
	}

	c := &HTTPClient{
		endpoints:        utils.Dedup(o.Endpoints),
		client:           client,
		cache:            o.Cache,
		logger:           o.Logger,
		maxTokens:        int64(o.Burst),
		refillEvery:      time.Second / time.Duration(o.RPS),
		failures:         map[string]int{},
		opened:           map[string]time.Time{},
		breakerThreshold: o.BreakerFailures,
		breakerCooldown:  o.BreakerCooldown,
	}
	c.tokens = c.maxTokens
	c.lastRefill.Store(time.Now())
	return c
}

// refill adds the tokens earned since the last refill, up to the bucket size.
func (c *HTTPClient) refill() {
	last := c.lastRefill.Load().(time.Time)
	now := time.Now()
	earned := int64(now.Sub(last) / c.refillEvery)
	if earned <= 0 {
		return
	}
	if room := c.maxTokens - atomic.LoadInt64(&c.tokens); room > 0 {
		atomic.AddInt64(&c.tokens, min(earned, room))
	}
	c.lastRefill.Store(now)
}

// acquire takes a token from the bucket, waiting until one is available or ctx ends.
func (c *HTTPClient) acquire(ctx context.Context) error {
	for {
		c.refill()
		if atomic.AddInt64(&c.tokens, -1) >= 0 {
			return nil
		}
		atomic.AddInt64(&c.tokens, 1)

		timer := time.NewTimer(c.refillEvery / 2)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// isOpen returns true if the endpoint is in the OPEN state.
func (c *HTTPClient) isOpen(ep string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.opened[ep]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(c.opened, ep)
		c.failures[ep] = 0
		return false
	}
	return true
}

// noteFailure marks an endpoint as failed and opens the circuit-breaker if the failure count exceeds the threshold.
func (c *HTTPClient) noteFailure(ep string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[ep]++
	if c.failures[ep] >= c.breakerThreshold {
		c.opened[ep] = time.Now().Add(c.breakerCooldown)
		c.logger.Warn("circuit breaker opened", zap.String("endpoint", ep), zap.Duration("cooldown", c.breakerCooldown))
	}
}

func (c *HTTPClient) noteSuccess(ep string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[ep] = 0
}

// pick returns the first endpoint whose breaker is closed.
func (c *HTTPClient) pick() (string, error) {
	if len(c.endpoints) == 0 {
		return "", fmt.Errorf("no endpoints configured")
	}
	for _, ep := range c.endpoints {
		if !c.isOpen(ep) {
			return ep, nil
		}
	}
	return "", ErrCircuitOpen
}

// GetJSON fetches path and decodes the JSON body into out. With ttl > 0 and a cache configured,
// a fresh cached body is used instead of calling upstream.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, ttl time.Duration, out any) error {
	key := path
	if len(c.endpoints) > 0 {
		key = c.endpoints[0] + path
	}
	body, err := cache.Remember(ctx, c.cache, key, ttl, c.cacheError, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, path)
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response of %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) cacheError(op, key string, err error) {
	c.logger.Debug("response cache unavailable", zap.String("op", op), zap.String("key", key), zap.Error(err))
}

// get performs one GET and returns the body of a 2xx JSON answer.
func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	ep, err := c.pick()
	if err != nil {
		return nil, err
	}
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.noteFailure(ep)
		}
		return nil, fmt.Errorf("request to %s failed: %w", ep+path, err)
	}
	defer func() { _ = utils.DrainAndClose(resp.Body) }()

	if resp.StatusCode >= 500 {
		c.noteFailure(ep)
		return nil, &StatusError{Code: resp.StatusCode, URL: ep + path}
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, URL: ep + path}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s: %w", ep+path, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("response of %s is not valid JSON", ep+path)
	}
	c.noteSuccess(ep)
	return body, nil
}
