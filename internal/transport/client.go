package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"tuneport/internal/cache"
	"tuneport/internal/shared"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 3
)

// Config contains the settings for one provider client.
type Config struct {
	Provider       string
	BaseURL        string
	Token          string
	TimeoutSeconds int
	MaxRetries     int
	Backoff        Backoff
	RatePerSecond  float64
	CacheTTL       time.Duration
}

// Client issues authenticated JSON requests to one provider, applying rate
// pacing, circuit breaking, and 429/5xx retry with backoff.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *Breaker
	store      cache.Store
	logger     *log.Logger

	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// Option customizes a client, primarily for tests.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithSleeper overrides how retry sleeps are performed.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithClock overrides the time source used for Retry-After dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCache attaches a response cache consulted for GET requests.
func WithCache(store cache.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithLogger attaches a logger; nil keeps the default stderr logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a provider client wrapped by the given breaker. The
// breaker must be the shared per-provider instance from a [Registry].
func NewClient(cfg Config, breaker *Breaker, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		breaker:    breaker,
		logger:     shared.NewLogger(nil),
		sleep:      sleepContext,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider identity this client talks to.
func (c *Client) Provider() string { return c.cfg.Provider }

// RequestOptions carries the optional parts of a request.
type RequestOptions struct {
	Query url.Values
	Body  any
}

// httpError is the pre-classification form of a non-2xx response.
type httpError struct {
	status        int
	body          []byte
	retryAfter    time.Duration
	hasRetryAfter bool
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d: %s", e.status, snippet(e.body))
}

// Request performs method path against the provider and returns the parsed
// JSON body. 204 and empty bodies yield a nil result. 429 and 5xx responses
// are retried up to the configured bound with backoff; a 429 past the bound
// returns [RateLimitError], any other terminal non-2xx returns [StatusError].
// Calls rejected by the breaker return [CircuitOpenError] without a network
// attempt.
func (c *Client) Request(ctx context.Context, method, path string, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	endpoint, err := c.buildURL(path, opts.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	cacheKey := ""
	if c.store != nil && method == http.MethodGet {
		cacheKey = c.cfg.Provider + ":" + endpoint
		if cached, ok := c.store.Get(cacheKey); ok {
			return json.RawMessage(cached), nil
		}
	}

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		if err := c.breaker.Allow(); err != nil {
			return nil, err
		}

		data, err := c.send(ctx, method, endpoint, opts.Body)
		if err == nil {
			c.breaker.Success()
			if cacheKey != "" && data != nil {
				c.store.Set(cacheKey, data, c.cfg.CacheTTL)
			}
			return data, nil
		}

		c.breaker.Failure()

		httpErr, ok := err.(*httpError)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrProviderRequest, c.cfg.Provider, err)
		}

		switch {
		case httpErr.status == http.StatusTooManyRequests:
			delay := c.cfg.Backoff.Delay(attempt)
			if httpErr.hasRetryAfter {
				delay = httpErr.retryAfter
			}
			if attempt >= c.cfg.MaxRetries {
				return nil, &RateLimitError{Provider: c.cfg.Provider, Delay: delay}
			}
			c.logger.Debug("rate limited, backing off",
				"provider", c.cfg.Provider, "attempt", attempt+1, "delay", delay)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}

		case httpErr.status >= http.StatusInternalServerError:
			if attempt >= c.cfg.MaxRetries {
				return nil, &StatusError{Provider: c.cfg.Provider, Status: httpErr.status, Body: snippet(httpErr.body)}
			}
			delay := c.cfg.Backoff.Delay(attempt)
			c.logger.Debug("server error, backing off",
				"provider", c.cfg.Provider, "status", httpErr.status, "attempt", attempt+1, "delay", delay)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}

		default:
			return nil, &StatusError{Provider: c.cfg.Provider, Status: httpErr.status, Body: snippet(httpErr.body)}
		}
	}
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// send performs a single HTTP exchange. Non-2xx responses come back as
// *httpError for the caller to classify.
func (c *Client) send(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &httpError{status: resp.StatusCode, body: respBody}
		if retryAfter, ok := ParseRetryAfter(resp.Header.Get("Retry-After"), c.now()); ok {
			httpErr.retryAfter = retryAfter
			httpErr.hasRetryAfter = true
		}
		return nil, httpErr
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}
	return json.RawMessage(respBody), nil
}

// sleepContext blocks for d, returning early if ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
