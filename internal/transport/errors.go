package transport

import (
	"fmt"
	"time"

	"tuneport/internal/shared"
)

const bodySnippetLen = 200

// StatusError reports a non-2xx provider response that is not retried (or that
// exhausted the 5xx retry budget). Body holds a snippet of the response.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return shared.ErrProviderRequest }

// RateLimitError reports a 429 past the retry budget. Delay carries the
// provider-suggested (or computed) wait before another attempt makes sense.
type RateLimitError struct {
	Provider string
	Delay    time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited, retry in %s", e.Provider, e.Delay)
}

func (e *RateLimitError) Unwrap() error { return shared.ErrRateLimited }

// CircuitOpenError reports a call rejected without attempt because the
// provider's breaker is OPEN. Remaining is the cooldown left before a probe
// will be admitted.
type CircuitOpenError struct {
	Provider  string
	Remaining time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("%s circuit open, cooldown %s remaining", e.Provider, e.Remaining)
}

func (e *CircuitOpenError) Unwrap() error { return shared.ErrCircuitOpen }

func snippet(body []byte) string {
	if len(body) > bodySnippetLen {
		return string(body[:bodySnippetLen]) + "..."
	}
	return string(body)
}
