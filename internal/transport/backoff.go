package transport

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBackoffBase = 500 * time.Millisecond
	defaultBackoffMax  = 15 * time.Second
)

// Backoff computes retry delays: base * 2^attempt with a small jitter, capped
// at Max. Jitter defaults to [rand.Float64] and is injectable for tests.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter func() float64
}

// Delay returns the wait before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = defaultBackoffBase
	}
	max := b.Max
	if max <= 0 {
		max = defaultBackoffMax
	}

	delay := base
	for i := 0; i < attempt; i++ {
		if delay > max/2 {
			delay = max
			break
		}
		delay *= 2
	}

	jitter := b.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	// Up to 10% jitter keeps concurrent retries from synchronizing.
	delay += time.Duration(jitter() * float64(delay) / 10)

	if delay > max {
		delay = max
	}
	return delay
}

// ParseRetryAfter interprets a Retry-After header value as either a number of
// seconds or an HTTP date relative to now. The boolean reports whether value
// yielded a usable delay.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := when.Sub(now)
		if delay < 0 {
			delay = 0
		}
		return delay, true
	}
	return 0, false
}
