package transport

import (
	"sync"
	"time"
)

// BreakerState enumerates circuit breaker states.
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return ""
	}
}

const (
	defaultFailureThreshold = 5
	defaultCooldown         = 30 * time.Second
)

// Breaker is a per-provider failure-isolation state machine. One instance per
// provider identity is shared across every concurrent job; all state access is
// serialized by an internal mutex.
type Breaker struct {
	provider  string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu           sync.Mutex
	state        BreakerState
	failureCount int
	lastFailure  time.Time
	probing      bool
	successes    uint64
	rejected     uint64
}

// NewBreaker creates a CLOSED breaker for the given provider identity.
// Non-positive threshold or cooldown fall back to the defaults (5 failures,
// 30s cooldown).
func NewBreaker(provider string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = defaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Breaker{
		provider:  provider,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow decides whether a call may proceed. It returns nil when the call is
// admitted (pass-through when CLOSED, or as the single HALF_OPEN probe) and a
// [CircuitOpenError] carrying the remaining cooldown otherwise. Callers that
// receive nil must report the outcome via [Breaker.Success] or
// [Breaker.Failure].
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		elapsed := b.now().Sub(b.lastFailure)
		if elapsed >= b.cooldown {
			b.state = StateHalfOpen
			b.probing = true
			return nil
		}
		b.rejected++
		return &CircuitOpenError{Provider: b.provider, Remaining: b.cooldown - elapsed}
	case StateHalfOpen:
		// One in-flight probe at a time; concurrent calls during the probe
		// are rejected rather than silently bypassing the breaker.
		if b.probing {
			b.rejected++
			return &CircuitOpenError{Provider: b.provider, Remaining: b.cooldown}
		}
		b.probing = true
		return nil
	}
	return nil
}

// Success records a successful admitted call. A CLOSED success resets the
// failure count; a HALF_OPEN probe success closes the breaker.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes++
	switch b.state {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		b.state = StateClosed
		b.failureCount = 0
		b.probing = false
	}
}

// Failure records a failed admitted call. Reaching the threshold while CLOSED
// opens the breaker; a HALF_OPEN probe failure re-opens it and restarts the
// cooldown clock.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failureCount++
		b.lastFailure = b.now()
		if b.failureCount >= b.threshold {
			b.state = StateOpen
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.lastFailure = b.now()
		b.probing = false
	case StateOpen:
		b.lastFailure = b.now()
	}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Counters returns the success and rejection totals.
func (b *Breaker) Counters() (successes, rejected uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.successes, b.rejected
}

// FailureCount returns the consecutive failure count.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// Reset returns the breaker to CLOSED with cleared counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.probing = false
}

// Registry maps provider identity to its shared breaker, creating breakers
// lazily on first access. Safe for concurrent use by parallel jobs.
type Registry struct {
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewRegistry creates a registry whose breakers use the given settings.
func NewRegistry(threshold int, cooldown time.Duration) *Registry {
	return &Registry{
		threshold: threshold,
		cooldown:  cooldown,
		breakers:  make(map[string]*Breaker),
	}
}

// Get returns the breaker for provider, creating it on first access.
func (r *Registry) Get(provider string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[provider]
	if !ok {
		b = NewBreaker(provider, r.threshold, r.cooldown)
		r.breakers[provider] = b
	}
	return b
}
