package transport

import (
	"errors"
	"testing"
	"time"

	"tuneport/internal/shared"
)

// fakeClock lets tests advance the breaker's notion of time.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *fakeClock) {
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	b := NewBreaker("spotify", threshold, cooldown)
	b.now = clock.now
	return b, clock
}

func failTimes(b *Breaker, n int) {
	for i := 0; i < n; i++ {
		b.Failure()
	}
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)

	failTimes(b, 2)
	if b.State() != StateClosed {
		t.Fatalf("state after 2 failures = %v, want closed", b.State())
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow() while closed = %v, want nil", err)
	}

	b.Failure()
	if b.State() != StateOpen {
		t.Fatalf("state after 3 failures = %v, want open", b.State())
	}

	err := b.Allow()
	if !errors.Is(err, shared.ErrCircuitOpen) {
		t.Fatalf("Allow() while open = %v, want ErrCircuitOpen", err)
	}

	var circuitErr *CircuitOpenError
	if !errors.As(err, &circuitErr) {
		t.Fatalf("Allow() error type = %T, want *CircuitOpenError", err)
	}
	if circuitErr.Remaining <= 0 || circuitErr.Remaining > 30*time.Second {
		t.Errorf("Remaining = %v, want within (0, 30s]", circuitErr.Remaining)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)

	failTimes(b, 2)
	b.Success()
	if b.FailureCount() != 0 {
		t.Fatalf("failure count after success = %d, want 0", b.FailureCount())
	}

	failTimes(b, 2)
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed since count was reset", b.State())
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	t.Run("probe success closes the breaker", func(t *testing.T) {
		b, clock := newTestBreaker(1, 30*time.Second)

		b.Failure()
		if b.State() != StateOpen {
			t.Fatalf("state = %v, want open", b.State())
		}

		clock.advance(30 * time.Second)
		if err := b.Allow(); err != nil {
			t.Fatalf("Allow() after cooldown = %v, want probe admitted", err)
		}
		if b.State() != StateHalfOpen {
			t.Fatalf("state during probe = %v, want half_open", b.State())
		}

		b.Success()
		if b.State() != StateClosed {
			t.Errorf("state after probe success = %v, want closed", b.State())
		}
	})

	t.Run("probe failure reopens and restarts the cooldown", func(t *testing.T) {
		b, clock := newTestBreaker(1, 30*time.Second)

		b.Failure()
		clock.advance(30 * time.Second)
		if err := b.Allow(); err != nil {
			t.Fatalf("Allow() after cooldown = %v, want probe admitted", err)
		}

		b.Failure()
		if b.State() != StateOpen {
			t.Fatalf("state after probe failure = %v, want open", b.State())
		}

		// Cooldown restarted at the probe failure, so a fresh wait is needed.
		clock.advance(29 * time.Second)
		if err := b.Allow(); !errors.Is(err, shared.ErrCircuitOpen) {
			t.Errorf("Allow() before new cooldown elapsed = %v, want ErrCircuitOpen", err)
		}
		clock.advance(time.Second)
		if err := b.Allow(); err != nil {
			t.Errorf("Allow() after new cooldown = %v, want probe admitted", err)
		}
	})

	t.Run("concurrent calls during probe are rejected", func(t *testing.T) {
		b, clock := newTestBreaker(1, 30*time.Second)

		b.Failure()
		clock.advance(30 * time.Second)
		if err := b.Allow(); err != nil {
			t.Fatalf("Allow() probe = %v, want admitted", err)
		}

		if err := b.Allow(); !errors.Is(err, shared.ErrCircuitOpen) {
			t.Errorf("second Allow() during probe = %v, want ErrCircuitOpen", err)
		}

		_, rejected := b.Counters()
		if rejected != 1 {
			t.Errorf("rejected counter = %d, want 1", rejected)
		}
	})
}

func TestRegistrySharesBreakerPerProvider(t *testing.T) {
	registry := NewRegistry(5, 30*time.Second)

	first := registry.Get("spotify")
	second := registry.Get("spotify")
	if first != second {
		t.Error("Get returned distinct breakers for the same provider")
	}

	other := registry.Get("deezer")
	if other == first {
		t.Error("Get returned the same breaker for different providers")
	}
}
