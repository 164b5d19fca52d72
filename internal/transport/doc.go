// Package transport implements the resilient per-provider HTTP client every
// provider adapter calls through.
//
// # Request pipeline
//
// Each [Client.Request] flows through, in order:
//
//  1. Response cache lookup (GET only, when a cache store is attached)
//  2. Per-provider rate limiter ([rate.Limiter]) pacing
//  3. Circuit breaker admission ([Breaker.Allow]) — an OPEN breaker rejects the
//     call with [CircuitOpenError] without touching the network
//  4. The HTTP call itself, with a bounded timeout
//  5. Status classification: 429 and 5xx are retried with backoff (honoring
//     Retry-After), other non-2xx fail immediately with [StatusError]
//
// A 429 that survives the retry budget surfaces as [RateLimitError] carrying the
// last computed delay, so callers can re-enqueue with a hint.
//
// # Circuit breaking
//
// One [Breaker] per provider identity, shared across all concurrent jobs via
// [Registry]. CLOSED counts consecutive failures up to a threshold, OPEN rejects
// until a cooldown elapses, then HALF_OPEN admits exactly one probe; the probe's
// outcome decides CLOSED or OPEN again.
//
// # Testability
//
// Sleeping, time, jitter, and the HTTP client are all injectable so retry and
// breaker timing can be verified without real clocks or networks.
package transport
