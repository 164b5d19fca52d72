// Package cache defines a keyed get/set-with-TTL store consumed by the
// transport for idempotent response caching. The core depends only on the
// [Store] interface; backends are pluggable.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is a keyed byte store with per-entry TTL.
type Store interface {
	// Get returns the cached value for key and whether it was present.
	Get(key string) ([]byte, bool)

	// Set stores value under key for at most ttl. A non-positive ttl means
	// the backend's default expiry.
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes key if present.
	Delete(key string)
}

// TTLStore backs [Store] with an in-process go-cache instance.
type TTLStore struct {
	c *gocache.Cache
}

// NewTTLStore creates a TTL store with the given default expiry. Expired
// entries are purged every defaultTTL (minimum 1 minute sweep interval).
func NewTTLStore(defaultTTL time.Duration) *TTLStore {
	sweep := defaultTTL
	if sweep < time.Minute {
		sweep = time.Minute
	}
	return &TTLStore{c: gocache.New(defaultTTL, sweep)}
}

func (s *TTLStore) Get(key string) ([]byte, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (s *TTLStore) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.c.Set(key, value, ttl)
}

func (s *TTLStore) Delete(key string) {
	s.c.Delete(key)
}

// MapStore is a minimal mutex-guarded backend without expiry, used in tests.
type MapStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMapStore() *MapStore {
	return &MapStore{m: make(map[string][]byte)}
}

func (s *MapStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MapStore) Set(key string, value []byte, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MapStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}
