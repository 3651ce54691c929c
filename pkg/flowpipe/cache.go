package flowpipe

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value   any
	expires time.Time
}

// CacheStep memoises the result of the rest of the chain by a payload-derived
// key for a TTL. Entries are evicted lazily on lookup; Flush empties the
// cache. The entry map is guarded, so one cached step can serve concurrent
// pipeline runs.
type CacheStep struct {
	keyFn func(payload any) string
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// Cache creates a cache step. keyFn derives the cache key from the incoming
// payload; ttl bounds how long a result is served without re-running the
// continuation.
func Cache(keyFn func(payload any) string, ttl time.Duration) (*CacheStep, error) {
	if keyFn == nil {
		return nil, ErrCacheKeyFn
	}

	return &CacheStep{
		keyFn:   keyFn,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}, nil
}

// Handle implements Step.
func (s *CacheStep) Handle(ctx context.Context, payload any, next Next) (any, error) {
	key := s.keyFn(payload)

	s.mu.Lock()
	entry, ok := s.entries[key]
	if ok && s.now().Before(entry.expires) {
		s.mu.Unlock()

		return entry.value, nil
	}

	if ok {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	out, err := next(ctx, payload)
	if err != nil {
		// Failures are never cached.
		return nil, err
	}

	s.mu.Lock()
	s.entries[key] = cacheEntry{value: out, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()

	return out, nil
}

// Label implements Labeled.
func (s *CacheStep) Label() string { return "cache" }

// Flush drops every cached entry.
func (s *CacheStep) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]cacheEntry)
}

// Len returns the number of entries currently held, expired ones included.
func (s *CacheStep) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
