// Package cache implements the process-scoped TTL cache that memoizes
// expensive upstream calls (catalog lookups, availability queries).
//
// The store is injected into handler construction rather than hidden behind
// package-level state: it is created at process start, never persisted, and
// cleared only by explicit administrative action or restart. Check-then-
// populate sequences are serialized per key so that concurrent misses on the
// same key invoke the producer once; distinct keys proceed in parallel.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_cache_hits_total",
			Help: "Cache reads served from a live entry.",
		},
		[]string{"prefix"},
	)
	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_cache_misses_total",
			Help: "Cache reads that invoked the producer.",
		},
		[]string{"prefix"},
	)
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses)
}

// entry is a stored value with its expiry instant. Entries are immutable once
// written; refresh replaces the whole entry.
type entry struct {
	value     any
	expiresAt time.Time
}

// live reports whether the entry may still be served at time now.
func (e *entry) live(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// Store is a TTL key/value cache safe for concurrent use.
//
// Producer failures are never stored: a failed lookup propagates to the
// caller and the next read retries the producer. Expiry is checked on read;
// a background janitor additionally sweeps expired entries so that keys that
// are never re-read do not accumulate in a long-running process.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	keyMu   map[string]*sync.Mutex

	nowFn func() time.Time
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
		keyMu:   make(map[string]*sync.Mutex),
		nowFn:   time.Now,
	}
}

// lockKey returns the mutex serializing check-then-populate for key.
func (s *Store) lockKey(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.keyMu[key]
	if !ok {
		m = &sync.Mutex{}
		s.keyMu[key] = m
	}
	return m
}

// get returns the live value for key, if any.
func (s *Store) get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !e.live(s.nowFn()) {
		return nil, false
	}
	return e.value, true
}

// put stores value under key with the given ttl.
func (s *Store) put(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{value: value, expiresAt: s.nowFn().Add(ttl)}
}

// GetOrCompute returns the live cached value for key, or invokes producer,
// stores its result for ttl, and returns it. The producer runs at most once
// per key at a time; a second caller for the same key blocks until the first
// finishes and then reads the fresh entry. Producer errors are returned
// uncached.
func (s *Store) GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer func(context.Context) (any, error)) (any, error) {
	prefix := keyPrefix(key)

	if v, ok := s.get(key); ok {
		cacheHits.WithLabelValues(prefix).Inc()
		return v, nil
	}

	km := s.lockKey(key)
	km.Lock()
	defer km.Unlock()

	// Re-check after acquiring the key lock: another caller may have
	// populated the entry while we waited.
	if v, ok := s.get(key); ok {
		cacheHits.WithLabelValues(prefix).Inc()
		return v, nil
	}

	cacheMisses.WithLabelValues(prefix).Inc()
	v, err := producer(ctx)
	if err != nil {
		return nil, err
	}
	s.put(key, v, ttl)
	return v, nil
}

// Invalidate removes one entry. Removing an absent key is a no-op.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// InvalidateAll clears the store and reports how many entries were removed.
// Used by the administrative cache-busting endpoint.
func (s *Store) InvalidateAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = make(map[string]*entry)
	s.keyMu = make(map[string]*sync.Mutex)
	return n
}

// Len reports the number of stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweep drops expired entries and their key locks.
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	for k, e := range s.entries {
		if !e.live(now) {
			delete(s.entries, k)
			delete(s.keyMu, k)
		}
	}
}

// StartJanitor sweeps expired entries every interval until ctx is cancelled.
// Without it, keys that are never re-read would stay resident for the life of
// the process.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.sweep()
			}
		}
	}()
}

// keyPrefix extracts the metric label from a namespaced key: everything up to
// the second ':' ("booking:availability:svc-1:..." -> "booking:availability").
func keyPrefix(key string) string {
	seen := 0
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			seen++
			if seen == 2 {
				return key[:i]
			}
		}
	}
	return key
}
