package dispatch

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/wayfare-dev/wayfare/pkg/route"
)

// PreloadFunc is a data-fetch effect registered for a view. It runs
// asynchronously after the navigation notification is emitted; its result
// is cached by canonical path until the entry expires.
type PreloadFunc func(ctx context.Context, m route.Match) (any, error)

// PreloadOutcome describes what happened to a navigation's preload effect.
type PreloadOutcome string

const (
	// PreloadRun means the effect executed.
	PreloadRun PreloadOutcome = "run"

	// PreloadHit means a fresh cached result was reused; no effect ran.
	PreloadHit PreloadOutcome = "hit"

	// PreloadError means the effect executed and returned an error.
	PreloadError PreloadOutcome = "error"

	// PreloadDropped means the effect was skipped by the rate limiter or
	// the concurrency semaphore.
	PreloadDropped PreloadOutcome = "dropped"
)

// PreloadConfig holds configuration for the preload system.
type PreloadConfig struct {
	// TTL is how long a preloaded result is valid.
	// Default: 30 seconds.
	TTL time.Duration

	// MaxEntries is the maximum number of cached results per dispatcher.
	// Uses LRU eviction when exceeded.
	// Default: 10.
	MaxEntries int

	// Timeout is the maximum time a preload effect may run.
	// Default: 5 seconds.
	Timeout time.Duration

	// RateLimit is the maximum preload triggers per second per dispatcher.
	// Excess triggers are silently dropped.
	// Default: 5.
	RateLimit float64

	// Concurrency is the maximum simultaneous preload effects.
	// Default: 2.
	Concurrency int
}

// DefaultPreloadConfig returns the default preload configuration.
func DefaultPreloadConfig() *PreloadConfig {
	return &PreloadConfig{
		TTL:         30 * time.Second,
		MaxEntries:  10,
		Timeout:     5 * time.Second,
		RateLimit:   5.0,
		Concurrency: 2,
	}
}

// preloadEntry holds a cached preload result.
type preloadEntry struct {
	value     any
	expiresAt time.Time
}

func (e *preloadEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// preloadCache is an LRU cache for preload results, keyed by canonical
// path. Each dispatcher owns one instance.
type preloadCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // LRU order (front = most recent)
}

// preloadItem holds an entry in the LRU list.
type preloadItem struct {
	key   string
	entry *preloadEntry
}

func newPreloadCache(ttl time.Duration, maxEntries int) *preloadCache {
	return &preloadCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// get retrieves a cached result. Returns (nil, false) if absent or expired.
func (c *preloadCache) get(path string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[path]
	if !ok {
		return nil, false
	}

	item := elem.Value.(*preloadItem)
	if item.entry.expired() {
		c.order.Remove(elem)
		delete(c.entries, path)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return item.entry.value, true
}

// set stores a result, evicting the least recently used entry at capacity.
func (c *preloadCache) set(path string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &preloadEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, ok := c.entries[path]; ok {
		elem.Value.(*preloadItem).entry = entry
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		item := oldest.Value.(*preloadItem)
		c.order.Remove(oldest)
		delete(c.entries, item.key)
	}

	elem := c.order.PushFront(&preloadItem{key: path, entry: entry})
	c.entries[path] = elem
}

// delete removes a cached entry.
func (c *preloadCache) delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[path]; ok {
		c.order.Remove(elem)
		delete(c.entries, path)
	}
}

// clear removes all cached entries.
func (c *preloadCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order = list.New()
}

// len returns the number of cached entries.
func (c *preloadCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// preloadRateLimiter implements token bucket rate limiting for preload
// triggers. Excess triggers are dropped, never queued.
type preloadRateLimiter struct {
	mu            sync.Mutex
	ratePerSecond float64
	tokens        float64
	lastRefill    time.Time
}

func newPreloadRateLimiter(ratePerSecond float64) *preloadRateLimiter {
	return &preloadRateLimiter{
		ratePerSecond: ratePerSecond,
		tokens:        ratePerSecond, // Start with a full bucket
		lastRefill:    time.Now(),
	}
}

// allow returns true if a preload trigger is within the rate limit.
func (r *preloadRateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()

	r.tokens += elapsed * r.ratePerSecond
	if r.tokens > r.ratePerSecond {
		r.tokens = r.ratePerSecond // Cap at bucket size
	}
	r.lastRefill = now

	if r.tokens >= 1.0 {
		r.tokens -= 1.0
		return true
	}
	return false
}

// preloadSemaphore limits concurrent preload effects without blocking.
type preloadSemaphore struct {
	ch chan struct{}
}

func newPreloadSemaphore(limit int) *preloadSemaphore {
	return &preloadSemaphore{
		ch: make(chan struct{}, limit),
	}
}

// acquire tries to take a slot, returning false immediately when full.
func (s *preloadSemaphore) acquire() bool {
	select {
	case s.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *preloadSemaphore) release() {
	select {
	case <-s.ch:
	default:
	}
}
