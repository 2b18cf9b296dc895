// Package cache provides the advisory request-deduplication cache.
// Concurrent identical logical reads collapse into one underlying fetch, and
// completed results are served for a short staleness window. Nothing may rely
// on it for correctness: a disabled cache simply forwards every call.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	val     any
	expires time.Time
}

// RequestCache keys logical read requests (e.g. "collections:<userID>") and
// bounds every entry, including in-flight ones, by a fixed staleness window.
// The clock is injected so tests control time.
type RequestCache struct {
	enabled bool
	window  time.Duration
	now     func() time.Time

	group    singleflight.Group
	mu       sync.Mutex
	entries  map[string]entry
	inflight map[string]time.Time
}

type Option func(*RequestCache)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *RequestCache) { c.now = now }
}

func New(window time.Duration, enabled bool, opts ...Option) *RequestCache {
	c := &RequestCache{
		enabled:  enabled,
		window:   window,
		now:      time.Now,
		entries:  make(map[string]entry),
		inflight: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do returns a cached result for key if one is still inside the staleness
// window, otherwise runs fetch. Concurrent callers with the same key share a
// single fetch. Errors are returned to every waiter and never cached.
func (c *RequestCache) Do(key string, fetch func() (any, error)) (any, error) {
	if c == nil || !c.enabled {
		return fetch()
	}

	now := c.now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if now.Before(e.expires) {
			c.mu.Unlock()
			return e.val, nil
		}
		delete(c.entries, key)
	}
	// An in-flight fetch older than the window must not absorb new callers;
	// a hung collaborator would otherwise hold every future request.
	if started, ok := c.inflight[key]; ok && now.Sub(started) >= c.window {
		c.group.Forget(key)
		delete(c.inflight, key)
	}
	if _, ok := c.inflight[key]; !ok {
		c.inflight[key] = now
	}
	c.mu.Unlock()

	val, err, _ := c.group.Do(key, func() (any, error) {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
		}()

		v, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry{val: v, expires: c.now().Add(c.window)}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Invalidate drops the given keys immediately. Mutating operations call this
// so subsequent reads observe their writes.
func (c *RequestCache) Invalidate(keys ...string) {
	if c == nil || !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.group.Forget(k)
		delete(c.inflight, k)
	}
}

// Len reports the number of stored entries, expired or not.
func (c *RequestCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
