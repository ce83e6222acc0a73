package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a process-wide keyed TTL map. Reads treat expired-but-unswept
// entries as absent and delete them on the spot, so correctness never
// depends on sweep timing. A background sweep reaps what reads miss.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	done    chan struct{}
	stop    sync.Once
}

func New[V any](sweepEvery time.Duration) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]entry[V]),
		done:    make(chan struct{}),
	}
	go c.sweep(sweepEvery)
	return c
}

func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Mutate runs fn on the live value under key while holding the cache lock,
// so concurrent read-modify-write cycles cannot lose updates. fn receives
// the current value (ok=false when absent or expired) and returns the new
// value and its TTL; returning keep=false removes the entry instead.
func (c *Cache[V]) Mutate(key string, fn func(v V, ok bool) (next V, ttl time.Duration, keep bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	next, ttl, keep := fn(e.value, ok)
	if !keep {
		delete(c.entries, key)
		return
	}
	c.entries[key] = entry[V]{value: next, expiresAt: time.Now().Add(ttl)}
}

func (c *Cache[V]) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case now := <-t.C:
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Stop terminates the background sweep. Safe to call more than once.
func (c *Cache[V]) Stop() {
	c.stop.Do(func() { close(c.done) })
}
