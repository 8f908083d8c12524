// internal/monitor/cache.go

package monitor

import (
	"strings"
	"sync"
	"time"

	"rdpManager/internal/models"
)

// Cache holds recent probe results. It is an explicit per-instance
// object, not a process-wide singleton, so callers and tests can inject
// a fresh one. Keys are hostnames, compared case-insensitively.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]models.ReachabilityState
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: map[string]models.ReachabilityState{},
		now:     time.Now,
	}
}

func cacheKey(hostname string) string {
	return strings.ToLower(strings.TrimSpace(hostname))
}

// Get returns the cached state for hostname when it is younger than the
// TTL.
func (c *Cache) Get(hostname string) (models.ReachabilityState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	state, ok := c.entries[cacheKey(hostname)]
	if !ok || c.now().Sub(state.LastCheckedAt) > c.ttl {
		return models.ReachabilityState{}, false
	}
	return state, true
}

// Put stores a fresh probe result.
func (c *Cache) Put(hostname string, status models.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(hostname)] = models.ReachabilityState{
		Hostname:      hostname,
		Status:        status,
		LastCheckedAt: c.now(),
	}
}

// Invalidate drops one hostname's entry, forcing the next check to
// probe. Callers use this around launch attempts.
func (c *Cache) Invalidate(hostname string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(hostname))
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]models.ReachabilityState{}
}
