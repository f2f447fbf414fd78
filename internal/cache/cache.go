package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Key groups. Every cached key belongs to exactly one group and is
// invalidated with it.
const (
	Items     = "items"
	Movements = "movements"
	Sites     = "sites"
	Summary   = "summary"
)

// DefaultTTL bounds how long a projection may be served after a change
// made outside this process.
const DefaultTTL = 30 * time.Second

const maxEntries = 256

// Observer is notified of every lookup.
type Observer interface {
	CacheHit()
	CacheMiss()
}

// Cache holds projection results for a bounded time. Mutations must call
// Invalidate for every group they can affect.
type Cache struct {
	lru *expirable.LRU[string, any]
	obs Observer

	// mu orders SetIfCurrent against Invalidate. gens counts the
	// invalidations of each group.
	mu   sync.Mutex
	gens map[string]uint64
}

// New creates a cache whose entries expire after ttl. A ttl of zero or less
// disables caching: Get always misses and Set is a no-op.
func New(ttl time.Duration, obs Observer) *Cache {
	c := &Cache{obs: obs, gens: make(map[string]uint64)}
	if ttl > 0 {
		c.lru = expirable.NewLRU[string, any](maxEntries, nil, ttl)
	}
	return c
}

// Key builds a key in group. Parts distinguish filtered variants.
func Key(group string, parts ...string) string {
	if len(parts) == 0 {
		return group
	}
	return group + ":" + strings.Join(parts, "|")
}

// Get returns the cached value for key.
func (c *Cache) Get(key string) (any, bool) {
	var (
		v  any
		ok bool
	)
	if c.lru != nil {
		v, ok = c.lru.Get(key)
	}
	if c.obs != nil {
		if ok {
			c.obs.CacheHit()
		} else {
			c.obs.CacheMiss()
		}
	}
	return v, ok
}

// Set stores v under key.
func (c *Cache) Set(key string, v any) {
	if c.lru != nil {
		c.lru.Add(key, v)
	}
}

// Generation returns the invalidation count of key's group. Take it before
// loading a value and pass it to SetIfCurrent.
func (c *Cache) Generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[groupOf(key)]
}

// SetIfCurrent stores v under key unless key's group was invalidated since
// gen was taken. It reports whether v was stored.
func (c *Cache) SetIfCurrent(key string, v any, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lru == nil || c.gens[groupOf(key)] != gen {
		return false
	}
	c.lru.Add(key, v)
	return true
}

// Invalidate drops every key in the given groups.
func (c *Cache) Invalidate(groups ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range groups {
		c.gens[g]++
	}
	if c.lru == nil {
		return
	}
	for _, key := range c.lru.Keys() {
		for _, g := range groups {
			if key == g || strings.HasPrefix(key, g+":") {
				c.lru.Remove(key)
				break
			}
		}
	}
}

func groupOf(key string) string {
	group, _, _ := strings.Cut(key, ":")
	return group
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
