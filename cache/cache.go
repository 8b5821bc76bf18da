// Package cache provides a small sharded LRU cache for values that are
// expensive to derive, such as visual descriptions read from a display
// server's setup data.
package cache

import (
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of shards. It is a power of two.
	ShardCount = 8

	// DefaultCapacity is the default maximum number of entries per shard.
	DefaultCapacity = 64

	shardMask = ShardCount - 1
)

// Hasher selects the shard of a key.
type Hasher[K any] func(K) uint64

// Uint32Hasher spreads 32-bit identifiers such as X11 resource IDs over the
// shards.
func Uint32Hasher(v uint32) uint64 {
	// Fibonacci hashing; the low bits of resource IDs are often equal.
	return (uint64(v) * 0x9e3779b97f4a7c15) >> 32
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a thread-safe sharded LRU cache.
type Cache[K comparable, V any] struct {
	shards   [ShardCount]shard[K, V]
	hasher   Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*node[K, V]
	lru     list[K, V]
}

// New creates a cache holding up to capacity entries per shard.
// capacity <= 0 selects DefaultCapacity.
func New[K comparable, V any](capacity int, hasher Hasher[K]) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i].entries = make(map[K]*node[K, V])
		c.shards[i].lru.init()
	}
	return c
}

func (c *Cache[K, V]) shard(key K) *shard[K, V] {
	return &c.shards[c.hasher(key)&shardMask]
}

// Get returns the value cached for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.lru.moveToFront(n)
	c.hits.Add(1)
	return n.value, true
}

// Set stores value under key, evicting the least recently used entries of
// the shard when it is full.
func (c *Cache[K, V]) Set(key K, value V) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	c.insert(s, key, value)
}

// GetOrLoad returns the value cached for key, calling load on a miss.
// Errors from load are returned and not cached. load runs with the shard
// locked, so concurrent misses on one key load once.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.entries[key]; ok {
		s.lru.moveToFront(n)
		c.hits.Add(1)
		return n.value, nil
	}
	c.misses.Add(1)

	v, err := load()
	if err != nil {
		return v, err
	}
	c.insert(s, key, v)
	return v, nil
}

// insert must be called with s locked.
func (c *Cache[K, V]) insert(s *shard[K, V], key K, value V) {
	if n, ok := s.entries[key]; ok {
		n.value = value
		s.lru.moveToFront(n)
		return
	}
	for len(s.entries) >= c.capacity {
		old := s.lru.back()
		s.lru.remove(old)
		delete(s.entries, old.key)
		c.evictions.Add(1)
	}
	n := &node[K, V]{key: key, value: value}
	s.lru.pushFront(n)
	s.entries[key] = n
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.remove(n)
	delete(s.entries, key)
	return true
}

// Clear removes all entries. Counters are kept.
func (c *Cache[K, V]) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		s.entries = make(map[K]*node[K, V])
		s.lru.init()
		s.mu.Unlock()
	}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	total := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Stats returns the current counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
