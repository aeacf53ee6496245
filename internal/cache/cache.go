// Package cache keeps computed responses in memory. The server caches search
// results under a key derived from the dataset revision and the query, and
// tags each entry with the revision so a dataset reload can drop them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Cache is an in-memory cache with size-bounded eviction, expiry and
// dependency invalidation. It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	maxSize  int64
	maxAge   time.Duration
	strategy EvictionStrategy
	now      func() time.Time
	stats    Stats
	stopCh   chan struct{}
	stopOnce sync.Once
}

// Entry is a single cached value.
type Entry struct {
	Key          string
	Data         []byte
	Size         int64
	Created      time.Time
	LastAccess   time.Time
	AccessCount  int
	Dependencies []string
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// EvictionStrategy defines how cache entries are removed
type EvictionStrategy int

const (
	// LRU removes least recently used entries
	LRU EvictionStrategy = iota
	// LFU removes least frequently used entries
	LFU
	// FIFO removes oldest entries first
	FIFO
)

// Config holds cache configuration
type Config struct {
	MaxSize  int64            // Maximum total data size in bytes (default: 16MB, <0 = unbounded)
	MaxAge   time.Duration    // Maximum age for entries (default: 10 minutes, <0 = never expire)
	Strategy EvictionStrategy // Eviction strategy (default: LRU)
	// CleanupInterval is how often expired entries are swept. Zero disables
	// the sweeper; expired entries are still dropped on access.
	CleanupInterval time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxSize:         16 << 20,
		MaxAge:          10 * time.Minute,
		Strategy:        LRU,
		CleanupInterval: time.Minute,
	}
}

// New creates a new cache instance
func New(config Config) *Cache {
	if config.MaxSize == 0 {
		config.MaxSize = DefaultConfig().MaxSize
	}
	if config.MaxAge == 0 {
		config.MaxAge = DefaultConfig().MaxAge
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	c := &Cache{
		entries:  make(map[string]*Entry),
		maxSize:  config.MaxSize,
		maxAge:   config.MaxAge,
		strategy: config.Strategy,
		now:      config.Now,
		stopCh:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.cleanup(config.CleanupInterval)
	}
	return c
}

// Get returns a cached value.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.isExpired(entry) {
		c.remove(key)
		c.stats.Misses++
		return nil, false
	}

	entry.LastAccess = c.now()
	entry.AccessCount++
	c.stats.Hits++
	return entry.Data, true
}

// Put stores a value, evicting others when the size limit is reached. A
// value larger than the limit is not stored.
func (c *Cache) Put(key string, data []byte) {
	c.PutWithDeps(key, data, nil)
}

// PutWithDeps stores a value tagged with dependencies for
// InvalidateByDependency.
func (c *Cache) PutWithDeps(key string, data []byte, deps []string) {
	size := int64(len(data))

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	if c.maxSize > 0 && size > c.maxSize {
		return
	}
	c.ensureSpace(size)

	now := c.now()
	c.entries[key] = &Entry{
		Key:          key,
		Data:         data,
		Size:         size,
		Created:      now,
		LastAccess:   now,
		Dependencies: append([]string(nil), deps...),
	}
	c.stats.TotalSize += size
	c.stats.EntryCount = len(c.entries)
}

// Delete removes an entry from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// InvalidateByDependency removes the entries depending on dep, or on
// anything dep is a prefix of. It returns how many were removed.
func (c *Cache) InvalidateByDependency(dep string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.entries {
		for _, d := range entry.Dependencies {
			if strings.HasPrefix(d, dep) {
				c.remove(key)
				count++
				break
			}
		}
	}
	return count
}

// Clear removes all cached entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
	c.stats = Stats{}
}

// GetStats returns cache statistics
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Key derives a cache key from inputs. Inputs are length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Key(inputs ...string) string {
	h := sha256.New()
	var n [8]byte
	for _, input := range inputs {
		l := uint64(len(input))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write([]byte(input))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// remove requires c.mu.
func (c *Cache) remove(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.stats.TotalSize -= entry.Size
	c.stats.EntryCount = len(c.entries)
}

func (c *Cache) isExpired(entry *Entry) bool {
	if c.maxAge <= 0 {
		return false
	}
	return c.now().Sub(entry.Created) > c.maxAge
}

// ensureSpace requires c.mu.
func (c *Cache) ensureSpace(needed int64) {
	if c.maxSize <= 0 {
		return
	}

	for c.stats.TotalSize+needed > c.maxSize && len(c.entries) > 0 {
		var victim *Entry
		for _, entry := range c.entries {
			if victim == nil || c.before(entry, victim) {
				victim = entry
			}
		}
		c.remove(victim.Key)
		c.stats.Evictions++
	}
}

// before reports whether a should be evicted ahead of b.
func (c *Cache) before(a, b *Entry) bool {
	switch c.strategy {
	case LFU:
		if a.AccessCount != b.AccessCount {
			return a.AccessCount < b.AccessCount
		}
		return a.LastAccess.Before(b.LastAccess)
	case FIFO:
		return a.Created.Before(b.Created)
	default:
		return a.LastAccess.Before(b.LastAccess)
	}
}

func (c *Cache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if c.isExpired(entry) {
					c.remove(key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}
