package api

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// DefaultCacheTTL bounds how long a cached assessment may serve reads
// before a fresh calculation is forced.
const DefaultCacheTTL = 15 * time.Minute

// AssessmentCache is a thread-safe LRU cache for per-farm assessments.
// Entries expire after a TTL so officers never see scores older than the
// refresh window.
type AssessmentCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*cacheEntry
	order   []string // oldest first
	now     func() time.Time
}

type cacheEntry struct {
	assessment *distress.Assessment
	storedAt   time.Time
}

// NewAssessmentCache creates a cache with the given maximum number of
// entries. If maxSize <= 0, it defaults to 256; ttl <= 0 gets the default.
func NewAssessmentCache(maxSize int, ttl time.Duration) *AssessmentCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &AssessmentCache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

// NewAssessmentCacheFromEnv creates a cache sized from the
// ASSESSMENT_CACHE_SIZE env var.
func NewAssessmentCacheFromEnv() *AssessmentCache {
	size := 256
	if v := os.Getenv("ASSESSMENT_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewAssessmentCache(size, DefaultCacheTTL)
}

// Get retrieves a live assessment from the cache, or nil if absent or
// expired.
func (c *AssessmentCache) Get(farmID string) *distress.Assessment {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[farmID]
	if !ok {
		return nil
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.remove(farmID)
		return nil
	}

	// Move to end (most recently used)
	c.moveToEnd(farmID)
	return entry.assessment
}

// Put adds an assessment to the cache, evicting the oldest if full.
func (c *AssessmentCache) Put(farmID string, a *distress.Assessment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[farmID]; ok {
		c.entries[farmID] = &cacheEntry{assessment: a, storedAt: c.now()}
		c.moveToEnd(farmID)
		return
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[farmID] = &cacheEntry{assessment: a, storedAt: c.now()}
	c.order = append(c.order, farmID)
}

// Flush drops every cached assessment. Called after a full recalculation
// so reads pick up the fresh scores immediately.
func (c *AssessmentCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = nil
}

// Invalidate drops a single farm's cached assessment.
func (c *AssessmentCache) Invalidate(farmID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(farmID)
}

func (c *AssessmentCache) remove(farmID string) {
	if _, ok := c.entries[farmID]; !ok {
		return
	}
	delete(c.entries, farmID)
	for i, k := range c.order {
		if k == farmID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *AssessmentCache) moveToEnd(farmID string) {
	for i, k := range c.order {
		if k == farmID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, farmID)
			return
		}
	}
}
