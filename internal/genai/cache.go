// This file contains the TTL response cache for the narrator.
package genai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/coursewise/advisor-go/internal/metrics"
)

// cacheMaxEntries bounds memory; oldest entries are evicted past this.
const cacheMaxEntries = 1000

// CachingNarrator wraps a Narrator with a TTL response cache.
// Identical advising answers within the TTL reuse the previous narration
// instead of spending provider tokens.
type CachingNarrator struct {
	inner   Narrator
	ttl     time.Duration
	metrics *metrics.Metrics

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	narration Narration
	expires   time.Time
}

// NewCachingNarrator wraps inner with a response cache. A non-positive ttl
// disables caching (calls pass straight through). Metrics may be nil.
func NewCachingNarrator(inner Narrator, ttl time.Duration, m *metrics.Metrics) *CachingNarrator {
	return &CachingNarrator{
		inner:   inner,
		ttl:     ttl,
		metrics: m,
		entries: make(map[string]cacheEntry),
	}
}

// Narrate serves from cache when possible, otherwise delegates and stores
// the result.
func (c *CachingNarrator) Narrate(ctx context.Context, req NarrationRequest) (*Narration, error) {
	if c == nil || c.inner == nil {
		return nil, errors.New("narrator not configured")
	}
	if c.ttl <= 0 {
		return c.inner.Narrate(ctx, req)
	}

	key := cacheKey(req)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && time.Now().Before(entry.expires) {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.RecordNarratorCacheHit()
		}
		cached := entry.narration
		return &cached, nil
	}
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordNarratorCacheMiss()
	}

	result, err := c.inner.Narrate(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if len(c.entries) >= cacheMaxEntries {
		c.evictExpiredLocked()
		if len(c.entries) >= cacheMaxEntries {
			// Still full of live entries; drop one arbitrary entry
			for k := range c.entries {
				delete(c.entries, k)
				break
			}
		}
	}
	c.entries[key] = cacheEntry{narration: *result, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return result, nil
}

// evictExpiredLocked removes expired entries. Must be called with mu held.
func (c *CachingNarrator) evictExpiredLocked() {
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached narrations (for tests and monitoring).
func (c *CachingNarrator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// IsEnabled reports whether the wrapped narrator is enabled.
func (c *CachingNarrator) IsEnabled() bool {
	return c != nil && c.inner != nil && c.inner.IsEnabled()
}

// Provider returns the wrapped narrator's provider.
func (c *CachingNarrator) Provider() Provider {
	if c == nil || c.inner == nil {
		return ""
	}
	return c.inner.Provider()
}

// Close closes the wrapped narrator.
func (c *CachingNarrator) Close() error {
	if c == nil || c.inner == nil {
		return nil
	}
	return c.inner.Close()
}

// cacheKey derives a stable key from the parts of the request that affect
// the narration.
func cacheKey(req NarrationRequest) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(req.Query))))
	h.Write([]byte{0})
	h.Write([]byte(req.Intent))
	h.Write([]byte{0})
	h.Write([]byte(req.Major))
	h.Write([]byte{0})
	h.Write([]byte(req.Program))
	h.Write([]byte{0})
	h.Write([]byte(req.CareerGoal))
	h.Write([]byte{0})
	h.Write([]byte(req.RuleNarrative))
	return hex.EncodeToString(h.Sum(nil))
}
