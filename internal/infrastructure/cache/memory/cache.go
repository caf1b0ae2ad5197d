// Package memory holds the process-wide analysis memoization. It is shared
// across sessions on purpose: identical questions against identically shaped
// tables reuse one external call.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

const DefaultTTL = time.Hour

type cacheKey struct {
	fingerprint domain.TableFingerprint
	question    string
}

type cacheEntry struct {
	result   domain.AnalysisResult
	storedAt time.Time
}

type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

type Option func(*Cache)

// WithClock swaps the time source, letting tests drive expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(ttl time.Duration, options ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cache := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[cacheKey]cacheEntry),
	}
	for _, option := range options {
		option(cache)
	}
	return cache
}

// GetOrCompute returns the unexpired entry for (fingerprint, question) or runs
// compute and stores its result with a fresh timestamp. Expiry is checked
// lazily here; there is no background sweep. A racing double compute is
// tolerated: last writer wins and the cache stays consistent.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	fingerprint domain.TableFingerprint,
	question string,
	compute func(context.Context) (domain.AnalysisResult, error),
) (domain.AnalysisResult, bool, error) {
	key := cacheKey{fingerprint: fingerprint, question: question}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.storedAt) < c.ttl {
		return entry.result, true, nil
	}

	result, err := compute(ctx)
	if err != nil {
		return domain.AnalysisResult{}, false, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{result: result, storedAt: c.now()}
	c.mu.Unlock()
	return result, false, nil
}

// Len reports live (unexpired) entries; used by metrics.
func (c *Cache) Len() int {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	live := 0
	for _, entry := range c.entries {
		if now.Sub(entry.storedAt) < c.ttl {
			live++
		}
	}
	return live
}
