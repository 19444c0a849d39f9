package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// CachingExtractor decorates an Extractor with a bounded result cache
// keyed by the SHA-256 of the image bytes. Eviction is oldest-first;
// approximate recency is acceptable here.
type CachingExtractor struct {
	inner   Extractor
	maxSize int

	mu      sync.Mutex
	entries map[string]Result
	order   []string // insertion order for eviction
}

// WithCache wraps an Extractor with a bounded result cache.
func WithCache(inner Extractor, maxSize int) *CachingExtractor {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &CachingExtractor{
		inner:   inner,
		maxSize: maxSize,
		entries: make(map[string]Result),
	}
}

func (c *CachingExtractor) Extract(ctx context.Context, image []byte) (Result, error) {
	key := imageKey(image)

	c.mu.Lock()
	if res, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return res, nil
	}
	c.mu.Unlock()

	res, err := c.inner.Extract(ctx, image)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.entries[key] = res
		c.order = append(c.order, key)
	}
	return res, nil
}

// Len returns the number of cached results.
func (c *CachingExtractor) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func imageKey(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}
