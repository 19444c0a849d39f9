package hint

import (
	"sort"
	"strings"
	"sync"

	"github.com/rahulj/hintloop/internal/segment"
)

// DefaultCacheSize bounds the hint cache.
const DefaultCacheSize = 256

// struggleKeyLen is how much of the struggle description participates in
// the cache key. Longer descriptions that agree on the prefix resolve to
// the same hint.
const struggleKeyLen = 20

// Cache holds previously generated hints keyed by question type, a
// struggle prefix and the question's parameters. Bounded; insertion past
// capacity evicts the oldest entry. A hit returns the stored body
// byte for byte so repeated identical requests are idempotent.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Hint
	order   []string
	size    int
}

// NewCache creates a Cache. A non-positive size selects the default.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		entries: make(map[string]Hint, size),
		size:    size,
	}
}

// cacheKey builds the lookup key. Parameters are included in sorted
// order so identical questions key identically regardless of map order.
func cacheKey(q segment.Question, struggle string) string {
	desc := strings.ToLower(strings.Join(strings.Fields(struggle), " "))
	if len(desc) > struggleKeyLen {
		desc = desc[:struggleKeyLen]
	}

	var b strings.Builder
	b.WriteString(string(q.Type))
	b.WriteByte('|')
	b.WriteString(desc)

	names := make([]string, 0, len(q.Params))
	for name := range q.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(formatNum(q.Params[name]))
	}
	return b.String()
}

// Get returns the cached hint for the question and struggle, re-sourced
// as cached, or nil on a miss.
func (c *Cache) Get(q segment.Question, struggle string) *Hint {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.entries[cacheKey(q, struggle)]
	if !ok {
		return nil
	}
	h.Source = SourceCached
	h.Tokens = 0
	h.Latency = 0
	return &h
}

// Put stores a hint, evicting the oldest entry when at capacity.
func (c *Cache) Put(q segment.Question, struggle string, h Hint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(q, struggle)
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.size {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = h
}

// Len returns the number of cached hints.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
