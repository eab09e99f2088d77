package intent

import (
	"container/list"
	"crypto/sha256"
	"fmt"
	"sync"
)

// Cache remembers accepted generative resolutions, keyed by a hash of the
// normalized text. Bounded LRU so repeated phrasings skip the external call
// without growing without limit.
type Cache struct {
	maxSize int
	entries map[string]*list.Element
	lru     *list.List
	mu      sync.Mutex
}

type cacheEntry struct {
	key    string
	parsed ParsedIntent
}

func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *Cache) Get(normalizedText string) (ParsedIntent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[cacheKey(normalizedText)]
	if !ok {
		return ParsedIntent{}, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).parsed, true
}

func (c *Cache) Put(normalizedText string, parsed ParsedIntent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(normalizedText)
	if elem, exists := c.entries[key]; exists {
		elem.Value.(*cacheEntry).parsed = parsed
		c.lru.MoveToFront(elem)
		return
	}

	if c.lru.Len() >= c.maxSize {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, parsed: parsed})
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheKey(normalizedText string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(normalizedText)))
}
