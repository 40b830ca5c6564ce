package ingest

import (
	"container/list"
	"crypto/sha256"
	"sync"
)

// DefaultCacheEntries bounds the cache when NewCache is given a non-positive size.
const DefaultCacheEntries = 16

type cacheKey [sha256.Size]byte

type cacheEntry struct {
	key   cacheKey
	table *Table
}

// Cache memoizes Parse on file content so repeated interactions with the same
// upload do not re-read it. Least recently used tables are evicted first.
type Cache struct {
	mu      sync.Mutex
	max     int
	order   *list.List
	entries map[cacheKey]*list.Element
	hits    int
	misses  int
}

// NewCache returns a cache holding at most max parsed tables.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheEntries
	}
	return &Cache{
		max:     max,
		order:   list.New(),
		entries: make(map[cacheKey]*list.Element),
	}
}

// Parse returns the cached Table for identical content read with the same
// delimiter, parsing and storing it on a miss. Errors are not cached.
func (c *Cache) Parse(name string, data []byte) (*Table, error) {
	key := contentKey(name, data)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		c.hits++
		t := el.Value.(*cacheEntry).table
		c.mu.Unlock()
		return t, nil
	}
	c.misses++
	c.mu.Unlock()

	t, err := Parse(name, data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		// a concurrent request parsed the same bytes first
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).table, nil
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, table: t})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return t, nil
}

// Len reports the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats reports cache hits and misses since creation.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func contentKey(name string, data []byte) cacheKey {
	h := sha256.New()
	h.Write([]byte(string(sniffDelimiter(name))))
	h.Write(data)
	var k cacheKey
	copy(k[:], h.Sum(nil))
	return k
}
