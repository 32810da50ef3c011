package cache

import (
	"context"
	"sync"
	"time"
)

// LRU is a thread-safe least recently used cache of sheet bytes.
type LRU struct {
	mutex    sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[string]*entry
	head     *entry // most recently used
	tail     *entry // least recently used
	hits     int64
	misses   int64
}

// entry is a node in the doubly-linked recency list
type entry struct {
	key     string
	data    []byte
	expires time.Time
	prev    *entry
	next    *entry
}

var _ Cache = (*LRU)(nil)

// NewLRU creates an LRU cache holding at most capacity sheets. Entries older
// than ttl are treated as misses; a zero ttl disables expiry.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 16
	}

	c := &LRU{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*entry),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns a copy of the cached sheet and marks it as recently used
func (c *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.items[key]
	if ok && c.expired(e) {
		c.unlink(e)
		delete(c.items, key)
		ok = false
	}
	if !ok {
		c.misses++
		return nil, false, nil
	}

	c.unlink(e)
	c.pushFront(e)
	c.hits++
	return append([]byte(nil), e.data...), true, nil
}

// Put stores a copy of data, evicting the least recently used sheet when full
func (c *LRU) Put(_ context.Context, key string, data []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}
	data = append([]byte(nil), data...)

	if e, ok := c.items[key]; ok {
		e.data = data
		e.expires = expires
		c.unlink(e)
		c.pushFront(e)
		return nil
	}

	e := &entry{key: key, data: data, expires: expires}
	c.pushFront(e)
	c.items[key] = e

	if len(c.items) > c.capacity {
		lru := c.tail.prev
		c.unlink(lru)
		delete(c.items, lru.key)
	}
	return nil
}

// Remove drops key from the cache
func (c *LRU) Remove(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.unlink(e)
	delete(c.items, key)
	return true
}

// Keys returns all keys from most to least recently used
func (c *LRU) Keys() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	keys := make([]string, 0, len(c.items))
	for e := c.head.next; e != c.tail; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Len returns the number of cached sheets
func (c *LRU) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *LRU) Stats() Stats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return Stats{
		Backend:  "memory",
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  hitRate(c.hits, c.misses),
		Size:     len(c.items),
		Capacity: c.capacity,
	}
}

// Close empties the cache
func (c *LRU) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*entry)
	c.head.next = c.tail
	c.tail.prev = c.head
	return nil
}

func (c *LRU) expired(e *entry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

func (c *LRU) pushFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU) unlink(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}
