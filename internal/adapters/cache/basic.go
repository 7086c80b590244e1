package cache

import (
	"sync"
	"time"
)

type basicCacheEntry[T any] struct {
	data  T
	valid bool
}

// basicCache keeps entries until they are invalidated.
//
// Only safe when this process is the only writer of the cached data, like with the
// in-memory store.
type basicCache[T any] struct {
	entries map[string]basicCacheEntry[T]
	mu      sync.Mutex
}

func (c *basicCache[T]) getOrClaim(key string) hitResult[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		return hitResult[T]{data: entry.data, valid: entry.valid}
	}

	// Leave an invalid entry behind so concurrent callers wait for us
	c.entries[key] = basicCacheEntry[T]{}
	return hitResult[T]{claimed: true}
}

func (c *basicCache[T]) set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = basicCacheEntry[T]{data: data, valid: true}
}

func (c *basicCache[T]) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *basicCache[T]) wait() {
	time.Sleep(5 * time.Millisecond)
}

func NewBasicCache[T any]() *basicCache[T] {
	return &basicCache[T]{
		entries: make(map[string]basicCacheEntry[T]),
	}
}
