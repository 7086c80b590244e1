package cache

import (
	"runtime"
	"sync"
)

// lockstepStore is a cache shared by a fixed number of lockstepCaches.
// Time only moves forward once every cache has called wait, which makes interleavings
// of concurrent GetOrCreate calls deterministic.
type lockstepStore[T any] struct {
	mu      sync.Mutex
	entries map[string]hitResult[T]

	tickMu    sync.Mutex
	tick      int
	lastTick  int
	callers   int
	waitCount int
}

type lockstepCache[T any] struct {
	store      *lockstepStore[T]
	targetTick int
}

func newLockstepStore[T any](callers int, lastTick int) (*lockstepStore[T], []*lockstepCache[T]) {
	store := &lockstepStore[T]{
		entries:  make(map[string]hitResult[T]),
		lastTick: lastTick,
		callers:  callers,
	}

	caches := make([]*lockstepCache[T], callers)
	for i := range caches {
		caches[i] = &lockstepCache[T]{store: store}
	}
	return store, caches
}

func (c *lockstepCache[T]) getOrClaim(key string) hitResult[T] {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if entry, ok := c.store.entries[key]; ok {
		return entry
	}
	c.store.entries[key] = hitResult[T]{}
	return hitResult[T]{claimed: true}
}

func (c *lockstepCache[T]) set(key string, data T) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	c.store.entries[key] = hitResult[T]{data: data, valid: true}
}

func (c *lockstepCache[T]) delete(key string) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	delete(c.store.entries, key)
}

// wait blocks until the next tick
func (c *lockstepCache[T]) wait() {
	if c.store.done() {
		panic("wait() called after the last tick")
	}

	c.store.tickMu.Lock()
	c.store.waitCount++
	c.store.tickMu.Unlock()

	c.targetTick++
	for c.store.currentTick() < c.targetTick {
		runtime.Gosched()
	}
}

// finish keeps ticking along until the store is done
func (c *lockstepCache[T]) finish() {
	for !c.store.done() {
		c.wait()
	}
}

func (s *lockstepStore[T]) currentTick() int {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.tick
}

func (s *lockstepStore[T]) done() bool {
	return s.currentTick() >= s.lastTick
}

// run advances the tick each time every cache has waited
func (s *lockstepStore[T]) run() {
	for !s.done() {
		s.tickMu.Lock()
		if s.waitCount == s.callers {
			s.waitCount = 0
			s.tick++
		}
		s.tickMu.Unlock()
		runtime.Gosched()
	}
}
