// Package cache implements a bounded, concurrency-safe LRU cache for
// recently read records, sitting in front of a catalog's tables to absorb
// repeated reads of hot keys.
package cache

import (
	"container/list"
	"sync"

	"plusdb/bplustree"
)

// entryKey identifies one cached record by table and a comparable form of
// its dbkey.Key (the caller supplies this, since dbkey.Key itself is not
// usable as a map key across kinds without risking accidental collisions).
type entryKey struct {
	table string
	key   string
}

type cacheEntry struct {
	k       entryKey
	value   bplustree.Record
	element *list.Element
}

// RecordCache is an LRU cache of (table, key) -> Record. It never talks to
// storage itself; callers are responsible for populating it on read and
// invalidating it on write.
type RecordCache struct {
	mu    sync.Mutex
	store map[entryKey]*cacheEntry
	order *list.List
	size  int
}

// New creates a RecordCache holding at most size entries. A size of 0
// disables eviction (the cache grows without bound), matching the
// teacher's convention that a non-positive cache size means "unbounded."
func New(size int) *RecordCache {
	return &RecordCache{
		store: make(map[entryKey]*cacheEntry),
		order: list.New(),
		size:  size,
	}
}

// Get returns the cached record for (table, key), moving it to the front of
// the eviction order if present.
func (c *RecordCache) Get(table, key string) (bplustree.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ek := entryKey{table: table, key: key}
	entry, ok := c.store[ek]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(entry.element)
	return entry.value, true
}

// Put inserts or refreshes the cached value for (table, key), evicting the
// least recently used entry if the cache is at capacity.
func (c *RecordCache) Put(table, key string, value bplustree.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ek := entryKey{table: table, key: key}
	if entry, ok := c.store[ek]; ok {
		entry.value = value
		c.order.MoveToFront(entry.element)
		return
	}

	if c.size > 0 && c.order.Len() >= c.size {
		c.evictOldest()
	}

	element := c.order.PushFront(ek)
	c.store[ek] = &cacheEntry{k: ek, value: value, element: element}
}

// Invalidate drops the cached entry for (table, key), if any. Callers must
// invalidate on every update and delete so the cache never serves stale
// data.
func (c *RecordCache) Invalidate(table, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ek := entryKey{table: table, key: key}
	entry, ok := c.store[ek]
	if !ok {
		return
	}
	c.order.Remove(entry.element)
	delete(c.store, ek)
}

// InvalidateTable drops every cached entry belonging to table.
func (c *RecordCache) InvalidateTable(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ek, entry := range c.store {
		if ek.table != table {
			continue
		}
		c.order.Remove(entry.element)
		delete(c.store, ek)
	}
}

func (c *RecordCache) evictOldest() {
	tail := c.order.Back()
	if tail == nil {
		return
	}
	ek := tail.Value.(entryKey)
	c.order.Remove(tail)
	delete(c.store, ek)
}

// Len reports the number of entries currently cached.
func (c *RecordCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
