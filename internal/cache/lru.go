// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

// Package cache provides a thread-safe LRU cache with TTL support, used to
// memoize product feedback lookups so repeated ranking requests do not hammer
// the upstream feedback service.
package cache

import (
	"sync"
	"time"
)

// entry is a node in the doubly-linked recency list.
type entry[V any] struct {
	key       string
	value     V
	prev      *entry[V]
	next      *entry[V]
	expiresAt time.Time
}

// LRU implements a thread-safe Least Recently Used cache with TTL support.
// It provides O(1) Get, Add, and eviction using a doubly-linked list for
// ordering and a hashmap for lookups. Expiration is lazy: stale entries are
// dropped on access or during CleanupExpired.
type LRU[V any] struct {
	mu sync.RWMutex

	// capacity is the maximum number of entries
	capacity int

	// ttl is the time-to-live for entries
	ttl time.Duration

	// items maps keys to linked list nodes for O(1) lookup
	items map[string]*entry[V]

	// head and tail are sentinel nodes for the doubly-linked list.
	// head.next is the most recently used, tail.prev is the least recently used.
	head *entry[V]
	tail *entry[V]

	// stats
	hits   int64
	misses int64
}

// NewLRU creates a new LRU cache with the specified capacity and TTL.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
	}

	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get retrieves an entry from the cache.
// Returns the value and true if found and not expired, false otherwise.
// Found entries are moved to the front (most recently used).
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	if e, exists := c.items[key]; exists {
		if time.Now().After(e.expiresAt) {
			c.removeEntry(e)
			c.misses++
			return zero, false
		}

		c.moveToFront(e)
		c.hits++
		return e.value, true
	}

	c.misses++
	return zero, false
}

// Contains checks if a key exists in the cache without updating access order.
func (c *LRU[V]) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, exists := c.items[key]; exists {
		return !time.Now().After(e.expiresAt)
	}
	return false
}

// Add adds or updates an entry in the cache.
// If the cache is at capacity, the least recently used entry is evicted.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiresAt := now.Add(c.ttl)

	if e, exists := c.items[key]; exists {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}

	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Remove removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.items[key]; exists {
		c.removeEntry(e)
		return true
	}
	return false
}

// Len returns the current number of entries in the cache.
func (c *LRU[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all entries from the cache.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes all expired entries from the cache.
// Returns the number of entries removed.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	// Walk from tail (oldest) to head (newest)
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}

	return removed
}

// Stats returns accumulated hit and miss counts.
func (c *LRU[V]) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// moveToFront moves an entry to the front of the list (most recently used).
// Caller must hold the lock.
func (c *LRU[V]) moveToFront(e *entry[V]) {
	c.unlink(e)
	c.addToFront(e)
}

// addToFront inserts an entry at the front of the list.
// Caller must hold the lock.
func (c *LRU[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

// unlink removes an entry from the list without touching the map.
// Caller must hold the lock.
func (c *LRU[V]) unlink(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

// removeEntry removes an entry from both the list and the map.
// Caller must hold the lock.
func (c *LRU[V]) removeEntry(e *entry[V]) {
	c.unlink(e)
	delete(c.items, e.key)
}

// evictOldest removes the least recently used entry.
// Caller must hold the lock.
func (c *LRU[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
