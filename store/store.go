// Package store implements the client-side data stores: each store caches
// exactly one backend collection and is the single source of truth for
// reads. Every mutation is pessimistic — the cached list changes only after
// the network call succeeds; there is no optimistic merge and no rollback.
//
// Stores do not serialize concurrent mutations against each other. Two
// in-flight updates to the same entity race, and whichever response resolves
// last wins in the cache.
package store

import (
	"errors"
	"sync"
)

// ErrNotSignedIn is returned by store mutations attempted without an
// authenticated session. Fetch, by contrast, silently no-ops.
var ErrNotSignedIn = errors.New("not signed in")

// Session is the slice of the auth session stores depend on.
type Session interface {
	SignedIn() bool
}

// Entity is anything cached by a Collection, keyed by its server-assigned id.
type Entity interface {
	EntityID() string
}

// Collection is the shared cache underlying every store: a list of entities
// uniquely keyed by id, plus the last error message recorded by a failed
// operation. Reads return copies; the internal slice never escapes.
type Collection[T Entity] struct {
	mu      sync.RWMutex
	items   []T
	lastErr string
}

// Items returns a copy of the cached list in its current order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of cached entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the cached entity with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Err returns the message recorded by the last failed operation, empty when
// the last operation succeeded.
func (c *Collection[T]) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// replace swaps the whole list for the server response.
func (c *Collection[T]) replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.lastErr = ""
}

// append adds the server-returned entity to the end, leaving prior entries
// untouched and in order.
func (c *Collection[T]) append(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	c.lastErr = ""
}

// patch replaces the matching-id entry in place.
func (c *Collection[T]) patch(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].EntityID() == item.EntityID() {
			c.items[i] = item
			break
		}
	}
	c.lastErr = ""
}

// remove filters the entry with the given id out of the list.
func (c *Collection[T]) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, item := range c.items {
		if item.EntityID() != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.lastErr = ""
}

// fail records the error locally and hands it back to the caller, so the
// same failure is visible both in store state and at the call site.
func (c *Collection[T]) fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err.Error()
	return err
}
