// Package querycache is a key-addressed cache of fetched query results.
//
// An entry is fresh until it is explicitly invalidated; there is no time-based
// expiry. An invalidated entry keeps its last value but is stale, so the next
// Get refetches it. Concurrent Gets of the same key share one fetch, and
// fetches of different keys never interfere.
package querycache

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key identifies a query, e.g. NewKey("messages", conversationID, threadID)
type Key string

const keySep = "\x1f"

// NewKey joins the parts of a query identity into a Key
func NewKey(parts ...string) Key {
	return Key(strings.Join(parts, keySep))
}

// EntryState describes a key's cache state
type EntryState int

const (
	// Missing no value was ever fetched for the key
	Missing EntryState = iota
	// Fresh the value is served without a fetch
	Fresh
	// Stale the value was invalidated and is refetched on the next read
	Stale
)

func (s EntryState) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "missing"
	}
}

type entry[V any] struct {
	value   V
	version uint64
	stale   bool
}

// Cache holds the last fetched value per key
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[Key]*entry[V]
	versions map[Key]uint64
	group    singleflight.Group
}

// New creates an empty cache
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries:  make(map[Key]*entry[V]),
		versions: make(map[Key]uint64),
	}
}

// Get returns the fresh value for key, or calls fetch and stores its result.
// A fetch that fails leaves the previous entry untouched. If key is invalidated
// while a fetch is in flight, the fetched value is stored as stale and a Get
// issued after the invalidation starts its own fetch.
//
// The shared fetch does not inherit the caller's cancellation; a caller whose
// ctx ends returns ctx.Err() without failing the others waiting on the key.
func (c *Cache[V]) Get(ctx context.Context, key Key, fetch func(ctx context.Context) (V, error)) (V, error) {
	var zero V

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.stale {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	version := c.versions[key]
	c.mu.Unlock()

	flight := string(key) + "#" + strconv.FormatUint(version, 10)
	ch := c.group.DoChan(flight, func() (any, error) {
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		c.store(key, version, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// store records v fetched at version unless a newer fetch already landed
func (c *Cache[V]) store(key Key, version uint64, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.version > version {
		return
	}
	c.entries[key] = &entry[V]{
		value:   v,
		version: version,
		stale:   c.versions[key] != version,
	}
}

// Peek returns the last value for key without fetching, fresh or stale
func (c *Cache[V]) Peek(key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Set stores v as the fresh value for key
func (c *Cache[V]) Set(key Key, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry[V]{value: v, version: c.versions[key]}
}

// Invalidate marks key stale; the next Get refetches it
func (c *Cache[V]) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(key)
}

func (c *Cache[V]) invalidateLocked(key Key) {
	c.versions[key]++
	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
}

// Reset drops every entry
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.versions {
		c.versions[key]++
	}
	for key := range c.entries {
		c.versions[key]++
	}
	c.entries = make(map[Key]*entry[V])
}

// State reports the cache state of key
func (c *Cache[V]) State(key Key) EntryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	switch {
	case !ok:
		return Missing
	case e.stale:
		return Stale
	default:
		return Fresh
	}
}
