package cache

import (
	"container/list"
	"sync"
	"time"
)

// Policy selects when an entry's TTL clock restarts.
type Policy int

const (
	// ExpireAfterWrite evicts an entry a fixed interval after it was last
	// stored, regardless of reads.
	ExpireAfterWrite Policy = iota
	// ExpireAfterAccess restarts the TTL on every read, so frequently
	// touched entries persist and idle ones fall out.
	ExpireAfterAccess
)

type item[K comparable, V any] struct {
	key      K
	value    V
	expireAt time.Time
}

// Bounded is a TTL-bounded LRU cache. Get never performs I/O and never
// blocks beyond its mutex; a miss is reported, never filled. Put and
// Invalidate are immediately visible to subsequent Gets.
type Bounded[K comparable, V any] struct {
	mu      sync.Mutex
	max     int
	ttl     time.Duration
	policy  Policy
	entries map[K]*list.Element
	order   *list.List // front = most recently used
}

// NewBounded creates a cache holding at most max entries, each expiring
// ttl after write or access depending on policy. A non-positive max means
// unbounded; a non-positive ttl means entries never time out.
func NewBounded[K comparable, V any](max int, ttl time.Duration, policy Policy) *Bounded[K, V] {
	return &Bounded[K, V]{
		max:     max,
		ttl:     ttl,
		policy:  policy,
		entries: make(map[K]*list.Element),
		order:   list.New(),
	}
}

// Get returns the value for key, or absent. Expired entries are evicted
// lazily here; callers that cache time-sensitive values must still apply
// their own validity check, since TTL eviction is not instantaneous.
func (c *Bounded[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	it := el.Value.(*item[K, V])
	now := time.Now()
	if c.ttl > 0 && now.After(it.expireAt) {
		c.removeElement(el)
		return zero, false
	}
	if c.policy == ExpireAfterAccess && c.ttl > 0 {
		it.expireAt = now.Add(c.ttl)
	}
	c.order.MoveToFront(el)
	return it.value, true
}

// Put stores the value, replacing any existing entry and evicting the
// least recently used entry when the bound is exceeded.
func (c *Bounded[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expireAt := time.Time{}
	if c.ttl > 0 {
		expireAt = time.Now().Add(c.ttl)
	}
	if el, ok := c.entries[key]; ok {
		it := el.Value.(*item[K, V])
		it.value = value
		it.expireAt = expireAt
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&item[K, V]{key: key, value: value, expireAt: expireAt})
	c.entries[key] = el
	if c.max > 0 && c.order.Len() > c.max {
		if back := c.order.Back(); back != nil {
			c.removeElement(back)
		}
	}
}

// Invalidate drops the entry for key if present.
func (c *Bounded[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.removeElement(el)
	}
}

// EvictIf removes every entry for which keep returns false, plus any entry
// whose TTL has lapsed. Used by the background sweep.
func (c *Bounded[K, V]) EvictIf(keep func(V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	evicted := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		it := el.Value.(*item[K, V])
		if (c.ttl > 0 && now.After(it.expireAt)) || !keep(it.value) {
			c.removeElement(el)
			evicted++
		}
		el = next
	}
	return evicted
}

// Clear drops every entry.
func (c *Bounded[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*list.Element)
	c.order.Init()
}

// Len returns the current entry count, including not-yet-evicted expired
// entries.
func (c *Bounded[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Bounded[K, V]) removeElement(el *list.Element) {
	it := el.Value.(*item[K, V])
	delete(c.entries, it.key)
	c.order.Remove(el)
}
