package service

import (
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ListCache keeps master lists keyed by includeInactive. A nil cache is valid
// and never hits.
//
// Every Invalidate bumps a generation; a list read before an invalidation is
// dropped by Put instead of being cached.
type ListCache[T any] struct {
	mu  sync.Mutex
	gen uint64
	lru *expirable.LRU[bool, []T]
}

// NewListCache returns nil when ttl is not positive.
func NewListCache[T any](ttl time.Duration) *ListCache[T] {
	if ttl <= 0 {
		return nil
	}
	return &ListCache[T]{lru: expirable.NewLRU[bool, []T](2, nil, ttl)}
}

// Get returns the cached list and the generation the caller must hand to Put.
func (c *ListCache[T]) Get(includeInactive bool) ([]T, uint64, bool) {
	if c == nil {
		return nil, 0, false
	}
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	rows, ok := c.lru.Get(includeInactive)
	if !ok {
		return nil, gen, false
	}
	return slices.Clone(rows), gen, true
}

// Put stores rows read at generation gen, unless an invalidation happened
// since.
func (c *ListCache[T]) Put(gen uint64, includeInactive bool, rows []T) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.lru.Add(includeInactive, slices.Clone(rows))
	return true
}

func (c *ListCache[T]) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Purge()
}
