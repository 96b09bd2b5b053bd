// Package cache memoizes sprint balance metrics for a bounded time.
package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/sprintsense/balance-service/internal/domain"
)

// BalanceCache is a size-bounded LRU of metrics keyed by sprint id. Entries
// are never served once older than the TTL.
type BalanceCache struct {
	lru *expirable.LRU[uuid.UUID, *domain.BalanceMetrics]
}

// NewBalanceCache creates a cache holding at most size sprints for ttl each.
func NewBalanceCache(size int, ttl time.Duration) *BalanceCache {
	return &BalanceCache{
		lru: expirable.NewLRU[uuid.UUID, *domain.BalanceMetrics](size, nil, ttl),
	}
}

// Get returns the cached metrics for sprintID if present and fresh.
func (c *BalanceCache) Get(sprintID uuid.UUID) (*domain.BalanceMetrics, bool) {
	return c.lru.Get(sprintID)
}

// Set stores metrics for sprintID, replacing any previous entry.
func (c *BalanceCache) Set(sprintID uuid.UUID, metrics *domain.BalanceMetrics) {
	c.lru.Add(sprintID, metrics)
}

// Invalidate drops the entry for sprintID and reports whether one existed.
func (c *BalanceCache) Invalidate(sprintID uuid.UUID) bool {
	return c.lru.Remove(sprintID)
}

// Len returns the number of cached sprints, including expired entries not
// yet evicted.
func (c *BalanceCache) Len() int {
	return c.lru.Len()
}
