// Package cache provides the QuoteCache backends: an in-process map for
// single-instance deploys and a Redis variant when the host provides one.
package cache

import (
	"context"
	"sync"
	"time"

	"assetwatch/internal/application/port"
	"assetwatch/internal/domain/model"
)

type entry struct {
	quote     model.Quote
	expiresAt time.Time
}

// Memory is a mutex-guarded TTL map. Expired entries are treated as a
// miss on read and overwritten by the next Put; there is no sweeper.
type Memory struct {
	mu      sync.RWMutex
	entries map[model.PriceQuery]entry

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[model.PriceQuery]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, q model.PriceQuery) (model.Quote, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[q]
	if !ok || !m.now().Before(e.expiresAt) {
		return model.Quote{}, false
	}
	return e.quote, true
}

func (m *Memory) Put(_ context.Context, q model.PriceQuery, quote model.Quote, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[q] = entry{quote: quote, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}

// Len reports live entry count, expired included until overwritten.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var _ port.QuoteCache = (*Memory)(nil)
