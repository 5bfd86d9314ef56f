package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/talentflow/pkg/metrics"
)

const memoryName = "memory"

type item struct {
	value   []byte
	expires time.Time
}

var _ Sweeper = (*Memory)(nil)

// Memory is an in-process Cache. Expired entries are dropped on read and by Sweep.
type Memory struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time
}

// MemoryOption applies a configuration option to Memory.
type MemoryOption func(*Memory)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an empty cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{items: make(map[string]item), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		metrics.RecordCacheMiss(memoryName)
		return nil, false, nil
	}
	if !it.expires.IsZero() && !m.now().Before(it.expires) {
		delete(m.items, key)
		metrics.RecordCacheMiss(memoryName)
		return nil, false, nil
	}
	metrics.RecordCacheHit(memoryName)
	return it.value, true, nil
}

// Set implements Cache. A non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	it := item{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = it
	m.mu.Unlock()
	return nil
}

// Sweep removes expired entries and returns how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for k, it := range m.items {
		if !it.expires.IsZero() && !now.Before(it.expires) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Len returns the number of entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close implements Cache.
func (m *Memory) Close() error { return nil }
