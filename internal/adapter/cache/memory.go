package cache

import (
	"context"
	"sync"
	"time"

	"canasta/internal/domain/model"
)

// Memory is an in-process quotation cache. Each key holds an immutable
// entry that Put swaps atomically; readers never block each other and
// distinct keys share no lock. Expiry is checked at read time.
type Memory struct {
	entries    sync.Map // key -> *memoryEntry
	now        func() time.Time
	defaultTTL time.Duration
}

type memoryEntry struct {
	quotes    []model.Quotation
	expiresAt time.Time
}

type MemoryOption func(*Memory)

func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(defaultTTL time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{now: time.Now, defaultTTL: defaultTTL}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]model.Quotation, bool, error) {
	key = model.NormalizeKey(key)
	v, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	e := v.(*memoryEntry)
	if !m.now().Before(e.expiresAt) {
		m.entries.CompareAndDelete(key, e)
		return nil, false, nil
	}
	return append([]model.Quotation(nil), e.quotes...), true, nil
}

func (m *Memory) Put(_ context.Context, key string, quotes []model.Quotation, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	if ttl <= 0 {
		return nil
	}
	m.entries.Store(model.NormalizeKey(key), &memoryEntry{
		quotes:    append([]model.Quotation(nil), quotes...),
		expiresAt: m.now().Add(ttl),
	})
	return nil
}

// Purge removes expired entries and returns how many were dropped.
func (m *Memory) Purge() int {
	now := m.now()
	removed := 0
	m.entries.Range(func(key, value any) bool {
		if e := value.(*memoryEntry); !now.Before(e.expiresAt) {
			if m.entries.CompareAndDelete(key, e) {
				removed++
			}
		}
		return true
	})
	return removed
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
