package cache

import (
	"context"
	"sync"
	"time"

	"github.com/JBK2116/CollaBoard/pkg/clock"
)

// MemoryStore is the default in-process flag store. Expiry is lazy: an
// expired entry lingers until the next Exists or Sweep touches it.
type MemoryStore struct {
	clk clock.Clock

	mu    sync.RWMutex
	flags map[string]time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{
		clk:   clk,
		flags: make(map[string]time.Time),
	}
}

// Set records the flag with the given TTL.
func (m *MemoryStore) Set(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = m.clk.Now().Add(ttl)
	return nil
}

// Exists reports whether the flag is present and unexpired, dropping it if
// the TTL has passed.
func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.flags[key]
	if !ok {
		return false, nil
	}
	if !m.clk.Now().Before(expiry) {
		delete(m.flags, key)
		return false, nil
	}
	return true, nil
}

// Delete removes the flag.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, key)
	return nil
}

// Sweep drops every expired entry and reports how many were removed. The
// session registry's purge loop calls this periodically so abandoned flags
// do not accumulate between lookups.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clk.Now()
	removed := 0
	for key, expiry := range m.flags {
		if !now.Before(expiry) {
			delete(m.flags, key)
			removed++
		}
	}
	return removed
}

// Close is a no-op for the in-process store.
func (m *MemoryStore) Close() error {
	return nil
}
