package cache

import (
	"context"
	"sync"
	"time"

	"fxmon/internal/application"
	"fxmon/internal/domain"
)

var _ application.RateCache = (*Memory)(nil)

type memoryEntry struct {
	quotes    []domain.Quote
	expiresAt time.Time
}

// Memory is an in-process TTL cache for backfill responses. A janitor
// goroutine sweeps expired entries; Stop ends it.
type Memory struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		stop:    make(chan struct{}),
	}
	go m.janitor()
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]domain.Quote, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	out := make([]domain.Quote, len(e.quotes))
	copy(out, e.quotes)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, quotes []domain.Quote, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cp := make([]domain.Quote, len(quotes))
	copy(cp, quotes)
	m.mu.Lock()
	m.entries[key] = memoryEntry{quotes: cp, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Stop ends the janitor. Safe to call more than once.
func (m *Memory) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Memory) janitor() {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	now := time.Now()
	m.mu.Lock()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
}
