package application

import (
	"fmt"
	"sort"
	"sync"

	"fxmon/internal/domain"
)

// HistoryBuffer holds the time-ordered samples of a single pair.
// Single writer (the refresh loop), many readers via Snapshot; readers
// always get a copy so no lock is held across rendering.
type HistoryBuffer struct {
	mu         sync.RWMutex
	pair       domain.Pair
	window     domain.Window
	maxSamples int
	samples    []domain.Quote
	clock      Clock
}

// HistoryOption configures a buffer or a set.
type HistoryOption func(*HistoryBuffer)

// WithHistoryClock injects a test clock.
func WithHistoryClock(c Clock) HistoryOption {
	return func(b *HistoryBuffer) { b.clock = c }
}

func NewHistoryBuffer(pair domain.Pair, w domain.Window, maxSamples int, opts ...HistoryOption) *HistoryBuffer {
	b := &HistoryBuffer{pair: pair, window: w, maxSamples: maxSamples}
	for _, opt := range opts {
		opt(b)
	}
	if b.clock == nil {
		b.clock = realClock{}
	}
	return b
}

// Append inserts a sample keeping timestamps non-decreasing. An equal
// timestamp replaces the existing sample rather than duplicating it.
// Samples older than the window, and any beyond the cap, are evicted.
func (b *HistoryBuffer) Append(q domain.Quote) {
	if q.Pair != b.pair {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	i := sort.Search(len(b.samples), func(i int) bool {
		return !b.samples[i].Timestamp.Before(q.Timestamp)
	})
	switch {
	case i < len(b.samples) && b.samples[i].Timestamp.Equal(q.Timestamp):
		b.samples[i] = q
	case i == len(b.samples):
		b.samples = append(b.samples, q)
	default:
		b.samples = append(b.samples, domain.Quote{})
		copy(b.samples[i+1:], b.samples[i:])
		b.samples[i] = q
	}
	b.evictLocked()
}

func (b *HistoryBuffer) evictLocked() {
	cutoff := b.clock.Now().Add(-b.window.Duration())
	i := sort.Search(len(b.samples), func(i int) bool {
		return !b.samples[i].Timestamp.Before(cutoff)
	})
	if i > 0 {
		b.samples = append(b.samples[:0], b.samples[i:]...)
	}
	if b.maxSamples > 0 {
		if n := len(b.samples) - b.maxSamples; n > 0 {
			b.samples = append(b.samples[:0], b.samples[n:]...)
		}
	}
}

// SetWindow rebounds retention; narrowing evicts immediately.
func (b *HistoryBuffer) SetWindow(w domain.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.window = w
	b.evictLocked()
}

// Snapshot returns a copy of the samples still inside the window,
// oldest first. The copy is detached from concurrent appends.
func (b *HistoryBuffer) Snapshot() []domain.Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cutoff := b.clock.Now().Add(-b.window.Duration())
	i := sort.Search(len(b.samples), func(i int) bool {
		return !b.samples[i].Timestamp.Before(cutoff)
	})
	out := make([]domain.Quote, len(b.samples)-i)
	copy(out, b.samples[i:])
	return out
}

// Last returns the newest sample regardless of window bounds.
func (b *HistoryBuffer) Last() (domain.Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.samples) == 0 {
		return domain.Quote{}, false
	}
	return b.samples[len(b.samples)-1], true
}

func (b *HistoryBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// HistorySet owns one buffer per configured pair. The pair set is fixed
// at construction; only the window changes at runtime.
type HistorySet struct {
	mu      sync.RWMutex
	pairs   []domain.Pair
	window  domain.Window
	buffers map[domain.Pair]*HistoryBuffer
	clock   Clock
}

func NewHistorySet(pairs []domain.Pair, w domain.Window, maxSamples int, opts ...HistoryOption) *HistorySet {
	s := &HistorySet{
		pairs:   append([]domain.Pair(nil), pairs...),
		window:  w,
		buffers: make(map[domain.Pair]*HistoryBuffer, len(pairs)),
	}
	for _, p := range pairs {
		s.buffers[p] = NewHistoryBuffer(p, w, maxSamples, opts...)
	}
	var probe HistoryBuffer
	for _, opt := range opts {
		opt(&probe)
	}
	s.clock = probe.clock
	if s.clock == nil {
		s.clock = realClock{}
	}
	return s
}

// Pairs returns the configured pairs in display order.
func (s *HistorySet) Pairs() []domain.Pair {
	return append([]domain.Pair(nil), s.pairs...)
}

func (s *HistorySet) Window() domain.Window {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// SetWindow rebounds every buffer.
func (s *HistorySet) SetWindow(w domain.Window) {
	s.mu.Lock()
	s.window = w
	s.mu.Unlock()
	for _, b := range s.buffers {
		b.SetWindow(w)
	}
}

// Append routes a sample to its pair's buffer. A failing append for one
// pair can never touch another pair's buffer.
func (s *HistorySet) Append(q domain.Quote) error {
	b, ok := s.buffers[q.Pair]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedPair, q.Pair)
	}
	b.Append(q)
	return nil
}

// Snapshot builds the renderable view of one pair for the active window.
func (s *HistorySet) Snapshot(pair domain.Pair) (Snapshot, error) {
	b, ok := s.buffers[pair]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedPair, pair)
	}
	return NewSnapshot(pair, s.Window(), b.Snapshot(), s.clock.Now()), nil
}
