package application

import (
	"sync"
	"time"

	"fxmon/internal/domain"
)

// SourceState summarizes how a source's recent fetches have gone.
type SourceState string

const (
	SourceStatePending SourceState = "pending"
	SourceStateOK      SourceState = "ok"
	SourceStateFailed  SourceState = "failed"
)

// SourceStatus is the last known condition of one upstream. Failures
// are expected operational noise (bank pages change, networks flap);
// the tracker exists so the front ends can say so instead of showing a
// silently frozen chart.
type SourceStatus struct {
	Source      domain.Source
	State       SourceState
	LastSuccess time.Time
	LastError   string
	Failures    int // consecutive failures since the last success
}

// HealthTracker records per-source fetch outcomes.
type HealthTracker struct {
	mu       sync.RWMutex
	statuses map[domain.Source]SourceStatus
	clock    Clock
}

func NewHealthTracker(sources []domain.Source, opts ...HealthOption) *HealthTracker {
	t := &HealthTracker{statuses: make(map[domain.Source]SourceStatus, len(sources))}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = realClock{}
	}
	for _, s := range sources {
		t.statuses[s] = SourceStatus{Source: s, State: SourceStatePending}
	}
	return t
}

type HealthOption func(*HealthTracker)

func WithHealthClock(c Clock) HealthOption {
	return func(t *HealthTracker) { t.clock = c }
}

func (t *HealthTracker) MarkOK(src domain.Source) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.statuses[src]
	if !ok {
		return
	}
	st.State = SourceStateOK
	st.LastSuccess = t.clock.Now()
	st.LastError = ""
	st.Failures = 0
	t.statuses[src] = st
}

func (t *HealthTracker) MarkFailed(src domain.Source, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.statuses[src]
	if !ok {
		return
	}
	st.State = SourceStateFailed
	if err != nil {
		st.LastError = err.Error()
	}
	st.Failures++
	t.statuses[src] = st
}

// Statuses returns all tracked sources in board order.
func (t *HealthTracker) Statuses() []SourceStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []SourceStatus
	for _, src := range []domain.Source{domain.SourceAPI, domain.SourceBOC, domain.SourceCMB} {
		if st, ok := t.statuses[src]; ok {
			out = append(out, st)
		}
	}
	return out
}
