package application

import (
	"sync"
	"time"

	"fxmon/internal/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func quoteAt(pair domain.Pair, rate float64, ts time.Time) domain.Quote {
	return domain.Quote{Pair: pair, Rate: rate, Timestamp: ts, Source: domain.SourceAPI}
}
