package application

import (
	"context"
	"time"

	"fxmon/internal/domain"
)

// QuoteSource serves chartable rate samples for one upstream.
type QuoteSource interface {
	// FetchLatest returns the current reading for the pair.
	FetchLatest(ctx context.Context, pair domain.Pair) (domain.Quote, error)
	// FetchRange returns a historical series covering the window, oldest
	// first. Sources without history return an empty series, not an error.
	FetchRange(ctx context.Context, pair domain.Pair, w domain.Window) ([]domain.Quote, error)
}

// BankSource serves a bank's published sell rates for comparison next
// to the chart. One call covers all requested pairs; rows the board
// does not carry are simply absent from the result.
type BankSource interface {
	Source() domain.Source
	Fetch(ctx context.Context, pairs []domain.Pair) ([]domain.BankQuote, error)
}

// RateCache throttles historical backfill refetches. Get returns
// (nil, nil) on a miss; entries are opaque series snapshots.
type RateCache interface {
	Get(ctx context.Context, key string) ([]domain.Quote, error)
	Set(ctx context.Context, key string, quotes []domain.Quote, ttl time.Duration) error
}

// Renderer is one presentation target. Render delivers a fresh snapshot
// after a tick; Run blocks until the surface is closed or ctx ends.
type Renderer interface {
	Render(pair domain.Pair, snap Snapshot)
	Run(ctx context.Context) error
}

// Feed is the read-and-control surface renderers work against.
type Feed interface {
	Pairs() []domain.Pair
	Window() domain.Window
	// SetWindow rebounds retention and backfills the new window.
	SetWindow(ctx context.Context, w domain.Window) error
	// Snapshot returns the buffered view for the active window.
	Snapshot(pair domain.Pair) (Snapshot, error)
	// RangeSnapshot returns a view for an arbitrary window without
	// touching the shared buffers; wider windows are served through the
	// backfill cache.
	RangeSnapshot(ctx context.Context, pair domain.Pair, w domain.Window) (Snapshot, error)
	Banks(pair domain.Pair) []domain.BankQuote
	Health() []SourceStatus
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
