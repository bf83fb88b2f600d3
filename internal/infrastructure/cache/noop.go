package cache

import (
	"context"
	"time"

	"fxmon/internal/application"
	"fxmon/internal/domain"
)

var _ application.RateCache = Noop{}

// Noop disables caching; every Get is a miss. Useful when a fresh
// backfill on every window change is wanted.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]domain.Quote, error) { return nil, nil }

func (Noop) Set(context.Context, string, []domain.Quote, time.Duration) error { return nil }
