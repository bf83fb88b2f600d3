package application

import (
	"time"

	"fxmon/internal/domain"
)

// Snapshot is an immutable, point-in-time view of one pair's history,
// ready for rendering. The quote slice is owned by the snapshot and is
// never shared with a live buffer.
type Snapshot struct {
	Pair   domain.Pair
	Window domain.Window
	Quotes []domain.Quote
	Taken  time.Time
}

func NewSnapshot(pair domain.Pair, w domain.Window, quotes []domain.Quote, taken time.Time) Snapshot {
	return Snapshot{Pair: pair, Window: w, Quotes: quotes, Taken: taken}
}

// Latest returns the newest sample in the snapshot.
func (s Snapshot) Latest() (domain.Quote, bool) {
	if len(s.Quotes) == 0 {
		return domain.Quote{}, false
	}
	return s.Quotes[len(s.Quotes)-1], true
}

// TickChange is the percent change of the latest sample versus the one
// immediately before it. This is what the board colors by.
func (s Snapshot) TickChange() float64 {
	n := len(s.Quotes)
	if n < 2 {
		return 0
	}
	return domain.PercentChange(s.Quotes[n-2].Rate, s.Quotes[n-1].Rate)
}

// WindowChange is the percent change of the latest sample versus the
// first one visible in the window; shown in chart titles.
func (s Snapshot) WindowChange() float64 {
	n := len(s.Quotes)
	if n < 2 {
		return 0
	}
	return domain.PercentChange(s.Quotes[0].Rate, s.Quotes[n-1].Rate)
}

// Direction classifies the tick change for color coding.
func (s Snapshot) Direction() domain.Direction {
	return domain.DirectionOf(s.TickChange())
}

// MinMax returns the rate bounds of the snapshot for axis scaling.
func (s Snapshot) MinMax() (lo, hi float64, ok bool) {
	if len(s.Quotes) == 0 {
		return 0, 0, false
	}
	lo, hi = s.Quotes[0].Rate, s.Quotes[0].Rate
	for _, q := range s.Quotes[1:] {
		if q.Rate < lo {
			lo = q.Rate
		}
		if q.Rate > hi {
			hi = q.Rate
		}
	}
	return lo, hi, true
}
