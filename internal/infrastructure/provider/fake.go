package provider

import (
	"context"
	"fmt"
	"math"
	"time"

	"fxmon/internal/application"
	"fxmon/internal/domain"
)

// Ensure Fake implements application.QuoteSource.
var _ application.QuoteSource = (*Fake)(nil)

// Fake is a deterministic offline source: each pair drifts around a
// fixed base on a slow sine, so demo charts move without any network.
type Fake struct {
	Amplitude float64 // fraction of the base rate; defaults to 0.002
}

func NewFake() *Fake { return &Fake{} }

var fakeBase = map[domain.Pair]float64{
	domain.PairEURCNY: 7.85,
	domain.PairUSDCNY: 7.12,
	domain.PairHKDCNY: 0.91,
	domain.PairGBPCNY: 9.15,
	domain.PairJPYCNY: 0.048,
}

func (f *Fake) FetchLatest(_ context.Context, pair domain.Pair) (domain.Quote, error) {
	now := time.Now().UTC().Truncate(time.Second)
	rate, err := f.rateAt(pair, now)
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{Pair: pair, Rate: rate, Timestamp: now, Source: domain.SourceAPI}, nil
}

func (f *Fake) FetchRange(_ context.Context, pair domain.Pair, w domain.Window) ([]domain.Quote, error) {
	const points = 120
	end := time.Now().UTC().Truncate(time.Second)
	step := w.Duration() / points
	out := make([]domain.Quote, 0, points)
	for i := points - 1; i >= 0; i-- {
		ts := end.Add(-time.Duration(i) * step)
		rate, err := f.rateAt(pair, ts)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Quote{Pair: pair, Rate: rate, Timestamp: ts, Source: domain.SourceAPI})
	}
	return out, nil
}

func (f *Fake) rateAt(pair domain.Pair, t time.Time) (float64, error) {
	base, ok := fakeBase[pair]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedPair, pair)
	}
	amp := f.Amplitude
	if amp <= 0 {
		amp = 0.002
	}
	// Ten-minute cycle, phase-shifted per pair so the charts differ.
	theta := 2*math.Pi*float64(t.Unix())/600 + fakePhase(pair)
	return base * (1 + amp*math.Sin(theta)), nil
}

func fakePhase(pair domain.Pair) float64 {
	var s int
	for _, b := range []byte(pair) {
		s += int(b)
	}
	return float64(s%360) * math.Pi / 180
}
