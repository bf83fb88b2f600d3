package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fxmon/internal/domain"
)

var histBase = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

func Test_HistoryBuffer_AppendKeepsOrder(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase.Add(time.Hour))
	b := NewHistoryBuffer(domain.PairEURCNY, domain.Window48h, 100, WithHistoryClock(clk))

	// Deliberately out of order.
	b.Append(quoteAt(domain.PairEURCNY, 7.82, histBase.Add(2*time.Minute)))
	b.Append(quoteAt(domain.PairEURCNY, 7.80, histBase))
	b.Append(quoteAt(domain.PairEURCNY, 7.85, histBase.Add(3*time.Minute)))
	b.Append(quoteAt(domain.PairEURCNY, 7.81, histBase.Add(time.Minute)))

	got := b.Snapshot()
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		require.True(t, got[i-1].Timestamp.Before(got[i].Timestamp))
	}
	require.InDelta(t, 7.80, got[0].Rate, 1e-9)
	require.InDelta(t, 7.85, got[3].Rate, 1e-9)
}

func Test_HistoryBuffer_ReplaceOnEqualTimestamp(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase.Add(time.Hour))
	b := NewHistoryBuffer(domain.PairUSDCNY, domain.Window48h, 100, WithHistoryClock(clk))

	ts := histBase.Add(time.Minute)
	b.Append(quoteAt(domain.PairUSDCNY, 7.10, ts))
	b.Append(quoteAt(domain.PairUSDCNY, 7.12, ts))

	got := b.Snapshot()
	require.Len(t, got, 1)
	require.InDelta(t, 7.12, got[0].Rate, 1e-9)
}

func Test_HistoryBuffer_EvictsOutsideWindow(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase)
	b := NewHistoryBuffer(domain.PairGBPCNY, domain.Window1h, 100, WithHistoryClock(clk))

	b.Append(quoteAt(domain.PairGBPCNY, 9.10, histBase))
	b.Append(quoteAt(domain.PairGBPCNY, 9.11, histBase.Add(30*time.Minute)))
	require.Equal(t, 2, b.Len())

	// 70 minutes in, the first sample is older than one hour.
	clk.Advance(70 * time.Minute)
	b.Append(quoteAt(domain.PairGBPCNY, 9.12, histBase.Add(70*time.Minute)))

	got := b.Snapshot()
	require.Len(t, got, 2)
	require.InDelta(t, 9.11, got[0].Rate, 1e-9)
	require.InDelta(t, 9.12, got[1].Rate, 1e-9)
}

func Test_HistoryBuffer_SnapshotFiltersStale(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase)
	b := NewHistoryBuffer(domain.PairJPYCNY, domain.Window1h, 100, WithHistoryClock(clk))

	b.Append(quoteAt(domain.PairJPYCNY, 0.048, histBase))
	b.Append(quoteAt(domain.PairJPYCNY, 0.049, histBase.Add(50*time.Minute)))

	// No appends after the clock moves, so eviction has not run; the
	// snapshot still must not expose samples older than the window.
	clk.Advance(80 * time.Minute)

	got := b.Snapshot()
	require.Len(t, got, 1)
	require.InDelta(t, 0.049, got[0].Rate, 1e-9)
}

func Test_HistoryBuffer_CapDropsOldest(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase.Add(24 * time.Hour))
	b := NewHistoryBuffer(domain.PairEURCNY, domain.Window48h, 3, WithHistoryClock(clk))

	for i := 0; i < 5; i++ {
		b.Append(quoteAt(domain.PairEURCNY, 7.80+float64(i)*0.01, histBase.Add(time.Duration(i)*time.Minute)))
	}

	got := b.Snapshot()
	require.Len(t, got, 3)
	require.InDelta(t, 7.82, got[0].Rate, 1e-9)
	require.InDelta(t, 7.84, got[2].Rate, 1e-9)
}

func Test_HistoryBuffer_SnapshotIsDetached(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase.Add(time.Hour))
	b := NewHistoryBuffer(domain.PairEURCNY, domain.Window48h, 100, WithHistoryClock(clk))
	b.Append(quoteAt(domain.PairEURCNY, 7.80, histBase))

	got := b.Snapshot()
	got[0].Rate = 0

	again := b.Snapshot()
	require.InDelta(t, 7.80, again[0].Rate, 1e-9)
}

func Test_HistoryBuffer_SetWindowRebounds(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase.Add(90 * time.Minute))
	b := NewHistoryBuffer(domain.PairEURCNY, domain.Window48h, 100, WithHistoryClock(clk))

	b.Append(quoteAt(domain.PairEURCNY, 7.80, histBase))
	b.Append(quoteAt(domain.PairEURCNY, 7.81, histBase.Add(80*time.Minute)))
	require.Equal(t, 2, b.Len())

	b.SetWindow(domain.Window1h)
	got := b.Snapshot()
	require.Len(t, got, 1)
	require.InDelta(t, 7.81, got[0].Rate, 1e-9)
}

func Test_HistoryBuffer_Last(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase.Add(time.Hour))
	b := NewHistoryBuffer(domain.PairEURCNY, domain.Window48h, 100, WithHistoryClock(clk))

	_, ok := b.Last()
	require.False(t, ok)

	b.Append(quoteAt(domain.PairEURCNY, 7.80, histBase))
	b.Append(quoteAt(domain.PairEURCNY, 7.83, histBase.Add(time.Minute)))

	last, ok := b.Last()
	require.True(t, ok)
	require.InDelta(t, 7.83, last.Rate, 1e-9)
}

func Test_HistorySet_RoutesByPair(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase.Add(time.Hour))
	pairs := []domain.Pair{domain.PairEURCNY, domain.PairUSDCNY}
	set := NewHistorySet(pairs, domain.Window48h, 100, WithHistoryClock(clk))

	require.NoError(t, set.Append(quoteAt(domain.PairEURCNY, 7.80, histBase)))
	require.NoError(t, set.Append(quoteAt(domain.PairUSDCNY, 7.10, histBase)))

	err := set.Append(quoteAt(domain.PairGBPCNY, 9.10, histBase))
	require.ErrorIs(t, err, domain.ErrUnsupportedPair)

	snap, err := set.Snapshot(domain.PairEURCNY)
	require.NoError(t, err)
	require.Len(t, snap.Quotes, 1)
	require.Equal(t, domain.PairEURCNY, snap.Pair)
	require.Equal(t, domain.Window48h, snap.Window)

	_, err = set.Snapshot(domain.PairJPYCNY)
	require.ErrorIs(t, err, domain.ErrUnsupportedPair)
}

func Test_HistorySet_SetWindowAppliesToAll(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(histBase.Add(2 * time.Hour))
	pairs := []domain.Pair{domain.PairEURCNY, domain.PairUSDCNY}
	set := NewHistorySet(pairs, domain.Window48h, 100, WithHistoryClock(clk))

	require.NoError(t, set.Append(quoteAt(domain.PairEURCNY, 7.80, histBase)))
	require.NoError(t, set.Append(quoteAt(domain.PairEURCNY, 7.81, histBase.Add(110*time.Minute))))
	require.NoError(t, set.Append(quoteAt(domain.PairUSDCNY, 7.10, histBase)))

	set.SetWindow(domain.Window1h)
	require.Equal(t, domain.Window1h, set.Window())

	eur, err := set.Snapshot(domain.PairEURCNY)
	require.NoError(t, err)
	require.Len(t, eur.Quotes, 1)

	usd, err := set.Snapshot(domain.PairUSDCNY)
	require.NoError(t, err)
	require.Empty(t, usd.Quotes)
}

func Test_HistorySet_PairsCopy(t *testing.T) {
	t.Parallel()

	set := NewHistorySet([]domain.Pair{domain.PairEURCNY}, domain.Window48h, 100)
	got := set.Pairs()
	got[0] = domain.PairJPYCNY
	require.Equal(t, []domain.Pair{domain.PairEURCNY}, set.Pairs())
}

func Test_Snapshot_Changes(t *testing.T) {
	t.Parallel()

	quotes := []domain.Quote{
		quoteAt(domain.PairUSDCNY, 7.10, histBase),
		quoteAt(domain.PairUSDCNY, 7.12, histBase.Add(time.Minute)),
		quoteAt(domain.PairUSDCNY, 7.09, histBase.Add(2*time.Minute)),
		quoteAt(domain.PairUSDCNY, 7.11, histBase.Add(3*time.Minute)),
		quoteAt(domain.PairUSDCNY, 7.11, histBase.Add(4*time.Minute)),
	}
	snap := NewSnapshot(domain.PairUSDCNY, domain.Window48h, quotes, histBase.Add(4*time.Minute))

	last, ok := snap.Latest()
	require.True(t, ok)
	require.InDelta(t, 7.11, last.Rate, 1e-9)

	require.InDelta(t, 0.0, snap.TickChange(), 1e-9)
	require.Equal(t, domain.Flat, snap.Direction())
	require.InDelta(t, 100*(7.11-7.10)/7.10, snap.WindowChange(), 1e-9)

	lo, hi, ok := snap.MinMax()
	require.True(t, ok)
	require.InDelta(t, 7.09, lo, 1e-9)
	require.InDelta(t, 7.12, hi, 1e-9)
}

func Test_Snapshot_Empty(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot(domain.PairUSDCNY, domain.Window48h, nil, histBase)

	_, ok := snap.Latest()
	require.False(t, ok)
	require.Zero(t, snap.TickChange())
	require.Zero(t, snap.WindowChange())
	require.Equal(t, domain.Flat, snap.Direction())
	_, _, ok = snap.MinMax()
	require.False(t, ok)
}

func Test_Snapshot_SingleQuote(t *testing.T) {
	t.Parallel()

	quotes := []domain.Quote{quoteAt(domain.PairUSDCNY, 7.10, histBase)}
	snap := NewSnapshot(domain.PairUSDCNY, domain.Window48h, quotes, histBase)

	require.Zero(t, snap.TickChange())
	require.Zero(t, snap.WindowChange())
	require.Equal(t, domain.Flat, snap.Direction())
}
