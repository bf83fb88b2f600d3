package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"fxmon/internal/application"
	"fxmon/internal/domain"
	"fxmon/internal/infrastructure/cache"
)

// scriptedSource plays a fixed rate sequence per pair; negative entries
// fail that call. Timestamps advance one second per call so appended
// samples stay distinct.
type scriptedSource struct {
	mu         sync.Mutex
	base       time.Time
	seq        map[domain.Pair][]float64
	hist       map[domain.Pair][]domain.Quote
	histErr    error
	calls      map[domain.Pair]int
	rangeCalls int
}

func newScriptedSource(base time.Time) *scriptedSource {
	return &scriptedSource{
		base:  base,
		seq:   make(map[domain.Pair][]float64),
		hist:  make(map[domain.Pair][]domain.Quote),
		calls: make(map[domain.Pair]int),
	}
}

func (s *scriptedSource) FetchLatest(_ context.Context, pair domain.Pair) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls[pair]
	s.calls[pair]++
	seq := s.seq[pair]
	if len(seq) == 0 {
		return domain.Quote{}, fmt.Errorf("no script for %s: %w", pair, domain.ErrSourceUnavailable)
	}
	if i >= len(seq) {
		i = len(seq) - 1
	}
	rate := seq[i]
	if rate < 0 {
		return domain.Quote{}, fmt.Errorf("scripted outage: %w", domain.ErrSourceUnavailable)
	}
	return domain.Quote{
		Pair:      pair,
		Rate:      rate,
		Timestamp: s.base.Add(time.Duration(i) * time.Second),
		Source:    domain.SourceAPI,
	}, nil
}

func (s *scriptedSource) FetchRange(_ context.Context, pair domain.Pair, _ domain.Window) ([]domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rangeCalls++
	if s.histErr != nil {
		return nil, s.histErr
	}
	return s.hist[pair], nil
}

type fakeBank struct {
	mu    sync.Mutex
	src   domain.Source
	rows  []domain.BankQuote
	err   error
	calls int
}

func (b *fakeBank) Source() domain.Source { return b.src }

func (b *fakeBank) Fetch(context.Context, []domain.Pair) ([]domain.BankQuote, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return b.rows, nil
}

func (b *fakeBank) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type captureRenderer struct {
	mu  sync.Mutex
	got map[domain.Pair]application.Snapshot
}

func newCaptureRenderer() *captureRenderer {
	return &captureRenderer{got: make(map[domain.Pair]application.Snapshot)}
}

func (r *captureRenderer) Render(pair domain.Pair, snap application.Snapshot) {
	r.mu.Lock()
	r.got[pair] = snap
	r.mu.Unlock()
}

func (r *captureRenderer) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (r *captureRenderer) snapshot(pair domain.Pair) (application.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.got[pair]
	return s, ok
}

func trackedSources(banks []application.BankSource) []domain.Source {
	out := []domain.Source{domain.SourceAPI}
	for _, b := range banks {
		out = append(out, b.Source())
	}
	return out
}

func newTestMonitor(src application.QuoteSource, pairs []domain.Pair, banks ...application.BankSource) *Monitor {
	return &Monitor{
		Source:      src,
		BankSources: banks,
		History:     application.NewHistorySet(pairs, domain.Window24h, 100),
		Board:       application.NewBankBoard(),
		Tracker:     application.NewHealthTracker(trackedSources(banks)),
		Cache:       cache.Noop{},
	}
}

func Test_Monitor_FiveTickSequence(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-time.Minute)
	src := newScriptedSource(base)
	src.seq[domain.PairUSDCNY] = []float64{7.10, 7.12, 7.09, 7.11, 7.11}

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		m.tick(ctx)
	}

	snap, err := m.Snapshot(domain.PairUSDCNY)
	require.NoError(t, err)
	require.Len(t, snap.Quotes, 5)

	want := []float64{7.10, 7.12, 7.09, 7.11, 7.11}
	for i, q := range snap.Quotes {
		require.InDelta(t, want[i], q.Rate, 1e-9)
		if i > 0 {
			require.True(t, snap.Quotes[i-1].Timestamp.Before(q.Timestamp))
		}
	}
	require.InDelta(t, 0.0, snap.TickChange(), 1e-9)
	require.Equal(t, domain.Flat, snap.Direction())
}

func Test_Monitor_FailedTickSkipsPair(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-time.Minute)
	src := newScriptedSource(base)
	src.seq[domain.PairUSDCNY] = []float64{7.10, 7.12, -1, 7.11, 7.11}

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		m.tick(ctx)
	}

	snap, err := m.Snapshot(domain.PairUSDCNY)
	require.NoError(t, err)
	require.Len(t, snap.Quotes, 4)
	want := []float64{7.10, 7.12, 7.11, 7.11}
	for i, q := range snap.Quotes {
		require.InDelta(t, want[i], q.Rate, 1e-9)
	}
}

func Test_Monitor_PairIsolation(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-time.Minute)
	src := newScriptedSource(base)
	src.seq[domain.PairUSDCNY] = []float64{7.10, 7.12, 7.09}
	src.seq[domain.PairEURCNY] = []float64{-1, -1, -1}

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY, domain.PairEURCNY})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		m.tick(ctx)
	}

	usd, err := m.Snapshot(domain.PairUSDCNY)
	require.NoError(t, err)
	require.Len(t, usd.Quotes, 3)

	eur, err := m.Snapshot(domain.PairEURCNY)
	require.NoError(t, err)
	require.Empty(t, eur.Quotes)
}

func Test_Monitor_BankPollingThrottled(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-time.Minute)
	src := newScriptedSource(base)
	src.seq[domain.PairUSDCNY] = []float64{7.10}

	row := domain.BankQuote{
		Pair:      domain.PairUSDCNY,
		Source:    domain.SourceBOC,
		SpotSell:  decimal.RequireFromString("7.1345"),
		CashSell:  decimal.RequireFromString("7.1345"),
		FetchedAt: base,
	}
	bank := &fakeBank{src: domain.SourceBOC, rows: []domain.BankQuote{row}}

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY}, bank)
	m.BankEvery = map[domain.Source]time.Duration{domain.SourceBOC: time.Hour}

	ctx := context.Background()
	m.tick(ctx)
	m.tick(ctx)
	m.tick(ctx)

	require.Equal(t, 1, bank.callCount())

	got := m.Banks(domain.PairUSDCNY)
	require.Len(t, got, 1)
	require.True(t, got[0].SpotSell.Equal(decimal.RequireFromString("7.1345")))
}

func Test_Monitor_BankFailureIsolated(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-time.Minute)
	src := newScriptedSource(base)
	src.seq[domain.PairUSDCNY] = []float64{7.10, 7.12}

	bank := &fakeBank{src: domain.SourceCMB, err: fmt.Errorf("board down: %w", domain.ErrSourceUnavailable)}

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY}, bank)
	m.BankEvery = map[domain.Source]time.Duration{domain.SourceCMB: time.Nanosecond}

	ctx := context.Background()
	m.tick(ctx)
	m.tick(ctx)

	snap, err := m.Snapshot(domain.PairUSDCNY)
	require.NoError(t, err)
	require.Len(t, snap.Quotes, 2)
	require.Empty(t, m.Banks(domain.PairUSDCNY))

	var cmb application.SourceStatus
	for _, st := range m.Health() {
		if st.Source == domain.SourceCMB {
			cmb = st
		}
	}
	require.Equal(t, application.SourceStateFailed, cmb.State)
	require.NotZero(t, cmb.Failures)
}

func Test_Monitor_BackfillSeedsHistory(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-10 * time.Minute)
	src := newScriptedSource(base)
	src.hist[domain.PairUSDCNY] = []domain.Quote{
		{Pair: domain.PairUSDCNY, Rate: 7.08, Timestamp: base, Source: domain.SourceAPI},
		{Pair: domain.PairUSDCNY, Rate: 7.09, Timestamp: base.Add(time.Minute), Source: domain.SourceAPI},
	}

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY})
	m.backfillAll(context.Background())

	snap, err := m.Snapshot(domain.PairUSDCNY)
	require.NoError(t, err)
	require.Len(t, snap.Quotes, 2)
	require.InDelta(t, 7.08, snap.Quotes[0].Rate, 1e-9)
}

func Test_Monitor_BackfillUsesCache(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-10 * time.Minute)
	src := newScriptedSource(base)
	src.hist[domain.PairUSDCNY] = []domain.Quote{
		{Pair: domain.PairUSDCNY, Rate: 7.08, Timestamp: base, Source: domain.SourceAPI},
	}

	mem := cache.NewMemory()
	defer mem.Stop()

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY})
	m.Cache = mem
	m.CacheTTL = time.Minute

	ctx := context.Background()
	m.backfillAll(ctx)
	require.Equal(t, 1, src.rangeCalls)

	// Second backfill is served from the cache.
	m.backfillAll(ctx)
	require.Equal(t, 1, src.rangeCalls)
}

func Test_Monitor_SetWindowKeepsLiveSamples(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-time.Minute)
	src := newScriptedSource(base)
	src.seq[domain.PairUSDCNY] = []float64{7.10, 7.12}

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY})
	ctx := context.Background()
	m.tick(ctx)
	m.tick(ctx)

	require.NoError(t, m.SetWindow(ctx, domain.Window48h))
	require.Equal(t, domain.Window48h, m.Window())

	snap, err := m.Snapshot(domain.PairUSDCNY)
	require.NoError(t, err)
	require.Len(t, snap.Quotes, 2)

	require.Error(t, m.SetWindow(ctx, domain.Window("2d")))
}

func Test_Monitor_RangeSnapshotMergesLive(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	src := newScriptedSource(now.Add(-time.Minute))
	src.seq[domain.PairUSDCNY] = []float64{7.10, 7.12}
	src.hist[domain.PairUSDCNY] = []domain.Quote{
		{Pair: domain.PairUSDCNY, Rate: 7.05, Timestamp: now.Add(-30 * time.Minute), Source: domain.SourceAPI},
		{Pair: domain.PairUSDCNY, Rate: 7.07, Timestamp: now.Add(-20 * time.Minute), Source: domain.SourceAPI},
	}

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY})
	ctx := context.Background()
	m.tick(ctx)
	m.tick(ctx)

	snap, err := m.RangeSnapshot(ctx, domain.PairUSDCNY, domain.Window1h)
	require.NoError(t, err)
	require.Equal(t, domain.Window1h, snap.Window)
	require.Len(t, snap.Quotes, 4)
	for i := 1; i < len(snap.Quotes); i++ {
		require.True(t, snap.Quotes[i-1].Timestamp.Before(snap.Quotes[i].Timestamp))
	}

	// The active window is untouched.
	require.Equal(t, domain.Window24h, m.Window())
}

func Test_Monitor_RendererNotified(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-time.Minute)
	src := newScriptedSource(base)
	src.seq[domain.PairUSDCNY] = []float64{7.10, 7.12}

	r := newCaptureRenderer()
	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY})
	m.Renderer = r

	ctx := context.Background()
	m.tick(ctx)
	m.tick(ctx)

	snap, ok := r.snapshot(domain.PairUSDCNY)
	require.True(t, ok)
	last, ok := snap.Latest()
	require.True(t, ok)
	require.InDelta(t, 7.12, last.Rate, 1e-9)
}

func Test_Monitor_StartStopsOnCancel(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC().Add(-time.Minute)
	src := newScriptedSource(base)
	src.seq[domain.PairUSDCNY] = []float64{7.10}

	m := newTestMonitor(src, []domain.Pair{domain.PairUSDCNY})
	m.RefreshEvery = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on cancel")
	}

	snap, err := m.Snapshot(domain.PairUSDCNY)
	require.NoError(t, err)
	require.NotEmpty(t, snap.Quotes)
}
