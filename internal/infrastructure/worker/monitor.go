package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"fxmon/internal/application"
	"fxmon/internal/domain"
	"fxmon/internal/infrastructure/cache"
	infraconfig "fxmon/internal/infrastructure/config"
)

var _ application.Worker = (*Monitor)(nil)
var _ application.Feed = (*Monitor)(nil)

// Monitor is the refresh loop: one ticker drives live quote fetches for
// every configured pair, with slower per-bank polls riding the same
// tick. It also implements the Feed the renderers read from.
type Monitor struct {
	Source      application.QuoteSource
	BankSources []application.BankSource
	History     *application.HistorySet
	Board       *application.BankBoard
	Tracker     *application.HealthTracker
	Cache       application.RateCache
	Renderer    application.Renderer

	RefreshEvery time.Duration
	BankEvery    map[domain.Source]time.Duration
	CacheTTL     time.Duration
	MaxSamples   int
	Log          *zap.Logger

	mu       sync.Mutex
	lastBank map[domain.Source]time.Time
}

// Start backfills every pair, then ticks until the context ends.
// A failing fetch is logged and skipped; it never stops the loop.
func (m *Monitor) Start(ctx context.Context) {
	if m.RefreshEvery <= 0 {
		m.RefreshEvery = infraconfig.DefaultRefreshEvery
	}
	if m.CacheTTL <= 0 {
		m.CacheTTL = infraconfig.DefaultCacheTTL
	}
	if m.MaxSamples <= 0 {
		m.MaxSamples = infraconfig.DefaultMaxSamples
	}
	if m.Cache == nil {
		m.Cache = cache.Noop{}
	}
	log := m.logger()

	m.backfillAll(ctx)

	t := time.NewTicker(m.RefreshEvery)
	defer t.Stop()

	log.Info("monitor.started",
		zap.Duration("refresh_every", m.RefreshEvery),
		zap.Int("pairs", len(m.History.Pairs())),
		zap.Int("banks", len(m.BankSources)),
	)
	for {
		select {
		case <-ctx.Done():
			log.Info("monitor.stopped")
			return
		case <-t.C:
			m.tick(ctx)
		}
	}
}

// tick fans the live fetch out per pair and folds due bank polls into
// the same round. Each pair's buffer reflects only its own fetch.
func (m *Monitor) tick(ctx context.Context) {
	var wg sync.WaitGroup
	for _, pair := range m.History.Pairs() {
		wg.Add(1)
		go func(p domain.Pair) {
			defer wg.Done()
			defer m.recoverPanic("monitor.fetch_panic")
			m.updatePair(ctx, p)
		}(pair)
	}
	for _, b := range m.dueBanks() {
		wg.Add(1)
		go func(src application.BankSource) {
			defer wg.Done()
			defer m.recoverPanic("monitor.bank_panic")
			m.updateBank(ctx, src)
		}(b)
	}
	wg.Wait()
}

func (m *Monitor) updatePair(ctx context.Context, pair domain.Pair) {
	q, err := m.Source.FetchLatest(ctx, pair)
	if err != nil {
		m.Tracker.MarkFailed(domain.SourceAPI, err)
		m.logger().Warn("monitor.fetch_failed", zap.String("pair", string(pair)), zap.Error(err))
		return
	}
	m.Tracker.MarkOK(domain.SourceAPI)
	if err := m.History.Append(q); err != nil {
		m.logger().Warn("monitor.append_failed", zap.String("pair", string(pair)), zap.Error(err))
		return
	}
	m.render(pair)
}

func (m *Monitor) updateBank(ctx context.Context, b application.BankSource) {
	rows, err := b.Fetch(ctx, m.History.Pairs())
	if err != nil {
		m.Tracker.MarkFailed(b.Source(), err)
		m.logger().Warn("monitor.bank_failed", zap.String("source", string(b.Source())), zap.Error(err))
		return
	}
	m.Tracker.MarkOK(b.Source())
	for _, r := range rows {
		m.Board.Put(r)
	}
}

// dueBanks picks the bank sources whose poll interval has elapsed and
// stamps them, so one bank's slow fetch cannot double-trigger it.
func (m *Monitor) dueBanks() []application.BankSource {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastBank == nil {
		m.lastBank = make(map[domain.Source]time.Time, len(m.BankSources))
	}
	var due []application.BankSource
	for _, b := range m.BankSources {
		every := m.BankEvery[b.Source()]
		if every <= 0 {
			if b.Source() == domain.SourceCMB {
				every = infraconfig.DefaultCMBPollEvery
			} else {
				every = infraconfig.DefaultBOCPollEvery
			}
		}
		last, polled := m.lastBank[b.Source()]
		if polled && now.Sub(last) < every {
			continue
		}
		m.lastBank[b.Source()] = now
		due = append(due, b)
	}
	return due
}

func (m *Monitor) backfillAll(ctx context.Context) {
	for _, pair := range m.History.Pairs() {
		m.backfill(ctx, pair)
	}
}

func (m *Monitor) backfill(ctx context.Context, pair domain.Pair) {
	w := m.History.Window()
	quotes, err := m.fetchHistory(ctx, pair, w)
	if err != nil {
		m.Tracker.MarkFailed(domain.SourceAPI, err)
		m.logger().Warn("monitor.backfill_failed", zap.String("pair", string(pair)), zap.Error(err))
		return
	}
	m.Tracker.MarkOK(domain.SourceAPI)
	for _, q := range quotes {
		_ = m.History.Append(q)
	}
	m.logger().Info("monitor.backfilled",
		zap.String("pair", string(pair)),
		zap.String("window", string(w)),
		zap.Int("samples", len(quotes)),
	)
	m.render(pair)
}

// fetchHistory serves a window's series through the cache. Cache
// trouble is logged and bypassed; it never fails a backfill on its own.
func (m *Monitor) fetchHistory(ctx context.Context, pair domain.Pair, w domain.Window) ([]domain.Quote, error) {
	key := historyKey(pair, w)
	cached, err := m.cacheOrNoop().Get(ctx, key)
	if err != nil {
		m.logger().Warn("monitor.cache_get_failed", zap.String("key", key), zap.Error(err))
	}
	if len(cached) > 0 {
		return cached, nil
	}
	quotes, err := m.Source.FetchRange(ctx, pair, w)
	if err != nil {
		return nil, err
	}
	if len(quotes) > 0 {
		if err := m.cacheOrNoop().Set(ctx, key, quotes, m.cacheTTL()); err != nil {
			m.logger().Warn("monitor.cache_set_failed", zap.String("key", key), zap.Error(err))
		}
	}
	return quotes, nil
}

// Pairs implements application.Feed.
func (m *Monitor) Pairs() []domain.Pair { return m.History.Pairs() }

// Window implements application.Feed.
func (m *Monitor) Window() domain.Window { return m.History.Window() }

// SetWindow rebounds retention and re-backfills through the cache.
// Live samples survive the switch; only eviction bounds move. The
// backfill fetches inline, so UI threads should call this off-frame.
func (m *Monitor) SetWindow(ctx context.Context, w domain.Window) error {
	if w.Duration() == 0 {
		return fmt.Errorf("unknown window %q", w)
	}
	if w == m.History.Window() {
		return nil
	}
	m.History.SetWindow(w)
	m.logger().Info("monitor.window_changed", zap.String("window", string(w)))
	m.backfillAll(ctx)
	return nil
}

// Snapshot implements application.Feed for the active window.
func (m *Monitor) Snapshot(pair domain.Pair) (application.Snapshot, error) {
	return m.History.Snapshot(pair)
}

// RangeSnapshot serves an arbitrary window read-only: cached backfill
// merged with whatever live samples overlap it. The active window and
// the live buffers are left untouched.
func (m *Monitor) RangeSnapshot(ctx context.Context, pair domain.Pair, w domain.Window) (application.Snapshot, error) {
	if w == m.History.Window() {
		return m.History.Snapshot(pair)
	}
	if w.Duration() == 0 {
		return application.Snapshot{}, fmt.Errorf("unknown window %q", w)
	}
	live, err := m.History.Snapshot(pair)
	if err != nil {
		return application.Snapshot{}, err
	}
	quotes, err := m.fetchHistory(ctx, pair, w)
	if err != nil {
		return application.Snapshot{}, err
	}

	maxSamples := m.MaxSamples
	if maxSamples <= 0 {
		maxSamples = infraconfig.DefaultMaxSamples
	}
	tmp := application.NewHistoryBuffer(pair, w, maxSamples)
	for _, q := range quotes {
		tmp.Append(q)
	}
	for _, q := range live.Quotes {
		tmp.Append(q)
	}
	return application.NewSnapshot(pair, w, tmp.Snapshot(), time.Now().UTC()), nil
}

// Banks implements application.Feed.
func (m *Monitor) Banks(pair domain.Pair) []domain.BankQuote {
	return m.Board.ForPair(pair)
}

// Health implements application.Feed.
func (m *Monitor) Health() []application.SourceStatus {
	return m.Tracker.Statuses()
}

func (m *Monitor) render(pair domain.Pair) {
	if m.Renderer == nil {
		return
	}
	snap, err := m.History.Snapshot(pair)
	if err != nil {
		return
	}
	m.Renderer.Render(pair, snap)
}

func (m *Monitor) recoverPanic(event string) {
	if r := recover(); r != nil {
		m.logger().Warn(event, zap.Any("r", r))
	}
}

func (m *Monitor) logger() *zap.Logger {
	if m.Log != nil {
		return m.Log
	}
	return zap.NewNop()
}

func (m *Monitor) cacheOrNoop() application.RateCache {
	if m.Cache != nil {
		return m.Cache
	}
	return cache.Noop{}
}

func (m *Monitor) cacheTTL() time.Duration {
	if m.CacheTTL > 0 {
		return m.CacheTTL
	}
	return infraconfig.DefaultCacheTTL
}

func historyKey(pair domain.Pair, w domain.Window) string {
	return fmt.Sprintf("history:%s:%s", pair, w)
}
