package bootstrap

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fxmon/internal/application"
	"fxmon/internal/config"
	"fxmon/internal/domain"
	"fxmon/internal/infrastructure/cache"
	infraconfig "fxmon/internal/infrastructure/config"
	"fxmon/internal/infrastructure/httpx"
	"fxmon/internal/infrastructure/logx"
	"fxmon/internal/infrastructure/provider"
	"fxmon/internal/infrastructure/worker"
)

// Bank boards serve browser traffic; a bare Go user agent gets an
// empty page from some of them.
const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// BuildPairs parses PAIRS into the monitored pair list. A blank value
// means the full board, a value that parses to nothing is a config error.
func BuildPairs(cfg config.Config) ([]domain.Pair, error) {
	if strings.TrimSpace(cfg.Pairs) == "" {
		return domain.AllPairs(), nil
	}
	pairs, err := domain.ParsePairs(cfg.Pairs)
	if err != nil {
		return nil, fmt.Errorf("PAIRS: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("PAIRS is empty, set e.g. PAIRS=usd,eur")
	}
	return pairs, nil
}

// BuildWindow parses DEFAULT_WINDOW into the starting history window.
func BuildWindow(cfg config.Config) (domain.Window, error) {
	if strings.TrimSpace(cfg.DefaultWindow) == "" {
		return domain.DefaultWindow, nil
	}
	w, err := domain.ParseWindow(cfg.DefaultWindow)
	if err != nil {
		return "", fmt.Errorf("DEFAULT_WINDOW: %w", err)
	}
	return w, nil
}

// BuildHTTPClient builds the shared outbound client.
func BuildHTTPClient(cfg config.Config) *httpx.Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = infraconfig.DefaultHTTPTimeout
	}
	return &httpx.Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: browserUserAgent,
	}
}

// BuildQuoteSource builds the chartable-quote source based on SOURCE
// ("yahoo" or "fake").
func BuildQuoteSource(cfg config.Config, client *httpx.Client) (application.QuoteSource, error) {
	switch cfg.Source {
	case "", "yahoo":
		return &provider.YahooProvider{BaseURL: cfg.QuoteAPIBase, Client: client}, nil
	case "fake":
		return provider.NewFake(), nil
	default:
		return nil, fmt.Errorf("unsupported SOURCE=%q", cfg.Source)
	}
}

// BuildBankSources builds one bank provider per entry in BANKS.
func BuildBankSources(cfg config.Config, client *httpx.Client) ([]application.BankSource, error) {
	var out []application.BankSource
	for _, name := range strings.Split(cfg.Banks, ",") {
		switch strings.TrimSpace(name) {
		case "":
			continue
		case "boc":
			out = append(out, &provider.BOCProvider{URL: cfg.BOCURL, Client: client})
		case "cmb":
			out = append(out, &provider.CMBProvider{URL: cfg.CMBURL, Client: client})
		default:
			return nil, fmt.Errorf("unsupported bank %q in BANKS", name)
		}
	}
	return out, nil
}

// BuildCache builds the backfill cache based on CACHE_BACKEND
// ("memory", "redis" or "none").
func BuildCache(cfg config.Config) (application.RateCache, func(), error) {
	log := logx.L()

	switch cfg.CacheBackend {
	case "", "memory":
		mem := cache.NewMemory()
		return mem, mem.Stop, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		log.Info("bootstrap.redis_cache", zap.String("addr", cfg.RedisAddr))
		cleanup := func() {
			if err := rdb.Close(); err != nil {
				log.Warn("bootstrap.redis_close_failed", zap.Error(err))
			}
		}
		return cache.NewRedis(rdb), cleanup, nil
	case "none":
		return cache.Noop{}, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported CACHE_BACKEND=%q", cfg.CacheBackend)
	}
}

// BuildMonitor assembles the refresh loop with its sources, history
// and cache. The returned cleanup closes whatever the cache opened.
func BuildMonitor(cfg config.Config) (*worker.Monitor, func(), error) {
	pairs, err := BuildPairs(cfg)
	if err != nil {
		return nil, func() {}, err
	}
	win, err := BuildWindow(cfg)
	if err != nil {
		return nil, func() {}, err
	}

	client := BuildHTTPClient(cfg)
	source, err := BuildQuoteSource(cfg, client)
	if err != nil {
		return nil, func() {}, err
	}
	banks, err := BuildBankSources(cfg, client)
	if err != nil {
		return nil, func() {}, err
	}

	rateCache, cleanup, err := BuildCache(cfg)
	if err != nil {
		return nil, func() {}, err
	}

	tracked := []domain.Source{domain.SourceAPI}
	bankEvery := make(map[domain.Source]time.Duration, len(banks))
	for _, b := range banks {
		tracked = append(tracked, b.Source())
		switch b.Source() {
		case domain.SourceCMB:
			bankEvery[b.Source()] = cfg.CMBPollEvery
		default:
			bankEvery[b.Source()] = cfg.BOCPollEvery
		}
	}

	m := &worker.Monitor{
		Source:       source,
		BankSources:  banks,
		History:      application.NewHistorySet(pairs, win, cfg.MaxSamples),
		Board:        application.NewBankBoard(),
		Tracker:      application.NewHealthTracker(tracked),
		Cache:        rateCache,
		RefreshEvery: cfg.RefreshEvery,
		BankEvery:    bankEvery,
		CacheTTL:     cfg.CacheTTL,
		MaxSamples:   cfg.MaxSamples,
		Log:          logx.L(),
	}
	logx.L().Info("bootstrap.monitor",
		zap.Int("pairs", len(pairs)),
		zap.String("window", string(win)),
		zap.String("source", cfg.Source),
		zap.Int("banks", len(banks)))
	return m, cleanup, nil
}
