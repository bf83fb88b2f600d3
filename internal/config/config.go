package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	Mode     string
	// Pairs and window
	Pairs         string
	DefaultWindow string
	// Quote source
	Source       string
	QuoteAPIBase string
	// Bank boards
	Banks  string
	BOCURL string
	CMBURL string
	// Polling
	RefreshEvery time.Duration
	BOCPollEvery time.Duration
	CMBPollEvery time.Duration
	HTTPTimeout  time.Duration
	MaxSamples   int
	// Backfill cache
	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Front ends
	Port  string
	Theme string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func durMS(s string, def int) time.Duration {
	return time.Duration(atoiDef(s, def)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:           getEnv("ENV", "local"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Mode:          getEnv("MODE", "desktop"),
		Pairs:         getEnv("PAIRS", "eur,usd,hkd,gbp,jpy"),
		DefaultWindow: getEnv("DEFAULT_WINDOW", "48h"),
		Source:        getEnv("SOURCE", "yahoo"),
		QuoteAPIBase:  getEnv("QUOTE_API_BASE", "https://query2.finance.yahoo.com"),
		Banks:         getEnv("BANKS", "boc,cmb"),
		BOCURL:        getEnv("BOC_URL", "https://www.boc.cn/sourcedb/whpj/"),
		CMBURL:        getEnv("CMB_URL", "https://fx.cmbchina.com/api/v1/fx/rate"),
		RefreshEvery:  durMS(getEnv("REFRESH_MS", "2000"), 2000),
		BOCPollEvery:  durMS(getEnv("BOC_POLL_MS", "30000"), 30000),
		CMBPollEvery:  durMS(getEnv("CMB_POLL_MS", "20000"), 20000),
		HTTPTimeout:   durMS(getEnv("HTTP_TIMEOUT_MS", "5000"), 5000),
		MaxSamples:    atoiDef(getEnv("MAX_SAMPLES", "3600"), 3600),
		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		CacheTTL:      durMS(getEnv("CACHE_TTL_MS", "60000"), 60000),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       atoiDef(getEnv("REDIS_DB", "0"), 0),
		Port:          getEnv("PORT", "8080"),
		Theme:         getEnv("THEME", "dark"),
	}
}
