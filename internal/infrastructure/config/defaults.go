package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRefreshEvery    = 2 * time.Second
	DefaultBOCPollEvery    = 30 * time.Second
	DefaultCMBPollEvery    = 20 * time.Second
	DefaultHTTPTimeout     = 5 * time.Second
	DefaultCacheTTL        = time.Minute
	DefaultMaxSamples      = 3600
)
