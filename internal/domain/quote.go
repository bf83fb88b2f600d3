package domain

import "time"

// Source identifies where a quote was obtained.
type Source string

const (
	SourceAPI Source = "api" // Yahoo Finance chart API
	SourceBOC Source = "boc" // Bank of China published rates page
	SourceCMB Source = "cmb" // China Merchants Bank FX API
)

// Quote is a single exchange-rate sample. Quotes are immutable once
// created; they are dropped on eviction or process exit, never persisted.
type Quote struct {
	Pair      Pair
	Rate      float64
	Timestamp time.Time
	Source    Source
}
