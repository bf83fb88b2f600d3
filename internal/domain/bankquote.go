package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BankQuote is one row of a bank's published FX board: the two sell
// rates a customer would pay, normalized to CNY per one unit of the
// foreign currency. Kept latest-only per (pair, source); bank rows
// never enter the chart history.
type BankQuote struct {
	Pair      Pair
	Source    Source
	SpotSell  decimal.Decimal
	CashSell  decimal.Decimal
	FetchedAt time.Time
}

var hundred = decimal.NewFromInt(100)

// SellPerUnit parses a bank board figure quoted per 100 units of
// foreign currency and normalizes it to a per-unit rate. Banks publish
// "713.45" meaning 7.1345 CNY per USD; exact decimal division avoids
// binary-float noise in the displayed rates.
func SellPerUnit(per100 string) (decimal.Decimal, error) {
	s := strings.TrimSpace(per100)
	if s == "" || s == "N/A" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty bank rate", ErrRateParse)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: bank rate %q", ErrRateParse, per100)
	}
	if d.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive bank rate %q", ErrRateParse, per100)
	}
	return d.Div(hundred), nil
}
