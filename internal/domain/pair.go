package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Pair is a currency quoted against CNY, e.g. "USD/CNY".
type Pair string

const (
	PairEURCNY Pair = "EUR/CNY"
	PairUSDCNY Pair = "USD/CNY"
	PairHKDCNY Pair = "HKD/CNY"
	PairGBPCNY Pair = "GBP/CNY"
	PairJPYCNY Pair = "JPY/CNY"
)

type pairInfo struct {
	name     string // English display name
	bankName string // currency name as printed on Chinese bank boards
	symbol   string // Yahoo Finance chart symbol
}

// Yahoo quotes USD/CNY under the bare "CNY=X" symbol; the other crosses
// use the <BASE>CNY=X form.
var pairs = map[Pair]pairInfo{
	PairEURCNY: {"Euro", "欧元", "EURCNY=X"},
	PairUSDCNY: {"US Dollar", "美元", "CNY=X"},
	PairHKDCNY: {"Hong Kong Dollar", "港币", "HKDCNY=X"},
	PairGBPCNY: {"British Pound", "英镑", "GBPCNY=X"},
	PairJPYCNY: {"Japanese Yen", "日元", "JPYCNY=X"},
}

// AllPairs returns the supported pairs in display order.
func AllPairs() []Pair {
	return []Pair{PairEURCNY, PairUSDCNY, PairHKDCNY, PairGBPCNY, PairJPYCNY}
}

var pairRe = regexp.MustCompile(`^[A-Z]{3}/CNY$`)

func ValidatePair(p string) bool {
	if !pairRe.MatchString(p) {
		return false
	}
	_, ok := pairs[Pair(p)]
	return ok
}

// ParsePair normalizes and validates a pair string. A bare base currency
// ("usd") and the full form ("USD/CNY") are both accepted.
func ParsePair(s string) (Pair, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if len(v) == 3 {
		v += "/CNY"
	}
	if !ValidatePair(v) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPair, s)
	}
	return Pair(v), nil
}

// ParsePairs parses a comma-separated pair list, preserving order and
// dropping duplicates.
func ParsePairs(s string) ([]Pair, error) {
	var out []Pair
	seen := map[Pair]bool{}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := ParsePair(part)
		if err != nil {
			return nil, err
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

// Base returns the foreign currency code, e.g. "USD".
func (p Pair) Base() string {
	if len(p) < 3 {
		return string(p)
	}
	return string(p[:3])
}

// Name returns the English display name of the base currency.
func (p Pair) Name() string { return pairs[p].name }

// BankName returns the currency name used to match rows scraped from
// Chinese bank rate boards.
func (p Pair) BankName() string { return pairs[p].bankName }

// YahooSymbol returns the Yahoo Finance chart symbol for the pair.
func (p Pair) YahooSymbol() string { return pairs[p].symbol }
