package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fxmon/internal/application"
	"fxmon/internal/domain"
	"fxmon/internal/infrastructure/httpx"
)

const yahooChartPath = "/v8/finance/chart/"

// YahooProvider reads the Yahoo Finance v8 chart API. The same endpoint
// serves both the live tick (latest meta price) and the historical
// backfill (close series over a range).
type YahooProvider struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.QuoteSource = (*YahooProvider)(nil)

type yhChartResp struct {
	Chart struct {
		Result []yhResult `json:"result"`
		Error  *yhError   `json:"error"`
	} `json:"chart"`
}

type yhResult struct {
	Meta struct {
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		RegularMarketTime  int64   `json:"regularMarketTime"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type yhError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (p *YahooProvider) FetchLatest(ctx context.Context, pair domain.Pair) (domain.Quote, error) {
	if !domain.ValidatePair(string(pair)) {
		return domain.Quote{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedPair, pair)
	}
	u, err := p.chartURL(pair, "1d", "1m")
	if err != nil {
		return domain.Quote{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("yahoo: create request: %w", err)
	}

	var body yhChartResp
	if err := fallbackClient(p.Client).DoJSONOnce(req, &body); err != nil {
		return domain.Quote{}, fmt.Errorf("yahoo: fetch %s: %w: %w", pair, domain.ErrSourceUnavailable, err)
	}
	res, err := chartResult(&body, pair)
	if err != nil {
		return domain.Quote{}, err
	}

	if m := res.Meta; m.RegularMarketPrice > 0 {
		ts := time.Now().UTC()
		if m.RegularMarketTime > 0 {
			ts = time.Unix(m.RegularMarketTime, 0).UTC()
		}
		return domain.Quote{Pair: pair, Rate: m.RegularMarketPrice, Timestamp: ts, Source: domain.SourceAPI}, nil
	}

	// Meta can lag or zero out around market breaks; fall back to the
	// newest close in the series.
	series := closeSeries(res, pair)
	if len(series) == 0 {
		return domain.Quote{}, fmt.Errorf("yahoo: no usable price for %s: %w", pair, domain.ErrRateParse)
	}
	return series[len(series)-1], nil
}

func (p *YahooProvider) FetchRange(ctx context.Context, pair domain.Pair, w domain.Window) ([]domain.Quote, error) {
	if !domain.ValidatePair(string(pair)) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPair, pair)
	}
	rng, interval := w.ChartRange()
	u, err := p.chartURL(pair, rng, interval)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo: create request: %w", err)
	}

	// Backfill runs once per window change, so it is allowed the
	// retrying variant.
	var body yhChartResp
	if err := fallbackClient(p.Client).DoJSON(ctx, req, &body); err != nil {
		return nil, fmt.Errorf("yahoo: fetch range %s: %w: %w", pair, domain.ErrSourceUnavailable, err)
	}
	res, err := chartResult(&body, pair)
	if err != nil {
		return nil, err
	}
	return closeSeries(res, pair), nil
}

func (p *YahooProvider) chartURL(pair domain.Pair, rng, interval string) (string, error) {
	if p.BaseURL == "" {
		return "", errors.New("yahoo: missing base url")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return "", fmt.Errorf("yahoo: invalid base url: %w", err)
	}
	u.Path = yahooChartPath + pair.YahooSymbol()
	q := u.Query()
	q.Set("interval", interval)
	q.Set("range", rng)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func fallbackClient(c *httpx.Client) *httpx.Client {
	if c != nil {
		return c
	}
	return &httpx.Client{}
}

func chartResult(body *yhChartResp, pair domain.Pair) (*yhResult, error) {
	if e := body.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo: %s: %s: %w", e.Code, e.Description, domain.ErrSourceUnavailable)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: empty chart result for %s: %w", pair, domain.ErrRateParse)
	}
	return &body.Chart.Result[0], nil
}

// closeSeries converts the chart arrays into quotes, oldest first.
// Yahoo pads the close array with nulls, which decode to zero; those
// and any other non-positive entries are skipped.
func closeSeries(res *yhResult, pair domain.Pair) []domain.Quote {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	closes := res.Indicators.Quote[0].Close
	out := make([]domain.Quote, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) {
			break
		}
		if closes[i] <= 0 {
			continue
		}
		out = append(out, domain.Quote{
			Pair:      pair,
			Rate:      closes[i],
			Timestamp: time.Unix(ts, 0).UTC(),
			Source:    domain.SourceAPI,
		})
	}
	return out
}
