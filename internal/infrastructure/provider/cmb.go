package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fxmon/internal/application"
	"fxmon/internal/domain"
	"fxmon/internal/infrastructure/httpx"
)

// CMBProvider reads the China Merchants Bank FX rate API. The endpoint
// answers 403 without browser-like Referer and Origin headers, and
// quotes per 100 units like the BOC board.
type CMBProvider struct {
	URL    string
	Client *httpx.Client
}

var _ application.BankSource = (*CMBProvider)(nil)

const (
	cmbReferer = "https://fx.cmbchina.com/hq/"
	cmbOrigin  = "https://fx.cmbchina.com"
	cmbOKCode  = "SUC0000"
)

type cmbRateResp struct {
	ReturnCode string    `json:"returnCode"`
	ErrorMsg   string    `json:"errorMsg"`
	Body       []cmbRate `json:"body"`
}

type cmbRate struct {
	CcyNbr string `json:"ccyNbr"` // currency display name, e.g. "港币"
	RthOfr string `json:"rthOfr"` // spot sell, per 100 units
	RtcOfr string `json:"rtcOfr"` // cash sell, per 100 units
}

func (p *CMBProvider) Source() domain.Source { return domain.SourceCMB }

func (p *CMBProvider) Fetch(ctx context.Context, wanted []domain.Pair) ([]domain.BankQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("cmb: create request: %w", err)
	}
	req.Header.Set("Referer", cmbReferer)
	req.Header.Set("Origin", cmbOrigin)

	var body cmbRateResp
	if err := fallbackClient(p.Client).DoJSONOnce(req, &body); err != nil {
		return nil, fmt.Errorf("cmb: fetch: %w: %w", domain.ErrSourceUnavailable, err)
	}
	if body.ReturnCode != "" && body.ReturnCode != cmbOKCode {
		return nil, fmt.Errorf("cmb: %s %s: %w", body.ReturnCode, body.ErrorMsg, domain.ErrSourceUnavailable)
	}

	now := time.Now().UTC()
	var out []domain.BankQuote
	for _, pr := range wanted {
		row, ok := matchCMBRow(body.Body, pr.BankName())
		if !ok {
			continue
		}
		spot, err := domain.SellPerUnit(row.RthOfr)
		if err != nil {
			continue
		}
		cash, err := domain.SellPerUnit(row.RtcOfr)
		if err != nil {
			continue
		}
		out = append(out, domain.BankQuote{
			Pair:      pr,
			Source:    domain.SourceCMB,
			SpotSell:  spot,
			CashSell:  cash,
			FetchedAt: now,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("cmb: no matching rates: %w", domain.ErrRateParse)
	}
	return out, nil
}

// The API labels rows with decorated names ("美元 USD"); match on the
// bare board name being contained in the label.
func matchCMBRow(rows []cmbRate, name string) (cmbRate, bool) {
	for _, r := range rows {
		if strings.Contains(r.CcyNbr, name) {
			return r, true
		}
	}
	return cmbRate{}, false
}
