package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"fxmon/internal/application"
	"fxmon/internal/domain"
	"fxmon/internal/infrastructure/httpx"
)

// BOCProvider scrapes the Bank of China published-rate page: one big
// table, one row per currency, quoted per 100 units of the foreign
// currency. The page publishes no history, so only the latest board is
// available.
type BOCProvider struct {
	URL    string
	Client *httpx.Client
}

var _ application.BankSource = (*BOCProvider)(nil)

// Board column layout: name, spot buy, cash buy, spot sell, cash sell.
const (
	bocColName     = 0
	bocColSpotSell = 3
	bocColCashSell = 4
	bocMinCols     = 5
)

func (p *BOCProvider) Source() domain.Source { return domain.SourceBOC }

func (p *BOCProvider) Fetch(ctx context.Context, wanted []domain.Pair) ([]domain.BankQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("boc: create request: %w", err)
	}

	body, err := fallbackClient(p.Client).DoBody(req)
	if err != nil {
		return nil, fmt.Errorf("boc: fetch: %w: %w", domain.ErrSourceUnavailable, err)
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("boc: parse page: %w: %w", domain.ErrSourceUnavailable, err)
	}

	byName := make(map[string]domain.Pair, len(wanted))
	for _, pr := range wanted {
		byName[pr.BankName()] = pr
	}

	now := time.Now().UTC()
	var out []domain.BankQuote
	for _, cells := range tableRows(doc) {
		if len(cells) < bocMinCols {
			continue
		}
		pair, ok := byName[cells[bocColName]]
		if !ok {
			continue
		}
		spot, err := domain.SellPerUnit(cells[bocColSpotSell])
		if err != nil {
			continue
		}
		cash, err := domain.SellPerUnit(cells[bocColCashSell])
		if err != nil {
			continue
		}
		out = append(out, domain.BankQuote{
			Pair:      pair,
			Source:    domain.SourceBOC,
			SpotSell:  spot,
			CashSell:  cash,
			FetchedAt: now,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("boc: no matching board rows: %w", domain.ErrRateParse)
	}
	return out, nil
}

// tableRows flattens every <tr> in the document into its <td> texts.
func tableRows(doc *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for td := n.FirstChild; td != nil; td = td.NextSibling {
				if td.Type == html.ElementNode && td.Data == "td" {
					cells = append(cells, strings.TrimSpace(nodeText(td)))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
