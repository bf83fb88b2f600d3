package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"fxmon/internal/application"
	"fxmon/internal/domain"
)

var cliBase = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

type stubQuoteSource struct {
	ranges   map[domain.Pair][]domain.Quote
	latest   map[domain.Pair]domain.Quote
	rangeErr error
}

var _ application.QuoteSource = (*stubQuoteSource)(nil)

func (s *stubQuoteSource) FetchLatest(_ context.Context, p domain.Pair) (domain.Quote, error) {
	q, ok := s.latest[p]
	if !ok {
		return domain.Quote{}, domain.ErrSourceUnavailable
	}
	return q, nil
}

func (s *stubQuoteSource) FetchRange(_ context.Context, p domain.Pair, _ domain.Window) ([]domain.Quote, error) {
	if s.rangeErr != nil {
		return nil, s.rangeErr
	}
	return s.ranges[p], nil
}

type stubBankSource struct {
	src    domain.Source
	quotes []domain.BankQuote
	err    error
}

var _ application.BankSource = (*stubBankSource)(nil)

func (s *stubBankSource) Source() domain.Source { return s.src }

func (s *stubBankSource) Fetch(context.Context, []domain.Pair) ([]domain.BankQuote, error) {
	return s.quotes, s.err
}

func quoteAt(p domain.Pair, rate float64, offset time.Duration) domain.Quote {
	return domain.Quote{Pair: p, Rate: rate, Timestamp: cliBase.Add(offset), Source: domain.SourceAPI}
}

func bocQuote(p domain.Pair, spot, cash string) domain.BankQuote {
	return domain.BankQuote{
		Pair:      p,
		Source:    domain.SourceBOC,
		SpotSell:  decimal.RequireFromString(spot),
		CashSell:  decimal.RequireFromString(cash),
		FetchedAt: cliBase,
	}
}

func TestFetchBoard(t *testing.T) {
	t.Parallel()

	pairs := []domain.Pair{domain.PairUSDCNY, domain.PairEURCNY}
	source := &stubQuoteSource{ranges: map[domain.Pair][]domain.Quote{
		domain.PairUSDCNY: {
			quoteAt(domain.PairUSDCNY, 7.10, 0),
			quoteAt(domain.PairUSDCNY, 7.12, time.Minute),
		},
		domain.PairEURCNY: {quoteAt(domain.PairEURCNY, 7.85, 0)},
	}}
	boc := &stubBankSource{src: domain.SourceBOC, quotes: []domain.BankQuote{
		bocQuote(domain.PairUSDCNY, "7.1345", "7.1398"),
	}}

	rows, board, bankErrs := fetchBoard(context.Background(), source,
		[]application.BankSource{boc}, pairs, domain.Window24h)

	require.Len(t, rows, 2)
	require.Equal(t, domain.PairUSDCNY, rows[0].pair)
	require.Len(t, rows[0].quotes, 2)
	require.Equal(t, domain.PairEURCNY, rows[1].pair)
	require.Empty(t, bankErrs)
	q, ok := board.Get(domain.PairUSDCNY, domain.SourceBOC)
	require.True(t, ok)
	require.Equal(t, "7.1345", q.SpotSell.String())
	require.Empty(t, board.ForPair(domain.PairEURCNY))
}

func TestFetchBoard_FallsBackToLatest(t *testing.T) {
	t.Parallel()

	source := &stubQuoteSource{
		rangeErr: domain.ErrSourceUnavailable,
		latest:   map[domain.Pair]domain.Quote{domain.PairUSDCNY: quoteAt(domain.PairUSDCNY, 7.11, 0)},
	}

	rows, _, _ := fetchBoard(context.Background(), source, nil,
		[]domain.Pair{domain.PairUSDCNY}, domain.Window24h)

	require.NoError(t, rows[0].err)
	require.Len(t, rows[0].quotes, 1)
	require.Equal(t, 7.11, rows[0].quotes[0].Rate)
}

func TestFetchBoard_PairDown(t *testing.T) {
	t.Parallel()

	source := &stubQuoteSource{rangeErr: domain.ErrSourceUnavailable}

	rows, _, _ := fetchBoard(context.Background(), source, nil,
		[]domain.Pair{domain.PairUSDCNY}, domain.Window24h)

	require.ErrorIs(t, rows[0].err, domain.ErrSourceUnavailable)
	require.Empty(t, rows[0].quotes)
}

func TestFetchBoard_BankDown(t *testing.T) {
	t.Parallel()

	source := &stubQuoteSource{ranges: map[domain.Pair][]domain.Quote{
		domain.PairUSDCNY: {quoteAt(domain.PairUSDCNY, 7.10, 0)},
	}}
	cmb := &stubBankSource{src: domain.SourceCMB, err: domain.ErrSourceUnavailable}

	_, board, bankErrs := fetchBoard(context.Background(), source,
		[]application.BankSource{cmb}, []domain.Pair{domain.PairUSDCNY}, domain.Window24h)

	require.ErrorIs(t, bankErrs[domain.SourceCMB], domain.ErrSourceUnavailable)
	require.Empty(t, board.ForPair(domain.PairUSDCNY))
}

func TestRenderRow_ChangeFollowsBoardConvention(t *testing.T) {
	t.Parallel()

	up := boardRow{pair: domain.PairUSDCNY, quotes: []domain.Quote{
		quoteAt(domain.PairUSDCNY, 7.10, 0),
		quoteAt(domain.PairUSDCNY, 7.12, time.Minute),
	}}
	cells, colors := renderRow(up, nil)
	require.Equal(t, "USD/CNY", cells[0])
	require.Equal(t, "7.1200", cells[1])
	require.Equal(t, "▲ +0.28%", cells[2])
	require.Equal(t, tablewriter.Colors{tablewriter.FgRedColor}, colors[2])

	down := boardRow{pair: domain.PairUSDCNY, quotes: []domain.Quote{
		quoteAt(domain.PairUSDCNY, 7.12, 0),
		quoteAt(domain.PairUSDCNY, 7.10, time.Minute),
	}}
	cells, colors = renderRow(down, nil)
	require.Equal(t, "▼ -0.28%", cells[2])
	require.Equal(t, tablewriter.Colors{tablewriter.FgGreenColor}, colors[2])
}

func TestRenderRow_SingleQuoteHasNoChange(t *testing.T) {
	t.Parallel()

	row := boardRow{pair: domain.PairJPYCNY, quotes: []domain.Quote{
		quoteAt(domain.PairJPYCNY, 0.0482, 0),
	}}
	cells, _ := renderRow(row, nil)
	require.Equal(t, "0.048200", cells[1])
	require.Equal(t, "-", cells[2])
}

func TestRenderRow_Unavailable(t *testing.T) {
	t.Parallel()

	row := boardRow{pair: domain.PairUSDCNY, err: domain.ErrSourceUnavailable}
	cells, colors := renderRow(row, nil)
	require.Equal(t, "unavailable", cells[1])
	require.Equal(t, tablewriter.Colors{tablewriter.FgYellowColor}, colors[1])
}

func TestRenderRow_BankColumns(t *testing.T) {
	t.Parallel()

	row := boardRow{pair: domain.PairUSDCNY, quotes: []domain.Quote{
		quoteAt(domain.PairUSDCNY, 7.11, 0),
	}}
	board := application.NewBankBoard()
	board.Put(bocQuote(domain.PairUSDCNY, "7.1345", "7.1398"))
	board.Put(domain.BankQuote{
		Pair:     domain.PairUSDCNY,
		Source:   domain.SourceCMB,
		SpotSell: decimal.RequireFromString("7.1400"),
		CashSell: decimal.RequireFromString("7.1460"),
	})
	cells, _ := renderRow(row, board)
	require.Equal(t, []string{"USD/CNY", "7.1100", "-", "7.1345", "7.1398", "7.1400", "7.1460"}, cells)
}

func TestRenderBoard(t *testing.T) {
	t.Parallel()

	rows := []boardRow{{pair: domain.PairUSDCNY, quotes: []domain.Quote{
		quoteAt(domain.PairUSDCNY, 7.12, 0),
	}}}
	board := application.NewBankBoard()
	board.Put(bocQuote(domain.PairUSDCNY, "7.1345", "7.1398"))
	cmb := &stubBankSource{src: domain.SourceCMB}
	bankErrs := map[domain.Source]error{domain.SourceCMB: domain.ErrSourceUnavailable}

	var buf bytes.Buffer
	renderBoard(&buf, domain.Window24h, rows, board,
		[]application.BankSource{cmb}, bankErrs)

	out := buf.String()
	require.Contains(t, out, "CNY board")
	require.Contains(t, out, "USD/CNY")
	require.Contains(t, out, "7.1200")
	require.Contains(t, out, "7.1345")
	require.Contains(t, out, "cmb board unavailable")
}
