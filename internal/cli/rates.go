package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"fxmon/internal/application"
	"fxmon/internal/bootstrap"
	"fxmon/internal/config"
	"fxmon/internal/domain"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the current board once and exit",
	RunE: func(*cobra.Command, []string) error {
		return runRates(config.Load())
	},
}

// Covers one backfill round trip per pair plus the bank boards.
const ratesTimeout = 20 * time.Second

type boardRow struct {
	pair   domain.Pair
	quotes []domain.Quote
	err    error
}

func runRates(cfg config.Config) error {
	pairs, err := bootstrap.BuildPairs(cfg)
	if err != nil {
		return err
	}
	win, err := bootstrap.BuildWindow(cfg)
	if err != nil {
		return err
	}
	client := bootstrap.BuildHTTPClient(cfg)
	source, err := bootstrap.BuildQuoteSource(cfg, client)
	if err != nil {
		return err
	}
	banks, err := bootstrap.BuildBankSources(cfg, client)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), ratesTimeout)
	defer cancel()

	rows, board, bankErrs := fetchBoard(ctx, source, banks, pairs, win)
	renderBoard(os.Stdout, win, rows, board, banks, bankErrs)
	return nil
}

// fetchBoard pulls every pair and every bank in parallel. Pair rows
// carry their own error; a failed bank leaves its columns empty.
func fetchBoard(
	ctx context.Context,
	source application.QuoteSource,
	banks []application.BankSource,
	pairs []domain.Pair,
	win domain.Window,
) ([]boardRow, *application.BankBoard, map[domain.Source]error) {
	rows := make([]boardRow, len(pairs))
	board := application.NewBankBoard()
	bankErrs := make(map[domain.Source]error)

	var wg sync.WaitGroup
	var mu sync.Mutex // guards bankErrs, the board locks itself

	for i, p := range pairs {
		wg.Add(1)
		go func(i int, p domain.Pair) {
			defer wg.Done()
			quotes, err := source.FetchRange(ctx, p, win)
			if err != nil || len(quotes) == 0 {
				// No history is still a board line if the live endpoint answers.
				if q, lerr := source.FetchLatest(ctx, p); lerr == nil {
					quotes, err = []domain.Quote{q}, nil
				}
			}
			rows[i] = boardRow{pair: p, quotes: quotes, err: err}
		}(i, p)
	}

	for _, b := range banks {
		wg.Add(1)
		go func(b application.BankSource) {
			defer wg.Done()
			quotes, err := b.Fetch(ctx, pairs)
			if err != nil {
				mu.Lock()
				bankErrs[b.Source()] = err
				mu.Unlock()
				return
			}
			for _, q := range quotes {
				board.Put(q)
			}
		}(b)
	}

	wg.Wait()
	return rows, board, bankErrs
}

func renderBoard(
	w io.Writer,
	win domain.Window,
	rows []boardRow,
	board *application.BankBoard,
	banks []application.BankSource,
	bankErrs map[domain.Source]error,
) {
	color.New(color.Bold).Fprintf(w, "CNY board  %s  change over %s\n\n",
		time.Now().Format("2006-01-02 15:04:05"), win)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pair", "Rate", "Change", "BOC Spot", "BOC Cash", "CMB Spot", "CMB Cash"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		cells, colors := renderRow(row, board)
		table.Rich(cells, colors)
	}
	table.Render()

	warn := color.New(color.FgYellow)
	for _, b := range banks {
		if err := bankErrs[b.Source()]; err != nil {
			warn.Fprintf(w, "\n%s board unavailable: %v", b.Source(), err)
		}
	}
	if len(bankErrs) > 0 {
		fmt.Fprintln(w)
	}
}

func renderRow(row boardRow, board *application.BankBoard) ([]string, []tablewriter.Colors) {
	cells := []string{string(row.pair), "-", "-", "-", "-", "-", "-"}
	colors := make([]tablewriter.Colors, len(cells))

	switch {
	case row.err != nil:
		cells[1] = "unavailable"
		colors[1] = tablewriter.Colors{tablewriter.FgYellowColor}
	case len(row.quotes) > 0:
		last := row.quotes[len(row.quotes)-1]
		cells[1] = domain.FormatRate(last.Rate)
		if len(row.quotes) > 1 {
			pct := domain.PercentChange(row.quotes[0].Rate, last.Rate)
			dir := domain.DirectionOf(pct)
			cells[2] = fmt.Sprintf("%s %+.2f%%", dir.Arrow(), pct)
			colors[2] = changeCellColors(dir)
		}
	}

	if board == nil {
		return cells, colors
	}
	if q, ok := board.Get(row.pair, domain.SourceBOC); ok {
		cells[3] = q.SpotSell.String()
		cells[4] = q.CashSell.String()
	}
	if q, ok := board.Get(row.pair, domain.SourceCMB); ok {
		cells[5] = q.SpotSell.String()
		cells[6] = q.CashSell.String()
	}
	return cells, colors
}

// Mainland board convention: red marks a rise, green a fall.
func changeCellColors(d domain.Direction) tablewriter.Colors {
	switch d {
	case domain.Up:
		return tablewriter.Colors{tablewriter.FgRedColor}
	case domain.Down:
		return tablewriter.Colors{tablewriter.FgGreenColor}
	default:
		return tablewriter.Colors{}
	}
}
