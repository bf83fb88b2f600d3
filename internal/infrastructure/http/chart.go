package httpserver

import (
	"fmt"
	"net/http"

	"fxmon/internal/application"
	"fxmon/internal/domain"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Mainland board convention: red marks a rise, green a fall.
const (
	chartUpColor   = "#ef232a"
	chartDownColor = "#14b143"
	chartFlatColor = "#8f8f8f"
)

// handleChart renders one pair's window as a standalone go-echarts
// page. Unlike the dashboard it is rebuilt server side per request,
// which makes it handy for sharing a snapshot of the board.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	pair, win, ok := s.chartParams(w, r)
	if !ok {
		return
	}
	snap, err := s.feed.RangeSnapshot(r.Context(), pair, win)
	if err != nil {
		s.feedError(w, err)
		return
	}
	if len(snap.Quotes) == 0 {
		notFound(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = buildChart(snap, s.theme).Render(w)
}

// chartParams reads pair and window from the query, falling back to
// the first configured pair and the active window when absent.
func (s *Server) chartParams(w http.ResponseWriter, r *http.Request) (domain.Pair, domain.Window, bool) {
	pairs := s.feed.Pairs()
	if len(pairs) == 0 {
		notFound(w)
		return "", "", false
	}
	pair := pairs[0]
	if raw := r.URL.Query().Get("pair"); raw != "" {
		p, err := domain.ParsePair(raw)
		if err != nil {
			badRequest(w, "unknown pair")
			return "", "", false
		}
		pair = p
	}
	win := s.feed.Window()
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := domain.ParseWindow(raw)
		if err != nil {
			badRequest(w, "unknown window")
			return "", "", false
		}
		win = parsed
	}
	return pair, win, true
}

func buildChart(snap application.Snapshot, theme string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "fxmon " + string(snap.Pair),
			Width:     "1180px",
			Height:    "560px",
			Theme:     chartTheme(theme),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s  %s", snap.Pair, snap.Window),
			Subtitle: chartSubtitle(snap),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: true}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", Start: 0, End: 100},
			opts.DataZoom{Type: "slider", Start: 0, End: 100},
		),
	)

	color := changeColor(snap.WindowChange())
	line.SetXAxis(chartLabels(snap)).AddSeries(string(snap.Pair), chartPoints(snap),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: false}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		charts.WithMarkPointNameTypeItemOpts(
			opts.MarkPointNameTypeItem{Name: "high", Type: "max"},
			opts.MarkPointNameTypeItem{Name: "low", Type: "min"},
		),
	)
	return line
}

func chartSubtitle(snap application.Snapshot) string {
	last, ok := snap.Latest()
	if !ok {
		return "no data"
	}
	lo, hi, _ := snap.MinMax()
	return fmt.Sprintf("last %s  low %s  high %s  window %+.2f%%  taken %s",
		domain.FormatRate(last.Rate), domain.FormatRate(lo), domain.FormatRate(hi),
		snap.WindowChange(), snap.Taken.Format("15:04:05 MST"))
}

func chartLabels(snap application.Snapshot) []string {
	layout := "15:04"
	switch snap.Window {
	case domain.Window7d, domain.Window1mo:
		layout = "01-02 15:04"
	case domain.Window6mo, domain.Window1y:
		layout = "2006-01-02"
	}
	labels := make([]string, 0, len(snap.Quotes))
	for _, q := range snap.Quotes {
		labels = append(labels, q.Timestamp.Local().Format(layout))
	}
	return labels
}

func chartPoints(snap application.Snapshot) []opts.LineData {
	points := make([]opts.LineData, 0, len(snap.Quotes))
	for _, q := range snap.Quotes {
		points = append(points, opts.LineData{Value: q.Rate})
	}
	return points
}

func changeColor(pct float64) string {
	switch domain.DirectionOf(pct) {
	case domain.Up:
		return chartUpColor
	case domain.Down:
		return chartDownColor
	default:
		return chartFlatColor
	}
}

func chartTheme(theme string) string {
	if theme == "light" {
		return "white"
	}
	return "dark"
}
