package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fxmon/internal/application"
	"fxmon/internal/domain"
	infraconfig "fxmon/internal/infrastructure/config"
	"fxmon/internal/infrastructure/logx"

	"go.uber.org/zap"
)

// Server is the web front end: a read-only JSON API plus the dashboard
// shell, both fed by the monitor. It satisfies application.Renderer in
// pull mode; pages poll the API rather than holding pushed state.
type Server struct {
	feed  application.Feed
	addr  string
	theme string
}

var _ application.Renderer = (*Server)(nil)

func NewServer(feed application.Feed, addr, theme string) *Server {
	if addr == "" || addr == ":" {
		addr = ":" + infraconfig.DefaultHTTPPort
	}
	return &Server{feed: feed, addr: addr, theme: theme}
}

// Render is a no-op; handlers read the feed on demand.
func (s *Server) Render(domain.Pair, application.Snapshot) {}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: NewRouter(s)}

	errc := make(chan error, 1)
	go func() {
		logx.L().Info("web.started", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer cancel()
	logx.L().Info("web.stopping")
	return srv.Shutdown(shutdownCtx)
}

type pairDTO struct {
	Pair     string `json:"pair"`
	Name     string `json:"name"`
	BankName string `json:"bank_name"`
}

type boardResponse struct {
	Pairs   []pairDTO `json:"pairs"`
	Windows []string  `json:"windows"`
	Window  string    `json:"window"`
	Theme   string    `json:"theme"`
}

func (s *Server) handlePairs(w http.ResponseWriter, _ *http.Request) {
	resp := boardResponse{Window: string(s.feed.Window()), Theme: s.theme}
	for _, p := range s.feed.Pairs() {
		resp.Pairs = append(resp.Pairs, pairDTO{Pair: string(p), Name: p.Name(), BankName: p.BankName()})
	}
	for _, win := range domain.Windows() {
		resp.Windows = append(resp.Windows, string(win))
	}
	writeJSON(w, http.StatusOK, resp)
}

type latestResponse struct {
	Pair         string    `json:"pair"`
	Rate         float64   `json:"rate"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	TickChange   float64   `json:"tick_change"`
	WindowChange float64   `json:"window_change"`
	Direction    string    `json:"direction"`
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	pair, ok := s.parsePair(w, r)
	if !ok {
		return
	}
	snap, err := s.feed.Snapshot(pair)
	if err != nil {
		badRequest(w, "pair not monitored")
		return
	}
	last, ok := snap.Latest()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, latestResponse{
		Pair:         string(pair),
		Rate:         last.Rate,
		Timestamp:    last.Timestamp,
		Source:       string(last.Source),
		TickChange:   snap.TickChange(),
		WindowChange: snap.WindowChange(),
		Direction:    snap.Direction().String(),
	})
}

type pointDTO struct {
	Timestamp time.Time `json:"timestamp"`
	Rate      float64   `json:"rate"`
}

type historyResponse struct {
	Pair         string     `json:"pair"`
	Window       string     `json:"window"`
	Points       []pointDTO `json:"points"`
	WindowChange float64    `json:"window_change"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	pair, ok := s.parsePair(w, r)
	if !ok {
		return
	}
	win := s.feed.Window()
	if raw := r.URL.Query().Get("window"); raw != "" {
		var err error
		win, err = domain.ParseWindow(raw)
		if err != nil {
			badRequest(w, "unknown window")
			return
		}
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
	resp := historyResponse{
		Pair:         string(pair),
		Window:       string(win),
		Points:       make([]pointDTO, 0, len(snap.Quotes)),
		WindowChange: snap.WindowChange(),
	}
	for _, q := range snap.Quotes {
		resp.Points = append(resp.Points, pointDTO{Timestamp: q.Timestamp, Rate: q.Rate})
	}
	writeJSON(w, http.StatusOK, resp)
}

type bankRowDTO struct {
	Source    string    `json:"source"`
	SpotSell  string    `json:"spot_sell"`
	CashSell  string    `json:"cash_sell"`
	FetchedAt time.Time `json:"fetched_at"`
}

type banksResponse struct {
	Pair string       `json:"pair"`
	Rows []bankRowDTO `json:"rows"`
}

func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	pair, ok := s.parsePair(w, r)
	if !ok {
		return
	}
	rows := s.feed.Banks(pair)
	resp := banksResponse{Pair: string(pair), Rows: make([]bankRowDTO, 0, len(rows))}
	for _, b := range rows {
		resp.Rows = append(resp.Rows, bankRowDTO{
			Source:    string(b.Source),
			SpotSell:  b.SpotSell.String(),
			CashSell:  b.CashSell.String(),
			FetchedAt: b.FetchedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type sourceDTO struct {
	Source      string     `json:"source"`
	State       string     `json:"state"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Failures    int        `json:"failures"`
}

type healthResponse struct {
	Status  string      `json:"status"`
	Sources []sourceDTO `json:"sources"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	for _, st := range s.feed.Health() {
		d := sourceDTO{
			Source:    string(st.Source),
			State:     string(st.State),
			LastError: st.LastError,
			Failures:  st.Failures,
		}
		if !st.LastSuccess.IsZero() {
			ts := st.LastSuccess
			d.LastSuccess = &ts
		}
		resp.Sources = append(resp.Sources, d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// parsePair reads the pair query parameter, answering 400 itself when
// the value is missing or not a supported pair.
func (s *Server) parsePair(w http.ResponseWriter, r *http.Request) (domain.Pair, bool) {
	pair, err := domain.ParsePair(r.URL.Query().Get("pair"))
	if err != nil {
		badRequest(w, "unknown pair")
		return "", false
	}
	return pair, true
}

// feedError maps feed failures onto API statuses. An unsupported pair
// slipping past parsing means it is not in the configured set.
func (s *Server) feedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedPair):
		badRequest(w, "pair not monitored")
	case errors.Is(err, domain.ErrSourceUnavailable):
		writeError(w, http.StatusBadGateway, "source unavailable")
	default:
		internalError(w)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "no data")
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
