package domain

import (
	"fmt"
	"strings"
	"time"
)

// Window bounds how much history is retained and displayed for a pair.
type Window string

const (
	Window1h  Window = "1h"
	Window24h Window = "24h"
	Window48h Window = "48h"
	Window7d  Window = "7d"
	Window1mo Window = "1mo"
	Window6mo Window = "6mo"
	Window1y  Window = "1y"
)

// DefaultWindow is what both front ends start with.
const DefaultWindow = Window48h

type windowInfo struct {
	dur time.Duration
	// Yahoo chart parameters used to backfill the window. The fetched
	// range is wider than the window on purpose; the buffer trims it.
	chartRange    string
	chartInterval string
}

var windows = map[Window]windowInfo{
	Window1h:  {time.Hour, "1d", "1m"},
	Window24h: {24 * time.Hour, "5d", "1m"},
	Window48h: {48 * time.Hour, "5d", "1m"},
	Window7d:  {7 * 24 * time.Hour, "1mo", "15m"},
	Window1mo: {30 * 24 * time.Hour, "3mo", "60m"},
	Window6mo: {180 * 24 * time.Hour, "6mo", "1d"},
	Window1y:  {365 * 24 * time.Hour, "1y", "1d"},
}

// Windows returns the selectable windows in display order.
func Windows() []Window {
	return []Window{Window1h, Window24h, Window48h, Window7d, Window1mo, Window6mo, Window1y}
}

// ParseWindow validates a window label.
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := windows[w]; !ok {
		return "", fmt.Errorf("unknown window %q", s)
	}
	return w, nil
}

// Duration returns the span of history the window covers.
func (w Window) Duration() time.Duration { return windows[w].dur }

// ChartRange returns the Yahoo chart (range, interval) parameters used
// to backfill the window.
func (w Window) ChartRange() (rng, interval string) {
	i := windows[w]
	return i.chartRange, i.chartInterval
}
