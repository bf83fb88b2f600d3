package desktop

import (
	"sort"
	"time"

	"fxmon/internal/domain"
)

// rect is a screen-space rectangle in pixels.
type rect struct {
	X, Y, W, H float32
}

func (r rect) contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// view is the zoom and pan state over one snapshot. Zoom is the
// fraction of the sampled span shown; pan is how far the right edge
// trails the newest sample.
type view struct {
	zoom float64
	pan  time.Duration
}

const minZoom = 0.02

func defaultView() view { return view{zoom: 1} }

func clampView(v view, base time.Duration) view {
	if v.zoom < minZoom {
		v.zoom = minZoom
	}
	if v.zoom > 1 {
		v.zoom = 1
	}
	span := time.Duration(float64(base) * v.zoom)
	if maxPan := base - span; v.pan > maxPan {
		v.pan = maxPan
	}
	if v.pan < 0 {
		v.pan = 0
	}
	return v
}

// zoomAt scales the visible span by factor while keeping the instant
// under the cursor in place. frac is the cursor position across the
// plot, 0 at the left edge.
func zoomAt(v view, base time.Duration, frac, factor float64) view {
	if base <= 0 {
		return v
	}
	oldSpan := float64(base) * v.zoom
	v.zoom *= factor
	v = clampView(v, base)
	newSpan := float64(base) * v.zoom
	v.pan += time.Duration((1 - frac) * (oldSpan - newSpan))
	return clampView(v, base)
}

// panBy shifts the view by a fraction of the visible span; positive
// moves toward older samples.
func panBy(v view, base time.Duration, frac float64) view {
	span := float64(base) * v.zoom
	v.pan += time.Duration(frac * span)
	return clampView(v, base)
}

// visibleQuotes returns the sub-series the view exposes. The base span
// is the sampled extent rather than the window, so a short backfill
// still fills the whole plot.
func visibleQuotes(quotes []domain.Quote, v view) []domain.Quote {
	n := len(quotes)
	if n < 2 {
		return quotes
	}
	base := quotes[n-1].Timestamp.Sub(quotes[0].Timestamp)
	if base <= 0 {
		return quotes
	}
	v = clampView(v, base)
	span := time.Duration(float64(base) * v.zoom)
	end := quotes[n-1].Timestamp.Add(-v.pan)
	start := end.Add(-span)
	lo := sort.Search(n, func(i int) bool { return !quotes[i].Timestamp.Before(start) })
	hi := sort.Search(n, func(i int) bool { return quotes[i].Timestamp.After(end) })
	return quotes[lo:hi]
}

// rateBounds pads a flat series so it still draws mid-plot instead of
// collapsing onto an edge.
func rateBounds(quotes []domain.Quote) (lo, hi float64) {
	if len(quotes) == 0 {
		return 0, 0
	}
	lo, hi = quotes[0].Rate, quotes[0].Rate
	for _, q := range quotes[1:] {
		if q.Rate < lo {
			lo = q.Rate
		}
		if q.Rate > hi {
			hi = q.Rate
		}
	}
	if lo == hi {
		lo -= 0.001
		hi += 0.001
	}
	return lo, hi
}

// chartPoints maps quotes onto the plot by time. gaps[i] marks points
// that start a new segment because the series has a hole wider than
// gapAt, such as a market close inside the window.
func chartPoints(quotes []domain.Quote, area rect, gapAt time.Duration) (pts [][2]float32, gaps []bool) {
	n := len(quotes)
	if n == 0 {
		return nil, nil
	}
	lo, hi := rateBounds(quotes)
	t0 := quotes[0].Timestamp
	span := quotes[n-1].Timestamp.Sub(t0)
	pts = make([][2]float32, n)
	gaps = make([]bool, n)
	for i, q := range quotes {
		fx := 0.5
		if span > 0 {
			fx = float64(q.Timestamp.Sub(t0)) / float64(span)
		}
		fy := (q.Rate - lo) / (hi - lo)
		pts[i] = [2]float32{
			area.X + float32(fx)*area.W,
			area.Y + area.H - float32(fy)*area.H,
		}
		if i > 0 && gapAt > 0 {
			gaps[i] = q.Timestamp.Sub(quotes[i-1].Timestamp) > gapAt
		}
	}
	return pts, gaps
}

// sampleInterval is the nominal spacing of backfilled samples for the
// window.
func sampleInterval(w domain.Window) time.Duration {
	_, interval := w.ChartRange()
	switch interval {
	case "1m":
		return time.Minute
	case "15m":
		return 15 * time.Minute
	case "60m":
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// gapThreshold is the series hole width beyond which the line breaks
// instead of bridging, ten nominal intervals.
func gapThreshold(w domain.Window) time.Duration {
	return 10 * sampleInterval(w)
}

// nearestIndex finds the point whose x coordinate is closest to x.
// Points are ordered left to right.
func nearestIndex(pts [][2]float32, x float32) int {
	n := len(pts)
	if n == 0 {
		return -1
	}
	i := sort.Search(n, func(i int) bool { return pts[i][0] >= x })
	if i == 0 {
		return 0
	}
	if i == n {
		return n - 1
	}
	if x-pts[i-1][0] <= pts[i][0]-x {
		return i - 1
	}
	return i
}
