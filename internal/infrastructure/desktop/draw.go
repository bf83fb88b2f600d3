package desktop

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/temidaradev/esset/v2"

	"fxmon/internal/application"
	"fxmon/internal/domain"
)

var bankNames = map[domain.Source]string{
	domain.SourceBOC: "Bank of China",
	domain.SourceCMB: "China Merchants Bank",
}

func (a *App) Draw(screen *ebiten.Image) {
	t := a.theme
	screen.Fill(t.Background)

	pairs := a.feed.Pairs()
	if len(pairs) == 0 {
		esset.DrawText(screen, "no pairs configured", 0, 20*a.scale, 20*a.scale, a.face, t.Muted)
		return
	}
	if a.selected >= len(pairs) {
		a.selected = 0
	}
	pair := pairs[a.selected]
	snap, ok := a.snapshot(pair)

	a.computeRegions(screen, pairs)
	a.drawTabs(screen, pairs)
	a.drawHealth(screen)
	a.drawMetrics(screen, pair, snap, ok)
	a.drawChart(screen, snap, ok)
	a.drawBanks(screen, pair)
}

func (a *App) computeRegions(screen *ebiten.Image, pairs []domain.Pair) {
	b := screen.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	s := float32(a.scale)

	pad := 14 * s
	tabH := 26 * s
	rowGap := 8 * s

	pairLabels := make([]string, len(pairs))
	for i, p := range pairs {
		pairLabels[i] = string(p)
	}
	a.regions.pairTabs = a.tabRow(pairLabels, pad, pad, tabH)

	wins := domain.Windows()
	winLabels := make([]string, len(wins))
	for i, win := range wins {
		winLabels[i] = string(win)
	}
	winY := pad + tabH + rowGap
	a.regions.windowTabs = a.tabRow(winLabels, pad, winY, tabH)

	label := themeButtonLabel(a.theme)
	tw, _ := text.Measure(label, a.face, -1)
	btnW := float32(tw) + 20*s
	a.regions.themeBtn = rect{X: w - pad - btnW, Y: winY, W: btnW, H: tabH}

	a.regions.metricsY = winY + tabH + rowGap + 4*s
	metricsH := 52 * s

	bankH := 92 * s
	plotY := a.regions.metricsY + metricsH + rowGap
	plotH := h - plotY - bankH - pad
	if plotH < 0 {
		plotH = 0
	}
	a.regions.plot = rect{X: 72 * s, Y: plotY, W: w - 72*s - pad, H: plotH}
	a.regions.bankY = plotY + plotH + 12*s
}

func (a *App) tabRow(labels []string, x, y, h float32) []rect {
	s := float32(a.scale)
	rects := make([]rect, len(labels))
	for i, label := range labels {
		tw, _ := text.Measure(label, a.face, -1)
		rects[i] = rect{X: x, Y: y, W: float32(tw) + 20*s, H: h}
		x += rects[i].W + 8*s
	}
	return rects
}

func (a *App) drawTabs(screen *ebiten.Image, pairs []domain.Pair) {
	t := a.theme
	for i, r := range a.regions.pairTabs {
		a.drawTab(screen, r, string(pairs[i]), i == a.selected)
	}
	active := a.feed.Window()
	for i, r := range a.regions.windowTabs {
		win := domain.Windows()[i]
		a.drawTab(screen, r, string(win), win == active)
	}

	r := a.regions.themeBtn
	vector.DrawFilledRect(screen, r.X, r.Y, r.W, r.H, t.Panel, false)
	a.drawTabLabel(screen, r, themeButtonLabel(a.theme), t.Text)
}

func (a *App) drawTab(screen *ebiten.Image, r rect, label string, active bool) {
	t := a.theme
	vector.DrawFilledRect(screen, r.X, r.Y, r.W, r.H, t.Panel, false)
	clr := t.Muted
	if active {
		clr = t.Accent
		vector.StrokeRect(screen, r.X, r.Y, r.W, r.H, 1*float32(a.scale), t.Accent, false)
	}
	a.drawTabLabel(screen, r, label, clr)
}

func (a *App) drawTabLabel(screen *ebiten.Image, r rect, label string, clr color.Color) {
	tw, th := text.Measure(label, a.face, -1)
	x := float64(r.X) + (float64(r.W)-tw)/2
	y := float64(r.Y) + (float64(r.H)-th)/2
	esset.DrawText(screen, label, 0, x, y, a.face, clr)
}

func (a *App) drawMetrics(screen *ebiten.Image, pair domain.Pair, snap application.Snapshot, ok bool) {
	t := a.theme
	s := a.scale
	x := float64(14 * s)
	y := float64(a.regions.metricsY)

	last, has := snap.Latest()
	if !ok || !has {
		esset.DrawText(screen, pair.Name()+"  waiting for first quote", 0, x, y+10*s, a.face, t.Muted)
		return
	}

	tick := snap.TickChange()
	clr := t.changeColor(tick)

	rateStr := domain.FormatRate(last.Rate)
	rw, rh := text.Measure(rateStr, a.rateFace, -1)
	esset.DrawText(screen, rateStr, 0, x, y, a.rateFace, clr)
	x += rw + 12*s

	arrowSize := float32(12 * s)
	a.drawArrow(screen, float32(x), float32(y)+float32(rh)/2-arrowSize/2, arrowSize, snap.Direction(), clr)
	x += float64(arrowSize) + 8*s

	midY := y + rh/2 - 8*s
	esset.DrawText(screen, fmt.Sprintf("%+.2f%%", tick), 0, x, midY, a.face, clr)
	x += 80 * s

	wc := snap.WindowChange()
	esset.DrawText(screen, fmt.Sprintf("window %+.2f%%", wc), 0, x, midY, a.face, t.changeColor(wc))
	x += 130 * s

	asOf := fmt.Sprintf("%s  as of %s", pair.Name(), last.Timestamp.Local().Format("15:04:05"))
	esset.DrawText(screen, asOf, 0, x, midY, a.face, t.Muted)
}

func (a *App) drawChart(screen *ebiten.Image, snap application.Snapshot, ok bool) {
	t := a.theme
	plot := a.regions.plot
	if plot.W <= 0 || plot.H <= 0 {
		return
	}
	vector.DrawFilledRect(screen, plot.X, plot.Y, plot.W, plot.H, t.Panel, false)

	if !ok || len(snap.Quotes) == 0 {
		a.drawCentered(screen, plot, "no samples yet", t.Muted)
		return
	}
	quotes := visibleQuotes(snap.Quotes, a.view)
	if len(quotes) == 0 {
		a.drawCentered(screen, plot, "nothing in view", t.Muted)
		return
	}

	lo, hi := rateBounds(quotes)
	a.drawGrid(screen, plot, lo, hi)

	pts, gaps := chartPoints(quotes, plot, gapThreshold(snap.Window))
	clr := t.changeColor(snap.TickChange())
	if len(pts) == 1 {
		vector.DrawFilledCircle(screen, pts[0][0], pts[0][1], 3*float32(a.scale), clr, true)
		return
	}
	a.strokeSeries(screen, pts, gaps, clr)
	lastPt := pts[len(pts)-1]
	vector.DrawFilledCircle(screen, lastPt[0], lastPt[1], 3*float32(a.scale), clr, true)

	a.drawCrosshair(screen, quotes, pts)
}

func (a *App) drawGrid(screen *ebiten.Image, plot rect, lo, hi float64) {
	t := a.theme
	s := a.scale
	for i := 0; i <= 2; i++ {
		fy := float32(i) / 2
		y := plot.Y + plot.H - fy*plot.H
		vector.StrokeLine(screen, plot.X, y, plot.X+plot.W, y, 1, t.Grid, false)

		label := domain.FormatRate(lo + (hi-lo)*float64(fy))
		tw, th := text.Measure(label, a.face, -1)
		esset.DrawText(screen, label, 0, float64(plot.X)-tw-6*s, float64(y)-th/2, a.face, t.Muted)
	}
}

// strokeSeries draws the polyline as a stroked path, lifting the pen
// at gap points.
func (a *App) strokeSeries(screen *ebiten.Image, pts [][2]float32, gaps []bool, clr color.RGBA) {
	var path vector.Path
	path.MoveTo(pts[0][0], pts[0][1])
	for i := 1; i < len(pts); i++ {
		if gaps[i] {
			path.MoveTo(pts[i][0], pts[i][1])
			continue
		}
		path.LineTo(pts[i][0], pts[i][1])
	}
	a.strokePath(screen, &path, 2*float32(a.scale), clr)
}

func (a *App) drawCrosshair(screen *ebiten.Image, quotes []domain.Quote, pts [][2]float32) {
	mx, my := ebiten.CursorPosition()
	x, y := float32(mx), float32(my)
	plot := a.regions.plot
	if !plot.contains(x, y) {
		return
	}
	i := nearestIndex(pts, x)
	if i < 0 {
		return
	}
	t := a.theme
	s := a.scale
	px, py := pts[i][0], pts[i][1]
	vector.StrokeLine(screen, px, plot.Y, px, plot.Y+plot.H, 1, t.Grid, false)
	vector.StrokeLine(screen, plot.X, py, plot.X+plot.W, py, 1, t.Grid, false)
	vector.DrawFilledCircle(screen, px, py, 4*float32(s), t.Accent, true)

	q := quotes[i]
	label := fmt.Sprintf("%s  %s", q.Timestamp.Local().Format("01-02 15:04:05"), domain.FormatRate(q.Rate))
	tw, th := text.Measure(label, a.face, -1)
	bx := float64(px) + 10*s
	if bx+tw+12*s > float64(plot.X+plot.W) {
		bx = float64(px) - tw - 10*s
	}
	by := float64(plot.Y) + 10*s
	pad := 6 * s
	vector.DrawFilledRect(screen, float32(bx-pad), float32(by-pad), float32(tw+2*pad), float32(th+2*pad), t.Background, true)
	vector.StrokeRect(screen, float32(bx-pad), float32(by-pad), float32(tw+2*pad), float32(th+2*pad), 1, t.Grid, true)
	esset.DrawText(screen, label, 0, bx, by, a.face, t.Text)
}

func (a *App) drawBanks(screen *ebiten.Image, pair domain.Pair) {
	t := a.theme
	s := a.scale
	x := float64(a.regions.plot.X)
	y := float64(a.regions.bankY)

	rows := a.feed.Banks(pair)
	if len(rows) == 0 {
		esset.DrawText(screen, "no bank rates yet", 0, x, y, a.face, t.Muted)
		return
	}

	cols := []float64{x, x + 200*s, x + 340*s, x + 480*s}
	headers := []string{"Bank", "Spot sell", "Cash sell", "As of"}
	for i, h := range headers {
		esset.DrawText(screen, h, 0, cols[i], y, a.face, t.Muted)
	}
	y += 20 * s
	for _, row := range rows {
		name := bankNames[row.Source]
		if name == "" {
			name = string(row.Source)
		}
		cells := []string{
			name,
			row.SpotSell.String(),
			row.CashSell.String(),
			row.FetchedAt.Local().Format("15:04:05"),
		}
		for i, c := range cells {
			esset.DrawText(screen, c, 0, cols[i], y, a.face, t.Text)
		}
		y += 20 * s
	}
}

// drawHealth puts one dot per source at the top right, next to the
// theme button row.
func (a *App) drawHealth(screen *ebiten.Image) {
	t := a.theme
	s := float32(a.scale)
	right := float32(screen.Bounds().Dx()) - 14*s

	statuses := a.feed.Health()
	for i := len(statuses) - 1; i >= 0; i-- {
		st := statuses[i]
		label := string(st.Source)
		tw, th := text.Measure(label, a.face, -1)

		right -= float32(tw)
		y := 14*s + (26*s-float32(th))/2
		esset.DrawText(screen, label, 0, float64(right), float64(y), a.face, t.Muted)

		right -= 10 * s
		vector.DrawFilledCircle(screen, right, 14*s+13*s, 4*s, stateColor(t, st.State), true)
		right -= 16 * s
	}
}

func stateColor(t Theme, state application.SourceState) color.RGBA {
	switch state {
	case application.SourceStateOK:
		return color.RGBA{R: 76, G: 175, B: 80, A: 255}
	case application.SourceStateFailed:
		return t.Up
	default:
		return t.Flat
	}
}

func (a *App) drawCentered(screen *ebiten.Image, r rect, label string, clr color.Color) {
	tw, th := text.Measure(label, a.face, -1)
	x := float64(r.X) + (float64(r.W)-tw)/2
	y := float64(r.Y) + (float64(r.H)-th)/2
	esset.DrawText(screen, label, 0, x, y, a.face, clr)
}

func (a *App) drawArrow(screen *ebiten.Image, x, y, size float32, dir domain.Direction, clr color.RGBA) {
	if dir == domain.Flat {
		vector.DrawFilledRect(screen, x, y+size/2-1, size, 2, clr, true)
		return
	}
	var path vector.Path
	if dir == domain.Up {
		path.MoveTo(x+size/2, y)
		path.LineTo(x+size, y+size)
		path.LineTo(x, y+size)
	} else {
		path.MoveTo(x, y)
		path.LineTo(x+size, y)
		path.LineTo(x+size/2, y+size)
	}
	path.Close()
	a.fillPath(screen, &path, clr)
}

func (a *App) fillPath(screen *ebiten.Image, path *vector.Path, clr color.RGBA) {
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	a.drawVertices(screen, vs, is, clr)
}

func (a *App) strokePath(screen *ebiten.Image, path *vector.Path, width float32, clr color.RGBA) {
	vs, is := path.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{Width: width})
	a.drawVertices(screen, vs, is, clr)
}

func (a *App) drawVertices(screen *ebiten.Image, vs []ebiten.Vertex, is []uint16, clr color.RGBA) {
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	op.ColorM.Scale(float64(clr.R)/255, float64(clr.G)/255, float64(clr.B)/255, float64(clr.A)/255)
	screen.DrawTriangles(vs, is, a.solidImage(), op)
}

func (a *App) solidImage() *ebiten.Image {
	if a.solid == nil {
		a.solid = ebiten.NewImage(1, 1)
		a.solid.Fill(color.White)
	}
	return a.solid
}

// themeButtonLabel names the theme a click switches to.
func themeButtonLabel(t Theme) string {
	if t.Name == "dark" {
		return "Light"
	}
	return "Dark"
}
