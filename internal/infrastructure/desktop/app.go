package desktop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/temidaradev/esset/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"

	"fxmon/internal/application"
	"fxmon/internal/domain"
	"fxmon/internal/infrastructure/logx"
)

const (
	windowWidth  = 1080
	windowHeight = 640
	baseFontSize = 14
	rateFontSize = 34

	glyphPreload = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 .,:/%+-()"
)

var _ application.Renderer = (*App)(nil)

// App is the desktop front end: one resizable window redrawn in place
// each frame. Snapshots arrive pushed from the monitor; bank rows and
// source health are read from the feed at draw time.
type App struct {
	feed  application.Feed
	theme Theme

	face     text.Face
	rateFace text.Face
	scale    float64
	solid    *ebiten.Image

	ctx context.Context

	mu    sync.Mutex
	snaps map[domain.Pair]application.Snapshot

	// Touched only on the game goroutine.
	selected int
	view     view
	dragging bool
	dragX    int
	regions  boardRegions
}

// boardRegions holds the frame's clickable areas, recomputed on draw
// so hit tests track window resizes.
type boardRegions struct {
	pairTabs   []rect
	windowTabs []rect
	themeBtn   rect
	plot       rect
	metricsY   float32
	bankY      float32
}

func NewApp(feed application.Feed, theme string) (*App, error) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	if scale <= 0 {
		scale = 1
	}
	face, err := esset.GetFont(goregular.TTF, int(baseFontSize*scale))
	if err != nil {
		return nil, fmt.Errorf("desktop: load font: %w", err)
	}
	rateFace, err := esset.GetFont(goregular.TTF, int(rateFontSize*scale))
	if err != nil {
		return nil, fmt.Errorf("desktop: load rate font: %w", err)
	}
	a := &App{
		feed:     feed,
		theme:    ThemeByName(theme),
		face:     face,
		rateFace: rateFace,
		scale:    scale,
		snaps:    make(map[domain.Pair]application.Snapshot),
		view:     defaultView(),
	}
	a.preloadGlyphs()
	return a, nil
}

// preloadGlyphs warms the glyph cache so the first frame does not
// stall on rasterization.
func (a *App) preloadGlyphs() {
	img := ebiten.NewImage(1, 1)
	opts := &text.DrawOptions{}
	text.Draw(img, glyphPreload, a.face, opts)
	text.Draw(img, glyphPreload, a.rateFace, opts)
}

// Render implements application.Renderer.
func (a *App) Render(pair domain.Pair, snap application.Snapshot) {
	a.mu.Lock()
	a.snaps[pair] = snap
	a.mu.Unlock()
}

// Run opens the window and blocks until it closes or ctx ends. Must be
// called from the main goroutine.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("fxmon")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(a); err != nil {
		return fmt.Errorf("desktop: %w", err)
	}
	return nil
}

func (a *App) Update() error {
	select {
	case <-a.ctx.Done():
		return ebiten.Termination
	default:
	}
	a.handleClicks()
	a.handleWheel()
	a.handleDrag()
	return nil
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(float64(outsideWidth) * a.scale), int(float64(outsideHeight) * a.scale)
}

func (a *App) handleClicks() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		a.view = defaultView()
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	x, y := float32(mx), float32(my)

	for i, r := range a.regions.pairTabs {
		if r.contains(x, y) {
			a.selected = i
			return
		}
	}
	for i, r := range a.regions.windowTabs {
		if r.contains(x, y) {
			a.pickWindow(domain.Windows()[i])
			return
		}
	}
	if a.regions.themeBtn.contains(x, y) {
		a.theme = a.theme.other()
		return
	}
	if a.regions.plot.contains(x, y) {
		a.dragging = true
		a.dragX = mx
	}
}

func (a *App) pickWindow(w domain.Window) {
	if w == a.feed.Window() {
		return
	}
	a.view = defaultView()
	// Rebinding triggers a backfill; never block the frame on it.
	ctx := a.ctx
	go func() {
		if err := a.feed.SetWindow(ctx, w); err != nil {
			logx.L().Warn("desktop.window_change_failed",
				zap.String("window", string(w)), zap.Error(err))
		}
	}()
}

func (a *App) handleWheel() {
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	plot := a.regions.plot
	if plot.W <= 0 || !plot.contains(float32(mx), float32(my)) {
		return
	}
	base := a.snapshotBase()
	if base <= 0 {
		return
	}
	frac := float64((float32(mx) - plot.X) / plot.W)
	factor := 0.9
	if dy < 0 {
		factor = 1 / 0.9
	}
	a.view = zoomAt(a.view, base, frac, factor)
}

func (a *App) handleDrag() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		a.dragging = false
		return
	}
	if !a.dragging {
		return
	}
	mx, _ := ebiten.CursorPosition()
	dx := mx - a.dragX
	if dx == 0 {
		return
	}
	a.dragX = mx
	plot := a.regions.plot
	base := a.snapshotBase()
	if plot.W <= 0 || base <= 0 {
		return
	}
	// Dragging right pulls older samples into view.
	a.view = panBy(a.view, base, float64(dx)/float64(plot.W))
}

func (a *App) currentPair() domain.Pair {
	pairs := a.feed.Pairs()
	if len(pairs) == 0 {
		return ""
	}
	if a.selected >= len(pairs) {
		a.selected = 0
	}
	return pairs[a.selected]
}

func (a *App) snapshot(pair domain.Pair) (application.Snapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	snap, ok := a.snaps[pair]
	return snap, ok
}

// snapshotBase is the sampled extent of the selected pair, the span
// zoom and pan operate over.
func (a *App) snapshotBase() time.Duration {
	snap, ok := a.snapshot(a.currentPair())
	if !ok || len(snap.Quotes) < 2 {
		return 0
	}
	return snap.Quotes[len(snap.Quotes)-1].Timestamp.Sub(snap.Quotes[0].Timestamp)
}
