// Package window draws the overlay in a small floating ebiten window.
//
// The window owns the UI tick: every ebiten Update samples the overlay
// engine once, and Draw renders the latest snapshot.
package window

import (
	"fmt"
	"image/color"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"inputoverlay/internal/config"
	"inputoverlay/internal/overlay"
)

type palette struct {
	bg, text, dot, ring color.NRGBA
}

// Overlay is the ebiten game rendering snapshots. It implements
// overlay.Surface.
type Overlay struct {
	cfg     config.WindowConfig
	sampler *overlay.Sampler
	colors  palette
	face    font.Face
	layout  frameLayout
	icons   map[overlay.IconState]*ebiten.Image

	mu      sync.Mutex
	snap    overlay.Snapshot
	mirrors overlay.Broadcast

	closed atomic.Bool
	hidden atomic.Bool
	quit   atomic.Bool

	// Only touched from Update
	placed       bool
	dragging     bool
	grabX, grabY int
}

var _ overlay.Surface = (*Overlay)(nil)

// New prepares the window: parses colors, loads the label font and icons.
func New(cfg config.WindowConfig, sampler *overlay.Sampler) (*Overlay, error) {
	colors, err := parsePalette(cfg)
	if err != nil {
		return nil, err
	}

	dir := cfg.AssetDir
	if dir == "" {
		dir = DefaultAssetDir()
	}

	o := &Overlay{
		cfg:     cfg,
		sampler: sampler,
		colors:  colors,
		face:    newLabelFace(cfg.FontSize),
		icons:   make(map[overlay.IconState]*ebiten.Image),
	}

	m := o.face.Metrics()
	o.layout = computeLayout(cfg, m.Height.Ceil(), m.Ascent.Ceil())

	for state, img := range loadIcons(dir, cfg.ImageSize) {
		o.icons[state] = ebiten.NewImageFromImage(img)
	}
	return o, nil
}

func parsePalette(cfg config.WindowConfig) (palette, error) {
	var p palette
	var err error
	if p.bg, err = config.ParseHexColor(cfg.BackgroundColor); err != nil {
		return p, fmt.Errorf("background: %w", err)
	}
	if p.text, err = config.ParseHexColor(cfg.TextColor); err != nil {
		return p, fmt.Errorf("text: %w", err)
	}
	if p.dot, err = config.ParseHexColor(cfg.DotColor); err != nil {
		return p, fmt.Errorf("dot: %w", err)
	}
	if p.ring, err = config.ParseHexColor(cfg.RingColor); err != nil {
		return p, fmt.Errorf("ring: %w", err)
	}
	p.bg.A = uint8(float64(p.bg.A) * cfg.Alpha)
	return p, nil
}

// Present stores the snapshot drawn by the next Draw and forwards it to
// the mirrors.
func (o *Overlay) Present(s overlay.Snapshot) {
	o.mu.Lock()
	o.snap = s
	mirrors := o.mirrors
	o.mu.Unlock()
	mirrors.Present(s)
}

// Mirror also presents every frame the window samples to s. It must be
// called before Run.
func (o *Overlay) Mirror(s overlay.Surface) {
	o.mu.Lock()
	o.mirrors = append(o.mirrors, s)
	o.mu.Unlock()
}

// Closed reports whether the window has terminated.
func (o *Overlay) Closed() bool {
	return o.closed.Load()
}

func (o *Overlay) snapshot() overlay.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// SetVisible shows or hides the overlay contents
func (o *Overlay) SetVisible(visible bool) {
	o.hidden.Store(!visible)
}

// Quit asks the window to close at the next tick. Safe from any goroutine.
func (o *Overlay) Quit() {
	o.quit.Store(true)
}

// Run opens the window and blocks until it is closed. Must be called from
// the main goroutine.
func (o *Overlay) Run(frameInterval time.Duration) error {
	ebiten.SetWindowTitle(o.cfg.Title)
	ebiten.SetWindowSize(o.cfg.Width, o.cfg.Height)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(ticksPerSecond(frameInterval))

	log.Printf("Window: Opening %dx%d overlay", o.cfg.Width, o.cfg.Height)
	err := ebiten.RunGameWithOptions(o, &ebiten.RunGameOptions{
		ScreenTransparent: true,
		InitUnfocused:     true,
		SkipTaskbar:       true,
	})
	o.closed.Store(true)
	log.Println("Window: Closed.")
	return err
}

// ticksPerSecond converts a frame interval to an ebiten TPS of at least 1.
// Non-positive intervals keep ebiten's default.
func ticksPerSecond(frameInterval time.Duration) int {
	if frameInterval <= 0 {
		return ebiten.DefaultTPS
	}
	tps := int(time.Second / frameInterval)
	if tps < 1 {
		return 1
	}
	return tps
}

// Update is the UI tick.
func (o *Overlay) Update() error {
	if o.quit.Load() || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		o.closed.Store(true)
		return ebiten.Termination
	}

	if !o.placed {
		o.placed = true
		o.placeBottomRight()
	}
	o.handleDrag()

	o.sampler.Step(o)
	return nil
}

func (o *Overlay) placeBottomRight() {
	mw, mh := ebiten.Monitor().Size()
	if mw == 0 || mh == 0 {
		return
	}
	ebiten.SetWindowPosition(mw-o.cfg.Width-o.cfg.XOffset, mh-o.cfg.Height-o.cfg.YOffset)
}

// handleDrag moves the window so the grabbed point stays under the cursor
func (o *Overlay) handleDrag() {
	cx, cy := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		o.dragging = true
		o.grabX, o.grabY = cx, cy
	case o.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if cx != o.grabX || cy != o.grabY {
			wx, wy := ebiten.WindowPosition()
			ebiten.SetWindowPosition(wx+cx-o.grabX, wy+cy-o.grabY)
		}
	default:
		o.dragging = false
	}
}

// Draw renders the latest snapshot. A hidden overlay draws nothing.
func (o *Overlay) Draw(screen *ebiten.Image) {
	screen.Clear()
	if o.hidden.Load() {
		return
	}

	snap := o.snapshot()
	l := o.layout

	vector.DrawFilledRect(screen, 0, 0, float32(l.width), float32(l.height), o.colors.bg, false)

	mouse := fitText(o.face, "Mouse: "+snap.MouseLabel, l.textWidth)
	keys := fitText(o.face, "Keys: "+snap.KeyLabel, l.textWidth)
	text.Draw(screen, mouse, o.face, l.textX, l.mouseBaseline, o.colors.text)
	text.Draw(screen, keys, o.face, l.textX, l.keysBaseline, o.colors.text)

	icon := o.icons[snap.Icon]
	if icon == nil {
		icon = o.icons[overlay.IconNeutral]
	}
	if icon != nil {
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Translate(float64(l.imageX), float64(l.imageY))
		screen.DrawImage(icon, opts)
	}

	vector.StrokeCircle(screen, l.ringCX, l.ringCY, l.ringR, 2, o.colors.ring, true)
	vector.DrawFilledCircle(screen,
		l.ringCX+float32(snap.DotX), l.ringCY+float32(snap.DotY),
		float32(o.cfg.DotSize), o.colors.dot, true)
}

// Layout fixes the logical screen to the configured window size.
func (o *Overlay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return o.cfg.Width, o.cfg.Height
}
