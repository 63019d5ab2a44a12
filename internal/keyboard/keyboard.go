// Package keyboard builds, draws and hit-tests the on-screen keyboard.
//
// Each layer is rendered once into an RGBA surface at Init and uploaded as a
// texture. Drawing copies the visible part of the active layer's texture to
// the bottom of the screen according to the slide position.
package keyboard

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"osk/internal/anim"
	"osk/internal/layout"
	"osk/internal/logging"
	"osk/internal/raster"
)

// ErrSurface is returned when a layer surface, texture or label cannot be
// built. It is fatal for the host.
var ErrSurface = errors.New("keyboard: failed to build layer surface")

// Texture is a renderer-owned image handle.
type Texture interface {
	Size() image.Point
}

// Renderer is the drawing backend the keyboard is drawn with.
type Renderer interface {
	raster.PointDrawer

	// NewTexture uploads img. The renderer may keep a reference to img.
	NewTexture(img *image.RGBA) (Texture, error)
	// Copy draws the src part of tex into dst.
	Copy(tex Texture, src, dst image.Rectangle)
	// SetDrawColor sets the colour used by DrawPoint and FillRect.
	SetDrawColor(c color.NRGBA)
	FillRect(r image.Rectangle)
}

// GlyphRenderer draws key labels.
type GlyphRenderer interface {
	DrawGlyph(dst draw.Image, r image.Rectangle, label string, c color.Color) error
	Measure(label string) image.Point
}

// Layer is one built key layer.
type Layer struct {
	Index   int
	Def     layout.Layer
	Areas   []TouchArea
	Surface *image.RGBA
	Texture Texture
}

// Config describes the keyboard's size and appearance.
type Config struct {
	Width, Height int
	KeyRadius     int
	Colors        Colors
	Animations    bool
}

// Option configures a Keyboard.
type Option func(*Keyboard)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(k *Keyboard) { k.log = l }
}

// WithClock sets the animation clock.
func WithClock(c anim.Clock) Option {
	return func(k *Keyboard) { k.clock = c }
}

// WithPosition sets the initial slide position and target.
func WithPosition(pos, target float64) Option {
	return func(k *Keyboard) { k.pos, k.target = pos, target }
}

// Keyboard is the keyboard aggregate. It is used from the UI goroutine only.
type Keyboard struct {
	cfg    Config
	glyphs GlyphRenderer
	log    *slog.Logger
	clock  anim.Clock

	pos, target float64
	sched       *anim.Scheduler

	layers    [layout.LayerCount]*Layer
	active    int
	keyRadius int
	built     bool

	highlight    TouchArea
	hasHighlight bool
}

// New creates a keyboard. Init must be called before Draw.
func New(cfg Config, glyphs GlyphRenderer, opts ...Option) *Keyboard {
	k := &Keyboard{
		cfg:    cfg,
		glyphs: glyphs,
		log:    logging.Discard(),
		target: 1,
	}
	for _, opt := range opts {
		opt(k)
	}
	schedOpts := []anim.Option{anim.WithAnimations(cfg.Animations)}
	if k.clock != nil {
		schedOpts = append(schedOpts, anim.WithClock(k.clock))
	}
	k.sched = anim.NewScheduler(k.pos, k.target, schedOpts...)
	return k
}

// Build renders every layer surface without uploading textures.
func (k *Keyboard) Build() error {
	if k.built {
		return nil
	}
	b := k.builder()
	for i, def := range layout.Layers() {
		surface, areas, err := b.build(def)
		if err != nil {
			k.log.Error("unable to generate keyboard surface", "layer", i, "error", err)
			return err
		}
		k.layers[i] = &Layer{Index: i, Def: def, Areas: areas, Surface: surface}
	}
	k.built = true
	return nil
}

// Init builds every layer and uploads its texture.
func (k *Keyboard) Init(r Renderer) error {
	if err := k.Build(); err != nil {
		return err
	}
	for _, l := range k.layers {
		tex, err := r.NewTexture(l.Surface)
		if err != nil {
			k.log.Error("unable to generate keyboard texture", "layer", l.Index, "error", err)
			return errors.Join(ErrSurface, err)
		}
		l.Texture = tex
	}
	k.sched.Reset()
	return nil
}

func (k *Keyboard) builder() *builder {
	b := &builder{
		width:  k.cfg.Width,
		height: k.cfg.Height,
		colors: k.cfg.Colors,
		glyphs: k.glyphs,
	}
	shorter := min(b.width/10, b.rowHeight()) - 2*b.padding()
	k.keyRadius = raster.ClampRadius(k.cfg.KeyRadius, shorter)
	if k.keyRadius != k.cfg.KeyRadius {
		k.log.Warn("key-radius must be below bezier resolution and 2/3 of the key size",
			"radius", k.cfg.KeyRadius, "resolution", raster.BezierResolution, "key_size", shorter)
	}
	b.radius = k.keyRadius
	return b
}

// Draw advances the slide animation and draws the visible part of the
// active layer at the bottom of a screen screenHeight pixels tall.
func (k *Keyboard) Draw(r Renderer, screenHeight int) {
	k.sched.Update()

	l := k.layers[k.active]
	if l == nil || l.Texture == nil {
		return
	}
	h := k.visibleHeight()
	if h <= 0 {
		return
	}
	top := screenHeight - h
	dst := image.Rect(0, top, k.cfg.Width, screenHeight)
	r.Copy(l.Texture, image.Rect(0, 0, k.cfg.Width, h), dst)

	if k.hasHighlight {
		face := k.highlight.Rect().Inset(k.cfg.Width / 100).Add(image.Pt(0, top)).Intersect(dst)
		if face.Empty() {
			return
		}
		r.SetDrawColor(k.cfg.Colors.Highlight)
		r.FillRect(face)
		if k.keyRadius > 0 {
			r.SetDrawColor(k.cfg.Colors.Background)
			raster.SmoothCorners(face, k.keyRadius, raster.RendererSink{Renderer: r, Clip: dst})
		}
	}
}

func (k *Keyboard) visibleHeight() int {
	return int(float64(k.cfg.Height) * k.sched.Position())
}

// Top returns the screen y of the keyboard's top edge.
func (k *Keyboard) Top(screenHeight int) int {
	return screenHeight - k.visibleHeight()
}

// SetActiveLayer selects layer n. Out of range values are ignored.
func (k *Keyboard) SetActiveLayer(n int) {
	if n < 0 || n >= layout.LayerCount {
		k.log.Warn("unknown layer number", "layer", n)
		return
	}
	if n != k.active {
		k.hasHighlight = false
	}
	k.active = n
}

// ActiveLayer returns the index of the active layer.
func (k *Keyboard) ActiveLayer() int { return k.active }

// Layer returns built layer n.
func (k *Keyboard) Layer(n int) (*Layer, bool) {
	if n < 0 || n >= layout.LayerCount || k.layers[n] == nil {
		return nil, false
	}
	return k.layers[n], true
}

// SetTargetPosition sets where the slide animation is heading, 0 hidden
// and 1 fully shown.
func (k *Keyboard) SetTargetPosition(p float64) { k.sched.SetTarget(p) }

// TargetPosition returns the slide target.
func (k *Keyboard) TargetPosition() float64 { return k.sched.Target() }

// Position returns the current slide position.
func (k *Keyboard) Position() float64 { return k.sched.Position() }

// InSlideAnimation reports whether the keyboard is still moving.
func (k *Keyboard) InSlideAnimation() bool { return k.sched.InSlideAnimation() }

// Width returns the keyboard width in pixels.
func (k *Keyboard) Width() int { return k.cfg.Width }

// Height returns the fully shown keyboard height in pixels.
func (k *Keyboard) Height() int { return k.cfg.Height }

// KeyRadius returns the corner radius in effect after clamping.
func (k *Keyboard) KeyRadius() int { return k.keyRadius }

// SetHighlight marks a as pressed.
func (k *Keyboard) SetHighlight(a TouchArea) {
	k.highlight = a
	k.hasHighlight = true
}

// ClearHighlight removes the pressed marker.
func (k *Keyboard) ClearHighlight() { k.hasHighlight = false }

// Highlight returns the pressed key, if any.
func (k *Keyboard) Highlight() (TouchArea, bool) {
	return k.highlight, k.hasHighlight
}
