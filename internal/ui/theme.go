package ui

import (
	"image"
	"image/color"

	"osk/internal/config"
	"osk/internal/keyboard"
	"osk/internal/raster"
)

// errorBackground is the fill of the incorrect-passphrase tooltip.
var errorBackground = color.NRGBA{R: 239, G: 59, B: 59, A: 0xFF}

// Palette defines the screen colours.
type Palette struct {
	Wallpaper color.NRGBA
	InputBox  color.NRGBA
	InputText color.NRGBA
	Error     color.NRGBA
	ErrorText color.NRGBA
	Keyboard  keyboard.Colors
}

// Metrics is the screen geometry, derived once from the screen size.
type Metrics struct {
	Screen         image.Point
	KeyboardHeight int
	InputSize      image.Point
	InputX         int
	InputRadius    int
	Toggle         image.Rectangle
}

// Theme bundles colours and geometry.
type Theme struct {
	Palette Palette
	Metrics Metrics
	// ClampedRadius is set when the configured inputbox radius was rejected.
	ClampedRadius bool
}

// NewTheme derives the theme for a screen of the given size. showOSK is
// whether the on-screen keyboard is visible at startup; the input box is
// sized for the font alone when it is not.
func NewTheme(cfg *config.Config, screen image.Point, showOSK bool) (*Theme, error) {
	p, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	t := &Theme{
		Palette: Palette{
			Wallpaper: p.Wallpaper,
			InputBox:  p.InputBoxBackground,
			InputText: p.InputBoxForeground,
			Error:     errorBackground,
			ErrorText: color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
			Keyboard:  keyboardColors(p),
		},
		Metrics: NewMetrics(screen, cfg.KeyboardFontSize, showOSK),
	}
	t.Metrics.InputRadius = raster.ClampRadius(cfg.InputBoxRadius, t.Metrics.InputSize.Y)
	t.ClampedRadius = t.Metrics.InputRadius != cfg.InputBoxRadius
	return t, nil
}

func keyboardColors(p config.Palette) keyboard.Colors {
	return keyboard.Colors{
		Background: p.KeyboardBackground,
		Foreground: p.KeyForeground,
		Letter:     p.KeyBackgroundLetter,
		Return:     p.KeyBackgroundReturn,
		Other:      p.KeyBackgroundOther,
		Highlight:  p.KeyBackgroundReturn,
	}
}

// NewMetrics lays out a screen. Portrait screens get a keyboard sized by
// width so keys stay roughly square.
func NewMetrics(screen image.Point, fontSize int, showOSK bool) Metrics {
	w, h := screen.X, screen.Y
	m := Metrics{
		Screen:         screen,
		KeyboardHeight: h / 3 * 2,
		InputSize:      image.Pt(int(float64(w)*0.9), w/10),
		InputX:         w / 20,
	}
	if h > w {
		m.KeyboardHeight = int(float64(w) / 1.6)
	}
	if !showOSK {
		m.InputSize.Y = fontSize + 8
	}
	tw, th := w/10, h/15
	m.Toggle = image.Rect(w-tw, h-th, w, h)
	return m
}

// InputRect places the input box above a keyboard whose top edge is at
// screen y top. With the keyboard hidden, top is the screen height and the
// box is centred in the upper half.
func (m Metrics) InputRect(top int, osk bool) image.Rectangle {
	y := int(float64(top) / 3.5)
	if !osk {
		y = top / 2
	}
	origin := image.Pt(m.InputX, y)
	return image.Rectangle{Min: origin, Max: origin.Add(m.InputSize)}
}
