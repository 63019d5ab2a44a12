// Package glyph rasterizes key labels and passphrase dots with
// golang.org/x/image/font.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrFontLoad is returned when a font file cannot be read or parsed.
var ErrFontLoad = errors.New("glyph: failed to load font")

// Face draws text at one size. It is safe for concurrent use.
type Face struct {
	mu      sync.Mutex
	face    font.Face
	size    int
	ascent  int
	descent int
}

// Load opens the font at path, or the built-in Go font when path is empty.
func Load(path string, size int) (*Face, error) {
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
		}
		data = b
	}
	return New(data, size)
}

// New parses an OpenType/TrueType font from memory.
func New(data []byte, size int) (*Face, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size %d", ErrFontLoad, size)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	m := face.Metrics()
	return &Face{
		face:    face,
		size:    size,
		ascent:  m.Ascent.Ceil(),
		descent: m.Descent.Ceil(),
	}, nil
}

// Size returns the pixel size the face was opened with.
func (f *Face) Size() int { return f.size }

// Measure returns the advance width and line height of label.
func (f *Face) Measure(label string) image.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	if label == "" {
		return image.Point{Y: f.ascent + f.descent}
	}
	w := font.MeasureString(f.face, label)
	return image.Point{X: w.Ceil(), Y: f.ascent + f.descent}
}

// DrawGlyph draws label centred in r.
func (f *Face) DrawGlyph(dst draw.Image, r image.Rectangle, label string, c color.Color) error {
	if label == "" {
		return nil
	}
	sz := f.Measure(label)
	x := r.Min.X + (r.Dx()-sz.X)/2
	y := r.Min.Y + (r.Dy()-sz.Y)/2 + f.ascent

	f.mu.Lock()
	defer f.mu.Unlock()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
	return nil
}

// Render draws label on a transparent image sized to fit it.
func (f *Face) Render(label string, c color.Color) (*image.RGBA, error) {
	sz := f.Measure(label)
	if sz.X == 0 {
		return nil, fmt.Errorf("glyph: %q has no width", label)
	}
	img := image.NewRGBA(image.Rect(0, 0, sz.X, sz.Y))
	if err := f.DrawGlyph(img, img.Bounds(), label, c); err != nil {
		return nil, err
	}
	return img, nil
}

// Close releases the face.
func (f *Face) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.face.Close()
}
