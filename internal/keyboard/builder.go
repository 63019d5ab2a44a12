package keyboard

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"osk/internal/layout"
	"osk/internal/raster"
)

// Colors are the fills used when building layer surfaces.
type Colors struct {
	Background color.NRGBA // behind and between keys
	Foreground color.NRGBA // key labels
	Letter     color.NRGBA // character keys
	Return     color.NRGBA // the OK key
	Other      color.NRGBA // layer, shift and backspace keys
	Highlight  color.NRGBA // overlay on a pressed key
}

// builder lays out one layer's keys on a surface of the keyboard's size.
type builder struct {
	width, height int
	radius        int
	colors        Colors
	glyphs        GlyphRenderer
}

func (b *builder) rowHeight() int { return b.height / (layout.RowCount + 1) }
func (b *builder) colWidth() int  { return b.width / 20 }
func (b *builder) padding() int   { return b.width / 100 }

// build renders def and returns its surface together with one touch area
// per key, in draw order.
func (b *builder) build(def layout.Layer) (*image.RGBA, []TouchArea, error) {
	if b.width <= 0 || b.height <= 0 {
		return nil, nil, fmt.Errorf("%w: size %dx%d", ErrSurface, b.width, b.height)
	}
	surface := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	draw.Draw(surface, surface.Bounds(), image.NewUniform(b.colors.Background), image.Point{}, draw.Src)

	var areas []TouchArea
	rowH := b.rowHeight()
	colw := b.colWidth()
	keyw := b.width / 10

	y := 0
	for i, row := range def.Rows {
		x := 0
		if i < 2 && len(row) < layout.MaxRowKeys {
			x = b.width / 20
		}
		if i == 2 {
			x = b.width/20 + colw*2
		}
		for j, key := range row {
			a, err := b.drawKey(surface, x+j*keyw, y, keyw, rowH, key, key, b.colors.Letter)
			if err != nil {
				return nil, nil, err
			}
			areas = append(areas, a)
		}
		y += rowH
	}

	side := b.width/20 + colw*2
	keys := []struct {
		x, y, w int
		key     layout.Special
		fill    color.NRGBA
	}{
		{colw, y, colw * 3, layout.LayerKey(def.Index), b.colors.Other},
		{0, y - rowH, side, layout.SideKey(def.Index), b.colors.Other},
		{b.width/20 + colw*16, y - rowH, side, layout.Backspace, b.colors.Other},
		{colw * 5, y, colw * 8, layout.Space, b.colors.Letter},
		{colw * 13, y, colw * 2, layout.Period, b.colors.Letter},
		{colw * 15, y, colw * 5, layout.Return, b.colors.Return},
	}
	for _, k := range keys {
		a, err := b.drawKey(surface, k.x, k.y, k.w, rowH, k.key.Cap, k.key.Key, k.fill)
		if err != nil {
			return nil, nil, err
		}
		areas = append(areas, a)
	}
	return surface, areas, nil
}

// drawKey paints one key face inset by the padding and returns the
// un-padded touch area.
func (b *builder) drawKey(dst *image.RGBA, x, y, w, h int, label, key string, fill color.NRGBA) (TouchArea, error) {
	face := b.face(image.Rect(x, y, x+w, y+h))
	draw.Draw(dst, face, image.NewUniform(fill), image.Point{}, draw.Src)
	if b.radius > 0 {
		raster.SmoothCorners(face, b.radius, raster.BufferSink{
			Img:   dst,
			Color: rgba(b.colors.Background),
		})
	}
	if err := b.glyphs.DrawGlyph(dst, face, label, b.colors.Foreground); err != nil {
		return TouchArea{}, fmt.Errorf("%w: key %q: %v", ErrSurface, key, err)
	}
	return TouchArea{Label: key, X1: x, X2: x + w, Y1: y, Y2: y + h}, nil
}

// face returns the visible key rectangle inside a touch rectangle.
func (b *builder) face(r image.Rectangle) image.Rectangle {
	return r.Inset(b.padding())
}

func rgba(c color.NRGBA) color.RGBA {
	r, g, bl, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: uint8(a >> 8)}
}
