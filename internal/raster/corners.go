package raster

import (
	"image"
	"image/color"
)

// PixelSink receives the pixels that lie outside a rounded corner.
type PixelSink interface {
	Set(x, y int)
}

// SmoothCorners emits, for each corner of r, the pixels between the
// rectangle edge and a curve of the given radius. r is half-open: pixels
// with r.Min.X <= x < r.Max.X belong to it. A radius of 0 emits nothing.
func SmoothCorners(r image.Rectangle, radius int, sink PixelSink) {
	if radius <= 0 || r.Empty() {
		return
	}
	left, top := r.Min.X, r.Min.Y
	right, bottom := r.Max.X-1, r.Max.Y-1
	origin := image.Point{}

	tl := QuadBezier(image.Pt(left, top), image.Pt(0, radius), origin, image.Pt(radius, 0))
	for _, p := range tl {
		for x := left; x < p.X; x++ {
			sink.Set(x, p.Y)
		}
	}

	tr := QuadBezier(image.Pt(right, top), image.Pt(0, radius), origin, image.Pt(-radius, 0))
	for _, p := range tr {
		for x := right; x > p.X; x-- {
			sink.Set(x, p.Y)
		}
	}

	bl := QuadBezier(image.Pt(left, bottom), image.Pt(0, -radius), origin, image.Pt(radius, 0))
	for _, p := range bl {
		for x := left; x < p.X; x++ {
			sink.Set(x, p.Y)
		}
	}

	br := QuadBezier(image.Pt(right, bottom), image.Pt(0, -radius), origin, image.Pt(-radius, 0))
	for _, p := range br {
		for x := right; x > p.X; x-- {
			sink.Set(x, p.Y)
		}
	}
}

// BufferSink writes a fill colour into an RGBA buffer. Writes outside the
// buffer are dropped.
type BufferSink struct {
	Img   *image.RGBA
	Color color.RGBA
}

// Set implements PixelSink.
func (s BufferSink) Set(x, y int) {
	if !image.Pt(x, y).In(s.Img.Rect) {
		return
	}
	s.Img.SetRGBA(x, y, s.Color)
}

// PointDrawer draws single points with its current draw colour.
type PointDrawer interface {
	DrawPoint(x, y int)
}

// RendererSink draws every pixel as a point through a renderer. Clip must be
// set to the target bounds; points outside it are skipped.
type RendererSink struct {
	Renderer PointDrawer
	Clip     image.Rectangle
}

// Set implements PixelSink.
func (s RendererSink) Set(x, y int) {
	if !image.Pt(x, y).In(s.Clip) {
		return
	}
	s.Renderer.DrawPoint(x, y)
}
