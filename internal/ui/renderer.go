package ui

import (
	"errors"
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"osk/internal/keyboard"
)

var errEmptyImage = errors.New("ui: empty image")

// texture is an uploaded image.
type texture struct {
	img  paint.ImageOp
	size image.Point
}

func (t *texture) Size() image.Point { return t.size }

// Renderer records drawing calls into a Gio operation list. Begin must be
// called with the frame's ops before anything is drawn.
type Renderer struct {
	ops   *op.Ops
	color color.NRGBA
}

// NewRenderer returns a renderer with no target.
func NewRenderer() *Renderer {
	return &Renderer{color: color.NRGBA{A: 0xFF}}
}

// Begin targets ops for the coming frame.
func (r *Renderer) Begin(ops *op.Ops) { r.ops = ops }

// NewTexture implements keyboard.Renderer. Pixels are sampled without
// filtering so surfaces land on screen unchanged.
func (r *Renderer) NewTexture(img *image.RGBA) (keyboard.Texture, error) {
	if img == nil || img.Rect.Empty() {
		return nil, errEmptyImage
	}
	imgOp := paint.NewImageOp(img)
	imgOp.Filter = paint.FilterNearest
	return &texture{img: imgOp, size: img.Rect.Size()}, nil
}

// Copy implements keyboard.Renderer. src is scaled to dst when their sizes
// differ.
func (r *Renderer) Copy(tex keyboard.Texture, src, dst image.Rectangle) {
	t, ok := tex.(*texture)
	if !ok || src.Empty() || dst.Empty() {
		return
	}
	defer clip.Rect(dst).Push(r.ops).Pop()
	scale := f32.Pt(float32(dst.Dx())/float32(src.Dx()), float32(dst.Dy())/float32(src.Dy()))
	tr := f32.Affine2D{}.
		Offset(f32.Pt(float32(-src.Min.X), float32(-src.Min.Y))).
		Scale(f32.Point{}, scale).
		Offset(f32.Pt(float32(dst.Min.X), float32(dst.Min.Y)))
	defer op.Affine(tr).Push(r.ops).Pop()
	t.img.Add(r.ops)
	paint.PaintOp{}.Add(r.ops)
}

// SetDrawColor implements keyboard.Renderer.
func (r *Renderer) SetDrawColor(c color.NRGBA) { r.color = c }

// DrawPoint implements raster.PointDrawer.
func (r *Renderer) DrawPoint(x, y int) {
	r.FillRect(image.Rect(x, y, x+1, y+1))
}

// FillRect implements keyboard.Renderer.
func (r *Renderer) FillRect(rect image.Rectangle) {
	if rect.Empty() {
		return
	}
	paint.FillShape(r.ops, r.color, clip.Rect(rect).Op())
}
