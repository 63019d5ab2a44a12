package ui

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"sync/atomic"
	"time"

	"osk/internal/anim"
	"osk/internal/keyboard"
	"osk/internal/raster"
)

// Tooltip texts.
const (
	EnterPassText     = "Enter disk decryption passphrase"
	ErrorText         = "Incorrect passphrase"
	UnlockingDiskText = "Trying to unlock disk..."
	ToggleText        = "osk"
)

// Font draws a label centred in a rectangle.
type Font interface {
	DrawGlyph(dst draw.Image, r image.Rectangle, label string, c color.Color) error
}

// TextRenderer rasterizes a label onto an image sized to fit it.
type TextRenderer interface {
	Render(label string, c color.Color) (*image.RGBA, error)
}

// boxImage returns a size image filled with bg. Corners are cut to
// transparent with the given radius.
func boxImage(size image.Point, radius int, bg color.NRGBA) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Rect, image.NewUniform(bg), image.Point{}, draw.Src)
	raster.SmoothCorners(img.Rect, radius, raster.BufferSink{Img: img})
	return img
}

// labelTexture renders text centred on a rounded box and uploads it.
func labelTexture(r keyboard.Renderer, f Font, size image.Point, radius int, bg, fg color.NRGBA, text string) (keyboard.Texture, error) {
	img := boxImage(size, radius, bg)
	if err := f.DrawGlyph(img, img.Rect, text, fg); err != nil {
		return nil, err
	}
	return r.NewTexture(img)
}

// copyClipped draws all of tex with its top left corner at at, cut to clip.
func copyClipped(r keyboard.Renderer, tex keyboard.Texture, at image.Point, clip image.Rectangle) {
	dst := image.Rectangle{Min: at, Max: at.Add(tex.Size())}
	vis := dst.Intersect(clip)
	if vis.Empty() {
		return
	}
	r.Copy(tex, vis.Sub(dst.Min), vis)
}

// Tooltip is a fixed message shown in place of the input box.
type Tooltip struct {
	tex keyboard.Texture
}

// NewTooltip renders text on a size box.
func NewTooltip(r keyboard.Renderer, f Font, size image.Point, radius int, bg, fg color.NRGBA, text string) (*Tooltip, error) {
	tex, err := labelTexture(r, f, size, radius, bg, fg, text)
	if err != nil {
		return nil, err
	}
	return &Tooltip{tex: tex}, nil
}

// Draw draws the tooltip with its top left corner at pt.
func (t *Tooltip) Draw(r keyboard.Renderer, pt image.Point) {
	sz := t.tex.Size()
	r.Copy(t.tex, image.Rectangle{Max: sz}, image.Rectangle{Min: pt, Max: pt.Add(sz)})
}

// Toggle is the button that brings back a hidden on-screen keyboard. It is
// visible exactly when the keyboard is hidden. Visibility may be changed
// from any goroutine.
type Toggle struct {
	rect    image.Rectangle
	tex     keyboard.Texture
	visible atomic.Bool
	log     *slog.Logger
}

// NewToggle renders the button for rect.
func NewToggle(r keyboard.Renderer, f Font, rect image.Rectangle, bg, fg color.NRGBA, log *slog.Logger) (*Toggle, error) {
	tex, err := labelTexture(r, f, rect.Size(), 0, bg, fg, ToggleText)
	if err != nil {
		return nil, err
	}
	return &Toggle{rect: rect, tex: tex, log: log}, nil
}

// Visible reports whether the button is shown.
func (t *Toggle) Visible() bool { return t.visible.Load() }

// SetVisible shows or hides the button.
func (t *Toggle) SetVisible(v bool) {
	if t.visible.Swap(v) != v {
		t.log.Info("keyboard toggle status changed", "visible", v)
	}
}

// Contains reports whether a tap at x, y hits the button. Edges count.
func (t *Toggle) Contains(x, y int) bool {
	return x >= t.rect.Min.X && x <= t.rect.Max.X &&
		y >= t.rect.Min.Y && y <= t.rect.Max.Y
}

// Rect returns the button's screen rectangle.
func (t *Toggle) Rect() image.Rectangle { return t.rect }

// Draw draws the button.
func (t *Toggle) Draw(r keyboard.Renderer) {
	r.Copy(t.tex, image.Rectangle{Max: t.rect.Size()}, t.rect)
}

// InputBox is the passphrase field. Every typed glyph is shown as one dot.
type InputBox struct {
	box image.Point
	tex keyboard.Texture
	dot keyboard.Texture
}

// NewInputBox renders the box background and the dot glyph. dots renders
// at half the box height; a nil dots or empty glyph draws no dots.
func NewInputBox(r keyboard.Renderer, size image.Point, radius int, bg, fg color.NRGBA, dots TextRenderer, glyph string) (*InputBox, error) {
	tex, err := r.NewTexture(boxImage(size, radius, bg))
	if err != nil {
		return nil, err
	}
	b := &InputBox{box: size, tex: tex}
	if dots == nil || glyph == "" {
		return b, nil
	}
	img, err := dots.Render(glyph, fg)
	if err != nil {
		return nil, err
	}
	if b.dot, err = r.NewTexture(img); err != nil {
		return nil, err
	}
	return b, nil
}

// DotSize is the spacing and nominal size of one dot in a box of height h.
func DotSize(h int) int { return h / 2 }

// dotCenters lays out n dots in r from left to right. Once the row no
// longer fits, it is shifted so the last dot stays inside the right edge
// and dots scrolled past the left edge are dropped. Centres are returned
// from the last dot to the first. bounce, when set, gives the y of dot i.
func dotCenters(r image.Rectangle, n int, bounce func(i, y int) int) []image.Point {
	size := DotSize(r.Dy())
	padding := r.Dy() / 2
	ypos := r.Min.Y + r.Dy()/2
	offset := 0
	var pts []image.Point
	for i := n - 1; i >= 0; i-- {
		x := r.Min.X + padding + i*size - offset
		if x+padding > r.Max.X {
			offset = x + padding - r.Max.X
			x -= offset
		}
		if x+size < r.Min.X {
			break
		}
		y := ypos
		if bounce != nil {
			y = bounce(i, ypos)
		}
		pts = append(pts, image.Pt(x, y))
	}
	return pts
}

// Draw draws the box at rect with n dots. When busy, the dots bounce with
// the wall-clock tick.
func (b *InputBox) Draw(r keyboard.Renderer, rect image.Rectangle, n int, busy bool, tick time.Duration) {
	r.Copy(b.tex, image.Rectangle{Max: b.box}, rect)
	if b.dot == nil || n == 0 {
		return
	}
	var bounce func(i, y int) int
	if busy {
		deflection := rect.Dy() / 4
		bounce = func(i, y int) int { return anim.Bounce(y, tick, i, deflection) }
	}
	half := DotSize(rect.Dy()) / 2
	for _, c := range dotCenters(rect, n, bounce) {
		copyClipped(r, b.dot, c.Sub(image.Pt(half, half)), rect)
	}
}
