package ui

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osk/internal/keyboard"
	"osk/internal/logging"
)

type fakeTex struct{ size image.Point }

func (t fakeTex) Size() image.Point { return t.size }

type copyCall struct {
	tex      keyboard.Texture
	src, dst image.Rectangle
}

type recorder struct {
	uploads []*image.RGBA
	copies  []copyCall
	fills   []image.Rectangle
	points  int
	fail    error
}

func (r *recorder) NewTexture(img *image.RGBA) (keyboard.Texture, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	r.uploads = append(r.uploads, img)
	return fakeTex{size: img.Rect.Size()}, nil
}

func (r *recorder) Copy(tex keyboard.Texture, src, dst image.Rectangle) {
	r.copies = append(r.copies, copyCall{tex: tex, src: src, dst: dst})
}

func (r *recorder) SetDrawColor(color.NRGBA) {}
func (r *recorder) DrawPoint(x, y int) { r.points++ }
func (r *recorder) FillRect(rr image.Rectangle) { r.fills = append(r.fills, rr) }

type fakeFont struct {
	labels []string
	err    error
}

func (f *fakeFont) DrawGlyph(dst draw.Image, r image.Rectangle, label string, c color.Color) error {
	f.labels = append(f.labels, label)
	return f.err
}

type fakeDots struct{ size image.Point }

func (f fakeDots) Render(label string, c color.Color) (*image.RGBA, error) {
	return image.NewRGBA(image.Rectangle{Max: f.size}), nil
}

var (
	red   = color.NRGBA{R: 0xFF, A: 0xFF}
	white = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

func TestBoxImageCorners(t *testing.T) {
	img := boxImage(image.Pt(40, 20), 5, red)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A, "corner cut")
	assert.Equal(t, uint8(0), img.RGBAAt(39, 19).A, "corner cut")
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, img.RGBAAt(20, 10))

	square := boxImage(image.Pt(40, 20), 0, red)
	assert.Equal(t, uint8(0xFF), square.RGBAAt(0, 0).A)
}

func TestDotCenters(t *testing.T) {
	r := image.Rect(0, 0, 200, 40)

	pts := dotCenters(r, 3, nil)
	assert.Equal(t, []image.Point{{60, 20}, {40, 20}, {20, 20}}, pts)

	assert.Empty(t, dotCenters(r, 0, nil))

	bounced := dotCenters(r, 2, func(i, y int) int { return y + i })
	assert.Equal(t, []image.Point{{40, 21}, {20, 20}}, bounced)
}

func TestDotCentersScroll(t *testing.T) {
	r := image.Rect(0, 0, 200, 40)
	pts := dotCenters(r, 12, nil)

	require.Len(t, pts, 11)
	assert.Equal(t, image.Pt(180, 20), pts[0], "last dot aligned to the right edge")
	assert.Equal(t, image.Pt(-20, 20), pts[len(pts)-1])
	for i := 1; i < len(pts); i++ {
		assert.Equal(t, 20, pts[i-1].X-pts[i].X, "spacing")
	}
}

func TestCopyClipped(t *testing.T) {
	rec := &recorder{}
	tex := fakeTex{size: image.Pt(16, 16)}
	clip := image.Rect(0, 0, 100, 100)

	copyClipped(rec, tex, image.Pt(-10, 10), clip)
	copyClipped(rec, tex, image.Pt(-20, 10), clip)
	copyClipped(rec, tex, image.Pt(50, 50), clip)

	require.Len(t, rec.copies, 2)
	assert.Equal(t, image.Rect(10, 0, 16, 16), rec.copies[0].src)
	assert.Equal(t, image.Rect(0, 10, 6, 26), rec.copies[0].dst)
	assert.Equal(t, image.Rect(0, 0, 16, 16), rec.copies[1].src)
	assert.Equal(t, image.Rect(50, 50, 66, 66), rec.copies[1].dst)
}

func TestInputBoxDraw(t *testing.T) {
	rec := &recorder{}
	box, err := NewInputBox(rec, image.Pt(200, 40), 0, red, white, fakeDots{size: image.Pt(20, 20)}, "•")
	require.NoError(t, err)
	require.Len(t, rec.uploads, 2)

	rect := image.Rect(10, 100, 210, 140)
	box.Draw(rec, rect, 0, false, 0)
	require.Len(t, rec.copies, 1)
	assert.Equal(t, rect, rec.copies[0].dst)

	rec.copies = nil
	box.Draw(rec, rect, 3, false, 0)
	require.Len(t, rec.copies, 4)
	assert.Equal(t, image.Rect(60, 110, 80, 130), rec.copies[1].dst)
	assert.Equal(t, image.Rect(20, 110, 40, 130), rec.copies[3].dst)
}

func TestInputBoxBusyBounces(t *testing.T) {
	rec := &recorder{}
	box, err := NewInputBox(rec, image.Pt(200, 40), 0, red, white, fakeDots{size: image.Pt(20, 20)}, "•")
	require.NoError(t, err)

	rect := image.Rect(0, 0, 200, 40)
	box.Draw(rec, rect, 2, true, 250*time.Millisecond)
	require.Len(t, rec.copies, 3)
	assert.NotEqual(t, rec.copies[1].dst.Min.Y, rec.copies[2].dst.Min.Y)
}

func TestInputBoxWithoutGlyph(t *testing.T) {
	rec := &recorder{}
	box, err := NewInputBox(rec, image.Pt(200, 40), 0, red, white, fakeDots{size: image.Pt(20, 20)}, "")
	require.NoError(t, err)
	require.Len(t, rec.uploads, 1)

	box.Draw(rec, image.Rect(0, 0, 200, 40), 5, false, 0)
	assert.Len(t, rec.copies, 1)
}

func TestInputBoxUploadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewInputBox(&recorder{fail: boom}, image.Pt(200, 40), 0, red, white, nil, "")
	assert.ErrorIs(t, err, boom)
}

func TestTooltip(t *testing.T) {
	rec := &recorder{}
	font := &fakeFont{}
	tip, err := NewTooltip(rec, font, image.Pt(300, 30), 4, red, white, ErrorText)
	require.NoError(t, err)
	assert.Equal(t, []string{ErrorText}, font.labels)

	tip.Draw(rec, image.Pt(15, 40))
	require.Len(t, rec.copies, 1)
	assert.Equal(t, image.Rect(15, 40, 315, 70), rec.copies[0].dst)

	font.err = errors.New("no font")
	_, err = NewTooltip(rec, font, image.Pt(300, 30), 4, red, white, EnterPassText)
	assert.Error(t, err)
}

func TestToggle(t *testing.T) {
	rec := &recorder{}
	rect := image.Rect(720, 1200, 800, 1280)
	tg, err := NewToggle(rec, &fakeFont{}, rect, red, white, logging.Discard())
	require.NoError(t, err)

	assert.False(t, tg.Visible())
	tg.SetVisible(true)
	assert.True(t, tg.Visible())

	tests := []struct {
		x, y int
		want bool
	}{
		{720, 1200, true},
		{800, 1280, true},
		{760, 1240, true},
		{719, 1240, false},
		{760, 1199, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tg.Contains(tt.x, tt.y), "(%d,%d)", tt.x, tt.y)
	}

	tg.Draw(rec)
	require.Len(t, rec.copies, 1)
	assert.Equal(t, rect, rec.copies[0].dst)
}
