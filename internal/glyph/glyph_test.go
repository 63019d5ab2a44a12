package glyph

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltin(t *testing.T) {
	f, err := Load("", 24)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 24, f.Size())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ttf"), 24)
	assert.True(t, errors.Is(err, ErrFontLoad))
}

func TestNewRejectsGarbage(t *testing.T) {
	_, err := New([]byte("not a font"), 24)
	assert.True(t, errors.Is(err, ErrFontLoad))

	_, err = Load("", 0)
	assert.True(t, errors.Is(err, ErrFontLoad))
}

func TestMeasure(t *testing.T) {
	f, err := Load("", 24)
	require.NoError(t, err)
	defer f.Close()

	one := f.Measure("m")
	two := f.Measure("mm")
	assert.Greater(t, one.X, 0)
	assert.Greater(t, one.Y, 0)
	assert.Equal(t, one.Y, two.Y)
	assert.Greater(t, two.X, one.X)
	assert.Equal(t, 0, f.Measure("").X)
}

func TestDrawGlyphStaysInRect(t *testing.T) {
	f, err := Load("", 24)
	require.NoError(t, err)
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	r := image.Rect(50, 20, 150, 80)
	require.NoError(t, f.DrawGlyph(img, r, "W", color.White))

	inside, outside := 0, 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y).A == 0 {
				continue
			}
			if image.Pt(x, y).In(r) {
				inside++
			} else {
				outside++
			}
		}
	}
	assert.Greater(t, inside, 0)
	assert.Equal(t, 0, outside)
}

func TestDrawGlyphEmptyLabel(t *testing.T) {
	f, err := Load("", 24)
	require.NoError(t, err)
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.NoError(t, f.DrawGlyph(img, img.Bounds(), "", color.White))
}

func TestRender(t *testing.T) {
	f, err := Load("", 24)
	require.NoError(t, err)
	defer f.Close()

	img, err := f.Render("•", color.White)
	require.NoError(t, err)
	assert.Equal(t, f.Measure("•"), img.Bounds().Size())

	_, err = f.Render("", color.White)
	assert.Error(t, err)
}
