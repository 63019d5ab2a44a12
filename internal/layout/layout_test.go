package layout

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestLayersShape(t *testing.T) {
	ls := Layers()
	for i, l := range ls {
		assert.Equal(t, i, l.Index, "layer index")
		for r, row := range l.Rows {
			assert.NotEmpty(t, row, "layer %d row %d", i, r)
			assert.LessOrEqual(t, len(row), MaxRowKeys, "layer %d row %d", i, r)
			for _, k := range row {
				assert.Equal(t, 1, utf8.RuneCountInString(k), "key %q is one glyph", k)
			}
		}
	}
}

func TestLayersReturnsCopy(t *testing.T) {
	ls := Layers()
	ls[0].Index = 42
	assert.Equal(t, 0, Layers()[0].Index)
}

func TestNumbersLayer(t *testing.T) {
	l := Layers()[LayerNumbers]
	assert.Equal(t, LayerNumbers, l.Index)
	assert.Equal(t, "1", l.Rows[0][0])
}

func TestSpecialKeys(t *testing.T) {
	tests := []struct {
		layer int
		side  string
		lkey  string
	}{
		{LayerLetters, KeycapShift, KeycapNumbers},
		{LayerShifted, KeycapShift, KeycapNumbers},
		{LayerNumbers, KeycapSymbols, KeycapABC},
		{LayerSymbols, KeycapNumbers, KeycapABC},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.side, SideKey(tt.layer).Key, "side key of layer %d", tt.layer)
		assert.Equal(t, tt.lkey, LayerKey(tt.layer).Key, "layer key of layer %d", tt.layer)
	}
	assert.Equal(t, "=\\<", SideKey(LayerNumbers).Cap)
	assert.Equal(t, "OK", Return.Cap)
}

func TestNextShiftLayer(t *testing.T) {
	assert.Equal(t, LayerShifted, NextShiftLayer(LayerLetters))
	assert.Equal(t, LayerLetters, NextShiftLayer(LayerShifted))
	assert.Equal(t, LayerLetters, NextShiftLayer(LayerNumbers))
	assert.Equal(t, LayerLetters, NextShiftLayer(LayerSymbols))
}

func TestAllowed(t *testing.T) {
	for _, s := range []string{"q", "Q", "0", "€", "\\", " ", ".", "π"} {
		assert.True(t, Allowed(s), "%q", s)
	}
	for _, s := range []string{"ä", "\t", "", KeycapShift, "ab"} {
		assert.False(t, Allowed(s), "%q", s)
	}
}

func TestIsSpecial(t *testing.T) {
	assert.True(t, IsSpecial(KeycapReturn))
	assert.True(t, IsSpecial(KeycapABC))
	assert.False(t, IsSpecial(KeycapSpace))
	assert.False(t, IsSpecial("a"))
}
