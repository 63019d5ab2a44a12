// Package config handles configuration loading and validation for osk.
//
// The option names match the historical osk.conf keys so existing files keep
// working. Files may be TOML, YAML, JSON, or the legacy "key = value" format.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Config holds the unlocker's appearance and behaviour settings.
type Config struct {
	// Wallpaper is the screen background colour.
	Wallpaper string `toml:"wallpaper" json:"wallpaper" yaml:"wallpaper"`

	// KeyboardBackground fills the keyboard area behind the keys.
	KeyboardBackground string `toml:"keyboard-background" json:"keyboard-background" yaml:"keyboard-background"`

	// KeyboardFont is the path of a TrueType/OpenType font. Empty selects the
	// built-in Go font.
	KeyboardFont string `toml:"keyboard-font" json:"keyboard-font" yaml:"keyboard-font"`

	// KeyboardFontSize is the glyph size in pixels.
	KeyboardFontSize int `toml:"keyboard-font-size" json:"keyboard-font-size" yaml:"keyboard-font-size"`

	// KeyboardMap names the key layout. Only "us" exists.
	KeyboardMap string `toml:"keyboard-map" json:"keyboard-map" yaml:"keyboard-map"`

	KeyForeground       string `toml:"key-foreground" json:"key-foreground" yaml:"key-foreground"`
	KeyBackgroundLetter string `toml:"key-background-letter" json:"key-background-letter" yaml:"key-background-letter"`
	KeyBackgroundReturn string `toml:"key-background-return" json:"key-background-return" yaml:"key-background-return"`
	KeyBackgroundOther  string `toml:"key-background-other" json:"key-background-other" yaml:"key-background-other"`

	// KeyRadius rounds key corners. Values the keys cannot fit are clamped to
	// 0 when the keyboard is built.
	KeyRadius int `toml:"key-radius" json:"key-radius" yaml:"key-radius"`

	InputBoxBackground string `toml:"inputbox-background" json:"inputbox-background" yaml:"inputbox-background"`
	InputBoxForeground string `toml:"inputbox-foreground" json:"inputbox-foreground" yaml:"inputbox-foreground"`
	InputBoxRadius     int    `toml:"inputbox-radius" json:"inputbox-radius" yaml:"inputbox-radius"`

	// InputBoxDotGlyph is drawn once per typed character. Empty draws
	// nothing.
	InputBoxDotGlyph string `toml:"inputbox-dot-glyph" json:"inputbox-dot-glyph" yaml:"inputbox-dot-glyph"`

	// Animations enables the keyboard slide and the busy bounce.
	Animations bool `toml:"animations" json:"animations" yaml:"animations"`

	// RepeatDelayMs is the minimum time between two accepted physical key
	// or text events.
	RepeatDelayMs int `toml:"repeat-delay-ms" json:"repeat-delay-ms" yaml:"repeat-delay-ms"`

	// MinUnlockTimeMs is the floor on every unlock attempt.
	MinUnlockTimeMs int `toml:"min-unlock-time-ms" json:"min-unlock-time-ms" yaml:"min-unlock-time-ms"`

	// MalformedRadii names the radius options that were not whole numbers
	// and were read as 0.
	MalformedRadii []string `toml:"-" json:"-" yaml:"-"`
}

// Palette holds the parsed colours of a Config.
type Palette struct {
	Wallpaper           color.NRGBA
	KeyboardBackground  color.NRGBA
	KeyForeground       color.NRGBA
	KeyBackgroundLetter color.NRGBA
	KeyBackgroundReturn color.NRGBA
	KeyBackgroundOther  color.NRGBA
	InputBoxBackground  color.NRGBA
	InputBoxForeground  color.NRGBA
}

// ErrBadColor is returned for colour strings that are not #RRGGBB or
// #AARRGGBB.
var ErrBadColor = errors.New("config: bad color")

// ParseColor parses "#RRGGBB" (opaque) or "#AARRGGBB".
func ParseColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	c := color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}
	if len(hex) == 8 {
		c.A = uint8(v >> 24)
	}
	return c, nil
}

// Palette parses every colour field. It fails on the first malformed value;
// Validate reports all of them.
func (c *Config) Palette() (Palette, error) {
	var p Palette
	fields := []struct {
		dst *color.NRGBA
		src string
	}{
		{&p.Wallpaper, c.Wallpaper},
		{&p.KeyboardBackground, c.KeyboardBackground},
		{&p.KeyForeground, c.KeyForeground},
		{&p.KeyBackgroundLetter, c.KeyBackgroundLetter},
		{&p.KeyBackgroundReturn, c.KeyBackgroundReturn},
		{&p.KeyBackgroundOther, c.KeyBackgroundOther},
		{&p.InputBoxBackground, c.InputBoxBackground},
		{&p.InputBoxForeground, c.InputBoxForeground},
	}
	for _, f := range fields {
		col, err := ParseColor(f.src)
		if err != nil {
			return Palette{}, err
		}
		*f.dst = col
	}
	return p, nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
