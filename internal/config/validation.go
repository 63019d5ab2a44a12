package config

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and reports all problems at once.
// Radii are not checked here; Normalize clamps them.
func (c *Config) Validate() error {
	var errs ValidationErrors

	colors := []struct {
		field string
		value string
	}{
		{"wallpaper", c.Wallpaper},
		{"keyboard-background", c.KeyboardBackground},
		{"key-foreground", c.KeyForeground},
		{"key-background-letter", c.KeyBackgroundLetter},
		{"key-background-return", c.KeyBackgroundReturn},
		{"key-background-other", c.KeyBackgroundOther},
		{"inputbox-background", c.InputBoxBackground},
		{"inputbox-foreground", c.InputBoxForeground},
	}
	for _, col := range colors {
		if _, err := ParseColor(col.value); err != nil {
			errs = append(errs, ValidationError{
				Field:   col.field,
				Message: fmt.Sprintf("%q is not #RRGGBB or #AARRGGBB", col.value),
			})
		}
	}

	if c.KeyboardFontSize < 1 {
		errs = append(errs, ValidationError{
			Field:   "keyboard-font-size",
			Message: "must be at least 1",
		})
	}
	if c.KeyboardMap != "us" {
		errs = append(errs, ValidationError{
			Field:   "keyboard-map",
			Message: fmt.Sprintf("unknown layout %q", c.KeyboardMap),
		})
	}
	if utf8.RuneCountInString(c.InputBoxDotGlyph) > 1 {
		errs = append(errs, ValidationError{
			Field:   "inputbox-dot-glyph",
			Message: "must be a single character",
		})
	}
	if c.RepeatDelayMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "repeat-delay-ms",
			Message: "must not be negative",
		})
	}
	if c.MinUnlockTimeMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "min-unlock-time-ms",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize clamps negative radii to 0.
func (c *Config) Normalize() {
	if c.KeyRadius < 0 {
		c.KeyRadius = 0
	}
	if c.InputBoxRadius < 0 {
		c.InputBoxRadius = 0
	}
}
