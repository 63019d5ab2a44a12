package config

// Default locations searched by the host when -c is not given.
const (
	DefaultPath = "/etc/osk.toml"
	LegacyPath  = "/etc/osk.conf"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Wallpaper:           "#FF9900",
		KeyboardBackground:  "#333333",
		KeyboardFont:        "",
		KeyboardFontSize:    24,
		KeyboardMap:         "us",
		KeyForeground:       "#FFFFFF",
		KeyBackgroundLetter: "#0F0F0F",
		KeyBackgroundReturn: "#1C5E1C",
		KeyBackgroundOther:  "#1F1F1F",
		KeyRadius:           0,
		InputBoxBackground:  "#000000",
		InputBoxForeground:  "#FFFFFF",
		InputBoxRadius:      0,
		InputBoxDotGlyph:    "•",
		Animations:          true,
		RepeatDelayMs:       25,
		MinUnlockTimeMs:     1000,
	}
}
