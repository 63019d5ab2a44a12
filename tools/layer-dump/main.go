// layer-dump renders every keyboard layer to a PNG file so layout and colour
// changes can be reviewed without a display.
//
// Usage:
//
//	go run ./tools/layer-dump -out /tmp/layers
//	go run ./tools/layer-dump -width 1080 -height 1920 -config /etc/osk.toml -areas
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"osk/internal/config"
	"osk/internal/glyph"
	"osk/internal/keyboard"
	"osk/internal/ui"
)

func main() {
	width := flag.Int("width", 720, "Screen width in pixels")
	height := flag.Int("height", 1280, "Screen height in pixels")
	configPath := flag.String("config", "", "Config file (defaults when empty)")
	outDir := flag.String("out", ".", "Output directory")
	areas := flag.Bool("areas", false, "Also write each layer's touch areas as JSON")
	flag.Parse()

	if err := run(*width, *height, *configPath, *outDir, *areas); err != nil {
		fmt.Fprintf(os.Stderr, "layer-dump: %v\n", err)
		os.Exit(1)
	}
}

func run(width, height int, configPath, outDir string, areas bool) error {
	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	th, err := ui.NewTheme(cfg, image.Pt(width, height), true)
	if err != nil {
		return err
	}
	face, err := glyph.Load(cfg.KeyboardFont, cfg.KeyboardFontSize)
	if err != nil {
		return err
	}
	defer face.Close()

	kbd := keyboard.New(keyboard.Config{
		Width:     width,
		Height:    th.Metrics.KeyboardHeight,
		KeyRadius: cfg.KeyRadius,
		Colors:    th.Palette.Keyboard,
	}, face)
	if err := kbd.Build(); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	fmt.Printf("keyboard %dx%d\n", kbd.Width(), kbd.Height())

	for n := 0; ; n++ {
		l, ok := kbd.Layer(n)
		if !ok {
			break
		}
		path := filepath.Join(outDir, fmt.Sprintf("layer-%d.png", n))
		if err := writePNG(path, l.Surface); err != nil {
			return err
		}
		fmt.Printf("%s (%d keys)\n", path, len(l.Areas))
		if areas {
			if err := writeAreas(filepath.Join(outDir, fmt.Sprintf("layer-%d.json", n)), l.Areas); err != nil {
				return err
			}
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func writeAreas(path string, areas []keyboard.TouchArea) error {
	data, err := json.MarshalIndent(areas, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
