package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file syntax.
type Format int

const (
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
	FormatJSON
	FormatLegacy
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatLegacy:
		return "legacy"
	default:
		return "auto"
	}
}

// ErrSyntax is wrapped by errors from the legacy parser.
var ErrSyntax = errors.New("config: syntax error")

// FormatFor picks a format from the file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".conf":
		return FormatLegacy
	default:
		return FormatAuto
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.Apply(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overlays the options set in path onto c. Options the file does not
// mention keep their current value. c is left untouched on error.
func (c *Config) Apply(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	next := c.Clone()
	if err := Parse(data, FormatFor(path), next); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	next.Normalize()
	if err := next.Validate(); err != nil {
		return err
	}
	*c = *next
	return nil
}

// Parse decodes data in the given format into cfg. The document is checked
// against the schema before any field of cfg is written. Radii that are not
// whole numbers become 0 and are listed in cfg.MalformedRadii.
func Parse(data []byte, format Format, cfg *Config) error {
	if format == FormatAuto {
		return autoDetectAndParse(data, cfg)
	}

	doc, err := decodeDocument(data, format)
	if err != nil {
		return err
	}
	malformed := coerceRadii(doc)
	if err := checkDocument(doc); err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %v document: %w", format, err)
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse %v: %w", format, err)
	}
	n := len(cfg.MalformedRadii)
	cfg.MalformedRadii = append(cfg.MalformedRadii[:n:n], malformed...)
	return nil
}

var radiusKeys = []string{"key-radius", "inputbox-radius"}

// coerceRadii replaces radius values that are not whole numbers with 0 and
// returns the keys it replaced.
func coerceRadii(doc map[string]any) []string {
	var bad []string
	for _, key := range radiusKeys {
		v, ok := doc[key]
		if !ok {
			continue
		}
		n, ok := wholeNumber(v)
		if !ok {
			bad = append(bad, key)
		}
		doc[key] = n
	}
	return bad
}

func wholeNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return int(n), true
		}
	case uint64:
		if n <= math.MaxInt32 {
			return int(n), true
		}
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= math.MaxInt32 {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func decodeDocument(data []byte, format Format) (map[string]any, error) {
	doc := make(map[string]any)
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case FormatLegacy:
		return parseLegacy(data)
	default:
		return nil, fmt.Errorf("unsupported format %v", format)
	}
	return doc, nil
}

// autoDetectAndParse tries TOML, then JSON, then the legacy format.
func autoDetectAndParse(data []byte, cfg *Config) error {
	var firstErr error
	for _, f := range []Format{FormatTOML, FormatJSON, FormatLegacy} {
		next := cfg.Clone()
		err := Parse(data, f, next)
		if err == nil {
			*cfg = *next
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return fmt.Errorf("unable to detect config format: %w", firstErr)
}

var (
	legacyIntKeys = map[string]bool{
		"keyboard-font-size": true,
		"repeat-delay-ms":    true,
		"min-unlock-time-ms": true,
	}
	legacyRadiusKeys = map[string]bool{
		"key-radius":      true,
		"inputbox-radius": true,
	}
	legacyStringKeys = map[string]bool{
		"wallpaper":             true,
		"keyboard-background":   true,
		"keyboard-font":         true,
		"keyboard-map":          true,
		"key-foreground":        true,
		"key-background-letter": true,
		"key-background-return": true,
		"key-background-other":  true,
		"inputbox-background":   true,
		"inputbox-foreground":   true,
		"inputbox-dot-glyph":    true,
	}
)

// parseLegacy reads "key = value" lines. Lines starting with '#' and blank
// lines are skipped; any other line must have exactly three fields. Unknown
// keys are ignored. Radii are kept as text for coerceRadii.
func parseLegacy(data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != 3 || fields[1] != "=" {
			return nil, fmt.Errorf("%w on line %d", ErrSyntax, line)
		}
		key, val := fields[0], fields[2]
		switch {
		case legacyStringKeys[key]:
			doc[key] = val
		case legacyRadiusKeys[key]:
			doc[key] = val
		case legacyIntKeys[key]:
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("%w on line %d: %s is not a number", ErrSyntax, line, key)
			}
			doc[key] = n
		case key == "animations":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return nil, fmt.Errorf("%w on line %d: animations must be true or false", ErrSyntax, line)
			}
			doc[key] = b
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
