// Package device detects physical keyboards among the evdev input devices.
package device

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"osk/internal/logging"
)

// DefaultInputDir is where evdev nodes live.
const DefaultInputDir = "/dev/input"

// KeyboardMask is the low word of the EV_KEY capability bitmap of an N900
// keyboard. A device advertising at least these keys is treated as a
// physical keyboard.
const KeyboardMask = 0xF3FF4000

// ErrUnsupported is returned by the capability probe on platforms without
// evdev.
var ErrUnsupported = errors.New("device: evdev not supported on this platform")

// KeyBitsFunc returns the EV_KEY capability bitmap of the evdev node at
// path, in the kernel's unsigned long layout.
type KeyBitsFunc func(path string) ([]byte, error)

// Option configures a Detector.
type Option func(*Detector)

// WithInputDir sets the directory scanned for event nodes.
func WithInputDir(dir string) Option {
	return func(d *Detector) { d.dir = dir }
}

// WithKeyBits replaces the capability probe.
func WithKeyBits(fn KeyBitsFunc) Option {
	return func(d *Detector) { d.keyBits = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) { d.log = l }
}

// Detector scans evdev nodes for a physical keyboard.
type Detector struct {
	dir     string
	keyBits KeyBitsFunc
	log     *slog.Logger
}

// NewDetector creates a detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		dir:     DefaultInputDir,
		keyBits: readKeyBits,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dir returns the scanned directory.
func (d *Detector) Dir() string { return d.dir }

// HasPhysicalKeyboard reports whether any event node looks like a physical
// keyboard. Missing directories and permission errors report false.
func (d *Detector) HasPhysicalKeyboard() bool {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		d.log.Info("skipping physical keyboard check", "dir", d.dir, "error", err)
		return false
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		path := filepath.Join(d.dir, e.Name())
		bits, err := d.keyBits(path)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				d.log.Info("insufficient permissions to perform physical keyboard detection")
				return false
			}
			if errors.Is(err, ErrUnsupported) {
				return false
			}
			d.log.Info("unable to probe device", "device", path, "error", err)
			continue
		}
		if IsKeyboard(bits) {
			d.log.Info("probably a physical keyboard", "device", path)
			return true
		}
		d.log.Debug("not a physical keyboard", "device", path)
	}
	return false
}

// IsKeyboard reports whether the first word of an EV_KEY bitmap contains
// every bit of KeyboardMask.
func IsKeyboard(bits []byte) bool {
	var word uint64
	switch {
	case strconv.IntSize == 64 && len(bits) >= 8:
		word = binary.NativeEndian.Uint64(bits)
	case len(bits) >= 4:
		word = uint64(binary.NativeEndian.Uint32(bits))
	default:
		return false
	}
	return word&KeyboardMask == KeyboardMask
}
