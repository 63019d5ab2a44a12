// Package luks provides the encrypted volume backends used by the unlock
// coordinator.
package luks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"osk/internal/logging"
	"osk/internal/unlock"
)

// DefaultBinary is the cryptsetup executable looked up in PATH.
const DefaultBinary = "cryptsetup"

// ErrNoHeader is returned by ActivateByPassphrase before LoadHeader
// succeeded.
var ErrNoHeader = errors.New("luks: header not loaded")

// Cryptsetup opens LUKS devices with the cryptsetup tool.
type Cryptsetup struct {
	binary string
	log    *slog.Logger
}

// CryptsetupOption configures a Cryptsetup.
type CryptsetupOption func(*Cryptsetup)

// WithBinary sets the cryptsetup executable.
func WithBinary(path string) CryptsetupOption {
	return func(c *Cryptsetup) { c.binary = path }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CryptsetupOption {
	return func(c *Cryptsetup) { c.log = l }
}

// NewCryptsetup creates a cryptsetup backed volume.
func NewCryptsetup(opts ...CryptsetupOption) *Cryptsetup {
	c := &Cryptsetup{
		binary: DefaultBinary,
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init opens the device at devicePath.
func (c *Cryptsetup) Init(ctx context.Context, devicePath string) (unlock.Device, error) {
	f, err := os.Open(devicePath)
	if err != nil {
		return nil, err
	}
	return &cryptDevice{cs: c, path: devicePath, f: f}, nil
}

type cryptDevice struct {
	cs   *Cryptsetup
	path string
	f    *os.File
	hdr  *Header
}

func (d *cryptDevice) LoadHeader(ctx context.Context) error {
	hdr, err := ReadHeader(d.f)
	if err != nil {
		return err
	}
	d.hdr = hdr
	d.cs.log.Debug("loaded header", "device", d.path, "version", hdr.Version, "uuid", hdr.UUID)
	return nil
}

// ActivateByPassphrase maps the device as name with discards allowed. The
// passphrase is passed on stdin.
func (d *cryptDevice) ActivateByPassphrase(ctx context.Context, name string, passphrase []byte) error {
	if d.hdr == nil {
		return ErrNoHeader
	}
	cmd := exec.CommandContext(ctx, d.cs.binary,
		"open",
		"--type", fmt.Sprintf("luks%d", d.hdr.Version),
		"--allow-discards",
		"--key-file=-",
		d.path, name,
	)
	cmd.Stdin = bytes.NewReader(passphrase)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("cryptsetup open: %w: %s", err, msg)
		}
		return fmt.Errorf("cryptsetup open: %w", err)
	}
	return nil
}

func (d *cryptDevice) Close() error {
	return d.f.Close()
}
