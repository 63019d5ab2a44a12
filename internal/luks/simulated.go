package luks

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"

	"golang.org/x/crypto/argon2"

	"osk/internal/security"
	"osk/internal/unlock"
)

// ErrWrongPassphrase is returned by the simulated volume for a passphrase
// that does not match.
var ErrWrongPassphrase = errors.New("luks: no key available with this passphrase")

// Argon2id parameters of the simulated keyslot.
const (
	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 2
	argonKeyLen  = 32
)

// Simulated is a volume that exists only in memory. It stands in for a real
// device in test mode. Its single keyslot stores an Argon2id digest of the
// passphrase, never the passphrase itself.
type Simulated struct {
	salt   [16]byte
	digest []byte

	mu        sync.Mutex
	activated map[string]bool
}

// NewSimulated seals passphrase into a new simulated volume. The caller may
// wipe passphrase afterwards.
func NewSimulated(passphrase []byte) (*Simulated, error) {
	s := &Simulated{activated: make(map[string]bool)}
	if _, err := rand.Read(s.salt[:]); err != nil {
		return nil, err
	}
	s.digest = s.derive(passphrase)
	return s, nil
}

func (s *Simulated) derive(passphrase []byte) []byte {
	return argon2.IDKey(passphrase, s.salt[:], argonTime, argonMemory, argonThreads, argonKeyLen)
}

// Init implements unlock.Volume. The path is not opened.
func (s *Simulated) Init(ctx context.Context, devicePath string) (unlock.Device, error) {
	return &simDevice{s: s}, nil
}

// Active reports whether name has been activated.
func (s *Simulated) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activated[name]
}

type simDevice struct {
	s *Simulated
}

func (d *simDevice) LoadHeader(ctx context.Context) error { return nil }

func (d *simDevice) ActivateByPassphrase(ctx context.Context, name string, passphrase []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	got := d.s.derive(passphrase)
	defer security.Wipe(got)
	if !security.ConstantTimeCompare(got, d.s.digest) {
		return ErrWrongPassphrase
	}
	d.s.mu.Lock()
	d.s.activated[name] = true
	d.s.mu.Unlock()
	return nil
}

func (d *simDevice) Close() error { return nil }
