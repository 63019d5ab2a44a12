// Package security keeps passphrase material out of swap and wipes it when
// it is no longer needed.
package security

import (
	"crypto/subtle"
	"runtime"
	"sync"
)

// SecureBytes is a fixed-size byte buffer that is locked into memory when
// the platform allows it and zeroed when destroyed.
type SecureBytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// NewSecureBytes allocates a buffer of size bytes. Locking failures are not
// fatal; the buffer is still wiped on Destroy.
func NewSecureBytes(size int) *SecureBytes {
	sb := &SecureBytes{
		data: make([]byte, size),
	}
	if err := mlock(sb.data); err == nil {
		sb.locked = len(sb.data) > 0
	}
	runtime.SetFinalizer(sb, func(s *SecureBytes) {
		s.Destroy()
	})
	return sb
}

// Bytes returns the underlying buffer. The slice must not outlive the
// SecureBytes.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Len returns the buffer size.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Locked reports whether the buffer is pinned in memory.
func (s *SecureBytes) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Destroy wipes and unlocks the buffer. It is safe to call more than once.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}
	Wipe(s.data)
	if s.locked {
		munlock(s.data)
		s.locked = false
	}
	s.data = nil
}

// Wipe overwrites data with zeros.
func Wipe(data []byte) {
	for i := range data {
		data[i] = 0
	}
	runtime.KeepAlive(data)
}

// ConstantTimeCompare reports whether a and b are equal without leaking
// where they differ.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
