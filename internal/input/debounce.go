package input

import (
	"sync"
	"time"
)

// DefaultRepeatDelay is the minimum gap between two accepted events of the
// same class.
const DefaultRepeatDelay = 25 * time.Millisecond

// Debouncer rejects events that arrive sooner than the repeat delay after
// the last accepted one.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	accepted time.Time
}

// NewDebouncer creates a debouncer with the given repeat delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Allow reports whether an event at now is accepted. Accepted events move
// the window forward; rejected ones do not.
func (d *Debouncer) Allow(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.accepted.IsZero() && now.Sub(d.accepted) < d.delay {
		return false
	}
	d.accepted = now
	return true
}

// Reset forgets the last accepted event.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accepted = time.Time{}
}
