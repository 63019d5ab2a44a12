// Package unlock runs the blocking unlock of an encrypted volume on a worker
// goroutine.
//
// Every attempt takes at least the configured minimum duration, so a wrong
// passphrase or an unreadable header cannot be told apart from a slow
// successful unlock by timing alone.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"osk/internal/logging"
	"osk/internal/security"
)

// DefaultMinDuration is the minimum time an unlock attempt takes.
const DefaultMinDuration = 1000 * time.Millisecond

// Errors reported in Result.Err. All of them leave the volume locked.
var (
	ErrDeviceInit = errors.New("unlock: device init failed")
	ErrHeaderLoad = errors.New("unlock: header load failed")
	ErrActivation = errors.New("unlock: activation failed")
)

// Volume opens encrypted block devices.
type Volume interface {
	Init(ctx context.Context, devicePath string) (Device, error)
}

// Device is an opened encrypted block device.
type Device interface {
	LoadHeader(ctx context.Context) error
	ActivateByPassphrase(ctx context.Context, name string, passphrase []byte) error
	Close() error
}

// Status is the coordinator state.
type Status int32

const (
	StatusIdle Status = iota
	StatusUnlocking
	StatusUnlocked
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUnlocking:
		return "unlocking"
	case StatusUnlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Result describes a finished attempt.
type Result struct {
	Err     error
	Elapsed time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMinDuration sets the minimum attempt duration.
func WithMinDuration(d time.Duration) Option {
	return func(c *Coordinator) { c.minDuration = d }
}

// WithNotify sets a function called after every attempt. It runs on the
// worker goroutine and must not block.
func WithNotify(fn func()) Option {
	return func(c *Coordinator) { c.notify = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// Coordinator owns the device identity and the passphrase and runs at most
// one unlock worker at a time.
type Coordinator struct {
	volume      Volume
	deviceName  string
	devicePath  string
	minDuration time.Duration
	notify      func()
	log         *slog.Logger

	status   atomic.Int32
	attempts atomic.Int64
	results  chan Result
	wg       sync.WaitGroup

	mu         sync.Mutex
	passphrase []byte
}

// New creates a coordinator for the device at devicePath, to be mapped as
// deviceName.
func New(volume Volume, deviceName, devicePath string, opts ...Option) *Coordinator {
	c := &Coordinator{
		volume:      volume,
		deviceName:  deviceName,
		devicePath:  devicePath,
		minDuration: DefaultMinDuration,
		log:         logging.Discard(),
		results:     make(chan Result, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeviceName returns the mapping name.
func (c *Coordinator) DeviceName() string { return c.deviceName }

// DevicePath returns the encrypted device path.
func (c *Coordinator) DevicePath() string { return c.devicePath }

// SetPassphrase stores a copy of p for the next attempt. The caller keeps
// ownership of p. It has no effect while an attempt is running.
func (c *Coordinator) SetPassphrase(p []byte) {
	if c.UnlockRunning() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	security.Wipe(c.passphrase)
	c.passphrase = append([]byte(nil), p...)
}

// Unlock starts an attempt with the stored passphrase. It returns false
// without doing anything when an attempt is already running, the volume is
// unlocked, or no passphrase is set. When it returns true, UnlockRunning
// already reports true.
func (c *Coordinator) Unlock() bool {
	c.mu.Lock()
	if len(c.passphrase) == 0 {
		c.mu.Unlock()
		return false
	}
	if !c.status.CompareAndSwap(int32(StatusIdle), int32(StatusUnlocking)) {
		c.mu.Unlock()
		return false
	}
	pass := append([]byte(nil), c.passphrase...)
	c.mu.Unlock()

	c.attempts.Add(1)
	c.wg.Add(1)
	go c.run(pass)
	return true
}

func (c *Coordinator) run(pass []byte) {
	defer c.wg.Done()
	defer security.Wipe(pass)

	start := time.Now()
	time.Sleep(c.minDuration)

	err := c.attempt(context.Background(), pass)

	c.mu.Lock()
	security.Wipe(c.passphrase)
	c.passphrase = nil
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("unlock failed", "device", c.devicePath, "error", err)
		c.status.Store(int32(StatusIdle))
	} else {
		c.log.Info("unlocked device", "device", c.devicePath, "name", c.deviceName)
		c.status.Store(int32(StatusUnlocked))
	}

	res := Result{Err: err, Elapsed: time.Since(start)}
	// Drop a stale result nobody read.
	select {
	case <-c.results:
	default:
	}
	c.results <- res

	if c.notify != nil {
		c.notify()
	}
}

func (c *Coordinator) attempt(ctx context.Context, pass []byte) error {
	dev, err := c.volume.Init(ctx, c.devicePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeviceInit, c.devicePath, err)
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			c.log.Debug("close device", "error", cerr)
		}
	}()

	if err := dev.LoadHeader(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrHeaderLoad, c.devicePath, err)
	}
	if err := dev.ActivateByPassphrase(ctx, c.deviceName, pass); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrActivation, c.devicePath, err)
	}
	return nil
}

// Status returns the current state.
func (c *Coordinator) Status() Status { return Status(c.status.Load()) }

// IsLocked reports whether the volume has not been unlocked yet.
func (c *Coordinator) IsLocked() bool { return c.Status() != StatusUnlocked }

// UnlockRunning reports whether an attempt is in flight.
func (c *Coordinator) UnlockRunning() bool { return c.Status() == StatusUnlocking }

// Attempts returns the number of workers started.
func (c *Coordinator) Attempts() int64 { return c.attempts.Load() }

// Results delivers the outcome of each attempt. Only the latest unread
// result is kept.
func (c *Coordinator) Results() <-chan Result { return c.results }

// Wait blocks until the running attempt, if any, has finished.
func (c *Coordinator) Wait() { c.wg.Wait() }

// Close wipes the stored passphrase after waiting for a running attempt.
func (c *Coordinator) Close() {
	c.wg.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	security.Wipe(c.passphrase)
	c.passphrase = nil
}
