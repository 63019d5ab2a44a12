package unlock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVolume scripts the outcome of each step. If gate is non-nil, Init
// blocks until it is closed.
type fakeVolume struct {
	initErr   error
	headerErr error
	activErr  error
	gate      chan struct{}

	mu       sync.Mutex
	inits    int
	closed   int
	lastName string
	lastPass []byte
}

func (v *fakeVolume) Init(ctx context.Context, path string) (Device, error) {
	if v.gate != nil {
		<-v.gate
	}
	v.mu.Lock()
	v.inits++
	v.mu.Unlock()
	if v.initErr != nil {
		return nil, v.initErr
	}
	return &fakeDevice{v: v}, nil
}

type fakeDevice struct{ v *fakeVolume }

func (d *fakeDevice) LoadHeader(ctx context.Context) error { return d.v.headerErr }

func (d *fakeDevice) ActivateByPassphrase(ctx context.Context, name string, pass []byte) error {
	d.v.mu.Lock()
	d.v.lastName = name
	d.v.lastPass = append([]byte(nil), pass...)
	d.v.mu.Unlock()
	return d.v.activErr
}

func (d *fakeDevice) Close() error {
	d.v.mu.Lock()
	d.v.closed++
	d.v.mu.Unlock()
	return nil
}

func TestUnlockSuccess(t *testing.T) {
	v := &fakeVolume{}
	var notified atomic.Int32
	c := New(v, "root", "/dev/sda2", WithMinDuration(time.Millisecond), WithNotify(func() { notified.Add(1) }))

	assert.True(t, c.IsLocked())
	assert.False(t, c.UnlockRunning())

	c.SetPassphrase([]byte("hunter2"))
	require.True(t, c.Unlock())
	c.Wait()

	res := <-c.Results()
	assert.NoError(t, res.Err)
	assert.False(t, c.IsLocked())
	assert.False(t, c.UnlockRunning())
	assert.Equal(t, StatusUnlocked, c.Status())
	assert.Equal(t, int32(1), notified.Load())
	assert.Equal(t, "root", v.lastName)
	assert.Equal(t, []byte("hunter2"), v.lastPass)
	assert.Equal(t, 1, v.closed)

	// Terminal state.
	c.SetPassphrase([]byte("again"))
	assert.False(t, c.Unlock())
	assert.Equal(t, int64(1), c.Attempts())
}

func TestUnlockRunningBeforeReturn(t *testing.T) {
	gate := make(chan struct{})
	c := New(&fakeVolume{gate: gate}, "root", "/dev/sda2", WithMinDuration(0))
	c.SetPassphrase([]byte("pw"))

	require.True(t, c.Unlock())
	assert.True(t, c.UnlockRunning())
	assert.Equal(t, StatusUnlocking, c.Status())

	close(gate)
	c.Wait()
	assert.False(t, c.UnlockRunning())
}

func TestNoDoubleSpawn(t *testing.T) {
	gate := make(chan struct{})
	v := &fakeVolume{gate: gate}
	c := New(v, "root", "/dev/sda2", WithMinDuration(0))
	c.SetPassphrase([]byte("pw"))

	var started atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Unlock() {
				started.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), started.Load())
	assert.Equal(t, int64(1), c.Attempts())

	close(gate)
	c.Wait()
	assert.Equal(t, 1, v.inits)
}

func TestUnlockWithoutPassphrase(t *testing.T) {
	c := New(&fakeVolume{}, "root", "/dev/sda2", WithMinDuration(0))
	assert.False(t, c.Unlock())
	assert.Equal(t, int64(0), c.Attempts())
}

func TestMinimumDuration(t *testing.T) {
	const floor = 150 * time.Millisecond
	tests := []struct {
		name string
		vol  *fakeVolume
		want error
	}{
		{"init", &fakeVolume{initErr: errors.New("no such device")}, ErrDeviceInit},
		{"header", &fakeVolume{headerErr: errors.New("not luks")}, ErrHeaderLoad},
		{"passphrase", &fakeVolume{activErr: errors.New("no key available")}, ErrActivation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.vol, "root", "/dev/sda2", WithMinDuration(floor))
			c.SetPassphrase([]byte("wrong"))

			start := time.Now()
			require.True(t, c.Unlock())
			for c.UnlockRunning() {
				time.Sleep(time.Millisecond)
			}
			assert.GreaterOrEqual(t, time.Since(start), floor)

			res := <-c.Results()
			assert.ErrorIs(t, res.Err, tt.want)
			assert.GreaterOrEqual(t, res.Elapsed, floor)
			assert.True(t, c.IsLocked())
			assert.Equal(t, StatusIdle, c.Status())
		})
	}
}

func TestFailureClearsPassphrase(t *testing.T) {
	v := &fakeVolume{activErr: errors.New("no key available")}
	c := New(v, "root", "/dev/sda2", WithMinDuration(0))
	c.SetPassphrase([]byte("wrong"))
	require.True(t, c.Unlock())
	c.Wait()

	// The stored passphrase is gone, so a retry needs a new one.
	assert.False(t, c.Unlock())
	c.SetPassphrase([]byte("right"))
	v.activErr = nil
	require.True(t, c.Unlock())
	c.Wait()
	assert.False(t, c.IsLocked())
	assert.Equal(t, int64(2), c.Attempts())
}

func TestSetPassphraseIgnoredWhileRunning(t *testing.T) {
	gate := make(chan struct{})
	v := &fakeVolume{gate: gate}
	c := New(v, "root", "/dev/sda2", WithMinDuration(0))
	c.SetPassphrase([]byte("first"))
	require.True(t, c.Unlock())
	c.SetPassphrase([]byte("second"))
	close(gate)
	c.Wait()
	assert.Equal(t, []byte("first"), v.lastPass)
}

func TestSetPassphraseCopies(t *testing.T) {
	v := &fakeVolume{}
	c := New(v, "root", "/dev/sda2", WithMinDuration(0))
	p := []byte("secret")
	c.SetPassphrase(p)
	p[0] = 'X'
	require.True(t, c.Unlock())
	c.Wait()
	assert.Equal(t, []byte("secret"), v.lastPass)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "unlocking", StatusUnlocking.String())
	assert.Equal(t, "unlocked", StatusUnlocked.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
