package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *manualClock {
	return &manualClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestStepConvergesWithoutOvershoot(t *testing.T) {
	s := NewScheduler(0, 1)
	steps := 0
	for s.Position() != 1 {
		prev := s.Position()
		s.Step()
		steps++
		require.LessOrEqual(t, s.Position(), 1.0, "overshoot at step %d", steps)
		require.GreaterOrEqual(t, s.Position(), prev, "position moved backwards")
		require.Less(t, steps, 100, "did not converge")
	}
	assert.False(t, s.InSlideAnimation())
}

func TestStepDownward(t *testing.T) {
	s := NewScheduler(1, 0)
	for i := 0; i < 100 && s.Position() != 0; i++ {
		prev := s.Position()
		s.Step()
		require.GreaterOrEqual(t, s.Position(), 0.0)
		require.LessOrEqual(t, s.Position(), prev)
	}
	assert.Equal(t, 0.0, s.Position())
}

func TestStepAnimationsDisabled(t *testing.T) {
	s := NewScheduler(0, 1, WithAnimations(false))
	s.Step()
	assert.Equal(t, 1.0, s.Position())

	s.SetTarget(0.25)
	s.Step()
	assert.Equal(t, 0.25, s.Position())
}

func TestUpdateRunsOneStepPerTick(t *testing.T) {
	c := newClock()
	s := NewScheduler(0, 1, WithClock(c.now))

	s.Update()
	assert.Equal(t, 0.0, s.Position(), "no time elapsed")

	c.advance(StepSize)
	s.Update()
	assert.InDelta(t, 0.125, s.Position(), 1e-9)

	c.advance(StepSize)
	s.Update()
	assert.InDelta(t, 0.125+0.875/8, s.Position(), 1e-9)
}

func TestUpdateBoundsCatchUp(t *testing.T) {
	c := newClock()
	s := NewScheduler(0, 1, WithClock(c.now))

	// Far behind: the scheduler skips ahead and runs a single step.
	c.advance(10 * time.Second)
	s.Update()
	assert.InDelta(t, 0.125, s.Position(), 1e-9)
}

func TestSetTargetRestartsTickBase(t *testing.T) {
	c := newClock()
	s := NewScheduler(1, 1, WithClock(c.now))
	c.advance(5 * StepSize)
	s.SetTarget(0)
	s.Update()
	assert.Equal(t, 1.0, s.Position(), "stale steps are not replayed")
	assert.True(t, s.InSlideAnimation())
}

func TestTargetIsClamped(t *testing.T) {
	s := NewScheduler(-2, 3)
	assert.Equal(t, 0.0, s.Position())
	assert.Equal(t, 1.0, s.Target())
}

func TestBounce(t *testing.T) {
	assert.Equal(t, 50, Bounce(50, 0, 0, 10))
	for tick := time.Duration(0); tick < 2*time.Second; tick += 7 * time.Millisecond {
		for i := 0; i < 5; i++ {
			y := Bounce(50, tick, i, 10)
			assert.GreaterOrEqual(t, y, 40)
			assert.LessOrEqual(t, y, 60)
		}
	}
	// pure function of its inputs
	assert.Equal(t, Bounce(50, 1234*time.Millisecond, 3, 10), Bounce(50, 1234*time.Millisecond, 3, 10))
}
