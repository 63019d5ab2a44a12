// Package anim drives the keyboard slide animation at a fixed logical rate,
// independent of how often frames are actually drawn.
package anim

import (
	"math"
	"time"
)

const (
	// StepSize is the length of one logical animation step (50 Hz).
	StepSize = 20 * time.Millisecond

	// MaxFallBehindSteps bounds catch-up work. When the scheduler is further
	// behind than this, it skips ahead instead of replaying every step.
	MaxFallBehindSteps = 20

	// settleDistance is the distance below which the position snaps to the
	// target.
	settleDistance = 0.01

	// slideEpsilon is the distance below which the slide counts as finished.
	slideEpsilon = 0.001
)

// Clock returns the current time.
type Clock func() time.Time

// Scheduler moves a position in [0,1] toward a target with an ease-out
// curve. It is not safe for concurrent use; the UI goroutine owns it.
type Scheduler struct {
	position   float64
	target     float64
	lastTick   time.Time
	animations bool
	now        Clock
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.now = c }
}

// WithAnimations enables or disables gradual movement. Disabled animations
// jump straight to the target on the next step.
func WithAnimations(enabled bool) Option {
	return func(s *Scheduler) { s.animations = enabled }
}

// NewScheduler creates a scheduler at position pos heading for target.
func NewScheduler(pos, target float64, opts ...Option) *Scheduler {
	s := &Scheduler{
		position:   clamp01(pos),
		target:     clamp01(target),
		animations: true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastTick = s.now()
	return s
}

// Position returns the current position.
func (s *Scheduler) Position() float64 { return s.position }

// Target returns the target position.
func (s *Scheduler) Target() float64 { return s.target }

// SetTarget changes the target. A large drop restarts the tick base so the
// slide starts smoothly instead of replaying a burst of stale steps.
func (s *Scheduler) SetTarget(p float64) {
	p = clamp01(p)
	if s.target-p > 0.1 {
		s.lastTick = s.now()
	}
	s.target = p
}

// Reset restarts the tick base at the current time.
func (s *Scheduler) Reset() {
	s.lastTick = s.now()
}

// Update runs every logical step due since the previous call.
func (s *Scheduler) Update() {
	now := s.now()
	if s.lastTick.Add(StepSize * MaxFallBehindSteps).Before(now) {
		s.lastTick = now.Add(-StepSize)
	}
	for s.lastTick.Before(now) {
		s.Step()
		s.lastTick = s.lastTick.Add(StepSize)
	}
}

// Step advances the position by one logical step.
func (s *Scheduler) Step() {
	delta := s.target - s.position
	if !s.animations || math.Abs(delta) <= settleDistance {
		s.position = s.target
		return
	}
	move := math.Max(0.1, math.Abs(delta)) / 8
	if delta > 0 {
		s.position = math.Min(s.position+move, s.target)
	} else {
		s.position = math.Max(s.position-move, s.target)
	}
}

// InSlideAnimation reports whether the position has not reached the target.
func (s *Scheduler) InSlideAnimation() bool {
	return math.Abs(s.target-s.position) > slideEpsilon
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
