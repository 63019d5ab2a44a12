package anim

import (
	"math"
	"time"
)

// Bounce returns the vertical position of busy-indicator dot index at
// wall-clock tick. It carries no state, so any frame can compute it.
func Bounce(baseY int, tick time.Duration, index, deflection int) int {
	ms := float64(tick) / float64(time.Millisecond)
	return int(float64(baseY) + math.Sin(ms/100+float64(index))*float64(deflection))
}
