package ttlcache

import (
	"time"
)

// Clock is an interface for getting the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc is a function type that implements the Clock interface.
type ClockFunc func() time.Time

// Now calls the function.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock through time.Now.
// Its readings follow adjustments of the system clock.
var SystemClock Clock = ClockFunc(time.Now)

// MonotonicClock is a clock that never goes backwards.
// It reports its anchor instant plus the monotonic time elapsed since the anchor was taken,
// so stepping the system clock does not move expirations.
type MonotonicClock struct {
	anchor time.Time
}

var _ Clock = (*MonotonicClock)(nil)

// NewMonotonicClock creates a MonotonicClock anchored at the current time.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{anchor: time.Now()}
}

// Now returns the current time without a monotonic clock reading.
func (c *MonotonicClock) Now() time.Time {
	return c.anchor.Add(time.Since(c.anchor)).Round(0)
}
