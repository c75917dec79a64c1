package fragment

import "time"

// Clock is the monotonic time source Phase C's deadline sweep reads from.
// §9 notes any monotonic wall-clock with microsecond resolution suffices;
// deadlines are relative, so clock jumps only affect acceptance-window
// width, never correctness.
type Clock interface {
	Now() time.Time
}

// realClock is the default Clock, backed by time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// ManualClock is a test double that only advances when told to, so tests
// can drive deadline logic deterministically.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a ManualClock starting at now.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
