package shared

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock reads so report timestamps can be pinned in tests.
// Simulated time lives in the marstime package; this clock only stamps records.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// NewRealClock reads the system time in UTC
func NewRealClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}

// FixedClock only moves when told to. Safe for concurrent use.
type FixedClock struct {
	mu sync.Mutex
	at time.Time
}

// NewFixedClock pins a clock at t
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{at: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

// Advance moves the clock forward by d
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.at = c.at.Add(d)
	c.mu.Unlock()
}
