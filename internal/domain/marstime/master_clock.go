package marstime

import (
	"fmt"
	"sync"
)

// MasterClock owns the mission timeline and hands out pulses.
//
// Thread-Safety:
// Advance may be called from a driver goroutine while readers query Now.
type MasterClock struct {
	mu     sync.RWMutex
	now    MarsTime
	nextID int64
}

// NewMasterClock starts the mission at the given time
func NewMasterClock(start MarsTime) *MasterClock {
	if start.missionSol < 1 {
		start.missionSol = 1
	}
	return &MasterClock{now: start, nextID: 1}
}

// Now returns the current mission time
func (c *MasterClock) Now() MarsTime {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves the timeline forward by elapsed millisols and returns the pulse
// describing the step.
func (c *MasterClock) Advance(elapsed float64) (Pulse, error) {
	if elapsed <= 0 {
		return Pulse{}, fmt.Errorf("pulse must advance time, got %.3f millisols", elapsed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.now
	next := prev.AddTime(elapsed)

	newSol := next.missionSol != prev.missionSol
	newHalfSol := newSol || prev.IsFirstHalf() != next.IsFirstHalf()
	newIntMillisol := newSol || next.MillisolInt() != prev.MillisolInt()

	p := NewPulse(c.nextID, elapsed, next, newSol, newHalfSol, newIntMillisol)
	c.nextID++
	c.now = next
	return p, nil
}
