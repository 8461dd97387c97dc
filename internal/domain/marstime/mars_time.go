package marstime

import (
	"fmt"
	"math"
)

const (
	// MillisolsPerSol is the length of one Martian day in millisols
	MillisolsPerSol = 1000
	// HalfSol is the millisol mark separating the two halves of a sol
	HalfSol = 500
)

// MarsTime is a point on the mission timeline: the mission sol (starting at 1)
// and the millisol within it, in [0, 1000).
type MarsTime struct {
	missionSol int
	millisol   float64
}

// New creates a MarsTime, normalising millisol overflow into whole sols
func New(missionSol int, millisol float64) MarsTime {
	t := MarsTime{missionSol: missionSol}
	return t.AddTime(millisol)
}

func (t MarsTime) MissionSol() int   { return t.missionSol }
func (t MarsTime) Millisol() float64 { return t.millisol }

// MillisolInt is the integer millisol mark, always in [0, 999]
func (t MarsTime) MillisolInt() int {
	return int(math.Floor(t.millisol))
}

// IsFirstHalf reports whether the time is before the half-sol mark
func (t MarsTime) IsFirstHalf() bool {
	return t.millisol < HalfSol
}

// AddTime returns the time msols later. Negative values are ignored.
func (t MarsTime) AddTime(msols float64) MarsTime {
	if msols <= 0 {
		return t
	}
	total := t.millisol + msols
	sols := int(math.Floor(total / MillisolsPerSol))
	return MarsTime{
		missionSol: t.missionSol + sols,
		millisol:   total - float64(sols*MillisolsPerSol),
	}
}

// TimeDiff returns t - other in millisols
func (t MarsTime) TimeDiff(other MarsTime) float64 {
	return float64(t.missionSol-other.missionSol)*MillisolsPerSol + (t.millisol - other.millisol)
}

func (t MarsTime) Before(other MarsTime) bool {
	return t.TimeDiff(other) < 0
}

func (t MarsTime) String() string {
	return fmt.Sprintf("sol %d %07.3f", t.missionSol, t.millisol)
}

// WrapMillisol folds any integer millisol onto the [0, 999] daily ring
func WrapMillisol(msol int) int {
	m := msol % MillisolsPerSol
	if m < 0 {
		m += MillisolsPerSol
	}
	return m
}
