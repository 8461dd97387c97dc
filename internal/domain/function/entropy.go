package function

import "math"

const (
	// entropyDivisor scales load into entropy per millisol
	entropyDivisor = 50.0
	// halfSolDecay is the share of entropy shed at every half-sol
	halfSolDecay = 0.2
	// minEntropyRatio bounds how far below zero entropy may be driven, relative to the max
	minEntropyRatio = -0.5
)

// entropy is a bounded disorder gauge shared by computing nodes and labs.
//
// Invariants:
// - value stays within [-0.5*max, max]
type entropy struct {
	value float64
	max   float64
}

func newEntropy(max float64) entropy {
	return entropy{max: max}
}

func (e *entropy) clamp() {
	e.value = math.Max(minEntropyRatio*e.max, math.Min(e.max, e.value))
}

func (e *entropy) increase(delta float64) {
	e.value += delta
	e.clamp()
}

// reduce lowers entropy by delta; negative deltas are ignored
func (e *entropy) reduce(delta float64) {
	if delta <= 0 {
		return
	}
	e.value -= delta
	e.clamp()
}

// decay moves entropy one fifth of the way back to zero
func (e *entropy) decay() {
	e.value -= e.value * halfSolDecay
	e.clamp()
}

// penalty is 1 - value/max: 1 when tidy, 0 at the ceiling, up to 1.5 when below zero
func (e *entropy) penalty() float64 {
	if e.max <= 0 {
		return 1
	}
	return 1 - e.value/e.max
}
