package function

import (
	"math"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

const (
	// overcommitRatio is how far above peak CU a slot may be booked
	overcommitRatio = 1.05
	// minPowerEfficiency caps the power blow-up of a disordered node at 4x
	minPowerEfficiency = 0.25
	// defaultEntropyPerCU sets max entropy so that a node at full load for a
	// whole sol just reaches the ceiling
	defaultEntropyPerCU = 50.0
)

// Computation is a computing node. Tasks book CU on a per-millisol calendar
// that wraps every sol; the node's load heats it up (entropy) which in turn
// degrades power efficiency.
//
// Invariants:
// - 0 <= freeCU <= peakCU
// - every booked slot stays at or below 1.05 * peakCU
// - entropy in [-0.5*maxEntropy, maxEntropy]
type Computation struct {
	base

	peakCU          float64
	freeCU          float64
	powerDemand     float64 // kW per CU
	coolingDemand   float64 // kW per CU
	nonLoadKW       float64
	powerEfficiency float64
	entropy         entropy

	demand      map[int]float64 // millisol -> CU booked
	lastTick    marstime.MarsTime
	calendarSet bool
}

// NewComputation builds a node from its spec. Properties:
// computing-unit (defaults to capacity), power-demand, cooling-demand,
// idle-power, max-entropy.
func NewComputation(ref BuildingRef, spec Spec) (*Computation, error) {
	peak, err := spec.DoubleProperty("computing-unit", float64(spec.Capacity))
	if err != nil {
		return nil, err
	}
	if peak <= 0 {
		return nil, shared.NewValidationError("computing-unit", "must be positive")
	}
	powerDemand, err := spec.DoubleProperty("power-demand", 0.5)
	if err != nil {
		return nil, err
	}
	coolingDemand, err := spec.DoubleProperty("cooling-demand", 0.2)
	if err != nil {
		return nil, err
	}
	combined := peak * (powerDemand + coolingDemand)
	idle, err := spec.DoubleProperty("idle-power", 0.1*combined)
	if err != nil {
		return nil, err
	}
	maxEntropy, err := spec.DoubleProperty("max-entropy", peak*defaultEntropyPerCU)
	if err != nil {
		return nil, err
	}
	if maxEntropy <= 0 {
		return nil, shared.NewValidationError("max-entropy", "must be positive")
	}

	return &Computation{
		base:            newBase(TypeComputation, ref, spec),
		peakCU:          peak,
		freeCU:          peak,
		powerDemand:     powerDemand,
		coolingDemand:   coolingDemand,
		nonLoadKW:       idle,
		powerEfficiency: 1,
		entropy:         newEntropy(maxEntropy),
		demand:          make(map[int]float64),
	}, nil
}

func (c *Computation) PeakCU() float64          { return c.peakCU }
func (c *Computation) FreeCU() float64          { return c.freeCU }
func (c *Computation) CurrentCU() float64       { return c.peakCU - c.freeCU }
func (c *Computation) Entropy() float64         { return c.entropy.value }
func (c *Computation) MaxEntropy() float64      { return c.entropy.max }
func (c *Computation) EntropyPerCU() float64    { return c.entropy.value / c.peakCU }
func (c *Computation) PowerEfficiency() float64 { return c.powerEfficiency }

// Utilization is the share of peak CU in use this millisol
func (c *Computation) Utilization() float64 {
	return (c.peakCU - c.freeCU) / c.peakCU
}

// ScheduledDemand returns the CU booked at a millisol of the daily calendar
func (c *Computation) ScheduledDemand(msol int) float64 {
	return c.demand[marstime.WrapMillisol(msol)]
}

// ScheduleTask books needed CU for every millisol in [begin, end), wrapping
// past midnight. The booking is all or nothing: when any slot would go above
// 1.05 * peak CU nothing is written.
func (c *Computation) ScheduleTask(needed float64, begin, end int) bool {
	if !c.CanScheduleTask(needed, begin, end) {
		return false
	}
	duration, _ := c.window(needed, begin, end)
	for i := 0; i < duration; i++ {
		key := marstime.WrapMillisol(begin + i)
		c.demand[key] += needed
	}
	return true
}

// CanScheduleTask reports whether ScheduleTask would accept the booking
func (c *Computation) CanScheduleTask(needed float64, begin, end int) bool {
	duration, ok := c.window(needed, begin, end)
	if !ok {
		return false
	}
	limit := c.peakCU * overcommitRatio
	for i := 0; i < duration; i++ {
		if c.demand[marstime.WrapMillisol(begin+i)]+needed > limit {
			return false
		}
	}
	return true
}

// EvaluateScheduleTask scores how well the node could host a booking without
// making it. The score sums the spare CU left in every slot, weighted by how
// orderly the node is. Zero means the booking would be rejected.
func (c *Computation) EvaluateScheduleTask(needed float64, begin, end int) float64 {
	duration, ok := c.window(needed, begin, end)
	if !ok {
		return 0
	}

	limit := c.peakCU * overcommitRatio
	score := 0.0
	for i := 0; i < duration; i++ {
		load := c.demand[marstime.WrapMillisol(begin+i)] + needed
		if load > limit {
			return 0
		}
		score += c.peakCU - load
	}
	return math.Max(0, score*c.entropy.penalty())
}

func (c *Computation) window(needed float64, begin, end int) (int, bool) {
	if needed <= 0 || math.IsNaN(needed) {
		return 0, false
	}
	duration := marstime.WrapMillisol(end - begin)
	return duration, duration > 0
}

// ClearOldDemand drops calendar slots strictly between previous and now,
// walking backward from now-1 and wrapping past midnight. When previous equals
// now a whole sol has passed and every other slot is dropped.
func (c *Computation) ClearOldDemand(previous, now int) {
	stop := marstime.WrapMillisol(previous)
	for m := marstime.WrapMillisol(now - 1); m != stop; m = marstime.WrapMillisol(m - 1) {
		delete(c.demand, m)
	}
}

// clearSince drops the slots that went by between two integer-millisol ticks.
// The slot at the previous tick is past too. A gap of a sol or more leaves
// only the current slot.
func (c *Computation) clearSince(last, now marstime.MarsTime) {
	current := now.MillisolInt()
	gap := (now.MissionSol()-last.MissionSol())*marstime.MillisolsPerSol + current - last.MillisolInt()
	if gap >= marstime.MillisolsPerSol {
		c.ClearOldDemand(current, current)
		return
	}
	c.ClearOldDemand(last.MillisolInt()-1, current)
}

// IncreaseEntropy adds disorder, e.g. from a malfunction
func (c *Computation) IncreaseEntropy(delta float64) {
	c.entropy.increase(delta)
	c.updateEfficiency()
}

// ReduceEntropy removes disorder, e.g. after a maintenance task
func (c *Computation) ReduceEntropy(delta float64) {
	c.entropy.reduce(delta)
	c.updateEfficiency()
}

func (c *Computation) updateEfficiency() {
	c.powerEfficiency = math.Max(minPowerEfficiency, math.Min(1, c.entropy.penalty()))
}

func (c *Computation) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !c.isValid(ctx, pulse) {
		return false
	}

	if pulse.IsNewIntMillisol() {
		now := pulse.MillisolInt()
		if c.calendarSet {
			c.clearSince(c.lastTick, pulse.MarsTime())
		}
		c.lastTick = marstime.New(pulse.MarsTime().MissionSol(), float64(now))
		c.calendarSet = true

		load := c.demand[now]
		c.freeCU = math.Max(0, c.peakCU-math.Min(load, c.peakCU))
		c.entropy.increase(pulse.Elapsed() * (c.peakCU - c.freeCU) / entropyDivisor)
		c.updateEfficiency()
	}

	if pulse.IsNewHalfSol() {
		c.entropy.decay()
		c.updateEfficiency()
	}
	return true
}

// SeparatePowerLoad splits the draw into its load-driven and idle parts
func (c *Computation) SeparatePowerLoad() (load, nonLoad float64) {
	combined := c.peakCU * (c.powerDemand + c.coolingDemand)
	return c.Utilization() * combined / c.powerEfficiency, c.nonLoadKW
}

func (c *Computation) CombinedPowerLoad() float64 {
	load, nonLoad := c.SeparatePowerLoad()
	return load + nonLoad
}

func (c *Computation) PoweredDownPowerRequired() float64 {
	return c.nonLoadKW
}

// MaintenanceTime doubles as the node approaches its entropy ceiling
func (c *Computation) MaintenanceTime() float64 {
	return c.peakCU * 0.5 * (2 - math.Min(1, c.entropy.penalty()))
}

func (c *Computation) Destroy() {
	c.base.Destroy()
	c.demand = make(map[int]float64)
}
