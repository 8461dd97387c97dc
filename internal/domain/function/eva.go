package function

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/spot"
)

// EVA hosts a building airlock. The chamber slots are the function's activity spots.
type EVA struct {
	base

	airlock       *Airlock
	powerRequired float64
	cyclePower    float64
	lastState     AirlockState
}

// NewEVA builds the airlock. Properties: interior-door, exterior-door,
// power-required, cycle-power. Capacity defaults to MaxChamberSlots; without
// activity spots the chamber gets one generated slot per capacity unit.
func NewEVA(ref BuildingRef, spec Spec) (*EVA, error) {
	capacity := spec.Capacity
	if capacity == 0 {
		capacity = MaxChamberSlots
	}
	if capacity > MaxChamberSlots {
		return nil, shared.NewValidationError("capacity", fmt.Sprintf("airlock holds at most %d", MaxChamberSlots))
	}

	b := newBase(TypeEVA, ref, spec)
	if b.spots.Len() == 0 {
		generateChamberSlots(b.spots, capacity)
	}

	interior, ok, err := spec.PositionProperty("interior-door")
	if err != nil {
		return nil, err
	}
	if !ok {
		interior = shared.NewLocalPosition(-2, 0)
	}
	exterior, ok, err := spec.PositionProperty("exterior-door")
	if err != nil {
		return nil, err
	}
	if !ok {
		exterior = shared.NewLocalPosition(2, 0)
	}
	power, err := spec.DoubleProperty("power-required", 0.2)
	if err != nil {
		return nil, err
	}
	cycle, err := spec.DoubleProperty("cycle-power", 1.0)
	if err != nil {
		return nil, err
	}

	airlock, err := NewAirlock(capacity, b.spots, interior, exterior)
	if err != nil {
		return nil, err
	}
	return &EVA{
		base:          b,
		airlock:       airlock,
		powerRequired: power,
		cyclePower:    cycle,
		lastState:     airlock.State(),
	}, nil
}

func generateChamberSlots(set *spot.Set, n int) {
	for i := 0; i < n; i++ {
		x := -0.5 + float64(i%2)
		y := -0.5 + float64(i/2)
		set.Add(spot.NewActivitySpot(fmt.Sprintf("Chamber %d", i+1), shared.NewLocalPosition(x, y)))
	}
}

func (e *EVA) Airlock() *Airlock { return e.airlock }

func (e *EVA) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !e.isValid(ctx, pulse) {
		return false
	}
	e.airlock.timePassing(pulse)
	if s := e.airlock.State(); s != e.lastState {
		e.logf(ctx, shared.LevelDebug, "Airlock %s.", s)
		e.lastState = s
	}
	return true
}

// CombinedPowerLoad adds the air pumps while cycling
func (e *EVA) CombinedPowerLoad() float64 {
	if e.airlock.IsTransitioning() {
		return e.powerRequired + e.cyclePower
	}
	return e.powerRequired
}

func (e *EVA) MaintenanceTime() float64 {
	return float64(e.airlock.Capacity()) * 10
}

func (e *EVA) Destroy() {
	e.base.Destroy()
	e.airlock.destroy()
}
