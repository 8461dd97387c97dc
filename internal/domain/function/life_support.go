package function

import (
	"sort"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// overcrowdingStressRate is stress per extra occupant per millisol
const overcrowdingStressRate = 0.1

// LifeSupport keeps people alive inside a building. Occupancy above capacity is
// allowed but stresses everyone inside.
type LifeSupport struct {
	base

	occupantCapacity int
	powerRequired    float64
	occupants        map[int]struct{}
}

func NewLifeSupport(ref BuildingRef, spec Spec) (*LifeSupport, error) {
	if spec.Capacity < 0 {
		return nil, shared.NewValidationError("capacity", "cannot be negative")
	}
	power, err := spec.DoubleProperty("power-required", 1.5)
	if err != nil {
		return nil, err
	}
	return &LifeSupport{
		base:             newBase(TypeLifeSupport, ref, spec),
		occupantCapacity: spec.Capacity,
		powerRequired:    power,
		occupants:        make(map[int]struct{}),
	}, nil
}

func (l *LifeSupport) OccupantCapacity() int { return l.occupantCapacity }
func (l *LifeSupport) OccupantNumber() int   { return len(l.occupants) }

// AvailableOccupancy is the free room, never negative
func (l *LifeSupport) AvailableOccupancy() int {
	return max(0, l.occupantCapacity-len(l.occupants))
}

// AddOccupant registers a person; false when already inside
func (l *LifeSupport) AddOccupant(personID int) bool {
	if _, ok := l.occupants[personID]; ok {
		return false
	}
	l.occupants[personID] = struct{}{}
	return true
}

func (l *LifeSupport) RemoveOccupant(personID int) bool {
	if _, ok := l.occupants[personID]; !ok {
		return false
	}
	delete(l.occupants, personID)
	return true
}

func (l *LifeSupport) ContainsOccupant(personID int) bool {
	_, ok := l.occupants[personID]
	return ok
}

// Occupants returns occupant ids in ascending order
func (l *LifeSupport) Occupants() []int {
	out := make([]int, 0, len(l.occupants))
	for id := range l.occupants {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (l *LifeSupport) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !l.isValid(ctx, pulse) {
		return false
	}

	overcrowding := len(l.occupants) - l.occupantCapacity
	if overcrowding > 0 {
		stress := overcrowdingStressRate * float64(overcrowding) * pulse.Elapsed()
		for _, id := range l.Occupants() {
			if p, ok := ctx.Person(id); ok {
				p.AddStress(stress)
			}
		}
	}
	return true
}

func (l *LifeSupport) CombinedPowerLoad() float64 { return l.powerRequired }

func (l *LifeSupport) MaintenanceTime() float64 {
	return float64(l.occupantCapacity) * 10
}

func (l *LifeSupport) Destroy() {
	l.base.Destroy()
	l.occupants = make(map[int]struct{})
}
