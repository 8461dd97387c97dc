package function

import (
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
)

// CapacityProvider is implemented by functions that add room to the settlement store
type CapacityProvider interface {
	StorageCapacities() map[resource.ID]float64
	InitialStock() map[resource.ID]float64
}

// Storage contributes per-resource capacity to the settlement store while its
// building stands. The settlement adds the capacity when the building is
// placed and takes it back on demolition.
type Storage struct {
	base

	capacities map[resource.ID]float64
	initial    map[resource.ID]float64
}

func NewStorage(ref BuildingRef, spec Spec) (*Storage, error) {
	caps := make(map[resource.ID]float64, len(spec.Capacities))
	for id, kg := range spec.Capacities {
		if kg > 0 {
			caps[id] = kg
		}
	}
	initial := make(map[resource.ID]float64, len(spec.InitialStock))
	for id, kg := range spec.InitialStock {
		if kg > 0 {
			initial[id] = kg
		}
	}
	return &Storage{
		base:       newBase(TypeStorage, ref, spec),
		capacities: caps,
		initial:    initial,
	}, nil
}

// StorageCapacities returns a copy of the capacity the building adds
func (s *Storage) StorageCapacities() map[resource.ID]float64 {
	return copyAmounts(s.capacities)
}

// InitialStock returns the stock delivered with the building
func (s *Storage) InitialStock() map[resource.ID]float64 {
	return copyAmounts(s.initial)
}

func copyAmounts(m map[resource.ID]float64) map[resource.ID]float64 {
	out := make(map[resource.ID]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Storage) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	return s.isValid(ctx, pulse)
}

func (s *Storage) CombinedPowerLoad() float64 { return 0 }
func (s *Storage) MaintenanceTime() float64   { return float64(len(s.capacities)) * 2.5 }
