package function

import (
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// AstronomicalObservation is an observatory with a fixed number of observer seats
type AstronomicalObservation struct {
	base

	observerCapacity int
	observerNum      int
	powerRequired    float64
	observedTime     float64
}

func NewAstronomicalObservation(ref BuildingRef, spec Spec) (*AstronomicalObservation, error) {
	if spec.Capacity <= 0 {
		return nil, shared.NewValidationError("capacity", "observatory needs at least one seat")
	}
	power, err := spec.DoubleProperty("power-required", 2.0)
	if err != nil {
		return nil, err
	}
	return &AstronomicalObservation{
		base:             newBase(TypeAstronomicalObservation, ref, spec),
		observerCapacity: spec.Capacity,
		powerRequired:    power,
	}, nil
}

func (a *AstronomicalObservation) ObserverCapacity() int { return a.observerCapacity }
func (a *AstronomicalObservation) ObserverNum() int      { return a.observerNum }

// ObservedTime is the accumulated observer-millisols
func (a *AstronomicalObservation) ObservedTime() float64 { return a.observedTime }

func (a *AstronomicalObservation) AddObserver() bool {
	if a.observerNum >= a.observerCapacity {
		return false
	}
	a.observerNum++
	return true
}

// RemoveObserver frees a seat; an empty observatory is an invariant violation
func (a *AstronomicalObservation) RemoveObserver() error {
	if a.observerNum <= 0 {
		return shared.NewInvariantViolationError("AstronomicalObservation", "RemoveObserver", "no observers in "+a.building.Name)
	}
	a.observerNum--
	return nil
}

func (a *AstronomicalObservation) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !a.isValid(ctx, pulse) {
		return false
	}
	a.observedTime += pulse.Elapsed() * float64(a.observerNum)
	return true
}

// CombinedPowerLoad drops to a tenth while nobody observes
func (a *AstronomicalObservation) CombinedPowerLoad() float64 {
	if a.observerNum == 0 {
		return a.powerRequired * 0.1
	}
	return a.powerRequired
}

func (a *AstronomicalObservation) MaintenanceTime() float64 {
	return float64(a.observerCapacity) * 15
}

func (a *AstronomicalObservation) Destroy() {
	a.base.Destroy()
	a.observerNum = 0
}
