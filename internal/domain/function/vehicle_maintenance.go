package function

import (
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

// Parkable is anything a garage lot can hold
type Parkable interface {
	comparable
	ID() int
}

// ParkingLocation is one garage bay; parked is the zero value when empty
type ParkingLocation[T Parkable] struct {
	position shared.LocalPosition
	parked   T
	occupied bool
}

func (l *ParkingLocation[T]) Position() shared.LocalPosition { return l.position }
func (l *ParkingLocation[T]) Parked() (T, bool)              { return l.parked, l.occupied }

func (l *ParkingLocation[T]) clear() {
	var zero T
	l.parked = zero
	l.occupied = false
}

// parkingLot is the set of bays for one vehicle kind.
//
// Invariants:
// - a vehicle occupies at most one bay
type parkingLot[T Parkable] struct {
	locations []*ParkingLocation[T]
}

func newParkingLot[T Parkable](positions []shared.LocalPosition) *parkingLot[T] {
	lot := &parkingLot[T]{}
	for _, p := range positions {
		lot.locations = append(lot.locations, &ParkingLocation[T]{position: p})
	}
	return lot
}

func (lot *parkingLot[T]) find(v T) *ParkingLocation[T] {
	for _, l := range lot.locations {
		if l.occupied && l.parked == v {
			return l
		}
	}
	return nil
}

// add parks v in the first empty bay; false when v is already in or the lot is full
func (lot *parkingLot[T]) add(v T) (*ParkingLocation[T], bool) {
	if lot.find(v) != nil {
		return nil, false
	}
	for _, l := range lot.locations {
		if !l.occupied {
			l.parked = v
			l.occupied = true
			return l, true
		}
	}
	return nil, false
}

func (lot *parkingLot[T]) remove(v T) bool {
	l := lot.find(v)
	if l == nil {
		return false
	}
	l.clear()
	return true
}

func (lot *parkingLot[T]) capacity() int { return len(lot.locations) }

func (lot *parkingLot[T]) parked() []T {
	var out []T
	for _, l := range lot.locations {
		if l.occupied {
			out = append(out, l.parked)
		}
	}
	return out
}

func (lot *parkingLot[T]) clear() {
	for _, l := range lot.locations {
		l.clear()
	}
}

// VehicleMaintenance is a garage with separate lots for rovers, light utility
// vehicles and flyers.
type VehicleMaintenance struct {
	base

	rovers        *parkingLot[*unit.Vehicle]
	utilities     *parkingLot[*unit.Vehicle]
	flyers        *parkingLot[*unit.Vehicle]
	powerRequired float64
}

// NewVehicleMaintenance builds the garage lots. Bays come from the
// rover-parking, utility-parking and flyer-parking position lists; when a list
// is absent, rover-capacity (defaults to capacity), utility-capacity and
// flyer-capacity bays are laid out in rows.
func NewVehicleMaintenance(ref BuildingRef, spec Spec) (*VehicleMaintenance, error) {
	rovers, err := bays(spec, "rover-parking", "rover-capacity", spec.Capacity, 0, 6)
	if err != nil {
		return nil, err
	}
	utilities, err := bays(spec, "utility-parking", "utility-capacity", 0, -5, 3)
	if err != nil {
		return nil, err
	}
	flyers, err := bays(spec, "flyer-parking", "flyer-capacity", 0, 5, 4)
	if err != nil {
		return nil, err
	}
	if len(rovers)+len(utilities)+len(flyers) == 0 {
		return nil, shared.NewValidationError("capacity", "garage needs at least one bay")
	}
	power, err := spec.DoubleProperty("power-required", 0)
	if err != nil {
		return nil, err
	}
	return &VehicleMaintenance{
		base:          newBase(TypeVehicleMaintenance, ref, spec),
		rovers:        newParkingLot[*unit.Vehicle](rovers),
		utilities:     newParkingLot[*unit.Vehicle](utilities),
		flyers:        newParkingLot[*unit.Vehicle](flyers),
		powerRequired: power,
	}, nil
}

func bays(spec Spec, listProp, countProp string, defCount int, row, spacing float64) ([]shared.LocalPosition, error) {
	listed, err := spec.PositionListProperty(listProp)
	if err != nil || listed != nil {
		return listed, err
	}
	n, err := spec.IntProperty(countProp, defCount)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, shared.NewValidationError(countProp, "cannot be negative")
	}
	out := make([]shared.LocalPosition, 0, n)
	offset := float64(n-1) * spacing / 2
	for i := 0; i < n; i++ {
		out = append(out, shared.NewLocalPosition(float64(i)*spacing-offset, row))
	}
	return out, nil
}

func (g *VehicleMaintenance) lotFor(t unit.VehicleType) *parkingLot[*unit.Vehicle] {
	switch t {
	case unit.VehicleTypeRover:
		return g.rovers
	case unit.VehicleTypeUtility:
		return g.utilities
	case unit.VehicleTypeFlyer:
		return g.flyers
	}
	return nil
}

// AddRover garages a rover; false when already here, the lot is full or v is not a rover
func (g *VehicleMaintenance) AddRover(v *unit.Vehicle) bool {
	return g.addVehicle(v, unit.VehicleTypeRover)
}

// AddUtilityVehicle garages a light utility vehicle
func (g *VehicleMaintenance) AddUtilityVehicle(v *unit.Vehicle) bool {
	return g.addVehicle(v, unit.VehicleTypeUtility)
}

// AddFlyer garages a flyer
func (g *VehicleMaintenance) AddFlyer(v *unit.Vehicle) bool {
	return g.addVehicle(v, unit.VehicleTypeFlyer)
}

// AddVehicle garages v in the lot matching its type
func (g *VehicleMaintenance) AddVehicle(v *unit.Vehicle) bool {
	return g.addVehicle(v, v.Type())
}

func (g *VehicleMaintenance) addVehicle(v *unit.Vehicle, want unit.VehicleType) bool {
	if v == nil || v.Type() != want {
		return false
	}
	loc, ok := g.lotFor(want).add(v)
	if !ok {
		return false
	}
	v.Garage(g.building.ID, g.building.Placement.ToSettlement(loc.position))
	return true
}

// RemoveRover takes a rover out. With transferCrew its crew leaves the
// building with it. The rover is parked in the settlement vicinity.
func (g *VehicleMaintenance) RemoveRover(ctx Context, v *unit.Vehicle, transferCrew bool) bool {
	return g.removeVehicle(ctx, v, unit.VehicleTypeRover, transferCrew)
}

func (g *VehicleMaintenance) RemoveUtilityVehicle(ctx Context, v *unit.Vehicle, transferCrew bool) bool {
	return g.removeVehicle(ctx, v, unit.VehicleTypeUtility, transferCrew)
}

// RemoveFlyer takes a flyer out; flyers carry no crew
func (g *VehicleMaintenance) RemoveFlyer(ctx Context, v *unit.Vehicle) bool {
	return g.removeVehicle(ctx, v, unit.VehicleTypeFlyer, false)
}

// RemoveVehicle takes v out of the lot matching its type
func (g *VehicleMaintenance) RemoveVehicle(ctx Context, v *unit.Vehicle, transferCrew bool) bool {
	return g.removeVehicle(ctx, v, v.Type(), transferCrew && v.Type() != unit.VehicleTypeFlyer)
}

func (g *VehicleMaintenance) removeVehicle(ctx Context, v *unit.Vehicle, want unit.VehicleType, transferCrew bool) bool {
	if v == nil || v.Type() != want {
		return false
	}
	if !g.lotFor(want).remove(v) {
		return false
	}
	if transferCrew {
		g.relocateCrew(ctx, v)
	}
	ctx.ParkInVicinity(v)
	return true
}

// relocateCrew takes the vehicle's crew out of this building
func (g *VehicleMaintenance) relocateCrew(ctx Context, v *unit.Vehicle) {
	for _, c := range ctx.CrewOf(v.ID()) {
		if c.BuildingID() == g.building.ID {
			c.LeaveBuilding()
		}
	}
}

// ContainsVehicle reports whether v is parked in any lot here
func (g *VehicleMaintenance) ContainsVehicle(v *unit.Vehicle) bool {
	lot := g.lotFor(v.Type())
	return lot != nil && lot.find(v) != nil
}

func (g *VehicleMaintenance) RoverCapacity() int   { return g.rovers.capacity() }
func (g *VehicleMaintenance) UtilityCapacity() int { return g.utilities.capacity() }
func (g *VehicleMaintenance) FlyerCapacity() int   { return g.flyers.capacity() }

func (g *VehicleMaintenance) Rovers() []*unit.Vehicle    { return g.rovers.parked() }
func (g *VehicleMaintenance) Utilities() []*unit.Vehicle { return g.utilities.parked() }
func (g *VehicleMaintenance) Flyers() []*unit.Vehicle    { return g.flyers.parked() }

// AvailableCapacity returns the free bays for a vehicle type
func (g *VehicleMaintenance) AvailableCapacity(t unit.VehicleType) int {
	lot := g.lotFor(t)
	if lot == nil {
		return 0
	}
	return lot.capacity() - len(lot.parked())
}

// ParkedVehicles returns every garaged vehicle
func (g *VehicleMaintenance) ParkedVehicles() []*unit.Vehicle {
	out := g.rovers.parked()
	out = append(out, g.utilities.parked()...)
	return append(out, g.flyers.parked()...)
}

// TimePassing drops vehicles that were moved out of the garage behind its back
func (g *VehicleMaintenance) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !g.isValid(ctx, pulse) {
		return false
	}
	for _, lot := range []*parkingLot[*unit.Vehicle]{g.rovers, g.utilities, g.flyers} {
		for _, v := range lot.parked() {
			if v.GarageBuildingID() != g.building.ID {
				lot.remove(v)
				g.logf(ctx, shared.LevelWarning, "%s was no longer garaged here; bay released.", v.Name())
			}
		}
	}
	return true
}

func (g *VehicleMaintenance) CombinedPowerLoad() float64 { return g.powerRequired }

func (g *VehicleMaintenance) MaintenanceTime() float64 {
	return float64(g.rovers.capacity()) * 5
}

func (g *VehicleMaintenance) Destroy() {
	g.base.Destroy()
	g.rovers.clear()
	g.utilities.clear()
	g.flyers.clear()
}
