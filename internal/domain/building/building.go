package building

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

// Building is one placed structure of a settlement and the functions it provides.
//
// Invariants:
// - At most one function per function.Type
// - functions is sorted by function.Type, which is the pulse order
type Building struct {
	id           int
	name         string
	buildingType string
	placement    shared.Placement

	functions   []function.Function
	byType      map[function.Type]function.Function
	poweredDown bool
}

// NewBuilding builds every function listed in specs
func NewBuilding(id int, name, buildingType string, placement shared.Placement, specs []function.Spec) (*Building, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("id", "building id must be positive")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "building name cannot be empty")
	}
	if buildingType == "" {
		return nil, shared.NewValidationError("building_type", "building type cannot be empty")
	}

	b := &Building{
		id:           id,
		name:         name,
		buildingType: buildingType,
		placement:    placement,
		byType:       make(map[function.Type]function.Function, len(specs)),
	}
	ref := b.Ref()
	for _, spec := range specs {
		if _, dup := b.byType[spec.Type]; dup {
			return nil, shared.NewValidationError("functions", fmt.Sprintf("%s listed twice for %s", spec.Type, buildingType))
		}
		f, err := function.New(ref, spec)
		if err != nil {
			return nil, err
		}
		b.byType[spec.Type] = f
		b.functions = append(b.functions, f)
	}
	sort.Slice(b.functions, func(i, j int) bool {
		return b.functions[i].Type() < b.functions[j].Type()
	})
	return b, nil
}

func (b *Building) ID() int                     { return b.id }
func (b *Building) Name() string                { return b.name }
func (b *Building) BuildingType() string        { return b.buildingType }
func (b *Building) Placement() shared.Placement { return b.placement }
func (b *Building) IsPoweredDown() bool         { return b.poweredDown }

// Ref is the identity handed to the building's functions
func (b *Building) Ref() function.BuildingRef {
	return function.BuildingRef{ID: b.id, Name: b.name, Placement: b.placement}
}

// Functions returns the functions in pulse order
func (b *Building) Functions() []function.Function {
	out := make([]function.Function, len(b.functions))
	copy(out, b.functions)
	return out
}

func (b *Building) Function(t function.Type) (function.Function, bool) {
	f, ok := b.byType[t]
	return f, ok
}

func (b *Building) HasFunction(t function.Type) bool {
	_, ok := b.byType[t]
	return ok
}

// FunctionAs returns the building's function of type t as its concrete type
func FunctionAs[T function.Function](b *Building, t function.Type) (T, bool) {
	var zero T
	f, ok := b.byType[t]
	if !ok {
		return zero, false
	}
	typed, ok := f.(T)
	return typed, ok
}

func (b *Building) LifeSupport() (*function.LifeSupport, bool) {
	return FunctionAs[*function.LifeSupport](b, function.TypeLifeSupport)
}

func (b *Building) LivingAccommodation() (*function.LivingAccommodation, bool) {
	return FunctionAs[*function.LivingAccommodation](b, function.TypeLivingAccommodation)
}

func (b *Building) Computation() (*function.Computation, bool) {
	return FunctionAs[*function.Computation](b, function.TypeComputation)
}

func (b *Building) Research() (*function.Research, bool) {
	return FunctionAs[*function.Research](b, function.TypeResearch)
}

func (b *Building) Manufacture() (*function.Manufacture, bool) {
	return FunctionAs[*function.Manufacture](b, function.TypeManufacture)
}

func (b *Building) FoodProduction() (*function.FoodProduction, bool) {
	return FunctionAs[*function.FoodProduction](b, function.TypeFoodProduction)
}

func (b *Building) VehicleMaintenance() (*function.VehicleMaintenance, bool) {
	return FunctionAs[*function.VehicleMaintenance](b, function.TypeVehicleMaintenance)
}

func (b *Building) MedicalCare() (*function.MedicalCare, bool) {
	return FunctionAs[*function.MedicalCare](b, function.TypeMedicalCare)
}

func (b *Building) EVA() (*function.EVA, bool) {
	return FunctionAs[*function.EVA](b, function.TypeEVA)
}

// Storage returns the capacity-providing function, if any
func (b *Building) Storage() (function.CapacityProvider, bool) {
	f, ok := b.byType[function.TypeStorage]
	if !ok {
		return nil, false
	}
	cp, ok := f.(function.CapacityProvider)
	return cp, ok
}

// TimePassing pulses every function in type order. It returns the number of
// functions that accepted the pulse.
func (b *Building) TimePassing(ctx function.Context, pulse marstime.Pulse) int {
	accepted := 0
	for _, f := range b.functions {
		if f.TimePassing(ctx, pulse) {
			accepted++
		}
	}
	return accepted
}

func (b *Building) PowerDown() { b.poweredDown = true }
func (b *Building) PowerUp()   { b.poweredDown = false }

// PowerLoad is the building's draw in kW for its current power mode
func (b *Building) PowerLoad() float64 {
	total := 0.0
	for _, f := range b.functions {
		if b.poweredDown {
			total += f.PoweredDownPowerRequired()
		} else {
			total += f.CombinedPowerLoad()
		}
	}
	return total
}

// MaintenanceTime sums the maintenance millisols of every function
func (b *Building) MaintenanceTime() float64 {
	total := 0.0
	for _, f := range b.functions {
		total += f.MaintenanceTime()
	}
	return total
}

// AddPerson moves p into the building. Buildings without life support cannot
// hold people.
func (b *Building) AddPerson(p *unit.Person) bool {
	ls, ok := b.LifeSupport()
	if !ok {
		return false
	}
	if !ls.AddOccupant(p.ID()) {
		return false
	}
	p.EnterBuilding(b.id)
	return true
}

// RemovePerson takes p out of the building's life support
func (b *Building) RemovePerson(p *unit.Person) bool {
	ls, ok := b.LifeSupport()
	if !ok || !ls.RemoveOccupant(p.ID()) {
		return false
	}
	if p.BuildingID() == b.id {
		p.LeaveBuilding()
	}
	return true
}

// Destroy tears down every function. The building must not be pulsed again.
func (b *Building) Destroy() {
	for _, f := range b.functions {
		f.Destroy()
	}
}

func (b *Building) String() string {
	return fmt.Sprintf("%s (#%d, %s)", b.name, b.id, b.buildingType)
}
