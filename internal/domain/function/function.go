package function

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/spot"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

// Type is the closed set of building capabilities. The numeric order is the
// order in which a building pulses its functions.
type Type int

const (
	TypeLifeSupport Type = iota + 1
	TypeLivingAccommodation
	TypeStorage
	TypeComputation
	TypeResearch
	TypeAstronomicalObservation
	TypeManufacture
	TypeFoodProduction
	TypeMedicalCare
	TypeVehicleMaintenance
	TypeWasteProcessing
	TypeEVA
)

var typeNames = map[Type]string{
	TypeLifeSupport:             "LIFE_SUPPORT",
	TypeLivingAccommodation:     "LIVING_ACCOMMODATION",
	TypeStorage:                 "STORAGE",
	TypeComputation:             "COMPUTATION",
	TypeResearch:                "RESEARCH",
	TypeAstronomicalObservation: "ASTRONOMICAL_OBSERVATION",
	TypeManufacture:             "MANUFACTURE",
	TypeFoodProduction:          "FOOD_PRODUCTION",
	TypeMedicalCare:             "MEDICAL_CARE",
	TypeVehicleMaintenance:      "VEHICLE_MAINTENANCE",
	TypeWasteProcessing:         "WASTE_PROCESSING",
	TypeEVA:                     "EVA",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("FUNCTION_%d", int(t))
}

// ParseType converts a catalog name such as "life_support" or "LIFE_SUPPORT" to a Type
func ParseType(s string) (Type, error) {
	want := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for t, n := range typeNames {
		if n == want {
			return t, nil
		}
	}
	return 0, shared.NewValidationError("function", fmt.Sprintf("unknown function type %q", s))
}

// AllTypes lists every function type in pulse order
func AllTypes() []Type {
	out := make([]Type, 0, len(typeNames))
	for t := TypeLifeSupport; t <= TypeEVA; t++ {
		out = append(out, t)
	}
	return out
}

// Function is one capability of a building.
//
// TimePassing is called once per clock pulse, in a fixed order, on the
// settlement's goroutine. It returns false when the pulse was ignored
// (a repeated pulse id).
type Function interface {
	Type() Type
	BuildingID() int
	TimePassing(ctx Context, pulse marstime.Pulse) bool
	MaintenanceTime() float64
	CombinedPowerLoad() float64
	PoweredDownPowerRequired() float64
	ActivitySpots() *spot.Set
	Destroy()
}

// ResourceStore is the slice of the settlement inventory functions touch
type ResourceStore interface {
	StoreAmountResource(id resource.ID, kg float64) float64
	RetrieveAmountResource(id resource.ID, kg float64) float64
	SpecificAmountResourceStored(id resource.ID) float64
	AmountResourceRemainingCapacity(id resource.ID) float64
	ItemResourceStored(id resource.ID) int
	StoreItemResource(id resource.ID, n int)
	RetrieveItemResource(id resource.ID, n int) int
}

// Crew is anyone who can ride a vehicle and stand in a building
type Crew interface {
	ID() int
	BuildingID() int
	VehicleID() int
	LeaveBuilding()
}

// Context is what a function may ask of its settlement during a pulse.
// Functions never hold a reference to the settlement itself.
type Context interface {
	Store() ResourceStore
	Logger() shared.Logger
	Person(id int) (*unit.Person, bool)
	CrewOf(vehicleID int) []Crew
	ParkInVicinity(v *unit.Vehicle)
	RecordProcess(rec ProcessRecord)
}

// BuildingRef is the identity and placement of the building owning a function
type BuildingRef struct {
	ID        int
	Name      string
	Placement shared.Placement
}
