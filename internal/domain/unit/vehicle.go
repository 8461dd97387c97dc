package unit

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// VehicleType selects which garage lot a vehicle parks in
type VehicleType string

const (
	VehicleTypeRover   VehicleType = "ROVER"
	VehicleTypeUtility VehicleType = "LUV"
	VehicleTypeFlyer   VehicleType = "FLYER"
)

func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(s) {
	case VehicleTypeRover, VehicleTypeUtility, VehicleTypeFlyer:
		return VehicleType(s), nil
	}
	return "", shared.NewValidationError("vehicle_type", fmt.Sprintf("unknown vehicle type %q", s))
}

// VehicleStatus is the primary status of a vehicle
type VehicleStatus string

const (
	VehicleStatusParked  VehicleStatus = "PARKED"
	VehicleStatusGaraged VehicleStatus = "GARAGED"
)

// LocationState tells where a vehicle is relative to the settlement
type LocationState string

const (
	LocationSettlementVicinity LocationState = "SETTLEMENT_VICINITY"
	LocationInsideSettlement   LocationState = "INSIDE_SETTLEMENT"
)

// Vehicle is a rover, light utility vehicle or flyer.
//
// State machine: PARKED/SETTLEMENT_VICINITY (outside) ⇄ GARAGED/INSIDE_SETTLEMENT.
type Vehicle struct {
	id        int
	name      string
	vtype     VehicleType
	status    VehicleStatus
	location  LocationState
	parkedAt  shared.LocalPosition
	garagedIn int
}

// NewVehicle creates a vehicle parked outside the settlement
func NewVehicle(id int, name string, vtype VehicleType) (*Vehicle, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("id", "must be positive")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if _, err := ParseVehicleType(string(vtype)); err != nil {
		return nil, err
	}
	return &Vehicle{
		id:       id,
		name:     name,
		vtype:    vtype,
		status:   VehicleStatusParked,
		location: LocationSettlementVicinity,
	}, nil
}

func (v *Vehicle) ID() int                              { return v.id }
func (v *Vehicle) Name() string                         { return v.name }
func (v *Vehicle) Type() VehicleType                    { return v.vtype }
func (v *Vehicle) Status() VehicleStatus                { return v.status }
func (v *Vehicle) LocationState() LocationState         { return v.location }
func (v *Vehicle) ParkedPosition() shared.LocalPosition { return v.parkedAt }
func (v *Vehicle) GarageBuildingID() int                { return v.garagedIn }
func (v *Vehicle) IsGaraged() bool                      { return v.status == VehicleStatusGaraged }

// Garage moves the vehicle inside a garage building at a settlement position
func (v *Vehicle) Garage(buildingID int, pos shared.LocalPosition) {
	v.status = VehicleStatusGaraged
	v.location = LocationInsideSettlement
	v.garagedIn = buildingID
	v.parkedAt = pos
}

// ParkOutside moves the vehicle into the settlement vicinity at pos
func (v *Vehicle) ParkOutside(pos shared.LocalPosition) {
	v.status = VehicleStatusParked
	v.location = LocationSettlementVicinity
	v.garagedIn = NoBuilding
	v.parkedAt = pos
}

func (v *Vehicle) String() string { return v.name }
