package unit

import "github.com/andrescamacho/marssim-go/internal/domain/shared"

// Robot is a mechanical worker. It claims spots and rides vehicles like a person
// but has no gender and no stress.
type Robot struct {
	id         int
	name       string
	buildingID int
	vehicleID  int
}

func NewRobot(id int, name string) (*Robot, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("id", "must be positive")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	return &Robot{id: id, name: name}, nil
}

func (r *Robot) ID() int         { return r.id }
func (r *Robot) Name() string    { return r.name }
func (r *Robot) BuildingID() int { return r.buildingID }
func (r *Robot) VehicleID() int  { return r.vehicleID }

func (r *Robot) EnterBuilding(buildingID int) { r.buildingID = buildingID }
func (r *Robot) LeaveBuilding()               { r.buildingID = NoBuilding }
func (r *Robot) BoardVehicle(vehicleID int)   { r.vehicleID = vehicleID }
func (r *Robot) DisembarkVehicle()            { r.vehicleID = 0 }
