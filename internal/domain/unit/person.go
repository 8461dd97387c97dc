package unit

import (
	"fmt"
	"math"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/spot"
)

// Gender is used by bunk pairing rules
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// ParseGender converts a string to a Gender
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), nil
	}
	return "", shared.NewValidationError("gender", fmt.Sprintf("unknown gender %q", s))
}

// NoBuilding marks a worker that is not inside any building
const NoBuilding = 0

// MaxStress is the ceiling of the stress scale
const MaxStress = 100.0

// Person is a settler. People occupy buildings, claim spots and ride vehicles.
type Person struct {
	id         int
	name       string
	gender     Gender
	stress     float64
	buildingID int
	vehicleID  int
	bed        *spot.AllocatedSpot
}

// NewPerson creates a settler. IDs must be positive and unique among all
// workers of a settlement.
func NewPerson(id int, name string, gender Gender) (*Person, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("id", "must be positive")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if _, err := ParseGender(string(gender)); err != nil {
		return nil, err
	}
	return &Person{id: id, name: name, gender: gender}, nil
}

func (p *Person) ID() int                  { return p.id }
func (p *Person) Name() string             { return p.name }
func (p *Person) Gender() Gender           { return p.gender }
func (p *Person) Stress() float64          { return p.stress }
func (p *Person) BuildingID() int          { return p.buildingID }
func (p *Person) VehicleID() int           { return p.vehicleID }
func (p *Person) Bed() *spot.AllocatedSpot { return p.bed }

// AddStress changes stress by delta, clamped to [0, MaxStress]
func (p *Person) AddStress(delta float64) {
	p.stress = math.Max(0, math.Min(MaxStress, p.stress+delta))
}

func (p *Person) EnterBuilding(buildingID int) { p.buildingID = buildingID }
func (p *Person) LeaveBuilding()               { p.buildingID = NoBuilding }
func (p *Person) BoardVehicle(vehicleID int)   { p.vehicleID = vehicleID }
func (p *Person) DisembarkVehicle()            { p.vehicleID = 0 }

// AssignBed records the bed lease held by the person
func (p *Person) AssignBed(bed *spot.AllocatedSpot) { p.bed = bed }

// ReleaseBed gives the bed back, permanent or not
func (p *Person) ReleaseBed() bool {
	if p.bed == nil {
		return false
	}
	ok := p.bed.Release(p)
	p.bed = nil
	return ok
}

func (p *Person) String() string { return p.name }
