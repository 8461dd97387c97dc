package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/spot"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

func TestNewPerson_Validation(t *testing.T) {
	_, err := unit.NewPerson(0, "Ana", unit.GenderFemale)
	assert.Error(t, err)

	_, err = unit.NewPerson(1, "", unit.GenderFemale)
	assert.Error(t, err)

	_, err = unit.NewPerson(1, "Ana", unit.Gender("OTHER"))
	var vErr *shared.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestPerson_StressIsClamped(t *testing.T) {
	p, err := unit.NewPerson(1, "Ana", unit.GenderFemale)
	require.NoError(t, err)

	p.AddStress(150)
	assert.Equal(t, unit.MaxStress, p.Stress())

	p.AddStress(-500)
	assert.Zero(t, p.Stress())
}

func TestPerson_ReleaseBed(t *testing.T) {
	// Arrange
	p, err := unit.NewPerson(1, "Ana", unit.GenderFemale)
	require.NoError(t, err)
	bed := spot.NewActivitySpot("bed", shared.NewLocalPosition(0, 0))
	p.AssignBed(bed.Claim(p, true, 2))

	// Act
	released := p.ReleaseBed()

	// Assert
	assert.True(t, released)
	assert.Nil(t, p.Bed())
	assert.True(t, bed.IsEmpty())
	assert.False(t, p.ReleaseBed())
}

func TestVehicle_GarageAndParkOutside(t *testing.T) {
	// Arrange
	v, err := unit.NewVehicle(10, "Rover 1", unit.VehicleTypeRover)
	require.NoError(t, err)
	assert.Equal(t, unit.VehicleStatusParked, v.Status())

	// Act
	v.Garage(4, shared.NewLocalPosition(3, 4))

	// Assert
	assert.True(t, v.IsGaraged())
	assert.Equal(t, unit.LocationInsideSettlement, v.LocationState())
	assert.Equal(t, 4, v.GarageBuildingID())

	v.ParkOutside(shared.NewLocalPosition(40, 0))
	assert.Equal(t, unit.VehicleStatusParked, v.Status())
	assert.Equal(t, unit.LocationSettlementVicinity, v.LocationState())
	assert.Equal(t, unit.NoBuilding, v.GarageBuildingID())
}

func TestParseVehicleType(t *testing.T) {
	vt, err := unit.ParseVehicleType("FLYER")
	require.NoError(t, err)
	assert.Equal(t, unit.VehicleTypeFlyer, vt)

	_, err = unit.ParseVehicleType("BOAT")
	assert.Error(t, err)
}
