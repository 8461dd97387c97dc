package function_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

func TestNew_BuildsEveryFunctionType(t *testing.T) {
	for _, ft := range function.AllTypes() {
		t.Run(ft.String(), func(t *testing.T) {
			spec := function.Spec{
				Type:       ft,
				TechLevel:  1,
				Capacity:   2,
				Capacities: map[resource.ID]float64{resource.Water: 500},
			}

			f, err := function.New(testRef(), spec)

			require.NoError(t, err)
			assert.Equal(t, ft, f.Type())
			assert.Equal(t, testRef().ID, f.BuildingID())
			assert.GreaterOrEqual(t, f.MaintenanceTime(), 0.0)
		})
	}
}

func TestNew_RejectsUnknownType(t *testing.T) {
	_, err := function.New(testRef(), function.Spec{Type: function.Type(99)})

	var verr *shared.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNew_WrapsConstructorErrors(t *testing.T) {
	_, err := function.New(testRef(), function.Spec{Type: function.TypeComputation})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "COMPUTATION")
	assert.Contains(t, err.Error(), "Lander Hab 1")
}

func TestParseType(t *testing.T) {
	ft, err := function.ParseType("vehicle-maintenance")
	require.NoError(t, err)
	assert.Equal(t, function.TypeVehicleMaintenance, ft)

	_, err = function.ParseType("teleporter")
	assert.Error(t, err)
}

func TestStorage_ExposesCapacityAndStock(t *testing.T) {
	s, err := function.NewStorage(testRef(), function.Spec{
		Type:         function.TypeStorage,
		Capacities:   map[resource.ID]float64{resource.Oxygen: 1000, resource.Food: 0},
		InitialStock: map[resource.ID]float64{resource.Oxygen: 250},
	})
	require.NoError(t, err)

	caps := s.StorageCapacities()
	caps[resource.Oxygen] = 1

	assert.Equal(t, map[resource.ID]float64{resource.Oxygen: 1000}, s.StorageCapacities())
	assert.Equal(t, map[resource.ID]float64{resource.Oxygen: 250}, s.InitialStock())
	assert.Zero(t, s.CombinedPowerLoad())
}

func TestLifeSupport_OvercrowdingStressesOccupants(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	ls, err := function.NewLifeSupport(testRef(), function.Spec{Type: function.TypeLifeSupport, Capacity: 1})
	require.NoError(t, err)
	a := ctx.addPerson(t, 1, unit.GenderMale)
	b := ctx.addPerson(t, 2, unit.GenderFemale)
	require.True(t, ls.AddOccupant(a.ID()))
	require.True(t, ls.AddOccupant(b.ID()))
	seq := &pulseSeq{}

	// Act
	ls.TimePassing(ctx, seq.millisol(1, 10))

	// Assert
	assert.Zero(t, ls.AvailableOccupancy())
	assert.InDelta(t, 1, a.Stress(), 1e-9, "0.1 x 1 extra occupant x 10 msol")
	assert.InDelta(t, 1, b.Stress(), 1e-9)
}

func TestMedicalCare_TreatmentQueue(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	m, err := function.NewMedicalCare(testRef(), function.Spec{Type: function.TypeMedicalCare, Capacity: 2})
	require.NoError(t, err)
	require.True(t, m.RequestTreatment(1, "burn", 10))
	require.True(t, m.RequestTreatment(2, "fracture", 20))
	seq := &pulseSeq{}

	// Act
	m.TimePassing(ctx, seq.millisol(1, 10))

	// Assert
	assert.Equal(t, 1, m.CompletedTreatments())
	assert.False(t, m.HasPatient(1), "released after treatment")
	assert.Zero(t, m.ActiveTreatments())
	assert.Equal(t, 1, m.WaitingTreatments(), "one treatment at a time")

	m.TimePassing(ctx, seq.millisol(2, 5))
	assert.Equal(t, 1, m.ActiveTreatments())
	assert.True(t, m.HasPatient(2))
}

func TestWasteProcessing_ThroughputLimitedByStock(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.GreyWater, 1)
	w, err := function.NewWasteProcessing(testRef(), function.Spec{
		Type: function.TypeWasteProcessing,
		Processes: []function.ResourceProcessSpec{{
			Name:          "Grey water filtering",
			Inputs:        []function.ResourceRate{{Resource: resource.GreyWater, Rate: 0.5}},
			Outputs:       []function.ResourceRate{{Resource: resource.Water, Rate: 0.45}},
			PowerRequired: 2,
			DefaultOn:     true,
		}},
	})
	require.NoError(t, err)
	seq := &pulseSeq{}

	// Act
	w.TimePassing(ctx, seq.millisol(1, 4))

	// Assert
	assert.Zero(t, ctx.store.SpecificAmountResourceStored(resource.GreyWater))
	assert.InDelta(t, 0.9, ctx.store.SpecificAmountResourceStored(resource.Water), 1e-9)
	assert.InDelta(t, 1, w.CombinedPowerLoad(), 1e-9, "half throughput")

	require.True(t, w.Toggle("Grey water filtering", false))
	assert.False(t, w.Toggle("missing", true))
}

func TestAstronomicalObservation_Observers(t *testing.T) {
	a, err := function.NewAstronomicalObservation(testRef(), function.Spec{Type: function.TypeAstronomicalObservation, Capacity: 1})
	require.NoError(t, err)

	require.True(t, a.AddObserver())
	assert.False(t, a.AddObserver())
	require.NoError(t, a.RemoveObserver())
	assert.Error(t, a.RemoveObserver())
}
