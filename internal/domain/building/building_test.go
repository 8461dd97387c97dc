package building_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/building"
	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

// stubContext satisfies function.Context for pulses that touch nothing
type stubContext struct {
	store *resource.Store
}

func newStubContext(t *testing.T) *stubContext {
	t.Helper()
	store, err := resource.NewStore(100)
	require.NoError(t, err)
	return &stubContext{store: store}
}

func (c *stubContext) Store() function.ResourceStore        { return c.store }
func (c *stubContext) Logger() shared.Logger                { return shared.NopLogger{} }
func (c *stubContext) Person(int) (*unit.Person, bool)      { return nil, false }
func (c *stubContext) CrewOf(int) []function.Crew           { return nil }
func (c *stubContext) ParkInVicinity(*unit.Vehicle)         {}
func (c *stubContext) RecordProcess(function.ProcessRecord) {}

func habSpecs() []function.Spec {
	return []function.Spec{
		{Type: function.TypeComputation, Capacity: 10, Properties: map[string]interface{}{"idle-power": 1.0}},
		{Type: function.TypeLifeSupport, Capacity: 2, Properties: map[string]interface{}{"power-required": 2.0}},
		{Type: function.TypeLivingAccommodation, Capacity: 2},
	}
}

func TestNewBuilding_OrdersFunctionsByType(t *testing.T) {
	b, err := building.NewBuilding(3, "Lander Hab 1", "Lander Hab", shared.Placement{}, habSpecs())
	require.NoError(t, err)

	var order []function.Type
	for _, f := range b.Functions() {
		order = append(order, f.Type())
	}

	assert.Equal(t, []function.Type{
		function.TypeLifeSupport,
		function.TypeLivingAccommodation,
		function.TypeComputation,
	}, order)
	assert.True(t, b.HasFunction(function.TypeComputation))
	assert.False(t, b.HasFunction(function.TypeEVA))
	for _, f := range b.Functions() {
		assert.Equal(t, 3, f.BuildingID())
	}
}

func TestNewBuilding_RejectsDuplicateFunction(t *testing.T) {
	specs := []function.Spec{
		{Type: function.TypeStorage},
		{Type: function.TypeStorage},
	}

	_, err := building.NewBuilding(1, "Storage Shed", "Storage Shed", shared.Placement{}, specs)

	var verr *shared.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNewBuilding_RejectsBadIdentity(t *testing.T) {
	_, err := building.NewBuilding(0, "x", "y", shared.Placement{}, nil)
	assert.Error(t, err)

	_, err = building.NewBuilding(1, "", "y", shared.Placement{}, nil)
	assert.Error(t, err)
}

func TestBuilding_TypedAccessors(t *testing.T) {
	b, err := building.NewBuilding(1, "Lander Hab 1", "Lander Hab", shared.Placement{}, habSpecs())
	require.NoError(t, err)

	comp, ok := b.Computation()
	require.True(t, ok)
	assert.InDelta(t, 10, comp.PeakCU(), 1e-9)

	_, ok = b.VehicleMaintenance()
	assert.False(t, ok)

	_, ok = building.FunctionAs[*function.Research](b, function.TypeComputation)
	assert.False(t, ok, "wrong concrete type")
}

func TestBuilding_PowerModes(t *testing.T) {
	b, err := building.NewBuilding(1, "Lander Hab 1", "Lander Hab", shared.Placement{}, habSpecs())
	require.NoError(t, err)

	up := b.PowerLoad()
	b.PowerDown()
	down := b.PowerLoad()
	b.PowerUp()

	assert.InDelta(t, 3, up, 1e-9, "life support 2 kW plus idle computing 1 kW")
	assert.InDelta(t, 1, down, 1e-9, "only computing keeps idle power")
	assert.False(t, b.IsPoweredDown())
}

func TestBuilding_AddAndRemovePerson(t *testing.T) {
	// Arrange
	b, err := building.NewBuilding(4, "Lander Hab 1", "Lander Hab", shared.Placement{}, habSpecs())
	require.NoError(t, err)
	p, err := unit.NewPerson(1, "Ana", unit.GenderFemale)
	require.NoError(t, err)

	// Act
	added := b.AddPerson(p)
	again := b.AddPerson(p)

	// Assert
	require.True(t, added)
	assert.False(t, again)
	assert.Equal(t, 4, p.BuildingID())

	require.True(t, b.RemovePerson(p))
	assert.Equal(t, unit.NoBuilding, p.BuildingID())
	assert.False(t, b.RemovePerson(p))
}

func TestBuilding_WithoutLifeSupportHoldsNobody(t *testing.T) {
	b, err := building.NewBuilding(1, "Storage Shed", "Storage Shed", shared.Placement{}, []function.Spec{{Type: function.TypeStorage}})
	require.NoError(t, err)
	p, err := unit.NewPerson(1, "Ana", unit.GenderFemale)
	require.NoError(t, err)

	assert.False(t, b.AddPerson(p))
}

func TestBuilding_TimePassingCountsAcceptedPulses(t *testing.T) {
	ctx := newStubContext(t)
	b, err := building.NewBuilding(1, "Lander Hab 1", "Lander Hab", shared.Placement{}, habSpecs())
	require.NoError(t, err)
	pulse := marstime.NewPulse(1, 1, marstime.New(1, 1), false, false, true)

	assert.Equal(t, 3, b.TimePassing(ctx, pulse))
	assert.Zero(t, b.TimePassing(ctx, pulse), "repeated pulse")
}
