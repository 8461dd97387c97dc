package settlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

func newSettlement(t *testing.T) *settlement.Settlement {
	t.Helper()
	s, err := settlement.NewSettlement(settlement.Config{ID: 1, Name: "Schiaparelli Point", GeneralCapacity: 100, Seed: 42})
	require.NoError(t, err)
	return s
}

func newPerson(t *testing.T, id int, gender unit.Gender) *unit.Person {
	t.Helper()
	p, err := unit.NewPerson(id, "resident", gender)
	require.NoError(t, err)
	return p
}

func quartersSpec(guestHouse bool, beds ...string) function.Spec {
	spec := function.Spec{
		Type:       function.TypeLivingAccommodation,
		Properties: map[string]interface{}{"guest-house": guestHouse},
	}
	for i, name := range beds {
		spec.ActivitySpots = append(spec.ActivitySpots, function.SpotSpec{Name: name, Position: shared.NewLocalPosition(float64(i), 0)})
	}
	return spec
}

func TestNewSettlement_Validates(t *testing.T) {
	_, err := settlement.NewSettlement(settlement.Config{Name: "x"})
	assert.Error(t, err)

	_, err = settlement.NewSettlement(settlement.Config{ID: 1})
	assert.Error(t, err)
}

func TestSettlement_StorageCapacityFollowsBuilding(t *testing.T) {
	// Arrange
	s := newSettlement(t)
	spec := function.Spec{
		Type:         function.TypeStorage,
		Capacities:   map[resource.ID]float64{resource.Oxygen: 1000},
		InitialStock: map[resource.ID]float64{resource.Oxygen: 250},
	}

	// Act
	b, err := s.PlaceBuilding("Storage Shed 1", "Storage Shed", shared.Placement{}, []function.Spec{spec})

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 1100, s.Inventory().AmountResourceCapacity(resource.Oxygen), 1e-9)
	assert.InDelta(t, 250, s.Inventory().SpecificAmountResourceStored(resource.Oxygen), 1e-9)

	require.NoError(t, s.RemoveBuilding(b.ID()))
	assert.InDelta(t, 100, s.Inventory().AmountResourceCapacity(resource.Oxygen), 1e-9)
	assert.Error(t, s.RemoveBuilding(b.ID()))
}

func TestSettlement_AllocateBedFallsThroughThreePasses(t *testing.T) {
	// Arrange
	s := newSettlement(t)
	_, err := s.PlaceBuilding("Quarters", "Residential Quarters", shared.Placement{}, []function.Spec{quartersSpec(false, "Bunk A", "Bunk A")})
	require.NoError(t, err)
	guestHouse, err := s.PlaceBuilding("Lodge", "Lodge", shared.Placement{}, []function.Spec{quartersSpec(true, "Cot")})
	require.NoError(t, err)
	him, her, third, fourth := newPerson(t, 1, unit.GenderMale), newPerson(t, 2, unit.GenderFemale), newPerson(t, 3, unit.GenderMale), newPerson(t, 4, unit.GenderMale)
	for _, p := range []*unit.Person{him, her, third, fourth} {
		require.NoError(t, s.AddPerson(p, unit.NoBuilding))
	}

	// Act
	first := s.AllocateBed(him, true)
	second := s.AllocateBed(her, true)
	overflow := s.AllocateBed(third, true)
	none := s.AllocateBed(fourth, true)

	// Assert
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, shared.NewLocalPosition(1, 0), second.Spot().Position(), "bunk gender bypassed on the second pass")
	assert.True(t, second.Spot().IsPermanent())

	require.NotNil(t, overflow)
	assert.Equal(t, guestHouse.ID(), overflow.BuildingID())
	assert.False(t, overflow.Spot().IsPermanent(), "guesthouse fallback is never permanent")
	assert.Nil(t, none)
}

func TestSettlement_GuestPrefersGuestHouse(t *testing.T) {
	s := newSettlement(t)
	_, err := s.PlaceBuilding("Quarters", "Residential Quarters", shared.Placement{}, []function.Spec{quartersSpec(false, "Bed 1")})
	require.NoError(t, err)
	lodge, err := s.PlaceBuilding("Lodge", "Lodge", shared.Placement{}, []function.Spec{quartersSpec(true, "Cot")})
	require.NoError(t, err)
	visitor := newPerson(t, 9, unit.GenderFemale)
	require.NoError(t, s.AddPerson(visitor, unit.NoBuilding))

	bed := s.AllocateBed(visitor, false)

	require.NotNil(t, bed)
	assert.Equal(t, lodge.ID(), bed.BuildingID())
	assert.Same(t, bed, s.AllocateBed(visitor, false), "existing bed is kept")
}

func TestSettlement_GuestHouseFallbackDrawsAnyFreeBed(t *testing.T) {
	seen := map[string]int{}
	for seed := int64(1); seed <= 64; seed++ {
		s, err := settlement.NewSettlement(settlement.Config{ID: 1, Name: "Schiaparelli Point", GeneralCapacity: 100, Seed: seed})
		require.NoError(t, err)
		_, err = s.PlaceBuilding("Lodge", "Lodge", shared.Placement{}, []function.Spec{quartersSpec(true, "Cot A", "Cot B", "Cot C")})
		require.NoError(t, err)
		resident := newPerson(t, 3, unit.GenderMale)
		require.NoError(t, s.AddPerson(resident, unit.NoBuilding))

		bed := s.AllocateBed(resident, true)

		require.NotNil(t, bed)
		assert.False(t, bed.Spot().IsPermanent())
		seen[bed.Spot().Name()]++
	}

	assert.Len(t, seen, 3, "every cot should come up across seeds, got %v", seen)
}

func TestSettlement_GarageIsUniquePerVehicle(t *testing.T) {
	// Arrange
	s := newSettlement(t)
	garage, err := s.PlaceBuilding("Garage", "Garage", shared.Placement{}, []function.Spec{
		{Type: function.TypeLifeSupport, Capacity: 4},
		{Type: function.TypeVehicleMaintenance, Capacity: 1},
	})
	require.NoError(t, err)
	_, err = s.PlaceBuilding("Garage 2", "Garage", shared.Placement{}, []function.Spec{
		{Type: function.TypeVehicleMaintenance, Capacity: 1},
	})
	require.NoError(t, err)
	rover, err := unit.NewVehicle(1, "Opportunity", unit.VehicleTypeRover)
	require.NoError(t, err)
	require.NoError(t, s.AddVehicle(rover))

	// Act
	id, ok := s.GarageVehicle(rover)
	againID, again := s.GarageVehicle(rover)

	// Assert
	require.True(t, ok)
	assert.Equal(t, garage.ID(), id)
	assert.False(t, again)
	assert.Equal(t, garage.ID(), againID)
	g, _ := garage.VehicleMaintenance()
	assert.Len(t, g.Rovers(), 1)
}

func TestSettlement_ReleaseVehicleTakesCrewOut(t *testing.T) {
	// Arrange
	s := newSettlement(t)
	garage, err := s.PlaceBuilding("Garage", "Garage", shared.Placement{}, []function.Spec{
		{Type: function.TypeLifeSupport, Capacity: 4},
		{Type: function.TypeVehicleMaintenance, Capacity: 1},
	})
	require.NoError(t, err)
	rover, err := unit.NewVehicle(1, "Opportunity", unit.VehicleTypeRover)
	require.NoError(t, err)
	require.NoError(t, s.AddVehicle(rover))
	driver := newPerson(t, 1, unit.GenderFemale)
	require.NoError(t, s.AddPerson(driver, garage.ID()))
	driver.BoardVehicle(rover.ID())
	_, ok := s.GarageVehicle(rover)
	require.True(t, ok)

	// Act
	released := s.ReleaseVehicle(rover, true)

	// Assert
	require.True(t, released)
	assert.Equal(t, unit.NoBuilding, driver.BuildingID())
	ls, _ := garage.LifeSupport()
	assert.False(t, ls.ContainsOccupant(driver.ID()))
	assert.Equal(t, unit.LocationSettlementVicinity, rover.LocationState())
	assert.InDelta(t, 40, rover.ParkedPosition().Distance(shared.NewLocalPosition(0, 0)), 1e-9)
	assert.False(t, s.ReleaseVehicle(rover, true), "already outside")
}

func TestSettlement_DemolishingGarageParksVehiclesOutside(t *testing.T) {
	s := newSettlement(t)
	garage, err := s.PlaceBuilding("Garage", "Garage", shared.Placement{}, []function.Spec{
		{Type: function.TypeVehicleMaintenance, Capacity: 2},
	})
	require.NoError(t, err)
	rover, err := unit.NewVehicle(1, "Opportunity", unit.VehicleTypeRover)
	require.NoError(t, err)
	require.NoError(t, s.AddVehicle(rover))
	_, ok := s.GarageVehicle(rover)
	require.True(t, ok)

	require.NoError(t, s.RemoveBuilding(garage.ID()))

	assert.False(t, rover.IsGaraged())
	assert.Zero(t, s.Status().Buildings)
}

func TestSettlement_ScheduleComputingPicksBestNode(t *testing.T) {
	// Arrange
	s := newSettlement(t)
	busy, err := s.PlaceBuilding("Server Farm A", "Server Farm", shared.Placement{}, []function.Spec{{Type: function.TypeComputation, Capacity: 10}})
	require.NoError(t, err)
	idle, err := s.PlaceBuilding("Server Farm B", "Server Farm", shared.Placement{}, []function.Spec{{Type: function.TypeComputation, Capacity: 10}})
	require.NoError(t, err)
	node, _ := busy.Computation()
	require.True(t, node.ScheduleTask(5, 100, 200))

	// Act
	id, ok := s.ScheduleComputing(2, 150, 160)
	_, tooBig := s.ScheduleComputing(20, 150, 160)

	// Assert
	require.True(t, ok)
	assert.Equal(t, idle.ID(), id)
	other, _ := idle.Computation()
	assert.InDelta(t, 2, other.ScheduledDemand(155), 1e-9)
	assert.InDelta(t, 5, node.ScheduledDemand(155), 1e-9, "busy node untouched")
	assert.False(t, tooBig)
}

func TestSettlement_ScheduleComputingAcceptsOvercommitBand(t *testing.T) {
	// Arrange
	s := newSettlement(t)
	farm, err := s.PlaceBuilding("Server Farm", "Server Farm", shared.Placement{}, []function.Spec{{Type: function.TypeComputation, Capacity: 10}})
	require.NoError(t, err)
	node, _ := farm.Computation()

	// Act
	id, ok := s.ScheduleComputing(10.3, 100, 110)

	// Assert
	require.True(t, ok, "10.3 CU is within 1.05 x 10")
	assert.Equal(t, farm.ID(), id)
	assert.InDelta(t, 10.3, node.ScheduledDemand(105), 1e-9)
	_, again := s.ScheduleComputing(0.3, 100, 110)
	assert.False(t, again)
}

func TestSettlement_ScheduleComputingUsesNodeAtMaxEntropy(t *testing.T) {
	s := newSettlement(t)
	farm, err := s.PlaceBuilding("Server Farm", "Server Farm", shared.Placement{}, []function.Spec{{Type: function.TypeComputation, Capacity: 10}})
	require.NoError(t, err)
	node, _ := farm.Computation()
	node.IncreaseEntropy(1e9)
	require.Zero(t, node.EvaluateScheduleTask(1, 0, 10))

	id, ok := s.ScheduleComputing(1, 0, 10)

	require.True(t, ok)
	assert.Equal(t, farm.ID(), id)
	assert.InDelta(t, 1, node.ScheduledDemand(5), 1e-9)
}

func TestSettlement_NewSolClosesReport(t *testing.T) {
	// Arrange
	s := newSettlement(t)
	_, err := s.PlaceBuilding("Hab", "Lander Hab", shared.Placement{}, []function.Spec{
		{Type: function.TypeLifeSupport, Capacity: 2, Properties: map[string]interface{}{"power-required": 2.0}},
	})
	require.NoError(t, err)
	clock := marstime.NewMasterClock(marstime.New(1, 980))
	s.RecordProcess(function.ProcessRecord{ProcessName: "Make aluminum sheet"})
	s.RecordProcess(function.ProcessRecord{ProcessName: "Make wire", Premature: true})

	// Act
	for i := 0; i < 3; i++ {
		pulse, err := clock.Advance(10)
		require.NoError(t, err)
		s.TimePassing(pulse)
	}

	// Assert
	reports := s.DrainSolReports()
	require.Len(t, reports, 1)
	r := reports[0]
	assert.Equal(t, 1, r.Sol)
	assert.Equal(t, 2, r.Pulses)
	assert.InDelta(t, 2, r.AveragePowerKW, 1e-9)
	assert.Equal(t, 1, r.ProcessesCompleted)
	assert.Equal(t, 1, r.ProcessesAborted)
	assert.Empty(t, s.DrainSolReports())

	records := s.DrainProcessRecords()
	assert.Len(t, records, 2)
	assert.Empty(t, s.DrainProcessRecords())
}

func TestSettlement_VicinityBaysDoNotCollide(t *testing.T) {
	s := newSettlement(t)
	seen := make(map[shared.LocalPosition]bool)
	for id := 1; id <= 30; id++ {
		v, err := unit.NewVehicle(id, "luv", unit.VehicleTypeUtility)
		require.NoError(t, err)
		require.NoError(t, s.AddVehicle(v))
		assert.False(t, seen[v.ParkedPosition()])
		seen[v.ParkedPosition()] = true
	}
}

func TestSettlement_StartProcessQueuesWhenPrintersBusy(t *testing.T) {
	// Arrange
	s := newSettlement(t)
	s.Inventory().StoreAmountResource(resource.Regolith, 20)
	b, err := s.PlaceBuilding("Workshop 1", "Workshop", shared.Placement{}, []function.Spec{{
		Type:       function.TypeManufacture,
		TechLevel:  2,
		Capacity:   1,
		Properties: map[string]interface{}{"printers-installed": 1},
	}})
	require.NoError(t, err)
	info := function.ProcessInfo{
		Name:        "Make aluminum sheet",
		TechLevel:   1,
		ProcessTime: 100,
		Inputs:      []function.ProcessItem{{Resource: resource.Regolith, Amount: 5}},
		Outputs:     []function.ProcessItem{{Resource: resource.AluminumSheet, Amount: 3}},
	}
	now := marstime.New(1, 0)

	// Act
	first, startedFirst, err := s.StartProcess(b.ID(), function.TypeManufacture, info, now, false)
	require.NoError(t, err)
	_, _, rejectErr := s.StartProcess(b.ID(), function.TypeManufacture, info, now, false)
	queued, startedQueued, queueErr := s.StartProcess(b.ID(), function.TypeManufacture, info, now, true)

	// Assert
	assert.True(t, startedFirst)
	assert.NotEmpty(t, first.ID())
	assert.Error(t, rejectErr)
	require.NoError(t, queueErr)
	assert.False(t, startedQueued)
	m, ok := b.Manufacture()
	require.True(t, ok)
	assert.Equal(t, 1, m.QueueLength())
	assert.Equal(t, queued.ID(), m.Queue()[0].ID())
	assert.InDelta(t, 15, s.Inventory().SpecificAmountResourceStored(resource.Regolith), 1e-9)
}

func TestSettlement_StartProcessNeedsWorkshop(t *testing.T) {
	s := newSettlement(t)
	b, err := s.PlaceBuilding("Quarters", "Lander Hab", shared.Placement{}, []function.Spec{quartersSpec(false, "Bunk")})
	require.NoError(t, err)
	info := function.ProcessInfo{Name: "x", ProcessTime: 1, Outputs: []function.ProcessItem{{Resource: resource.Oxygen, Amount: 1}}}

	_, _, err = s.StartProcess(b.ID(), function.TypeManufacture, info, marstime.New(1, 0), true)
	var nf *shared.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, _, err = s.StartProcess(b.ID(), function.TypeStorage, info, marstime.New(1, 0), true)
	var verr *shared.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, _, err = s.StartProcess(99, function.TypeManufacture, info, marstime.New(1, 0), true)
	assert.ErrorAs(t, err, &nf)
}
