package function_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

func newWorkshop(t *testing.T, props map[string]interface{}) *function.Manufacture {
	t.Helper()
	m, err := function.NewManufacture(testRef(), function.Spec{
		Type:       function.TypeManufacture,
		TechLevel:  2,
		Capacity:   2,
		Properties: props,
	})
	require.NoError(t, err)
	return m
}

func sheetProcess(t *testing.T) *function.Process {
	t.Helper()
	p, err := function.NewProcess(function.ProcessInfo{
		Name:          "Make aluminum sheet",
		TechLevel:     1,
		SkillLevel:    2,
		WorkTime:      0,
		ProcessTime:   100,
		PowerRequired: 1.5,
		Inputs:        []function.ProcessItem{{Resource: resource.Regolith, Amount: 5}},
		Outputs:       []function.ProcessItem{{Resource: resource.AluminumSheet, Amount: 3}},
	}, marstime.New(1, 0))
	require.NoError(t, err)
	return p
}

func TestNewManufacture_RejectsMorePrintersThanSlots(t *testing.T) {
	_, err := function.NewManufacture(testRef(), function.Spec{
		Type:       function.TypeManufacture,
		Capacity:   1,
		Properties: map[string]interface{}{"printers-installed": 2},
	})

	var verr *shared.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestWorkshop_PrinterLimitAndDailyReinstall(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.Regolith, 20)
	m := newWorkshop(t, map[string]interface{}{"concurrent-processes": 2, "printers-installed": 1})
	first, second := sheetProcess(t), sheetProcess(t)

	// Act
	admittedFirst := m.AddProcess(ctx, first)
	admittedSecond := m.AddProcess(ctx, second)

	// Assert
	require.True(t, admittedFirst)
	assert.False(t, admittedSecond, "only one printer installed")
	assert.InDelta(t, 15, ctx.store.SpecificAmountResourceStored(resource.Regolith), 1e-9, "rejected process withdraws nothing")

	// Arrange: a spare printer arrives and the second process waits in the queue
	ctx.store.StoreItemResource(resource.Printer, 1)
	m.Enqueue(second)
	seq := &pulseSeq{}

	// Act: a new sol installs the printer and admits the queue
	m.TimePassing(ctx, seq.tick(2, 0.1, 0.1, true, true, true))

	// Assert
	assert.Equal(t, 2, m.PrintersInUse())
	assert.Equal(t, 2, m.CurrentTotalProcesses())
	assert.Zero(t, m.QueueLength())
	assert.Zero(t, ctx.store.ItemResourceStored(resource.Printer))
	assert.Equal(t, shared.LifecycleStatusRunning, second.Status())
}

func TestWorkshop_BrokenPrinterBlocksAdmission(t *testing.T) {
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.Regolith, 20)
	m := newWorkshop(t, map[string]interface{}{"concurrent-processes": 1})

	require.True(t, m.BreakPrinter())

	assert.False(t, m.CanAdmit())
	assert.False(t, m.AddProcess(ctx, sheetProcess(t)))
	assert.False(t, m.BreakPrinter())
}

func TestWorkshop_InputsAreAllOrNothing(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.Polyethylene, 5)
	ctx.store.StoreItemResource(resource.Wire, 1)
	m := newWorkshop(t, nil)
	p, err := function.NewProcess(function.ProcessInfo{
		Name:        "Make microcontroller",
		ProcessTime: 50,
		Inputs: []function.ProcessItem{
			{Resource: resource.Polyethylene, Amount: 5},
			{Resource: resource.Wire, Amount: 2},
		},
		Outputs: []function.ProcessItem{{Resource: resource.Microcontroller, Amount: 1}},
	}, marstime.New(1, 0))
	require.NoError(t, err)

	// Act
	admitted := m.AddProcess(ctx, p)

	// Assert
	assert.False(t, admitted)
	assert.InDelta(t, 5, ctx.store.SpecificAmountResourceStored(resource.Polyethylene), 1e-9)
	assert.Equal(t, 1, ctx.store.ItemResourceStored(resource.Wire))
}

func TestWorkshop_RejectsProcessAboveTechLevel(t *testing.T) {
	ctx := newFakeContext(t, 100)
	m := newWorkshop(t, nil)
	p, err := function.NewProcess(function.ProcessInfo{
		Name:        "Make rover frame",
		TechLevel:   5,
		ProcessTime: 10,
		Outputs:     []function.ProcessItem{{Resource: resource.IronIngot, Amount: 1}},
	}, marstime.New(1, 0))
	require.NoError(t, err)

	assert.False(t, m.AddProcess(ctx, p))
}

func TestWorkshop_CompletedProcessDepositsOutputsAndIsRecorded(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.Regolith, 5)
	m := newWorkshop(t, nil)
	p := sheetProcess(t)
	require.True(t, m.AddProcess(ctx, p))
	seq := &pulseSeq{}

	// Act
	m.TimePassing(ctx, seq.millisol(50, 60))
	m.TimePassing(ctx, seq.millisol(110, 60))

	// Assert
	assert.Zero(t, m.CurrentTotalProcesses())
	assert.InDelta(t, 3, ctx.store.SpecificAmountResourceStored(resource.AluminumSheet), 1e-9)
	require.Len(t, ctx.records, 1)
	rec := ctx.records[0]
	assert.Equal(t, "Make aluminum sheet", rec.ProcessName)
	assert.Equal(t, function.TypeManufacture, rec.Workshop)
	assert.False(t, rec.Premature)
	assert.InDelta(t, 3, rec.Outputs[resource.AluminumSheet], 1e-9)
	assert.Equal(t, shared.LifecycleStatusCompleted, p.Status())
}

func TestWorkshop_OutputsCappedByCapacity(t *testing.T) {
	ctx := newFakeContext(t, 2)
	ctx.store.StoreAmountResource(resource.Regolith, 2)
	ctx.store.AddAmountResourceCapacity(resource.Regolith, 3)
	ctx.store.StoreAmountResource(resource.Regolith, 3)
	m := newWorkshop(t, nil)
	p := sheetProcess(t)
	require.True(t, m.AddProcess(ctx, p))
	seq := &pulseSeq{}

	m.TimePassing(ctx, seq.millisol(100, 100))

	assert.InDelta(t, 2, ctx.store.SpecificAmountResourceStored(resource.AluminumSheet), 1e-9)
	require.Len(t, ctx.records, 1)
	assert.InDelta(t, 2, ctx.records[0].Outputs[resource.AluminumSheet], 1e-9)
}

func TestWorkshop_PrematureEndReturnsInputs(t *testing.T) {
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.Regolith, 5)
	m := newWorkshop(t, nil)
	p := sheetProcess(t)
	require.True(t, m.AddProcess(ctx, p))
	require.Zero(t, ctx.store.SpecificAmountResourceStored(resource.Regolith))

	ended := m.EndProcess(ctx, p, true)

	require.True(t, ended)
	assert.InDelta(t, 5, ctx.store.SpecificAmountResourceStored(resource.Regolith), 1e-9)
	assert.Zero(t, ctx.store.SpecificAmountResourceStored(resource.AluminumSheet))
	require.Len(t, ctx.records, 1)
	assert.True(t, ctx.records[0].Premature)
	assert.Equal(t, shared.LifecycleStatusAborted, p.Status())
	assert.False(t, m.EndProcess(ctx, p, true), "already ended")
}

func TestWorkshop_RequiresWork(t *testing.T) {
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.Regolith, 5)
	m := newWorkshop(t, nil)
	p, err := function.NewProcess(function.ProcessInfo{
		Name:       "Assemble battery",
		SkillLevel: 2,
		WorkTime:   5,
		Inputs:     []function.ProcessItem{{Resource: resource.Regolith, Amount: 5}},
		Outputs:    []function.ProcessItem{{Resource: resource.Battery, Amount: 1}},
	}, marstime.New(1, 0))
	require.NoError(t, err)
	require.True(t, m.AddProcess(ctx, p))

	assert.True(t, m.RequiresWork(1))
	assert.False(t, m.RequiresWork(0))

	p.AddWorkTime(5)
	assert.False(t, m.RequiresWork(3))
}

func TestWorkshop_MaintenanceTime(t *testing.T) {
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.Regolith, 5)
	m := newWorkshop(t, nil)
	require.True(t, m.AddProcess(ctx, sheetProcess(t)))

	assert.InDelta(t, 1.5*.25*2*.5*2*.5, m.MaintenanceTime(), 1e-9)

	f, err := function.NewFoodProduction(testRef(), function.Spec{Type: function.TypeFoodProduction, TechLevel: 1, Capacity: 3})
	require.NoError(t, err)
	assert.InDelta(t, 40, f.MaintenanceTime(), 1e-9)
}

func TestWorkshop_ProcessStartedBeforeFirstPulseKeepsItsTime(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.Regolith, 10)
	m := newWorkshop(t, nil)
	at := marstime.New(3, 250)
	p, err := function.NewProcess(function.ProcessInfo{
		Name:        "Make aluminum sheet",
		TechLevel:   1,
		ProcessTime: 100,
		Inputs:      []function.ProcessItem{{Resource: resource.Regolith, Amount: 5}},
		Outputs:     []function.ProcessItem{{Resource: resource.AluminumSheet, Amount: 1}},
	}, at)
	require.NoError(t, err)

	// Act
	require.True(t, m.AddProcess(ctx, p))
	require.True(t, m.EndProcess(ctx, p, true))

	// Assert
	require.NotNil(t, p.Lifecycle().StartedAt())
	assert.Equal(t, at, *p.Lifecycle().StartedAt())
	require.Len(t, ctx.records, 1)
	assert.Equal(t, at, ctx.records[0].StartedAt)
	assert.Equal(t, at, ctx.records[0].EndedAt)
}
