package function_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

func newNode(t *testing.T, peak float64) *function.Computation {
	t.Helper()
	c, err := function.NewComputation(testRef(), function.Spec{
		Type:       function.TypeComputation,
		Properties: map[string]interface{}{"computing-unit": peak},
	})
	require.NoError(t, err)
	return c
}

func TestNewComputation_RejectsZeroPeak(t *testing.T) {
	_, err := function.NewComputation(testRef(), function.Spec{Type: function.TypeComputation})

	var verr *shared.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestComputation_ScheduleTask_RejectsOverbookedSlotAtomically(t *testing.T) {
	// Arrange
	c := newNode(t, 10)

	// Act
	first := c.ScheduleTask(5, 100, 200)
	second := c.ScheduleTask(6, 150, 160)

	// Assert
	assert.True(t, first)
	assert.False(t, second, "5+6 CU exceeds 1.05 x 10")
	assert.InDelta(t, 5, c.ScheduledDemand(150), 1e-9)
	assert.InDelta(t, 5, c.ScheduledDemand(100), 1e-9)
	assert.Zero(t, c.ScheduledDemand(200), "end is exclusive")
}

func TestComputation_ScheduleTask_AllowsFivePercentOvercommit(t *testing.T) {
	c := newNode(t, 10)

	require.True(t, c.ScheduleTask(5, 0, 10))

	assert.True(t, c.ScheduleTask(5.5, 0, 10))
	assert.False(t, c.ScheduleTask(0.01, 0, 10))
}

func TestComputation_ScheduleTask_WrapsPastMidnight(t *testing.T) {
	c := newNode(t, 10)

	ok := c.ScheduleTask(2, 990, 10)

	require.True(t, ok)
	assert.InDelta(t, 2, c.ScheduledDemand(995), 1e-9)
	assert.InDelta(t, 2, c.ScheduledDemand(5), 1e-9)
	assert.InDelta(t, 2, c.ScheduledDemand(1005), 1e-9, "calendar keys wrap every sol")
	assert.Zero(t, c.ScheduledDemand(10))
}

func TestComputation_ScheduleTask_RejectsEmptyRequests(t *testing.T) {
	c := newNode(t, 10)

	assert.False(t, c.ScheduleTask(0, 100, 200))
	assert.False(t, c.ScheduleTask(-1, 100, 200))
	assert.False(t, c.ScheduleTask(1, 100, 100))
}

func TestComputation_EvaluateScheduleTask_ScoresSpareCapacity(t *testing.T) {
	// Arrange
	c := newNode(t, 10)
	require.True(t, c.ScheduleTask(5, 100, 200))

	// Act
	free := c.EvaluateScheduleTask(5, 300, 310)
	busy := c.EvaluateScheduleTask(6, 150, 160)

	// Assert
	assert.InDelta(t, 50, free, 1e-9, "10 slots with 5 CU spare each")
	assert.Zero(t, busy)
	assert.Zero(t, c.ScheduledDemand(300), "evaluation books nothing")
}

func TestComputation_EvaluateScheduleTask_WeightedByEntropy(t *testing.T) {
	c := newNode(t, 10)
	c.IncreaseEntropy(c.MaxEntropy() / 2)

	score := c.EvaluateScheduleTask(5, 300, 310)

	assert.InDelta(t, 25, score, 1e-9)
}

func TestComputation_ClearOldDemand_DropsSlotsStrictlyBetween(t *testing.T) {
	// Arrange
	c := newNode(t, 10)
	require.True(t, c.ScheduleTask(1, 50, 250))

	// Act
	c.ClearOldDemand(100, 200)

	// Assert
	assert.InDelta(t, 1, c.ScheduledDemand(100), 1e-9)
	assert.Zero(t, c.ScheduledDemand(101))
	assert.Zero(t, c.ScheduledDemand(199))
	assert.InDelta(t, 1, c.ScheduledDemand(200), 1e-9)
}

func TestComputation_ClearOldDemand_WrapsBackwards(t *testing.T) {
	c := newNode(t, 10)
	require.True(t, c.ScheduleTask(1, 990, 20))

	c.ClearOldDemand(995, 5)

	assert.InDelta(t, 1, c.ScheduledDemand(995), 1e-9)
	assert.Zero(t, c.ScheduledDemand(999))
	assert.Zero(t, c.ScheduledDemand(0))
	assert.Zero(t, c.ScheduledDemand(4))
	assert.InDelta(t, 1, c.ScheduledDemand(5), 1e-9)
}

func TestComputation_TimePassing_LoadDrivesEntropyAndEfficiency(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	c := newNode(t, 10)
	require.True(t, c.ScheduleTask(10, 100, 101))
	seq := &pulseSeq{}

	// Act
	ok := c.TimePassing(ctx, seq.millisol(100, 1))

	// Assert
	require.True(t, ok)
	assert.Zero(t, c.FreeCU())
	assert.InDelta(t, 1, c.Utilization(), 1e-9)
	assert.InDelta(t, 0.2, c.Entropy(), 1e-9, "elapsed * 10 CU / 50")
	assert.InDelta(t, 1-0.2/500, c.PowerEfficiency(), 1e-9)
}

func TestComputation_TimePassing_ReleasesPastBookings(t *testing.T) {
	ctx := newFakeContext(t, 100)
	c := newNode(t, 10)
	require.True(t, c.ScheduleTask(4, 100, 103))
	seq := &pulseSeq{}

	c.TimePassing(ctx, seq.millisol(100, 1))
	c.TimePassing(ctx, seq.millisol(101, 1))
	c.TimePassing(ctx, seq.millisol(102, 1))
	c.TimePassing(ctx, seq.millisol(103, 1))

	assert.Zero(t, c.ScheduledDemand(100))
	assert.Zero(t, c.ScheduledDemand(101))
	assert.Zero(t, c.ScheduledDemand(102))
	assert.Equal(t, 10.0, c.FreeCU())
}

func TestComputation_TimePassing_WholeSolPulsesReleasePastBookings(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	c := newNode(t, 10)
	clock := marstime.NewMasterClock(marstime.New(1, 100))
	require.True(t, c.ScheduleTask(10, 200, 300))

	// Act
	for i := 0; i < 3; i++ {
		pulse, err := clock.Advance(1000)
		require.NoError(t, err)
		require.True(t, c.TimePassing(ctx, pulse))
	}

	// Assert
	assert.Zero(t, c.ScheduledDemand(250), "a whole sol went by since the booking")
	assert.True(t, c.ScheduleTask(10, 200, 300))
}

func TestComputation_TimePassing_LongPulseKeepsCurrentSlot(t *testing.T) {
	ctx := newFakeContext(t, 100)
	c := newNode(t, 10)
	clock := marstime.NewMasterClock(marstime.New(1, 100))
	require.True(t, c.ScheduleTask(3, 500, 501))
	require.True(t, c.ScheduleTask(4, 600, 601))

	first, err := clock.Advance(1)
	require.NoError(t, err)
	c.TimePassing(ctx, first)
	long, err := clock.Advance(1499)
	require.NoError(t, err)
	c.TimePassing(ctx, long)

	assert.Equal(t, 600, long.MillisolInt())
	assert.InDelta(t, 4, c.ScheduledDemand(600), 1e-9)
	assert.Zero(t, c.ScheduledDemand(500))
	assert.InDelta(t, 6, c.FreeCU(), 1e-9)
}

func TestComputation_TimePassing_IgnoresRepeatedPulse(t *testing.T) {
	ctx := newFakeContext(t, 100)
	c := newNode(t, 10)
	pulse := (&pulseSeq{}).millisol(10, 1)

	require.True(t, c.TimePassing(ctx, pulse))
	again := c.TimePassing(ctx, pulse)

	assert.False(t, again)
	assert.True(t, ctx.logger.contains(shared.LevelWarning, "Repeated pulse"))
}

func TestComputation_HalfSolDecay(t *testing.T) {
	ctx := newFakeContext(t, 100)
	c := newNode(t, 10)
	c.IncreaseEntropy(100)
	seq := &pulseSeq{}

	c.TimePassing(ctx, seq.tick(1, 500, 0.5, false, true, false))

	assert.InDelta(t, 80, c.Entropy(), 1e-9)
}

func TestComputation_EntropyStaysBounded(t *testing.T) {
	c := newNode(t, 10)

	c.IncreaseEntropy(1e9)
	assert.InDelta(t, c.MaxEntropy(), c.Entropy(), 1e-9)
	assert.InDelta(t, 0.25, c.PowerEfficiency(), 1e-9, "efficiency floor")

	c.ReduceEntropy(1e12)
	assert.InDelta(t, -0.5*c.MaxEntropy(), c.Entropy(), 1e-9)
	assert.InDelta(t, 1, c.PowerEfficiency(), 1e-9, "efficiency ceiling")
}

func TestComputation_ReduceEntropy_IgnoresNegative(t *testing.T) {
	c := newNode(t, 10)
	c.IncreaseEntropy(10)

	c.ReduceEntropy(-5)

	assert.InDelta(t, 10, c.Entropy(), 1e-9)
}

func TestComputation_PowerAndMaintenance(t *testing.T) {
	c := newNode(t, 10)

	load, idle := c.SeparatePowerLoad()

	assert.Zero(t, load)
	assert.InDelta(t, 0.7, idle, 1e-9, "10% of 10 CU x (0.5 + 0.2) kW")
	assert.InDelta(t, 0.7, c.CombinedPowerLoad(), 1e-9)
	assert.InDelta(t, 0.7, c.PoweredDownPowerRequired(), 1e-9)
	assert.InDelta(t, 5, c.MaintenanceTime(), 1e-9)
}

func TestComputation_Destroy_ClearsCalendar(t *testing.T) {
	c := newNode(t, 10)
	require.True(t, c.ScheduleTask(3, 0, 10))

	c.Destroy()

	assert.Zero(t, c.ScheduledDemand(5))
}
