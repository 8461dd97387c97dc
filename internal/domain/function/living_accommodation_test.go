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

func newQuarters(t *testing.T) *function.LivingAccommodation {
	t.Helper()
	la, err := function.NewLivingAccommodation(testRef(), function.Spec{
		Type: function.TypeLivingAccommodation,
		ActivitySpots: []function.SpotSpec{
			{Name: "Bunk A", Position: shared.NewLocalPosition(0, 0)},
			{Name: "Bunk A", Position: shared.NewLocalPosition(0, 1)},
			{Name: "Bed C", Position: shared.NewLocalPosition(2, 0)},
		},
	})
	require.NoError(t, err)
	return la
}

func TestLivingAccommodation_BunkPairKeepsGender(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	la := newQuarters(t)
	him := ctx.addPerson(t, 1, unit.GenderMale)
	her := ctx.addPerson(t, 2, unit.GenderFemale)

	// Act
	first := la.AssignBed(ctx, him, true, false)
	second := la.AssignBed(ctx, her, true, false)

	// Assert
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, shared.NewLocalPosition(0, 0), first.Spot().Position())
	assert.Equal(t, "Bed C", second.Spot().Name(), "upper bunk skipped")
	assert.Same(t, second, her.Bed())
}

func TestLivingAccommodation_BunkPairSameGenderShares(t *testing.T) {
	ctx := newFakeContext(t, 100)
	la := newQuarters(t)
	a := ctx.addPerson(t, 1, unit.GenderFemale)
	b := ctx.addPerson(t, 2, unit.GenderFemale)

	require.NotNil(t, la.AssignBed(ctx, a, true, false))
	lease := la.AssignBed(ctx, b, true, false)

	require.NotNil(t, lease)
	assert.Equal(t, shared.NewLocalPosition(0, 1), lease.Spot().Position())
}

func TestLivingAccommodation_BypassGenderIgnoresBunkRule(t *testing.T) {
	ctx := newFakeContext(t, 100)
	la := newQuarters(t)
	him := ctx.addPerson(t, 1, unit.GenderMale)
	her := ctx.addPerson(t, 2, unit.GenderFemale)

	require.NotNil(t, la.AssignBed(ctx, him, true, false))
	lease := la.AssignBed(ctx, her, true, true)

	require.NotNil(t, lease)
	assert.Equal(t, shared.NewLocalPosition(0, 1), lease.Spot().Position())
}

func TestLivingAccommodation_FullReturnsNil(t *testing.T) {
	ctx := newFakeContext(t, 100)
	la, err := function.NewLivingAccommodation(testRef(), function.Spec{
		Type:     function.TypeLivingAccommodation,
		Capacity: 1,
	})
	require.NoError(t, err)
	first := ctx.addPerson(t, 1, unit.GenderMale)
	second := ctx.addPerson(t, 2, unit.GenderMale)

	require.NotNil(t, la.AssignBed(ctx, first, false, false))
	lease := la.AssignBed(ctx, second, false, false)

	assert.Nil(t, lease)
	assert.Nil(t, second.Bed())
	assert.Equal(t, 1, la.NumBeds())
	assert.Zero(t, la.NumEmpty())
}

func TestLivingAccommodation_GuestTakingLastBedIsLogged(t *testing.T) {
	ctx := newFakeContext(t, 100)
	la, err := function.NewLivingAccommodation(testRef(), function.Spec{
		Type:     function.TypeLivingAccommodation,
		Capacity: 1,
	})
	require.NoError(t, err)
	guest := ctx.addPerson(t, 3, unit.GenderFemale)

	require.NotNil(t, la.AssignBed(ctx, guest, false, false))

	assert.True(t, ctx.logger.contains(shared.LevelInfo, "last bed"))
}

func TestLivingAccommodation_SleepersProduceWasteWater(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	ctx.store.StoreAmountResource(resource.Water, 50)
	la := newQuarters(t)
	sleeper := ctx.addPerson(t, 1, unit.GenderMale)
	require.NotNil(t, la.AssignBed(ctx, sleeper, true, false))
	seq := &pulseSeq{}

	// Act
	la.TimePassing(ctx, seq.millisol(10, 1000))

	// Assert
	assert.InDelta(t, 24, ctx.store.SpecificAmountResourceStored(resource.Water), 1e-9)
	assert.InDelta(t, 20.8, ctx.store.SpecificAmountResourceStored(resource.GreyWater), 1e-9)
	assert.InDelta(t, 5.2, ctx.store.SpecificAmountResourceStored(resource.BlackWater), 1e-9)
}

func TestLivingAccommodation_AssignEmptyBedCountsOnlyEmptyBeds(t *testing.T) {
	// Arrange
	ctx := newFakeContext(t, 100)
	la := newQuarters(t)
	him := ctx.addPerson(t, 1, unit.GenderMale)
	her := ctx.addPerson(t, 2, unit.GenderFemale)
	require.NotNil(t, la.AssignBed(ctx, him, true, false))

	// Act
	beyond := la.AssignEmptyBed(ctx, her, 2, false)
	second := la.AssignEmptyBed(ctx, her, 1, false)

	// Assert
	assert.Nil(t, beyond, "only two beds are empty")
	require.NotNil(t, second)
	assert.Equal(t, shared.NewLocalPosition(2, 0), second.Spot().Position(), "second empty bed is Bed C")
	assert.Same(t, second, her.Bed())
}
