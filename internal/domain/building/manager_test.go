package building_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/building"
	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

func mustBuilding(t *testing.T, id int, specs []function.Spec) *building.Building {
	t.Helper()
	b, err := building.NewBuilding(id, "Building", "Generic", shared.Placement{}, specs)
	require.NoError(t, err)
	return b
}

func TestManager_AllIsOrderedByID(t *testing.T) {
	// Arrange
	m := building.NewManager()
	for _, id := range []int{5, 2, 9} {
		require.NoError(t, m.Add(mustBuilding(t, id, nil)))
	}

	// Act
	all := m.All()

	// Assert
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].ID())
	assert.Equal(t, 5, all[1].ID())
	assert.Equal(t, 9, all[2].ID())
	assert.Equal(t, 10, m.NextID(), "next id follows the highest registered")
}

func TestManager_RejectsDuplicateID(t *testing.T) {
	m := building.NewManager()
	require.NoError(t, m.Add(mustBuilding(t, 1, nil)))

	err := m.Add(mustBuilding(t, 1, nil))

	var verr *shared.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestManager_Remove(t *testing.T) {
	m := building.NewManager()
	require.NoError(t, m.Add(mustBuilding(t, 1, nil)))

	b, err := m.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, 1, b.ID())

	_, err = m.Remove(1)
	var nf *shared.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Zero(t, m.Len())
}

func TestManager_WithFunction(t *testing.T) {
	m := building.NewManager()
	require.NoError(t, m.Add(mustBuilding(t, 3, habSpecs())))
	require.NoError(t, m.Add(mustBuilding(t, 1, []function.Spec{{Type: function.TypeStorage}})))
	require.NoError(t, m.Add(mustBuilding(t, 2, habSpecs())))

	labs := m.WithFunction(function.TypeComputation)

	require.Len(t, labs, 2)
	assert.Equal(t, 2, labs[0].ID())
	assert.Equal(t, 3, labs[1].ID())
	assert.Empty(t, m.WithFunction(function.TypeEVA))
}

func TestManager_TimePassingAndTotals(t *testing.T) {
	ctx := newStubContext(t)
	m := building.NewManager()
	require.NoError(t, m.Add(mustBuilding(t, 1, habSpecs())))
	require.NoError(t, m.Add(mustBuilding(t, 2, habSpecs())))

	m.TimePassing(ctx, marstime.NewPulse(1, 1, marstime.New(1, 1), false, false, true))

	assert.InDelta(t, 6, m.TotalPowerLoad(), 1e-9)
	assert.Greater(t, m.TotalMaintenanceTime(), 0.0)
}
