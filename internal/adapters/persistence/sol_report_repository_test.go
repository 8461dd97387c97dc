package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/adapters/persistence"
	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/test/helpers"
)

func TestSolReportRepository_SaveAndList(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSolReportRepository(db, shared.NewFixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()
	for sol := 1; sol <= 3; sol++ {
		require.NoError(t, repo.Save(ctx, &settlement.SolReport{
			SettlementID:   1,
			SettlementName: "Schiaparelli Point",
			Sol:            sol,
			Pulses:         10,
			AveragePowerKW: float64(sol),
			Resources:      map[string]float64{"oxygen": 100 * float64(sol)},
		}))
	}
	require.NoError(t, repo.Save(ctx, &settlement.SolReport{SettlementID: 2, SettlementName: "Other", Sol: 1}))

	// Act
	all, err := repo.ListBySettlement(ctx, 1, 0)
	require.NoError(t, err)
	latest, err := repo.ListBySettlement(ctx, 1, 2)
	require.NoError(t, err)

	// Assert
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].Sol, "newest first")
	assert.InDelta(t, 300, all[0].Resources["oxygen"], 1e-9)
	require.Len(t, latest, 2)
	assert.Equal(t, []int{3, 2}, []int{latest[0].Sol, latest[1].Sol})
}

func TestSolReportRepository_SaveReplacesSameSol(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormSolReportRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &settlement.SolReport{SettlementID: 1, SettlementName: "A", Sol: 4, Pulses: 1}))
	require.NoError(t, repo.Save(ctx, &settlement.SolReport{SettlementID: 1, SettlementName: "A", Sol: 4, Pulses: 9}))

	reports, err := repo.ListBySettlement(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 9, reports[0].Pulses)
}

func TestProcessRecordRepository_SaveAllAndList(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormProcessRecordRepository(db, nil)
	ctx := context.Background()
	records := []function.ProcessRecord{
		{
			ProcessID:    "b",
			ProcessName:  "Make bread",
			Workshop:     function.TypeFoodProduction,
			BuildingID:   3,
			BuildingName: "Kitchen",
			StartedAt:    marstime.New(1, 100),
			EndedAt:      marstime.New(1, 400),
			Premature:    true,
		},
		{
			ProcessID:    "a",
			ProcessName:  "Make aluminum sheet",
			Workshop:     function.TypeManufacture,
			BuildingID:   2,
			BuildingName: "Workshop",
			StartedAt:    marstime.New(1, 0),
			EndedAt:      marstime.New(1, 200),
			Outputs:      map[resource.ID]float64{resource.AluminumSheet: 3},
		},
	}

	// Act
	require.NoError(t, repo.SaveAll(ctx, 1, records))
	require.NoError(t, repo.SaveAll(ctx, 1, records[:1]), "duplicates are ignored")
	got, err := repo.ListBySettlement(ctx, 1)

	// Assert
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ProcessID, "ordered by end time")
	assert.Equal(t, function.TypeManufacture, got[0].Workshop)
	assert.InDelta(t, 3, got[0].Outputs[resource.AluminumSheet], 1e-9)
	assert.True(t, got[1].Premature)
	assert.Equal(t, marstime.New(1, 100), got[1].StartedAt)

	empty, err := repo.ListBySettlement(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
