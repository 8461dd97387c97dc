package archive_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/adapters/archive"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
)

func TestReportArchive_WriteAndRead(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	a, err := archive.NewReportArchive(dir, "run-1", "best")
	require.NoError(t, err)

	// Act
	for sol := 1; sol <= 3; sol++ {
		a.Publish(&settlement.SolReport{
			SettlementID:   1,
			SettlementName: "Schiaparelli Point",
			Sol:            sol,
			Resources:      map[string]float64{"oxygen": float64(sol) * 10},
		})
	}
	require.NoError(t, a.Close())
	a.Publish(&settlement.SolReport{Sol: 99})

	// Assert
	assert.Equal(t, filepath.Join(dir, "run-1.jsonl.zst"), a.Path())
	assert.Equal(t, 3, a.Written())
	assert.NoError(t, a.Err())
	reports, err := archive.ReadArchive(a.Path())
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, 3, reports[2].Sol)
	assert.InDelta(t, 30, reports[2].Resources["oxygen"], 1e-9)
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"fastest", "default", "better", "best", ""} {
		_, err := archive.ParseLevel(name)
		assert.NoError(t, err, name)
	}
	_, err := archive.ParseLevel("extreme")
	assert.Error(t, err)
}
