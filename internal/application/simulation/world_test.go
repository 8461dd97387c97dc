package simulation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
)

func TestWorld_RejectsDuplicateSettlement(t *testing.T) {
	w := newWorld(t, false, "Alpha Base")
	s, err := settlement.NewSettlement(settlement.Config{ID: 1, Name: "Copy"})
	require.NoError(t, err)

	assert.Error(t, w.AddSettlement(s))
	assert.Len(t, w.Settlements(), 1)
}

func TestWorld_StepAdvancesClock(t *testing.T) {
	w := newWorld(t, true, "Alpha Base", "Beta Base", "Gamma Base")

	pulse, err := w.Step(context.Background(), 25)

	require.NoError(t, err)
	assert.Equal(t, int64(1), pulse.ID())
	assert.InDelta(t, 25, w.Now().Millisol(), 1e-9)

	_, err = w.Step(context.Background(), 0)
	assert.Error(t, err)
}

func TestWorld_InSettlementPropagatesError(t *testing.T) {
	w := newWorld(t, false, "Alpha Base")
	boom := errors.New("boom")

	err := w.InSettlement(1, func(s *settlement.Settlement) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = w.Settlement(7)
	assert.Error(t, err)
}
