package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

func TestLifecycle_HappyPath(t *testing.T) {
	// Arrange
	l := shared.NewLifecycle(marstime.New(1, 100))

	// Act
	require.NoError(t, l.Start(marstime.New(1, 150)))
	running := l.RunningTime(marstime.New(1, 200))
	require.NoError(t, l.Complete(marstime.New(1, 400)))

	// Assert
	assert.Equal(t, shared.LifecycleStatusCompleted, l.Status())
	assert.True(t, l.IsFinished())
	assert.False(t, l.IsRunning())
	assert.InDelta(t, 50, running, 1e-9)
	assert.InDelta(t, 250, l.RunningTime(marstime.New(3, 0)), 1e-9, "frozen once ended")
	assert.Equal(t, marstime.New(1, 100), l.QueuedAt())
}

func TestLifecycle_TerminalStatesAreFinal(t *testing.T) {
	l := shared.NewLifecycle(marstime.New(1, 0))
	require.NoError(t, l.Abort(marstime.New(1, 10)))

	assert.Error(t, l.Start(marstime.New(1, 20)))
	assert.Error(t, l.Complete(marstime.New(1, 20)))
	assert.Error(t, l.Abort(marstime.New(1, 20)))
	assert.Equal(t, shared.LifecycleStatusAborted, l.Status())
	assert.Nil(t, l.StartedAt())
	assert.Zero(t, l.RunningTime(marstime.New(2, 0)))
}

func TestLifecycle_CompleteRequiresRunning(t *testing.T) {
	l := shared.NewLifecycle(marstime.New(1, 0))

	err := l.Complete(marstime.New(1, 5))

	assert.Error(t, err)
	assert.Equal(t, shared.LifecycleStatusQueued, l.Status())
}

func TestErrors_AreMatchableWithErrorsAs(t *testing.T) {
	var wrapped error = shared.NewCapacityError("bed", 2, 1)

	var capErr *shared.CapacityError
	require.ErrorAs(t, wrapped, &capErr)
	assert.Contains(t, capErr.Error(), "bed")

	var notFound *shared.NotFoundError
	assert.ErrorAs(t, error(shared.NewNotFoundError("building", "7")), &notFound)
	assert.Contains(t, shared.NewInvariantViolationError("Research", "RemoveResearcher", "lab is empty").Error(), "RemoveResearcher")
}

func TestFixedClock_MovesOnlyWhenAdvanced(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := shared.NewFixedClock(start)

	assert.Equal(t, start, clock.Now())
	clock.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), clock.Now())
}
