package pidfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/infrastructure/pidfile"
)

func TestLock_AcquireRecordsOwner(t *testing.T) {
	// Arrange
	lock := pidfile.New(filepath.Join(t.TempDir(), "marssim.pid"))

	// Act
	require.NoError(t, lock.Acquire("run-1"))
	owner, err := lock.Owner()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), owner.PID)
	assert.Equal(t, "run-1", owner.RunID)
}

func TestLock_SecondRunIsRejectedWhileOwnerLives(t *testing.T) {
	lock := pidfile.New(filepath.Join(t.TempDir(), "marssim.pid"))
	require.NoError(t, lock.Acquire("run-1"))

	err := lock.Acquire("run-2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-1")
}

func TestLock_ReplacesStaleOrGarbledFile(t *testing.T) {
	for name, body := range map[string]string{
		"garbled": "not-a-pid\n",
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "marssim.pid")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			lock := pidfile.New(path)

			require.NoError(t, lock.Acquire("run-3"))

			owner, err := lock.Owner()
			require.NoError(t, err)
			assert.Equal(t, "run-3", owner.RunID)
		})
	}
}

func TestLock_ReleaseIsIdempotent(t *testing.T) {
	lock := pidfile.New(filepath.Join(t.TempDir(), "marssim.pid"))
	require.NoError(t, lock.Acquire("run-1"))

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())

	_, err := os.Stat(lock.Path())
	assert.True(t, os.IsNotExist(err))
}
