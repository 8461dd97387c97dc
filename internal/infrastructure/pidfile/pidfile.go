// Package pidfile keeps two simulation runs from writing the same database at
// once. The file holds "<pid> <run id>".
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// Owner is the run recorded in a lock file
type Owner struct {
	PID   int
	RunID string
}

// Lock is a single-run lock backed by a file
type Lock struct {
	path string
}

func New(path string) *Lock {
	return &Lock{path: path}
}

func (l *Lock) Path() string { return l.path }

// Acquire claims the lock for runID. A file left by a dead or unreadable
// owner is replaced.
func (l *Lock) Acquire(runID string) error {
	owner, err := l.Owner()
	switch {
	case err == nil && alive(owner.PID):
		return fmt.Errorf("simulation run %s is already running (PID %d)", owner.RunID, owner.PID)
	case err == nil || !errors.Is(err, os.ErrNotExist):
		_ = os.Remove(l.path)
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%d %s\n", os.Getpid(), runID); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return nil
}

// Owner reads the lock file
func (l *Lock) Owner() (Owner, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return Owner{}, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return Owner{}, fmt.Errorf("lock file %s is empty", l.path)
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return Owner{}, fmt.Errorf("lock file %s has invalid pid %q", l.path, fields[0])
	}
	owner := Owner{PID: pid}
	if len(fields) > 1 {
		owner.RunID = fields[1]
	}
	return owner, nil
}

// Release removes the lock file
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// alive reports whether pid exists; signal 0 only checks permissions
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
