package shared

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
)

// LifecycleStatus represents where a timed job (a manufacturing or food
// production process) is in its life
type LifecycleStatus string

const (
	LifecycleStatusQueued    LifecycleStatus = "QUEUED"
	LifecycleStatusRunning   LifecycleStatus = "RUNNING"
	LifecycleStatusCompleted LifecycleStatus = "COMPLETED"
	LifecycleStatusAborted   LifecycleStatus = "ABORTED"
)

// Lifecycle manages the QUEUED → RUNNING → COMPLETED/ABORTED transitions and
// stamps each one with mission time.
//
// Invariants:
// - Terminal states (COMPLETED, ABORTED) are never left
// - startedAt is set exactly when RUNNING is entered
type Lifecycle struct {
	status    LifecycleStatus
	queuedAt  marstime.MarsTime
	startedAt *marstime.MarsTime
	endedAt   *marstime.MarsTime
}

// NewLifecycle creates a lifecycle in QUEUED state
func NewLifecycle(now marstime.MarsTime) *Lifecycle {
	return &Lifecycle{status: LifecycleStatusQueued, queuedAt: now}
}

func (l *Lifecycle) Status() LifecycleStatus       { return l.status }
func (l *Lifecycle) QueuedAt() marstime.MarsTime   { return l.queuedAt }
func (l *Lifecycle) StartedAt() *marstime.MarsTime { return l.startedAt }
func (l *Lifecycle) EndedAt() *marstime.MarsTime   { return l.endedAt }
func (l *Lifecycle) IsRunning() bool               { return l.status == LifecycleStatusRunning }

// IsFinished returns true once the job completed or was aborted
func (l *Lifecycle) IsFinished() bool {
	return l.status == LifecycleStatusCompleted || l.status == LifecycleStatusAborted
}

// Start transitions from QUEUED to RUNNING
func (l *Lifecycle) Start(now marstime.MarsTime) error {
	if l.status != LifecycleStatusQueued {
		return fmt.Errorf("cannot start from %s state", l.status)
	}
	l.status = LifecycleStatusRunning
	l.startedAt = &now
	return nil
}

// Complete transitions from RUNNING to COMPLETED
func (l *Lifecycle) Complete(now marstime.MarsTime) error {
	if l.status != LifecycleStatusRunning {
		return fmt.Errorf("cannot complete from %s state", l.status)
	}
	l.status = LifecycleStatusCompleted
	l.endedAt = &now
	return nil
}

// Abort ends a queued or running job early
func (l *Lifecycle) Abort(now marstime.MarsTime) error {
	if l.IsFinished() {
		return fmt.Errorf("cannot abort from %s state", l.status)
	}
	l.status = LifecycleStatusAborted
	l.endedAt = &now
	return nil
}

// RunningTime returns the millisols spent running, measured up to now when still running
func (l *Lifecycle) RunningTime(now marstime.MarsTime) float64 {
	if l.startedAt == nil {
		return 0
	}
	end := now
	if l.endedAt != nil {
		end = *l.endedAt
	}
	return end.TimeDiff(*l.startedAt)
}
