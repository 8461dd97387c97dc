package function

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// ProcessItem is one input or output of a recipe. Item resources use whole
// numbers in Amount.
type ProcessItem struct {
	Resource resource.ID
	Amount   float64
}

// ProcessInfo is a manufacturing or food production recipe
type ProcessInfo struct {
	Name          string
	TechLevel     int
	SkillLevel    int
	WorkTime      float64 // millisols of hands-on work
	ProcessTime   float64 // millisols of machine time
	PowerRequired float64 // kW while the machine runs
	Inputs        []ProcessItem
	Outputs       []ProcessItem
}

// Validate checks the recipe is usable
func (i ProcessInfo) Validate() error {
	if i.Name == "" {
		return shared.NewValidationError("name", "process name cannot be empty")
	}
	if i.WorkTime < 0 || i.ProcessTime < 0 {
		return shared.NewValidationError(i.Name, "times cannot be negative")
	}
	if i.WorkTime == 0 && i.ProcessTime == 0 {
		return shared.NewValidationError(i.Name, "process needs work time or process time")
	}
	if len(i.Outputs) == 0 {
		return shared.NewValidationError(i.Name, "process has no outputs")
	}
	for _, item := range append(append([]ProcessItem{}, i.Inputs...), i.Outputs...) {
		if item.Amount <= 0 {
			return shared.NewValidationError(i.Name, fmt.Sprintf("%s amount must be positive", item.Resource))
		}
	}
	return nil
}

// Process is one running instance of a recipe
type Process struct {
	id                   string
	info                 ProcessInfo
	workTimeRemaining    float64
	processTimeRemaining float64
	lifecycle            *shared.Lifecycle
}

// NewProcess creates a queued process
func NewProcess(info ProcessInfo, now marstime.MarsTime) (*Process, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &Process{
		id:                   uuid.New().String(),
		info:                 info,
		workTimeRemaining:    info.WorkTime,
		processTimeRemaining: info.ProcessTime,
		lifecycle:            shared.NewLifecycle(now),
	}, nil
}

func (p *Process) ID() string                     { return p.id }
func (p *Process) Info() ProcessInfo              { return p.info }
func (p *Process) Name() string                   { return p.info.Name }
func (p *Process) WorkTimeRemaining() float64     { return p.workTimeRemaining }
func (p *Process) ProcessTimeRemaining() float64  { return p.processTimeRemaining }
func (p *Process) Status() shared.LifecycleStatus { return p.lifecycle.Status() }
func (p *Process) Lifecycle() *shared.Lifecycle   { return p.lifecycle }

// AddWorkTime applies hands-on work and returns the unused part
func (p *Process) AddWorkTime(msols float64) float64 {
	used := math.Min(msols, p.workTimeRemaining)
	p.workTimeRemaining -= used
	return msols - used
}

// AddProcessTime applies machine time and returns the unused part
func (p *Process) AddProcessTime(msols float64) float64 {
	used := math.Min(msols, p.processTimeRemaining)
	p.processTimeRemaining -= used
	return msols - used
}

// IsReady reports whether both work and machine time are done
func (p *Process) IsReady() bool {
	return p.workTimeRemaining <= 0 && p.processTimeRemaining <= 0
}

// ProcessRecord is the ledger entry written when a process ends
type ProcessRecord struct {
	ProcessID    string
	ProcessName  string
	Workshop     Type
	BuildingID   int
	BuildingName string
	StartedAt    marstime.MarsTime
	EndedAt      marstime.MarsTime
	Premature    bool
	Outputs      map[resource.ID]float64
}

func isItem(id resource.ID) bool {
	d, ok := resource.Get(id)
	return ok && d.Kind == resource.KindItem
}
