package function

import (
	"math"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// ResourceProcess is a continuous conversion, e.g. grey water filtering.
// Rates are kg per millisol at full throughput.
type ResourceProcess struct {
	spec       ResourceProcessSpec
	running    bool
	throughput float64 // last pulse's fraction of full rate
	processed  float64 // millisols run at full rate
}

func (p *ResourceProcess) Name() string        { return p.spec.Name }
func (p *ResourceProcess) IsRunning() bool     { return p.running }
func (p *ResourceProcess) Throughput() float64 { return p.throughput }
func (p *ResourceProcess) Processed() float64  { return p.processed }

// WasteProcessing runs the settlement's waste recycling processes
type WasteProcessing struct {
	base

	processes []*ResourceProcess
}

func NewWasteProcessing(ref BuildingRef, spec Spec) (*WasteProcessing, error) {
	w := &WasteProcessing{base: newBase(TypeWasteProcessing, ref, spec)}
	for _, ps := range spec.Processes {
		if ps.Name == "" {
			return nil, shared.NewValidationError("process", "name cannot be empty")
		}
		if len(ps.Inputs) == 0 || len(ps.Outputs) == 0 {
			return nil, shared.NewValidationError(ps.Name, "needs inputs and outputs")
		}
		w.processes = append(w.processes, &ResourceProcess{spec: ps, running: ps.DefaultOn})
	}
	return w, nil
}

// Processes returns the recycling processes in catalog order
func (w *WasteProcessing) Processes() []*ResourceProcess {
	out := make([]*ResourceProcess, len(w.processes))
	copy(out, w.processes)
	return out
}

// Toggle switches a process on or off by name
func (w *WasteProcessing) Toggle(name string, on bool) bool {
	for _, p := range w.processes {
		if p.spec.Name == name {
			p.running = on
			return true
		}
	}
	return false
}

func (w *WasteProcessing) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !w.isValid(ctx, pulse) {
		return false
	}
	for _, p := range w.processes {
		if !p.running {
			p.throughput = 0
			continue
		}
		w.runProcess(ctx, p, pulse.Elapsed())
	}
	return true
}

// runProcess converts at the largest throughput the stock of every input and
// the room for every output allow
func (w *WasteProcessing) runProcess(ctx Context, p *ResourceProcess, elapsed float64) {
	store := ctx.Store()
	level := 1.0
	for _, in := range p.spec.Inputs {
		need := in.Rate * elapsed
		if need > 0 {
			level = math.Min(level, store.SpecificAmountResourceStored(in.Resource)/need)
		}
	}
	for _, out := range p.spec.Outputs {
		produce := out.Rate * elapsed
		if produce > 0 {
			level = math.Min(level, store.AmountResourceRemainingCapacity(out.Resource)/produce)
		}
	}
	level = math.Max(0, level)
	p.throughput = level
	if level == 0 {
		return
	}

	for _, in := range p.spec.Inputs {
		store.RetrieveAmountResource(in.Resource, in.Rate*elapsed*level)
	}
	for _, out := range p.spec.Outputs {
		store.StoreAmountResource(out.Resource, out.Rate*elapsed*level)
	}
	p.processed += elapsed * level
}

// CombinedPowerLoad is the power of running processes scaled by throughput
func (w *WasteProcessing) CombinedPowerLoad() float64 {
	total := 0.0
	for _, p := range w.processes {
		if p.running {
			total += p.spec.PowerRequired * p.throughput
		}
	}
	return total
}

func (w *WasteProcessing) PoweredDownPowerRequired() float64 {
	total := 0.0
	for _, p := range w.processes {
		total += p.spec.PowerRequired * 0.05
	}
	return total
}

func (w *WasteProcessing) MaintenanceTime() float64 {
	return float64(len(w.processes)) * 8
}

func (w *WasteProcessing) Destroy() {
	w.base.Destroy()
	w.processes = nil
}
