package function

import (
	"math"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// skillGap lets a worker help on processes slightly above their skill
const skillGap = 1

// workshop is the printer-bound process runner shared by Manufacture and
// FoodProduction. Each running process occupies one installed printer; broken
// printers are replaced from settlement stock once per sol.
//
// Invariants:
// - 0 <= printersInUse <= maxProcesses
// - a process is only admitted while running < printersInUse
type workshop struct {
	base

	maxProcesses  int
	printersInUse int
	processes     []*Process
	queue         []*Process
	lastNow       marstime.MarsTime
}

func newWorkshop(t Type, ref BuildingRef, spec Spec) (workshop, error) {
	maxProcesses, err := spec.IntProperty("concurrent-processes", spec.Capacity)
	if err != nil {
		return workshop{}, err
	}
	if maxProcesses <= 0 {
		return workshop{}, shared.NewValidationError("concurrent-processes", "must be positive")
	}
	printers, err := spec.IntProperty("printers-installed", maxProcesses)
	if err != nil {
		return workshop{}, err
	}
	if printers < 0 || printers > maxProcesses {
		return workshop{}, shared.NewValidationError("printers-installed", "must be within [0, concurrent-processes]")
	}
	return workshop{
		base:          newBase(t, ref, spec),
		maxProcesses:  maxProcesses,
		printersInUse: printers,
	}, nil
}

func (w *workshop) MaxConcurrentProcesses() int { return w.maxProcesses }
func (w *workshop) PrintersInUse() int          { return w.printersInUse }
func (w *workshop) CurrentTotalProcesses() int  { return len(w.processes) }
func (w *workshop) QueueLength() int            { return len(w.queue) }

// Processes returns the running processes
func (w *workshop) Processes() []*Process {
	out := make([]*Process, len(w.processes))
	copy(out, w.processes)
	return out
}

// Queue returns the waiting processes in admission order
func (w *workshop) Queue() []*Process {
	out := make([]*Process, len(w.queue))
	copy(out, w.queue)
	return out
}

// BreakPrinter takes one printer out of service
func (w *workshop) BreakPrinter() bool {
	if w.printersInUse == 0 {
		return false
	}
	w.printersInUse--
	return true
}

// CanAdmit reports whether a free printer is available
func (w *workshop) CanAdmit() bool {
	return len(w.processes) < w.printersInUse
}

// AddProcess starts p when a printer is free, the workshop's tech level is
// high enough and every input is in stock. Inputs are withdrawn on admission.
func (w *workshop) AddProcess(ctx Context, p *Process) bool {
	if !w.CanAdmit() {
		w.logf(ctx, shared.LevelInfo, "Rejected %s: %d of %d printers busy.", p.Name(), len(w.processes), w.printersInUse)
		return false
	}
	if p.info.TechLevel > w.techLevel {
		w.logf(ctx, shared.LevelInfo, "Rejected %s: needs tech level %d.", p.Name(), p.info.TechLevel)
		return false
	}
	store := ctx.Store()
	if !inputsAvailable(store, p.info.Inputs) {
		w.logf(ctx, shared.LevelInfo, "Rejected %s: inputs not in stock.", p.Name())
		return false
	}
	if err := p.lifecycle.Start(w.nowFor(p)); err != nil {
		w.logf(ctx, shared.LevelWarning, "Cannot start %s: %v.", p.Name(), err)
		return false
	}

	for _, in := range p.info.Inputs {
		if isItem(in.Resource) {
			store.RetrieveItemResource(in.Resource, int(math.Round(in.Amount)))
		} else {
			store.RetrieveAmountResource(in.Resource, in.Amount)
		}
	}
	w.processes = append(w.processes, p)
	return true
}

// nowFor is the workshop's time as far as p is concerned. Before the first
// pulse the workshop has no time of its own, so p's own stamps are used.
func (w *workshop) nowFor(p *Process) marstime.MarsTime {
	now := w.lastNow
	if q := p.lifecycle.QueuedAt(); now.Before(q) {
		now = q
	}
	if s := p.lifecycle.StartedAt(); s != nil && now.Before(*s) {
		now = *s
	}
	return now
}

func inputsAvailable(store ResourceStore, inputs []ProcessItem) bool {
	for _, in := range inputs {
		if isItem(in.Resource) {
			if store.ItemResourceStored(in.Resource) < int(math.Round(in.Amount)) {
				return false
			}
		} else if store.SpecificAmountResourceStored(in.Resource) < in.Amount {
			return false
		}
	}
	return true
}

// Enqueue parks p until a printer frees up
func (w *workshop) Enqueue(p *Process) {
	w.queue = append(w.queue, p)
}

// EndProcess finishes p. A normal end deposits outputs up to the remaining
// storage capacity; a premature end hands the inputs back.
func (w *workshop) EndProcess(ctx Context, p *Process, premature bool) bool {
	idx := -1
	for i, running := range w.processes {
		if running == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	w.processes = append(w.processes[:idx], w.processes[idx+1:]...)

	store := ctx.Store()
	outputs := make(map[resource.ID]float64)
	ended := w.nowFor(p)
	if premature {
		depositAll(store, p.info.Inputs, nil)
		_ = p.lifecycle.Abort(ended)
	} else {
		depositAll(store, p.info.Outputs, outputs)
		_ = p.lifecycle.Complete(ended)
	}

	started := ended
	if s := p.lifecycle.StartedAt(); s != nil {
		started = *s
	}
	ctx.RecordProcess(ProcessRecord{
		ProcessID:    p.id,
		ProcessName:  p.info.Name,
		Workshop:     w.ftype,
		BuildingID:   w.building.ID,
		BuildingName: w.building.Name,
		StartedAt:    started,
		EndedAt:      ended,
		Premature:    premature,
		Outputs:      outputs,
	})
	return true
}

func depositAll(store ResourceStore, items []ProcessItem, deposited map[resource.ID]float64) {
	for _, item := range items {
		if isItem(item.Resource) {
			n := int(math.Round(item.Amount))
			store.StoreItemResource(item.Resource, n)
			if deposited != nil {
				deposited[item.Resource] += float64(n)
			}
			continue
		}
		amount := math.Min(item.Amount, store.AmountResourceRemainingCapacity(item.Resource))
		if amount > 0 {
			store.StoreAmountResource(item.Resource, amount)
			if deposited != nil {
				deposited[item.Resource] += amount
			}
		}
	}
}

// RequiresWork reports whether a worker of the given skill could help on a
// running process
func (w *workshop) RequiresWork(skill int) bool {
	for _, p := range w.processes {
		if p.workTimeRemaining > 0 && p.info.SkillLevel <= skill+skillGap {
			return true
		}
	}
	return false
}

// checkPrinters reinstalls printers from storage up to the process limit
func (w *workshop) checkPrinters(ctx Context) {
	deficit := w.maxProcesses - w.printersInUse
	if deficit <= 0 {
		return
	}
	store := ctx.Store()
	n := min(deficit, store.ItemResourceStored(resource.Printer))
	if n <= 0 {
		return
	}
	installed := n - store.RetrieveItemResource(resource.Printer, n)
	w.printersInUse += installed
	w.logf(ctx, shared.LevelInfo, "Installed %d printer(s); %d of %d in use.", installed, w.printersInUse, w.maxProcesses)
}

// loadQueue admits queued processes while printers are free. A queued process
// whose inputs are missing stays queued.
func (w *workshop) loadQueue(ctx Context) {
	remaining := w.queue[:0]
	for _, p := range w.queue {
		if w.CanAdmit() && w.AddProcess(ctx, p) {
			continue
		}
		remaining = append(remaining, p)
	}
	w.queue = remaining
}

func (w *workshop) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !w.isValid(ctx, pulse) {
		return false
	}
	w.lastNow = pulse.MarsTime()

	if pulse.IsNewSol() {
		w.checkPrinters(ctx)
	}

	for _, p := range w.Processes() {
		p.AddProcessTime(pulse.Elapsed())
		if p.IsReady() {
			w.EndProcess(ctx, p, false)
		}
	}

	if len(w.queue) > 0 {
		w.loadQueue(ctx)
	}
	return true
}

// CombinedPowerLoad sums the power of processes whose machines still run
func (w *workshop) CombinedPowerLoad() float64 {
	total := 0.0
	for _, p := range w.processes {
		if p.processTimeRemaining > 0 {
			total += p.info.PowerRequired
		}
	}
	return total
}

func (w *workshop) Destroy() {
	w.base.Destroy()
	w.processes = nil
	w.queue = nil
}

// Manufacture prints parts and equipment
type Manufacture struct {
	workshop
}

// NewManufacture builds a workshop. Properties: concurrent-processes
// (defaults to capacity), printers-installed (defaults to concurrent-processes).
func NewManufacture(ref BuildingRef, spec Spec) (*Manufacture, error) {
	w, err := newWorkshop(TypeManufacture, ref, spec)
	if err != nil {
		return nil, err
	}
	return &Manufacture{workshop: w}, nil
}

// MaintenanceTime scales with the power drawn, the tech level and the printers in use
func (m *Manufacture) MaintenanceTime() float64 {
	result := m.CombinedPowerLoad() * .25
	result *= float64(m.techLevel) * .5
	result *= float64(m.printersInUse) * .5
	return result
}

// FoodProduction turns crops into packaged food
type FoodProduction struct {
	workshop
}

func NewFoodProduction(ref BuildingRef, spec Spec) (*FoodProduction, error) {
	w, err := newWorkshop(TypeFoodProduction, ref, spec)
	if err != nil {
		return nil, err
	}
	return &FoodProduction{workshop: w}, nil
}

func (f *FoodProduction) MaintenanceTime() float64 {
	return float64(f.techLevel)*10 + float64(f.printersInUse)*10
}
