package settlement

import (
	"math"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
)

// SolReport summarises one settlement over one mission sol
type SolReport struct {
	SettlementID       int                `json:"settlement_id"`
	SettlementName     string             `json:"settlement_name"`
	Sol                int                `json:"sol"`
	Pulses             int                `json:"pulses"`
	AveragePowerKW     float64            `json:"average_power_kw"`
	PeakPowerKW        float64            `json:"peak_power_kw"`
	AverageCUUsage     float64            `json:"average_cu_usage"`
	Population         int                `json:"population"`
	BedsOccupied       int                `json:"beds_occupied"`
	VehiclesGaraged    int                `json:"vehicles_garaged"`
	ProcessesCompleted int                `json:"processes_completed"`
	ProcessesAborted   int                `json:"processes_aborted"`
	Resources          map[string]float64 `json:"resources"`
}

// solAccumulator integrates per-pulse readings over a sol
type solAccumulator struct {
	sol       int
	pulses    int
	elapsed   float64
	powerArea float64 // kW x millisol
	cuArea    float64 // CU x millisol
	peakPower float64
	completed int
	aborted   int
}

func (a *solAccumulator) add(elapsed, powerKW, cuUsed float64) {
	a.pulses++
	a.elapsed += elapsed
	a.powerArea += powerKW * elapsed
	a.cuArea += cuUsed * elapsed
	a.peakPower = math.Max(a.peakPower, powerKW)
}

func (a *solAccumulator) averagePower() float64 {
	if a.elapsed == 0 {
		return 0
	}
	return a.powerArea / a.elapsed
}

func (a *solAccumulator) averageCU() float64 {
	if a.elapsed == 0 {
		return 0
	}
	return a.cuArea / a.elapsed
}

func (a *solAccumulator) reset(sol int) {
	*a = solAccumulator{sol: sol}
}

// resourceNames flattens a store snapshot into name -> amount, items counted as units
func resourceNames(store *resource.Store) map[string]float64 {
	out := make(map[string]float64)
	for id, kg := range store.AmountSnapshot() {
		out[resource.Name(id)] = kg
	}
	for id, n := range store.ItemSnapshot() {
		out[resource.Name(id)] = float64(n)
	}
	return out
}

// solOf is the sol a pulse's elapsed time mostly belongs to. A pulse that
// crosses midnight closes the previous sol.
func solOf(pulse marstime.Pulse) int {
	if pulse.IsNewSol() {
		return pulse.MarsTime().MissionSol() - 1
	}
	return pulse.MarsTime().MissionSol()
}
