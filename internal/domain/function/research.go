package function

import (
	"math"
	"sort"
	"strings"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

const (
	// NumInspections is how many checks a tissue culture needs per sol to stay healthy
	NumInspections = 3
	// minTissueKg is the amount below which a culture is considered dead
	minTissueKg = 1e-6
	// incubatorHandlingEntropy is the disorder added by each incubator action
	incubatorHandlingEntropy = 0.1
)

// Research is a laboratory. It tracks researcher headcount against capacity and
// runs a tissue-culture incubator whose cultures decay when not inspected
// often enough.
//
// Invariants:
// - 0 <= researcherNum <= researcherCapacity
// - inspection counts never exceed NumInspections and reset every sol
type Research struct {
	base

	researcherCapacity int
	researcherNum      int
	specialties        []string
	powerRequired      float64
	entropy            entropy

	incubator   map[string]float64 // crop -> kg of culture
	inspections map[string]int     // crop -> checks this sol
}

// NewResearch builds a lab. Properties: science (list of specialties),
// power-required, max-entropy.
func NewResearch(ref BuildingRef, spec Spec) (*Research, error) {
	if spec.Capacity <= 0 {
		return nil, shared.NewValidationError("capacity", "research lab needs room for at least one researcher")
	}
	specialties, err := spec.StringListProperty("science")
	if err != nil {
		return nil, err
	}
	power, err := spec.DoubleProperty("power-required", 1.0)
	if err != nil {
		return nil, err
	}
	maxEntropy, err := spec.DoubleProperty("max-entropy", float64(spec.Capacity)*defaultEntropyPerCU)
	if err != nil {
		return nil, err
	}

	normalized := make([]string, 0, len(specialties))
	for _, s := range specialties {
		normalized = append(normalized, strings.ToUpper(strings.TrimSpace(s)))
	}

	return &Research{
		base:               newBase(TypeResearch, ref, spec),
		researcherCapacity: spec.Capacity,
		specialties:        normalized,
		powerRequired:      power,
		entropy:            newEntropy(maxEntropy),
		incubator:          make(map[string]float64),
		inspections:        make(map[string]int),
	}, nil
}

func (r *Research) ResearcherCapacity() int { return r.researcherCapacity }
func (r *Research) ResearcherNum() int      { return r.researcherNum }
func (r *Research) Entropy() float64        { return r.entropy.value }
func (r *Research) MaxEntropy() float64     { return r.entropy.max }

// Specialties returns the sciences the lab supports
func (r *Research) Specialties() []string {
	out := make([]string, len(r.specialties))
	copy(out, r.specialties)
	return out
}

// HasSpecialty reports whether the lab supports a science
func (r *Research) HasSpecialty(science string) bool {
	want := strings.ToUpper(strings.TrimSpace(science))
	for _, s := range r.specialties {
		if s == want {
			return true
		}
	}
	return false
}

// AddResearcher seats one more researcher; false when the lab is full
func (r *Research) AddResearcher() bool {
	if r.researcherNum >= r.researcherCapacity {
		return false
	}
	r.researcherNum++
	return true
}

// RemoveResearcher frees a seat. Removing from an empty lab means the caller's
// bookkeeping is broken and is reported as an invariant violation.
func (r *Research) RemoveResearcher() error {
	if r.researcherNum <= 0 {
		return shared.NewInvariantViolationError("Research", "RemoveResearcher", "no researchers in "+r.building.Name)
	}
	r.researcherNum--
	return nil
}

// Incubator

// IncubateTissue starts or tops up a culture of crop
func (r *Research) IncubateTissue(crop string, kg float64) bool {
	if crop == "" || kg <= 0 {
		return false
	}
	r.incubator[crop] += kg
	if _, ok := r.inspections[crop]; !ok {
		r.inspections[crop] = 0
	}
	r.entropy.increase(incubatorHandlingEntropy)
	return true
}

// InspectTissue records one check of a culture; the count is capped at NumInspections
func (r *Research) InspectTissue(crop string) bool {
	if _, ok := r.incubator[crop]; !ok {
		return false
	}
	r.inspections[crop] = min(NumInspections, r.inspections[crop]+1)
	r.entropy.increase(incubatorHandlingEntropy)
	return true
}

// ExtractTissue takes up to kg of culture out and returns what was taken
func (r *Research) ExtractTissue(crop string, kg float64) float64 {
	have, ok := r.incubator[crop]
	if !ok || kg <= 0 {
		return 0
	}
	taken := math.Min(have, kg)
	if left := have - taken; left > minTissueKg {
		r.incubator[crop] = left
	} else {
		delete(r.incubator, crop)
		delete(r.inspections, crop)
	}
	r.entropy.increase(incubatorHandlingEntropy)
	return taken
}

func (r *Research) TissueAmount(crop string) float64 { return r.incubator[crop] }
func (r *Research) Inspections(crop string) int      { return r.inspections[crop] }

// TissueCultures lists cultured crops alphabetically
func (r *Research) TissueCultures() []string {
	return sortedKeys(r.incubator, func(string) bool { return true })
}

// UninspectedTissues lists cultures still needing checks this sol
func (r *Research) UninspectedTissues() []string {
	return sortedKeys(r.incubator, func(crop string) bool { return r.inspections[crop] < NumInspections })
}

func sortedKeys(m map[string]float64, keep func(string) bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if keep(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// ReduceEntropy lowers disorder, e.g. after a lab clean-up
func (r *Research) ReduceEntropy(delta float64) {
	r.entropy.reduce(delta)
}

func (r *Research) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !r.isValid(ctx, pulse) {
		return false
	}

	if pulse.IsNewSol() {
		for crop := range r.inspections {
			r.inspections[crop] = 0
		}
	}

	if pulse.IsNewIntMillisol() {
		r.incubate(ctx, pulse.Elapsed())
		r.entropy.increase(pulse.Elapsed() * float64(r.researcherNum) / entropyDivisor)
	}

	if pulse.IsNewHalfSol() {
		r.entropy.decay()
	}
	return true
}

// incubate builds the next incubator state and swaps it in
func (r *Research) incubate(ctx Context, elapsed float64) {
	next := make(map[string]float64, len(r.incubator))
	for crop, amount := range r.incubator {
		delta := math.Min(0, float64(r.inspections[crop]-NumInspections)*elapsed)
		grown := amount * (1 + delta/1000)
		if grown > minTissueKg {
			next[crop] = grown
			continue
		}
		delete(r.inspections, crop)
		r.logf(ctx, shared.LevelInfo, "Tissue culture of %s died off from neglect.", crop)
	}
	r.incubator = next
}

func (r *Research) CombinedPowerLoad() float64 {
	return r.powerRequired * (1 + 0.2*float64(r.researcherNum))
}

func (r *Research) MaintenanceTime() float64 {
	return float64(r.researcherCapacity) * 10 * math.Max(1, float64(r.techLevel)) / 2
}

func (r *Research) Destroy() {
	r.base.Destroy()
	r.incubator = make(map[string]float64)
	r.inspections = make(map[string]int)
	r.researcherNum = 0
}
