package function

import (
	"math"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// Treatment is one health problem being worked on
type Treatment struct {
	PatientID int
	Problem   string
	Duration  float64
	Remaining float64
}

// MedicalCare is a sick bay: a number of sick beds, a FIFO treatment queue and
// a limit on how many treatments run at once.
type MedicalCare struct {
	base

	sickBeds          int
	treatmentCapacity int
	queueLimit        int
	powerRequired     float64

	patients  []int
	waiting   []*Treatment
	active    []*Treatment
	completed int
}

// NewMedicalCare builds a sick bay. Properties: beds (defaults to capacity),
// treatment-capacity, queue-size, power-required.
func NewMedicalCare(ref BuildingRef, spec Spec) (*MedicalCare, error) {
	beds, err := spec.IntProperty("beds", spec.Capacity)
	if err != nil {
		return nil, err
	}
	if beds <= 0 {
		return nil, shared.NewValidationError("beds", "must be positive")
	}
	concurrent, err := spec.IntProperty("treatment-capacity", 1)
	if err != nil {
		return nil, err
	}
	if concurrent <= 0 {
		return nil, shared.NewValidationError("treatment-capacity", "must be positive")
	}
	queue, err := spec.IntProperty("queue-size", 10)
	if err != nil {
		return nil, err
	}
	power, err := spec.DoubleProperty("power-required", 0.5)
	if err != nil {
		return nil, err
	}
	return &MedicalCare{
		base:              newBase(TypeMedicalCare, ref, spec),
		sickBeds:          beds,
		treatmentCapacity: concurrent,
		queueLimit:        queue,
		powerRequired:     power,
	}, nil
}

func (m *MedicalCare) SickBeds() int            { return m.sickBeds }
func (m *MedicalCare) PatientNum() int          { return len(m.patients) }
func (m *MedicalCare) TreatmentCapacity() int   { return m.treatmentCapacity }
func (m *MedicalCare) WaitingTreatments() int   { return len(m.waiting) }
func (m *MedicalCare) ActiveTreatments() int    { return len(m.active) }
func (m *MedicalCare) CompletedTreatments() int { return m.completed }

// Patients returns the ids of patients in sick beds
func (m *MedicalCare) Patients() []int {
	out := make([]int, len(m.patients))
	copy(out, m.patients)
	return out
}

func (m *MedicalCare) HasPatient(id int) bool {
	for _, p := range m.patients {
		if p == id {
			return true
		}
	}
	return false
}

// AddPatient puts id in a sick bed; false when already admitted or beds are full
func (m *MedicalCare) AddPatient(id int) bool {
	if m.HasPatient(id) || len(m.patients) >= m.sickBeds {
		return false
	}
	m.patients = append(m.patients, id)
	return true
}

func (m *MedicalCare) RemovePatient(id int) bool {
	for i, p := range m.patients {
		if p == id {
			m.patients = append(m.patients[:i], m.patients[i+1:]...)
			return true
		}
	}
	return false
}

// RequestTreatment queues a treatment of msols; false when the queue is full
func (m *MedicalCare) RequestTreatment(patientID int, problem string, msols float64) bool {
	if msols <= 0 || len(m.waiting) >= m.queueLimit {
		return false
	}
	m.waiting = append(m.waiting, &Treatment{
		PatientID: patientID,
		Problem:   problem,
		Duration:  msols,
		Remaining: msols,
	})
	return true
}

func (m *MedicalCare) TimePassing(ctx Context, pulse marstime.Pulse) bool {
	if !m.isValid(ctx, pulse) {
		return false
	}
	m.startTreatments()

	still := m.active[:0]
	for _, t := range m.active {
		t.Remaining = math.Max(0, t.Remaining-pulse.Elapsed())
		if t.Remaining > 0 {
			still = append(still, t)
			continue
		}
		m.completed++
		m.RemovePatient(t.PatientID)
		m.logf(ctx, shared.LevelInfo, "Treatment of %s for patient %d completed.", t.Problem, t.PatientID)
	}
	m.active = still
	return true
}

// startTreatments moves waiting treatments to active in FIFO order while a
// slot is free and the patient has, or can get, a sick bed
func (m *MedicalCare) startTreatments() {
	for len(m.waiting) > 0 && len(m.active) < m.treatmentCapacity {
		next := m.waiting[0]
		if !m.HasPatient(next.PatientID) && !m.AddPatient(next.PatientID) {
			return
		}
		m.waiting = m.waiting[1:]
		m.active = append(m.active, next)
	}
}

// CombinedPowerLoad grows with the number of occupied sick beds
func (m *MedicalCare) CombinedPowerLoad() float64 {
	return m.powerRequired * (1 + float64(len(m.patients)))
}

func (m *MedicalCare) MaintenanceTime() float64 {
	return float64(m.sickBeds) * 10
}

func (m *MedicalCare) Destroy() {
	m.base.Destroy()
	m.patients = nil
	m.waiting = nil
	m.active = nil
}
