package building

import (
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// Manager holds the buildings of one settlement.
//
// Thread-Safety:
// Pulses run on the settlement's goroutine, but status queries may read the
// building list concurrently, so the map is guarded by a RWMutex.
type Manager struct {
	mu        sync.RWMutex
	buildings map[int]*Building
	nextID    int
}

func NewManager() *Manager {
	return &Manager{buildings: make(map[int]*Building), nextID: 1}
}

// NextID reserves an id for a building about to be constructed
func (m *Manager) NextID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	return id
}

// Add registers b; ids are unique within the manager
func (m *Manager) Add(b *Building) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.buildings[b.ID()]; exists {
		return shared.NewValidationError("id", fmt.Sprintf("building %d already exists", b.ID()))
	}
	m.buildings[b.ID()] = b
	if b.ID() >= m.nextID {
		m.nextID = b.ID() + 1
	}
	return nil
}

// Remove unregisters the building and returns it. Destroying it is up to the caller.
func (m *Manager) Remove(id int) (*Building, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buildings[id]
	if !ok {
		return nil, shared.NewNotFoundError("building", fmt.Sprintf("%d", id))
	}
	delete(m.buildings, id)
	return b, nil
}

func (m *Manager) Get(id int) (*Building, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buildings[id]
	return b, ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buildings)
}

// All returns the buildings in ascending id order
func (m *Manager) All() []*Building {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allUnsafe()
}

func (m *Manager) allUnsafe() []*Building {
	out := make([]*Building, 0, len(m.buildings))
	for _, b := range m.buildings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// WithFunction returns, in id order, the buildings providing t
func (m *Manager) WithFunction(t function.Type) []*Building {
	var out []*Building
	for _, b := range m.All() {
		if b.HasFunction(t) {
			out = append(out, b)
		}
	}
	return out
}

// TimePassing pulses every building in ascending id order
func (m *Manager) TimePassing(ctx function.Context, pulse marstime.Pulse) {
	for _, b := range m.All() {
		b.TimePassing(ctx, pulse)
	}
}

// TotalPowerLoad is the settlement's draw in kW
func (m *Manager) TotalPowerLoad() float64 {
	total := 0.0
	for _, b := range m.All() {
		total += b.PowerLoad()
	}
	return total
}

func (m *Manager) TotalMaintenanceTime() float64 {
	total := 0.0
	for _, b := range m.All() {
		total += b.MaintenanceTime()
	}
	return total
}
