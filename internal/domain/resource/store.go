package resource

import (
	"fmt"
	"math"
	"sync"
)

// Store is a settlement's shared inventory of amount resources (kg) and item
// resources (count).
//
// Thread-Safety:
// Every operation takes the store mutex. Building functions of one settlement
// run sequentially, but settlements may be pulsed in parallel and the
// application layer reads the store for reports while a run is in progress.
//
// Invariants:
// - Stored amounts are never negative
// - Amount stored via StoreAmountResource never exceeds the per-resource capacity
// - Retrievals never hand out more than is stored; the shortfall is returned
type Store struct {
	mu sync.RWMutex

	generalCapacity float64        // capacity every amount resource gets
	capacities      map[ID]float64 // extra capacity contributed by storage buildings
	amounts         map[ID]float64
	items           map[ID]int
}

// NewStore creates an empty store where every amount resource may hold up to
// generalCapacity kg before storage buildings add more.
func NewStore(generalCapacity float64) (*Store, error) {
	if generalCapacity < 0 || math.IsNaN(generalCapacity) {
		return nil, fmt.Errorf("general capacity cannot be negative")
	}
	return &Store{
		generalCapacity: generalCapacity,
		capacities:      make(map[ID]float64),
		amounts:         make(map[ID]float64),
		items:           make(map[ID]int),
	}, nil
}

// Amount resources

// StoreAmountResource adds kg of id and returns the excess that did not fit.
func (s *Store) StoreAmountResource(id ID, kg float64) float64 {
	if kg <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.remainingCapacityUnsafe(id)
	stored := math.Min(room, kg)
	s.amounts[id] += stored
	return kg - stored
}

// RetrieveAmountResource withdraws kg of id and returns the shortfall
// (0 when the full amount was available).
func (s *Store) RetrieveAmountResource(id ID, kg float64) float64 {
	if kg <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	have := s.amounts[id]
	if have >= kg {
		s.amounts[id] = have - kg
		return 0
	}
	s.amounts[id] = 0
	return kg - have
}

// SpecificAmountResourceStored returns the kg of id held
func (s *Store) SpecificAmountResourceStored(id ID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.amounts[id]
}

// AmountResourceCapacity returns the total kg of id the store can hold
func (s *Store) AmountResourceCapacity(id ID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capacityUnsafe(id)
}

// AmountResourceRemainingCapacity returns the kg of id that can still be stored
func (s *Store) AmountResourceRemainingCapacity(id ID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remainingCapacityUnsafe(id)
}

func (s *Store) capacityUnsafe(id ID) float64 {
	return s.generalCapacity + s.capacities[id]
}

func (s *Store) remainingCapacityUnsafe(id ID) float64 {
	room := s.capacityUnsafe(id) - s.amounts[id]
	if room < 0 {
		return 0
	}
	return room
}

// AddAmountResourceCapacity raises the capacity for id, e.g. when a storage
// building is constructed.
func (s *Store) AddAmountResourceCapacity(id ID, kg float64) {
	if kg <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capacities[id] += kg
}

// RemoveAmountResourceCapacity lowers the capacity for id. Stock above the new
// capacity is kept; only further deposits are blocked.
func (s *Store) RemoveAmountResourceCapacity(id ID, kg float64) {
	if kg <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capacities[id] = math.Max(0, s.capacities[id]-kg)
}

// Item resources

// ItemResourceStored returns the count of id held
func (s *Store) ItemResourceStored(id ID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[id]
}

// StoreItemResource adds n items of id
func (s *Store) StoreItemResource(id ID, n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] += n
}

// RetrieveItemResource withdraws up to n items of id and returns the shortfall
func (s *Store) RetrieveItemResource(id ID, n int) int {
	if n <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	have := s.items[id]
	if have >= n {
		s.items[id] = have - n
		return 0
	}
	s.items[id] = 0
	return n - have
}

// Snapshots

// AmountSnapshot returns a copy of every non-zero amount held
func (s *Store) AmountSnapshot() map[ID]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[ID]float64, len(s.amounts))
	for id, kg := range s.amounts {
		if kg > 0 {
			result[id] = kg
		}
	}
	return result
}

// ItemSnapshot returns a copy of every non-zero item count held
func (s *Store) ItemSnapshot() map[ID]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[ID]int, len(s.items))
	for id, n := range s.items {
		if n > 0 {
			result[id] = n
		}
	}
	return result
}
