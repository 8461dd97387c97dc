package spot

import "github.com/andrescamacho/marssim-go/internal/domain/shared"

// Set is an ordered collection of spots keyed by position. Order matters: bed
// allocation walks it front to back and bunk pairs are adjacent entries.
type Set struct {
	spots []*ActivitySpot
	index map[shared.LocalPosition]int
}

func NewSet() *Set {
	return &Set{index: make(map[shared.LocalPosition]int)}
}

// Add appends s unless a spot already occupies its position
func (set *Set) Add(s *ActivitySpot) bool {
	if _, dup := set.index[s.pos]; dup {
		return false
	}
	set.index[s.pos] = len(set.spots)
	set.spots = append(set.spots, s)
	return true
}

func (set *Set) Len() int { return len(set.spots) }

// At returns the i-th spot in insertion order
func (set *Set) At(i int) *ActivitySpot { return set.spots[i] }

// Find returns the spot at pos
func (set *Set) Find(pos shared.LocalPosition) (*ActivitySpot, bool) {
	i, ok := set.index[pos]
	if !ok {
		return nil, false
	}
	return set.spots[i], true
}

// All returns the spots in order. The slice is a copy; the spots are shared.
func (set *Set) All() []*ActivitySpot {
	out := make([]*ActivitySpot, len(set.spots))
	copy(out, set.spots)
	return out
}

// FindOwned returns the spot held by workerID
func (set *Set) FindOwned(workerID int) (*ActivitySpot, bool) {
	for _, s := range set.spots {
		if s.ownerID == workerID {
			return s, true
		}
	}
	return nil, false
}

func (set *Set) NumOccupied() int {
	n := 0
	for _, s := range set.spots {
		if !s.IsEmpty() {
			n++
		}
	}
	return n
}

func (set *Set) NumEmpty() int {
	return len(set.spots) - set.NumOccupied()
}

// Clear empties every spot and forgets them
func (set *Set) Clear() {
	for _, s := range set.spots {
		s.Reset()
	}
	set.spots = nil
	set.index = make(map[shared.LocalPosition]int)
}
