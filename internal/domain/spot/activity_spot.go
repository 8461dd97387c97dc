package spot

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// Empty is the owner id of an unclaimed spot
const Empty = -1

// Worker is anything that can occupy a spot: people and robots
type Worker interface {
	ID() int
}

// ActivitySpot is a claimable point inside a building: a bed, a workbench, an
// airlock chamber slot.
//
// Invariants:
// - At most one owner at a time
// - A permanent claim is only dropped by its owner with release=true
type ActivitySpot struct {
	name      string
	pos       shared.LocalPosition
	ownerID   int
	permanent bool
}

// NewActivitySpot creates an empty spot at a building-relative position
func NewActivitySpot(name string, pos shared.LocalPosition) *ActivitySpot {
	return &ActivitySpot{name: name, pos: pos, ownerID: Empty}
}

func (s *ActivitySpot) Name() string                   { return s.name }
func (s *ActivitySpot) Position() shared.LocalPosition { return s.pos }
func (s *ActivitySpot) OwnerID() int                   { return s.ownerID }
func (s *ActivitySpot) IsEmpty() bool                  { return s.ownerID == Empty }
func (s *ActivitySpot) IsPermanent() bool              { return s.permanent }

// Claim gives the spot to w if it is empty. It returns the lease, or nil with
// no side effect when the spot is taken.
func (s *ActivitySpot) Claim(w Worker, permanent bool, buildingID int) *AllocatedSpot {
	if !s.IsEmpty() {
		return nil
	}
	s.ownerID = w.ID()
	s.permanent = permanent
	return &AllocatedSpot{spot: s, buildingID: buildingID, workerID: w.ID()}
}

// Leave frees the spot when w owns it and the claim is not permanent, or when
// release is set.
func (s *ActivitySpot) Leave(w Worker, release bool) bool {
	if s.ownerID != w.ID() {
		return false
	}
	if s.permanent && !release {
		return false
	}
	s.ownerID = Empty
	s.permanent = false
	return true
}

// Reset empties the spot regardless of owner. Used when a building is demolished.
func (s *ActivitySpot) Reset() {
	s.ownerID = Empty
	s.permanent = false
}

func (s *ActivitySpot) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("%s@%s", s.name, s.pos)
	}
	return fmt.Sprintf("%s@%s[%d]", s.name, s.pos, s.ownerID)
}

// AllocatedSpot is the lease handed out by a successful claim. Only the worker
// that claimed it can give it back.
type AllocatedSpot struct {
	spot       *ActivitySpot
	buildingID int
	workerID   int
}

func (a *AllocatedSpot) Spot() *ActivitySpot { return a.spot }
func (a *AllocatedSpot) BuildingID() int     { return a.buildingID }
func (a *AllocatedSpot) WorkerID() int       { return a.workerID }

// IsValid reports whether the lease still matches the spot's owner
func (a *AllocatedSpot) IsValid() bool {
	return a.spot.ownerID == a.workerID
}

// Leave gives the spot back. A permanent claim needs release=true.
func (a *AllocatedSpot) Leave(w Worker, release bool) bool {
	if w.ID() != a.workerID {
		return false
	}
	return a.spot.Leave(w, release)
}

// Release drops the claim even if it is permanent
func (a *AllocatedSpot) Release(w Worker) bool {
	return a.Leave(w, true)
}

func (a *AllocatedSpot) String() string {
	return fmt.Sprintf("building %d %s", a.buildingID, a.spot)
}
