package function

import (
	"sort"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/spot"
)

const (
	MaxChamberSlots   = 4
	AirlockCycleTime  = 10.0 // millisols per pressurize or depressurize
	AirlockVolume     = 12.0 // m³
	MaxReservations   = 4
	ReservationPeriod = 40 // millisols

	noOccupant = -1
)

type AirlockState string

const (
	AirlockPressurized    AirlockState = "PRESSURIZED"
	AirlockDepressurizing AirlockState = "DEPRESSURIZING"
	AirlockDepressurized  AirlockState = "DEPRESSURIZED"
	AirlockPressurizing   AirlockState = "PRESSURIZING"
)

type AirlockMode string

const (
	AirlockNotInUse AirlockMode = "NOT_IN_USE"
	AirlockIngress  AirlockMode = "INGRESS"
	AirlockEgress   AirlockMode = "EGRESS"
)

// Zone numbers an airlock from the habitat side (0) to the Martian surface (4).
// Zone 2 is the chamber itself.
type Zone int

const (
	ZoneOutsideInnerDoor Zone = iota
	ZoneInsideInnerDoor
	ZoneChamber
	ZoneInsideOuterDoor
	ZoneOutsideOuterDoor
)

// doorSlots maps the standing positions next to a door to the id standing there
type doorSlots struct {
	order []shared.LocalPosition
	ids   map[shared.LocalPosition]int
}

// newDoorSlots lays four slots around door: two at x1 and two at x2, at ±y
func newDoorSlots(door shared.LocalPosition, x1, x2, y float64) *doorSlots {
	d := &doorSlots{ids: make(map[shared.LocalPosition]int, 4)}
	for _, p := range []shared.LocalPosition{
		shared.NewLocalPosition(door.X+x1, door.Y+y),
		shared.NewLocalPosition(door.X+x1, door.Y-y),
		shared.NewLocalPosition(door.X+x2, door.Y+y),
		shared.NewLocalPosition(door.X+x2, door.Y-y),
	} {
		d.order = append(d.order, p)
		d.ids[p] = noOccupant
	}
	return d
}

func (d *doorSlots) claim(pos shared.LocalPosition, id int) bool {
	if d.contains(id) {
		return false
	}
	cur, ok := d.ids[pos]
	if !ok || cur != noOccupant {
		return false
	}
	d.ids[pos] = id
	return true
}

func (d *doorSlots) vacate(id int) bool {
	for _, p := range d.order {
		if d.ids[p] == id {
			d.ids[p] = noOccupant
			return true
		}
	}
	return false
}

func (d *doorSlots) contains(id int) bool {
	for _, v := range d.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (d *doorSlots) available() (shared.LocalPosition, bool) {
	for _, p := range d.order {
		if d.ids[p] == noOccupant {
			return p, true
		}
	}
	return shared.LocalPosition{}, false
}

func (d *doorSlots) occupants() []int {
	var out []int
	for _, p := range d.order {
		if id := d.ids[p]; id != noOccupant {
			out = append(out, id)
		}
	}
	return out
}

func (d *doorSlots) clear() {
	for p := range d.ids {
		d.ids[p] = noOccupant
	}
}

type idWorker int

func (w idWorker) ID() int { return int(w) }

// Airlock is the pressurization state machine of an EVA building.
//
// Cycle: PRESSURIZED → DEPRESSURIZING → DEPRESSURIZED → PRESSURIZING → PRESSURIZED.
// While pressurized the inner door is unlocked and the outer door locked; while
// depressurized it is the other way round. All positions are building-local.
type Airlock struct {
	capacity int
	chamber  *spot.Set

	state          AirlockState
	mode           AirlockMode
	innerLocked    bool
	outerLocked    bool
	activated      bool
	transitioning  bool
	remainingCycle float64

	operator      int
	occupants     map[int]bool // zones 1, 2 and 3
	awaitingInner map[int]bool // zone 0 queue
	awaitingOuter map[int]bool // zone 4 queue
	reservations  map[int]int  // id -> integer millisol of the reservation

	interior shared.LocalPosition
	exterior shared.LocalPosition
	zones    map[Zone]*doorSlots
}

// NewAirlock builds an airlock whose chamber slots are the given activity spots
func NewAirlock(capacity int, chamber *spot.Set, interior, exterior shared.LocalPosition) (*Airlock, error) {
	if capacity < 1 {
		return nil, shared.NewValidationError("capacity", "airlock capacity less than one")
	}
	return &Airlock{
		capacity:       capacity,
		chamber:        chamber,
		state:          AirlockPressurized,
		mode:           AirlockNotInUse,
		outerLocked:    true,
		remainingCycle: AirlockCycleTime,
		operator:       noOccupant,
		occupants:      make(map[int]bool),
		awaitingInner:  make(map[int]bool),
		awaitingOuter:  make(map[int]bool),
		reservations:   make(map[int]int),
		interior:       interior,
		exterior:       exterior,
		zones: map[Zone]*doorSlots{
			ZoneOutsideInnerDoor: newDoorSlots(interior, -0.3, -0.55, 0.4),
			ZoneInsideInnerDoor:  newDoorSlots(interior, 1.7, 2.3, 0.4),
			ZoneInsideOuterDoor:  newDoorSlots(exterior, -0.5, -1.0, 0.4),
			ZoneOutsideOuterDoor: newDoorSlots(exterior, 0.5, 1.0, 0.4),
		},
	}, nil
}

func (a *Airlock) Capacity() int                       { return a.capacity }
func (a *Airlock) State() AirlockState                 { return a.state }
func (a *Airlock) Mode() AirlockMode                   { return a.mode }
func (a *Airlock) IsInnerDoorLocked() bool             { return a.innerLocked }
func (a *Airlock) IsOuterDoorLocked() bool             { return a.outerLocked }
func (a *Airlock) IsActivated() bool                   { return a.activated }
func (a *Airlock) IsTransitioning() bool               { return a.transitioning }
func (a *Airlock) RemainingCycleTime() float64         { return a.remainingCycle }
func (a *Airlock) OperatorID() int                     { return a.operator }
func (a *Airlock) HasOperator() bool                   { return a.operator != noOccupant }
func (a *Airlock) InteriorDoor() shared.LocalPosition  { return a.interior }
func (a *Airlock) ExteriorDoor() shared.LocalPosition  { return a.exterior }
func (a *Airlock) NumOccupants() int                   { return len(a.occupants) }
func (a *Airlock) NumAwaitingInnerDoor() int           { return len(a.awaitingInner) }
func (a *Airlock) NumAwaitingOuterDoor() int           { return len(a.awaitingOuter) }
func (a *Airlock) NumInChamber() int                   { return a.chamber.NumOccupied() }
func (a *Airlock) IsEmpty() bool                       { return len(a.occupants) == 0 }
func (a *Airlock) HasSpace() bool                      { return len(a.occupants) < a.capacity }
func (a *Airlock) IsChamberFull() bool                 { return a.chamber.NumEmpty() == 0 }
func (a *Airlock) SetMode(mode AirlockMode)            { a.mode = mode }
func (a *Airlock) SetTransitioning(transitioning bool) { a.transitioning = transitioning }
func (a *Airlock) IsOccupant(id int) bool              { return a.occupants[id] }

// SetActivated switches the airlock on or off. Activation restarts the cycle timer.
func (a *Airlock) SetActivated(on bool) {
	if on {
		a.remainingCycle = AirlockCycleTime
	}
	a.activated = on
}

// Depressurize starts a depressurization cycle; false unless pressurized
func (a *Airlock) Depressurize() bool {
	if a.state != AirlockPressurized {
		return false
	}
	a.SetActivated(true)
	a.transitioning = true
	a.state = AirlockDepressurizing
	return true
}

// Pressurize starts a pressurization cycle; false unless depressurized
func (a *Airlock) Pressurize() bool {
	if a.state != AirlockDepressurized {
		return false
	}
	a.SetActivated(true)
	a.transitioning = true
	a.state = AirlockPressurizing
	return true
}

// AddTime moves a steady state into its transition and cycles air for msols
func (a *Airlock) AddTime(msols float64) {
	switch a.state {
	case AirlockPressurized:
		a.state = AirlockDepressurizing
	case AirlockDepressurized:
		a.state = AirlockPressurizing
	}
	a.cycleAir(msols)
}

func (a *Airlock) cycleAir(msols float64) {
	if msols > a.remainingCycle {
		msols = a.remainingCycle
	}
	a.remainingCycle -= msols
	if a.remainingCycle <= 0 {
		a.remainingCycle = AirlockCycleTime
		a.goToNextSteadyState()
	}
}

func (a *Airlock) goToNextSteadyState() {
	switch a.state {
	case AirlockPressurizing:
		a.state = AirlockPressurized
		a.innerLocked = false
		a.outerLocked = true
	case AirlockDepressurizing:
		a.state = AirlockDepressurized
		a.innerLocked = true
		a.outerLocked = false
	}
	a.activated = false
	a.transitioning = false
}

// AddReservation books the airlock for id. A booking older than
// ReservationPeriod is refreshed. False when all reservations are taken.
func (a *Airlock) AddReservation(id int, now marstime.MarsTime) bool {
	msol := now.MillisolInt()
	last, ok := a.reservations[id]
	if !ok {
		if len(a.reservations) >= MaxReservations {
			return false
		}
		a.reservations[id] = msol
		return true
	}
	if millisolsSince(last, msol) >= ReservationPeriod {
		a.reservations[id] = msol
	}
	return true
}

// HasReservation reports a live booking, dropping it once expired
func (a *Airlock) HasReservation(id int, now marstime.MarsTime) bool {
	last, ok := a.reservations[id]
	if !ok {
		return false
	}
	if millisolsSince(last, now.MillisolInt()) <= ReservationPeriod {
		return true
	}
	delete(a.reservations, id)
	return false
}

func (a *Airlock) RemoveReservation(id int) bool {
	if _, ok := a.reservations[id]; !ok {
		return false
	}
	delete(a.reservations, id)
	return true
}

func (a *Airlock) NumReservations() int { return len(a.reservations) }

func millisolsSince(last, now int) int {
	if last > now {
		return now + marstime.MillisolsPerSol - last
	}
	return now - last
}

// AddAwaitingInnerDoor queues id outside the inner door. One slot is always
// kept free for traffic flow.
func (a *Airlock) AddAwaitingInnerDoor(id int) bool {
	return addToQueue(a.awaitingInner, id)
}

// AddAwaitingOuterDoor queues id outside the outer door
func (a *Airlock) AddAwaitingOuterDoor(id int) bool {
	return addToQueue(a.awaitingOuter, id)
}

func addToQueue(queue map[int]bool, id int) bool {
	if queue[id] {
		return true
	}
	if len(queue) >= MaxChamberSlots-1 {
		return false
	}
	queue[id] = true
	return true
}

// EnterAirlock admits id into zones 1 to 3, through the inner door on egress
// or the outer door on ingress. The door must be unlocked and there must be room.
func (a *Airlock) EnterAirlock(id int, egress bool) bool {
	if a.occupants[id] || !a.HasSpace() {
		return false
	}
	switch {
	case egress && !a.innerLocked:
		delete(a.awaitingInner, id)
		a.mode = AirlockEgress
	case !egress && !a.outerLocked:
		delete(a.awaitingOuter, id)
		a.mode = AirlockIngress
	default:
		return false
	}
	a.occupants[id] = true
	return true
}

// ExitAirlock takes id out of zones 1 to 3; an exiting operator steps down
func (a *Airlock) ExitAirlock(id int) bool {
	if a.operator == id {
		a.operator = noOccupant
	}
	if !a.occupants[id] {
		return false
	}
	delete(a.occupants, id)
	return true
}

// Remove clears every trace of id from the airlock
func (a *Airlock) Remove(id int) {
	for z := ZoneOutsideInnerDoor; z <= ZoneOutsideOuterDoor; z++ {
		a.Vacate(z, id)
	}
	if a.operator == id {
		a.operator = noOccupant
	}
	delete(a.occupants, id)
	delete(a.awaitingInner, id)
	delete(a.awaitingOuter, id)
	delete(a.reservations, id)
}

// Claim puts id at pos in zone. A person holds at most one slot per zone and
// a slot holds at most one person.
func (a *Airlock) Claim(zone Zone, pos shared.LocalPosition, id int) bool {
	if zone == ZoneChamber {
		if _, held := a.chamber.FindOwned(id); held {
			return false
		}
		s, ok := a.chamber.Find(pos)
		if !ok {
			return false
		}
		return s.Claim(idWorker(id), false, noOccupant) != nil
	}
	slots, ok := a.zones[zone]
	if !ok {
		return false
	}
	return slots.claim(pos, id)
}

// Vacate frees whatever slot id holds in zone
func (a *Airlock) Vacate(zone Zone, id int) bool {
	if zone == ZoneChamber {
		s, ok := a.chamber.FindOwned(id)
		if !ok {
			return false
		}
		return s.Leave(idWorker(id), true)
	}
	slots, ok := a.zones[zone]
	if !ok {
		return false
	}
	return slots.vacate(id)
}

func (a *Airlock) IsInZone(id int, zone Zone) bool {
	if zone == ZoneChamber {
		_, ok := a.chamber.FindOwned(id)
		return ok
	}
	slots, ok := a.zones[zone]
	return ok && slots.contains(id)
}

// AvailablePosition returns a free slot in zone
func (a *Airlock) AvailablePosition(zone Zone) (shared.LocalPosition, bool) {
	if zone == ZoneChamber {
		for _, s := range a.chamber.All() {
			if s.IsEmpty() {
				return s.Position(), true
			}
		}
		return shared.LocalPosition{}, false
	}
	slots, ok := a.zones[zone]
	if !ok {
		return shared.LocalPosition{}, false
	}
	return slots.available()
}

// ZoneOccupants lists the ids standing in zone
func (a *Airlock) ZoneOccupants(zone Zone) []int {
	if zone == ZoneChamber {
		var out []int
		for _, s := range a.chamber.All() {
			if !s.IsEmpty() {
				out = append(out, s.OwnerID())
			}
		}
		return out
	}
	if slots, ok := a.zones[zone]; ok {
		return slots.occupants()
	}
	return nil
}

func (a *Airlock) inAnyZone(id int) bool {
	if a.occupants[id] || a.awaitingInner[id] || a.awaitingOuter[id] {
		return true
	}
	for z := ZoneOutsideInnerDoor; z <= ZoneOutsideOuterDoor; z++ {
		if a.IsInZone(id, z) {
			return true
		}
	}
	return false
}

// timePassing cycles air while activated and, once per integer millisol,
// drops occupants who left zones 1 to 3 and elects an operator
func (a *Airlock) timePassing(pulse marstime.Pulse) {
	if a.activated {
		if a.transitioning {
			a.AddTime(pulse.Elapsed())
		}
		if pulse.IsNewIntMillisol() {
			a.checkOccupants()
			a.checkOperator()
		}
	}
	if a.IsEmpty() {
		a.mode = AirlockNotInUse
	}
}

func (a *Airlock) checkOccupants() {
	for id := range a.occupants {
		if !a.IsInZone(id, ZoneInsideInnerDoor) && !a.IsInZone(id, ZoneChamber) && !a.IsInZone(id, ZoneInsideOuterDoor) {
			delete(a.occupants, id)
		}
	}
}

func (a *Airlock) checkOperator() {
	if a.operator != noOccupant && a.inAnyZone(a.operator) {
		return
	}
	a.operator = noOccupant
	if pool := a.operatorPool(); len(pool) > 0 {
		a.operator = pool[0]
	}
}

// operatorPool picks candidates by priority: zones 1 to 3, the inside of the
// outer door, the inside of the inner door, then both door queues. Lowest id
// comes first.
func (a *Airlock) operatorPool() []int {
	candidates := [][]int{
		keys(a.occupants),
		a.ZoneOccupants(ZoneInsideOuterDoor),
		a.ZoneOccupants(ZoneInsideInnerDoor),
		keys(a.awaitingOuter),
		keys(a.awaitingInner),
	}
	for _, pool := range candidates {
		if len(pool) > 0 {
			sort.Ints(pool)
			return pool
		}
	}
	return nil
}

func keys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func (a *Airlock) destroy() {
	for _, slots := range a.zones {
		slots.clear()
	}
	a.occupants = make(map[int]bool)
	a.awaitingInner = make(map[int]bool)
	a.awaitingOuter = make(map[int]bool)
	a.reservations = make(map[int]int)
	a.operator = noOccupant
}
