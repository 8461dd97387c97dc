package settlement

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/andrescamacho/marssim-go/internal/domain/building"
	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/spot"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

const (
	vicinityRadius  = 40.0 // metres from the settlement origin to the first parking ring
	vicinityRingGap = 12.0
	vicinityPerRing = 12
)

// Config carries what a settlement needs at construction
type Config struct {
	ID              int
	Name            string
	GeneralCapacity float64 // kg every amount resource may hold before storage buildings
	Seed            int64
	Logger          shared.Logger
}

// Settlement owns the buildings, inventory, people and vehicles of one base and
// is the function.Context its building functions see during a pulse.
//
// Thread-Safety:
// Pulses and commands must be serialised by the caller (the simulation world
// holds a lock around both). Only the drained process records and sol reports
// are guarded here, so persistence can collect them from another goroutine.
type Settlement struct {
	id        int
	name      string
	store     *resource.Store
	buildings *building.Manager
	logger    shared.Logger
	rng       *rand.Rand

	people   map[int]*unit.Person
	robots   map[int]*unit.Robot
	vehicles map[int]*unit.Vehicle
	parked   int // vehicles sent to the vicinity so far, drives the ring layout

	mu      sync.Mutex
	records []function.ProcessRecord
	reports []*SolReport
	current solAccumulator
}

func NewSettlement(cfg Config) (*Settlement, error) {
	if cfg.ID <= 0 {
		return nil, shared.NewValidationError("id", "settlement id must be positive")
	}
	if cfg.Name == "" {
		return nil, shared.NewValidationError("name", "settlement name cannot be empty")
	}
	store, err := resource.NewStore(cfg.GeneralCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create store for %s: %w", cfg.Name, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = shared.NopLogger{}
	}
	return &Settlement{
		id:        cfg.ID,
		name:      cfg.Name,
		store:     store,
		buildings: building.NewManager(),
		logger:    logger,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		people:    make(map[int]*unit.Person),
		robots:    make(map[int]*unit.Robot),
		vehicles:  make(map[int]*unit.Vehicle),
		current:   solAccumulator{sol: 1},
	}, nil
}

func (s *Settlement) ID() int                       { return s.id }
func (s *Settlement) Name() string                  { return s.name }
func (s *Settlement) Inventory() *resource.Store    { return s.store }
func (s *Settlement) Buildings() *building.Manager  { return s.buildings }
func (s *Settlement) Store() function.ResourceStore { return s.store }
func (s *Settlement) Logger() shared.Logger         { return s.logger }

func (s *Settlement) Person(id int) (*unit.Person, bool) {
	p, ok := s.people[id]
	return p, ok
}

func (s *Settlement) Robot(id int) (*unit.Robot, bool) {
	r, ok := s.robots[id]
	return r, ok
}

func (s *Settlement) Vehicle(id int) (*unit.Vehicle, bool) {
	v, ok := s.vehicles[id]
	return v, ok
}

// People returns the population in id order
func (s *Settlement) People() []*unit.Person {
	out := make([]*unit.Person, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Vehicles returns the fleet in id order
func (s *Settlement) Vehicles() []*unit.Vehicle {
	out := make([]*unit.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *Settlement) logf(level, format string, args ...interface{}) {
	s.logger.Log(level, fmt.Sprintf(format, args...), map[string]interface{}{
		shared.MetaSource:   s.name,
		shared.MetaTemplate: format,
		"settlement":        s.name,
	})
}

// Buildings

// PlaceBuilding constructs a building from its function specs and adds it
func (s *Settlement) PlaceBuilding(name, buildingType string, placement shared.Placement, specs []function.Spec) (*building.Building, error) {
	b, err := building.NewBuilding(s.buildings.NextID(), name, buildingType, placement, specs)
	if err != nil {
		return nil, fmt.Errorf("failed to place %s: %w", name, err)
	}
	if err := s.AddBuilding(b); err != nil {
		return nil, err
	}
	return b, nil
}

// AddBuilding registers b. Storage capacity joins the inventory and the
// building's initial stock is stored.
func (s *Settlement) AddBuilding(b *building.Building) error {
	if err := s.buildings.Add(b); err != nil {
		return err
	}
	if cp, ok := b.Storage(); ok {
		for id, kg := range cp.StorageCapacities() {
			s.store.AddAmountResourceCapacity(id, kg)
		}
		for id, kg := range cp.InitialStock() {
			if excess := s.store.StoreAmountResource(id, kg); excess > 0 {
				s.logf(shared.LevelWarning, "%s: %.2f kg of initial %s did not fit.", b.Name(), excess, resource.Name(id))
			}
		}
	}
	s.logf(shared.LevelDebug, "Placed %s.", b)
	return nil
}

// RemoveBuilding demolishes a building: garaged vehicles are parked outside,
// occupants leave, beds and spots held there are released and its storage
// capacity is withdrawn.
func (s *Settlement) RemoveBuilding(id int) error {
	b, err := s.buildings.Remove(id)
	if err != nil {
		return err
	}

	if g, ok := b.VehicleMaintenance(); ok {
		for _, v := range g.ParkedVehicles() {
			g.RemoveVehicle(s, v, true)
		}
	}
	if ls, ok := b.LifeSupport(); ok {
		for _, pid := range ls.Occupants() {
			if p, ok := s.people[pid]; ok {
				b.RemovePerson(p)
			}
		}
	}
	for _, p := range s.people {
		if bed := p.Bed(); bed != nil && bed.BuildingID() == id {
			p.ReleaseBed()
		}
		if p.BuildingID() == id {
			p.LeaveBuilding()
		}
	}
	for _, r := range s.robots {
		if r.BuildingID() == id {
			r.LeaveBuilding()
		}
	}
	if cp, ok := b.Storage(); ok {
		for rid, kg := range cp.StorageCapacities() {
			s.store.RemoveAmountResourceCapacity(rid, kg)
		}
	}

	b.Destroy()
	s.logf(shared.LevelInfo, "Demolished %s.", b)
	return nil
}

// Units

// AddPerson makes p a resident. When buildingID names a building with life
// support, p moves in.
func (s *Settlement) AddPerson(p *unit.Person, buildingID int) error {
	if _, exists := s.people[p.ID()]; exists {
		return shared.NewValidationError("person", fmt.Sprintf("%s is already a resident", p.Name()))
	}
	s.people[p.ID()] = p
	if buildingID == unit.NoBuilding {
		return nil
	}
	b, ok := s.buildings.Get(buildingID)
	if !ok {
		return shared.NewNotFoundError("building", fmt.Sprintf("%d", buildingID))
	}
	if !b.AddPerson(p) {
		return shared.NewDomainError(fmt.Sprintf("%s cannot hold %s", b.Name(), p.Name()))
	}
	return nil
}

// MovePerson takes p out of its current building and into another one
func (s *Settlement) MovePerson(p *unit.Person, buildingID int) bool {
	to, ok := s.buildings.Get(buildingID)
	if !ok {
		return false
	}
	if from, ok := s.buildings.Get(p.BuildingID()); ok {
		from.RemovePerson(p)
	}
	return to.AddPerson(p)
}

func (s *Settlement) AddRobot(r *unit.Robot) error {
	if _, exists := s.robots[r.ID()]; exists {
		return shared.NewValidationError("robot", fmt.Sprintf("%s is already registered", r.Name()))
	}
	s.robots[r.ID()] = r
	return nil
}

// AddVehicle registers v with the fleet and parks it in the vicinity
func (s *Settlement) AddVehicle(v *unit.Vehicle) error {
	if _, exists := s.vehicles[v.ID()]; exists {
		return shared.NewValidationError("vehicle", fmt.Sprintf("%s is already registered", v.Name()))
	}
	s.vehicles[v.ID()] = v
	s.ParkInVicinity(v)
	return nil
}

// CrewOf lists the people and robots aboard a vehicle, people first, each in id order
func (s *Settlement) CrewOf(vehicleID int) []function.Crew {
	var crew []function.Crew
	for _, p := range s.People() {
		if p.VehicleID() == vehicleID {
			crew = append(crew, resident{s: s, Person: p})
		}
	}
	ids := make([]int, 0, len(s.robots))
	for id, r := range s.robots {
		if r.VehicleID() == vehicleID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	for _, id := range ids {
		crew = append(crew, s.robots[id])
	}
	return crew
}

// resident leaves its building through the building so life support
// bookkeeping follows the person out
type resident struct {
	s *Settlement
	*unit.Person
}

func (r resident) LeaveBuilding() {
	if b, ok := r.s.buildings.Get(r.BuildingID()); ok && b.RemovePerson(r.Person) {
		return
	}
	r.Person.LeaveBuilding()
}

// ParkInVicinity parks v on rings of bays around the settlement origin
func (s *Settlement) ParkInVicinity(v *unit.Vehicle) {
	ring := s.parked / vicinityPerRing
	slot := s.parked % vicinityPerRing
	s.parked++

	angle := 2 * math.Pi * float64(slot) / vicinityPerRing
	radius := vicinityRadius + float64(ring)*vicinityRingGap
	v.ParkOutside(shared.NewLocalPosition(radius*math.Cos(angle), radius*math.Sin(angle)))
}

// Beds

// AllocateBed finds p a bed. Buildings whose guesthouse flag matches the
// request (guesthouse for guests, quarters for residents) are tried first while
// respecting bunk gender, then again ignoring it. Failing both, p gets a
// random guesthouse bed, which is never permanent.
func (s *Settlement) AllocateBed(p *unit.Person, permanent bool) *spot.AllocatedSpot {
	if bed := p.Bed(); bed != nil && bed.IsValid() {
		return bed
	}

	quarters := s.livingQuarters()
	for _, bypassGender := range []bool{false, true} {
		for _, la := range quarters {
			if la.IsGuestHouse() == permanent || la.NumEmpty() == 0 {
				continue
			}
			if lease := la.AssignBed(s, p, permanent, bypassGender); lease != nil {
				return lease
			}
		}
	}

	var guest []*function.LivingAccommodation
	free := 0
	for _, la := range quarters {
		if la.IsGuestHouse() && la.NumEmpty() > 0 {
			guest = append(guest, la)
			free += la.NumEmpty()
		}
	}
	if free == 0 {
		s.logf(shared.LevelWarning, "No bed available for %s.", p.Name())
		return nil
	}
	// every free guesthouse bed is equally likely
	pick := s.rng.Intn(free)
	for _, la := range guest {
		if pick < la.NumEmpty() {
			return la.AssignEmptyBed(s, p, pick, false)
		}
		pick -= la.NumEmpty()
	}
	return nil
}

func (s *Settlement) livingQuarters() []*function.LivingAccommodation {
	var out []*function.LivingAccommodation
	for _, b := range s.buildings.WithFunction(function.TypeLivingAccommodation) {
		if la, ok := b.LivingAccommodation(); ok {
			out = append(out, la)
		}
	}
	return out
}

// Vehicles

// GarageVehicle parks v in the first garage with a free bay of its kind and
// returns that building's id. A vehicle is never garaged twice.
func (s *Settlement) GarageVehicle(v *unit.Vehicle) (int, bool) {
	if v.IsGaraged() {
		if b, ok := s.buildings.Get(v.GarageBuildingID()); ok {
			if g, ok := b.VehicleMaintenance(); ok && g.ContainsVehicle(v) {
				return b.ID(), false
			}
		}
	}
	for _, b := range s.buildings.WithFunction(function.TypeVehicleMaintenance) {
		g, ok := b.VehicleMaintenance()
		if !ok || g.AvailableCapacity(v.Type()) == 0 {
			continue
		}
		if g.AddVehicle(v) {
			s.logf(shared.LevelDebug, "%s garaged in %s.", v.Name(), b.Name())
			return b.ID(), true
		}
	}
	return unit.NoBuilding, false
}

// ReleaseVehicle takes v out of its garage and parks it in the vicinity
func (s *Settlement) ReleaseVehicle(v *unit.Vehicle, transferCrew bool) bool {
	if !v.IsGaraged() {
		return false
	}
	b, ok := s.buildings.Get(v.GarageBuildingID())
	if !ok {
		return false
	}
	g, ok := b.VehicleMaintenance()
	if !ok {
		return false
	}
	return g.RemoveVehicle(s, v, transferCrew)
}

// Computing

// ScheduleComputing books needed CU over [begin, end) on a node that can
// admit it and returns its building id. Among admissible nodes the best score
// wins; ties, including all-zero scores, go to the lowest id.
func (s *Settlement) ScheduleComputing(needed float64, begin, end int) (int, bool) {
	bestID, bestScore := unit.NoBuilding, -1.0
	var best *function.Computation
	for _, b := range s.buildings.WithFunction(function.TypeComputation) {
		c, ok := b.Computation()
		if !ok || !c.CanScheduleTask(needed, begin, end) {
			continue
		}
		if score := c.EvaluateScheduleTask(needed, begin, end); score > bestScore {
			bestID, bestScore, best = b.ID(), score, c
		}
	}
	if best == nil || !best.ScheduleTask(needed, begin, end) {
		return unit.NoBuilding, false
	}
	return bestID, true
}

// Workshops

type processHost interface {
	AddProcess(ctx function.Context, p *function.Process) bool
	Enqueue(p *function.Process)
}

// StartProcess creates a process from info in the manufacture or food
// production function of buildingID. When the workshop cannot admit it and
// enqueue is set, the process waits in the workshop queue instead.
func (s *Settlement) StartProcess(buildingID int, workshop function.Type, info function.ProcessInfo, now marstime.MarsTime, enqueue bool) (*function.Process, bool, error) {
	b, ok := s.buildings.Get(buildingID)
	if !ok {
		return nil, false, shared.NewNotFoundError("building", fmt.Sprintf("%d", buildingID))
	}

	var host processHost
	switch workshop {
	case function.TypeManufacture:
		if m, ok := b.Manufacture(); ok {
			host = m
		}
	case function.TypeFoodProduction:
		if f, ok := b.FoodProduction(); ok {
			host = f
		}
	default:
		return nil, false, shared.NewValidationError("workshop", fmt.Sprintf("%s does not run processes", workshop))
	}
	if host == nil {
		return nil, false, shared.NewNotFoundError(workshop.String(), b.Name())
	}

	p, err := function.NewProcess(info, now)
	if err != nil {
		return nil, false, err
	}
	if host.AddProcess(s, p) {
		return p, true, nil
	}
	if enqueue {
		host.Enqueue(p)
		s.logf(shared.LevelInfo, "%s queued in %s", p.Name(), b.Name())
		return p, false, nil
	}
	return nil, false, shared.NewDomainError(fmt.Sprintf("%s cannot start %s", b.Name(), info.Name))
}

// Process ledger

func (s *Settlement) RecordProcess(rec function.ProcessRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if rec.Premature {
		s.current.aborted++
	} else {
		s.current.completed++
	}
}

// DrainProcessRecords hands over the records collected since the last drain
func (s *Settlement) DrainProcessRecords() []function.ProcessRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.records
	s.records = nil
	return out
}

// DrainSolReports hands over the sol reports finished since the last drain
func (s *Settlement) DrainSolReports() []*SolReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.reports
	s.reports = nil
	return out
}

// Pulse

// TimePassing delivers the pulse to every building in id order and closes
// the sol report when a new sol begins.
func (s *Settlement) TimePassing(pulse marstime.Pulse) {
	s.buildings.TimePassing(s, pulse)

	power := s.buildings.TotalPowerLoad()
	cu := 0.0
	for _, b := range s.buildings.WithFunction(function.TypeComputation) {
		if c, ok := b.Computation(); ok {
			cu += c.CurrentCU()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.add(pulse.Elapsed(), power, cu)
	if pulse.IsNewSol() {
		s.reports = append(s.reports, s.closeSolUnsafe(solOf(pulse)))
		s.current.reset(pulse.MarsTime().MissionSol())
	}
}

func (s *Settlement) closeSolUnsafe(sol int) *SolReport {
	beds := 0
	for _, la := range s.livingQuarters() {
		beds += la.NumOccupied()
	}
	garaged := 0
	for _, v := range s.vehicles {
		if v.IsGaraged() {
			garaged++
		}
	}
	return &SolReport{
		SettlementID:       s.id,
		SettlementName:     s.name,
		Sol:                sol,
		Pulses:             s.current.pulses,
		AveragePowerKW:     s.current.averagePower(),
		PeakPowerKW:        s.current.peakPower,
		AverageCUUsage:     s.current.averageCU(),
		Population:         len(s.people),
		BedsOccupied:       beds,
		VehiclesGaraged:    garaged,
		ProcessesCompleted: s.current.completed,
		ProcessesAborted:   s.current.aborted,
		Resources:          resourceNames(s.store),
	}
}

// Status is a point-in-time view for queries and metrics
type Status struct {
	ID              int
	Name            string
	Buildings       int
	Population      int
	Robots          int
	Vehicles        int
	VehiclesGaraged int
	BedsOccupied    int
	BedsTotal       int
	PowerLoadKW     float64
	FreeCU          float64
	PeakCU          float64
	Resources       map[string]float64
}

func (s *Settlement) Status() Status {
	st := Status{
		ID:          s.id,
		Name:        s.name,
		Buildings:   s.buildings.Len(),
		Population:  len(s.people),
		Robots:      len(s.robots),
		Vehicles:    len(s.vehicles),
		PowerLoadKW: s.buildings.TotalPowerLoad(),
		Resources:   resourceNames(s.store),
	}
	for _, v := range s.vehicles {
		if v.IsGaraged() {
			st.VehiclesGaraged++
		}
	}
	for _, la := range s.livingQuarters() {
		st.BedsOccupied += la.NumOccupied()
		st.BedsTotal += la.NumBeds()
	}
	for _, b := range s.buildings.WithFunction(function.TypeComputation) {
		if c, ok := b.Computation(); ok {
			st.FreeCU += c.FreeCU()
			st.PeakCU += c.PeakCU()
		}
	}
	return st
}
