package function_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

type logEntry struct {
	level   string
	message string
}

type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) Log(level, message string, _ map[string]interface{}) {
	l.entries = append(l.entries, logEntry{level: level, message: message})
}

func (l *recordingLogger) contains(level, fragment string) bool {
	for _, e := range l.entries {
		if e.level == level && strings.Contains(e.message, fragment) {
			return true
		}
	}
	return false
}

// fakeContext is an in-memory settlement for driving functions directly
type fakeContext struct {
	store   *resource.Store
	logger  *recordingLogger
	people  map[int]*unit.Person
	crew    map[int][]function.Crew
	parked  []*unit.Vehicle
	records []function.ProcessRecord
}

func newFakeContext(t *testing.T, capacity float64) *fakeContext {
	t.Helper()
	store, err := resource.NewStore(capacity)
	require.NoError(t, err)
	return &fakeContext{
		store:  store,
		logger: &recordingLogger{},
		people: make(map[int]*unit.Person),
		crew:   make(map[int][]function.Crew),
	}
}

func (c *fakeContext) Store() function.ResourceStore { return c.store }
func (c *fakeContext) Logger() shared.Logger         { return c.logger }

func (c *fakeContext) Person(id int) (*unit.Person, bool) {
	p, ok := c.people[id]
	return p, ok
}

func (c *fakeContext) CrewOf(vehicleID int) []function.Crew { return c.crew[vehicleID] }

func (c *fakeContext) ParkInVicinity(v *unit.Vehicle) {
	v.ParkOutside(shared.NewLocalPosition(-50, -50))
	c.parked = append(c.parked, v)
}

func (c *fakeContext) RecordProcess(rec function.ProcessRecord) {
	c.records = append(c.records, rec)
}

func (c *fakeContext) addPerson(t *testing.T, id int, gender unit.Gender) *unit.Person {
	t.Helper()
	p, err := unit.NewPerson(id, "person-"+string(rune('A'+id%26)), gender)
	require.NoError(t, err)
	c.people[id] = p
	return p
}

func testRef() function.BuildingRef {
	return function.BuildingRef{ID: 7, Name: "Lander Hab 1"}
}

// pulseSeq hands out pulses with increasing ids
type pulseSeq struct {
	next int64
}

func (s *pulseSeq) tick(sol int, msol, elapsed float64, newSol, newHalfSol, newIntMillisol bool) marstime.Pulse {
	s.next++
	return marstime.NewPulse(s.next, elapsed, marstime.New(sol, msol), newSol, newHalfSol, newIntMillisol)
}

// millisol is a plain pulse crossing an integer millisol
func (s *pulseSeq) millisol(msol, elapsed float64) marstime.Pulse {
	return s.tick(1, msol, elapsed, false, false, true)
}
