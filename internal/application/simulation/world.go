package simulation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// World is the master clock plus every settlement it drives.
//
// Thread-Safety:
// Step and InSettlement take the world lock, so a command never observes a settlement
// halfway through a pulse. Settlements may be pulsed in parallel with each
// other; the buildings of one settlement never are.
type World struct {
	mu          sync.Mutex
	clock       *marstime.MasterClock
	settlements map[int]*settlement.Settlement
	parallel    bool
}

func NewWorld(start marstime.MarsTime, parallel bool) *World {
	return &World{
		clock:       marstime.NewMasterClock(start),
		settlements: make(map[int]*settlement.Settlement),
		parallel:    parallel,
	}
}

func (w *World) Now() marstime.MarsTime { return w.clock.Now() }

func (w *World) AddSettlement(s *settlement.Settlement) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.settlements[s.ID()]; exists {
		return shared.NewValidationError("settlement", fmt.Sprintf("settlement %d already exists", s.ID()))
	}
	w.settlements[s.ID()] = s
	return nil
}

// Settlement looks up a settlement by id
func (w *World) Settlement(id int) (*settlement.Settlement, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.settlements[id]
	if !ok {
		return nil, shared.NewNotFoundError("settlement", fmt.Sprintf("%d", id))
	}
	return s, nil
}

// Settlements returns every settlement in id order
func (w *World) Settlements() []*settlement.Settlement {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settlementsUnsafe()
}

func (w *World) settlementsUnsafe() []*settlement.Settlement {
	out := make([]*settlement.Settlement, 0, len(w.settlements))
	for _, s := range w.settlements {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Step advances the clock by elapsed millisols and delivers the pulse to every
// settlement. Cancellation is only honoured before the clock moves.
func (w *World) Step(ctx context.Context, elapsed float64) (marstime.Pulse, error) {
	if err := ctx.Err(); err != nil {
		return marstime.Pulse{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	pulse, err := w.clock.Advance(elapsed)
	if err != nil {
		return marstime.Pulse{}, err
	}

	settlements := w.settlementsUnsafe()
	if !w.parallel || len(settlements) < 2 {
		for _, s := range settlements {
			s.TimePassing(pulse)
		}
		return pulse, nil
	}

	var g errgroup.Group
	for _, s := range settlements {
		s := s
		g.Go(func() error {
			s.TimePassing(pulse)
			return nil
		})
	}
	return pulse, g.Wait()
}

// InSettlement runs fn against settlement id while no pulse is in progress
func (w *World) InSettlement(id int, fn func(s *settlement.Settlement) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.settlements[id]
	if !ok {
		return shared.NewNotFoundError("settlement", fmt.Sprintf("%d", id))
	}
	return fn(s)
}
