package steps

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/building"
	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// colony is a bare settlement the scenarios place buildings into. It doubles
// as the function.Context handed to building functions.
type colony struct {
	settlement *settlement.Settlement
	buildings  map[string]*building.Building
	pulses     int64
}

func newColony() (*colony, error) {
	s, err := settlement.NewSettlement(settlement.Config{
		ID:              1,
		Name:            "Test Colony",
		GeneralCapacity: 1000,
		Seed:            1,
	})
	if err != nil {
		return nil, err
	}
	return &colony{settlement: s, buildings: make(map[string]*building.Building)}, nil
}

func (c *colony) place(name, buildingType string, specs ...function.Spec) (*building.Building, error) {
	placement := shared.Placement{Center: shared.NewLocalPosition(float64(10*len(c.buildings)), 0)}
	b, err := c.settlement.PlaceBuilding(name, buildingType, placement, specs)
	if err != nil {
		return nil, err
	}
	c.buildings[name] = b
	return b, nil
}

func (c *colony) building(name string) (*building.Building, error) {
	b, ok := c.buildings[name]
	if !ok {
		return nil, fmt.Errorf("no building named %q", name)
	}
	return b, nil
}

// startOfSol delivers the first pulse of a sol to the whole settlement
func (c *colony) startOfSol(sol int) {
	c.pulses++
	c.settlement.TimePassing(marstime.NewPulse(c.pulses, 0.1, marstime.New(sol, 0.1), true, true, true))
}
