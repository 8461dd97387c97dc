package catalog

import (
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

// BuildOptions carries the identity a template does not know about
type BuildOptions struct {
	ID     int
	Seed   int64
	Logger shared.Logger
}

// unitIDBlock spaces unit ids per settlement so workers never collide across settlements
const unitIDBlock = 10000

// BuildSettlement places every building of the template, then moves in its
// people and robots and parks its vehicles in the vicinity.
func (c *Catalog) BuildSettlement(t Template, opts BuildOptions) (*settlement.Settlement, error) {
	s, err := settlement.NewSettlement(settlement.Config{
		ID:              opts.ID,
		Name:            t.Name,
		GeneralCapacity: t.GeneralCapacity,
		Seed:            opts.Seed,
		Logger:          opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	placed := make(map[string]int, len(t.Buildings))
	for _, pl := range t.Buildings {
		def, ok := c.Building(pl.Type)
		if !ok {
			return nil, shared.NewNotFoundError("building type", pl.Type)
		}
		specs, err := def.Specs()
		if err != nil {
			return nil, err
		}
		placement := shared.Placement{Center: shared.NewLocalPosition(pl.X, pl.Y), Facing: pl.Facing}
		b, err := s.PlaceBuilding(pl.Name, def.Type, placement, specs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
		placed[pl.Name] = b.ID()
	}

	nextID := opts.ID * unitIDBlock
	newID := func() int {
		nextID++
		return nextID
	}

	for _, pd := range t.People {
		gender, err := unit.ParseGender(pd.Gender)
		if err != nil {
			return nil, err
		}
		p, err := unit.NewPerson(newID(), pd.Name, gender)
		if err != nil {
			return nil, err
		}
		home := unit.NoBuilding
		if pd.Building != "" {
			home = placed[pd.Building]
		}
		if err := s.AddPerson(p, home); err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
	}

	for _, rd := range t.Robots {
		r, err := unit.NewRobot(newID(), rd.Name)
		if err != nil {
			return nil, err
		}
		if err := s.AddRobot(r); err != nil {
			return nil, err
		}
		if rd.Building != "" {
			r.EnterBuilding(placed[rd.Building])
		}
	}

	for _, vd := range t.Vehicles {
		vtype, err := unit.ParseVehicleType(vd.Type)
		if err != nil {
			return nil, err
		}
		v, err := unit.NewVehicle(newID(), vd.Name, vtype)
		if err != nil {
			return nil, err
		}
		if err := s.AddVehicle(v); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// BuildSettlements builds the named templates, or every template when names is
// empty. Settlement ids start at 1 in the order built and each gets seed+id.
func (c *Catalog) BuildSettlements(names []string, seed int64, logger shared.Logger) ([]*settlement.Settlement, error) {
	templates := c.Settlements
	if len(names) > 0 {
		templates = make([]Template, 0, len(names))
		for _, n := range names {
			t, err := c.Template(n)
			if err != nil {
				return nil, err
			}
			templates = append(templates, t)
		}
	}
	if len(templates) == 0 {
		return nil, shared.NewValidationError("settlements", "catalog has no settlement templates")
	}

	out := make([]*settlement.Settlement, 0, len(templates))
	for i, t := range templates {
		id := i + 1
		s, err := c.BuildSettlement(t, BuildOptions{ID: id, Seed: seed + int64(id), Logger: logger})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
