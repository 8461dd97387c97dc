package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

type quartersContext struct {
	colony   *colony
	quarters *function.LivingAccommodation
	people   map[string]*unit.Person
	nextID   int
}

func (qc *quartersContext) reset() {
	qc.colony = nil
	qc.quarters = nil
	qc.people = make(map[string]*unit.Person)
	qc.nextID = 0
}

// Given steps

func (qc *quartersContext) quartersWithABunkPairAndASingleBed(bunk, single string) error {
	c, err := newColony()
	if err != nil {
		return err
	}
	b, err := c.place("Residential Quarters 1", "Residential Quarters", function.Spec{
		Type: function.TypeLivingAccommodation,
		ActivitySpots: []function.SpotSpec{
			{Name: bunk, Position: shared.NewLocalPosition(0, 0)},
			{Name: bunk, Position: shared.NewLocalPosition(0, 1)},
			{Name: single, Position: shared.NewLocalPosition(2, 0)},
		},
	})
	if err != nil {
		return err
	}
	la, ok := b.LivingAccommodation()
	if !ok {
		return fmt.Errorf("%s has no living accommodation", b.Name())
	}
	qc.colony = c
	qc.quarters = la
	return nil
}

func (qc *quartersContext) aResident(gender, name string) error {
	g, err := unit.ParseGender(strings.ToUpper(gender))
	if err != nil {
		return err
	}
	qc.nextID++
	p, err := unit.NewPerson(qc.nextID, name, g)
	if err != nil {
		return err
	}
	if err := qc.colony.settlement.AddPerson(p, unit.NoBuilding); err != nil {
		return err
	}
	qc.people[name] = p
	return nil
}

// When steps

func (qc *quartersContext) isAssignedABed(name string) error {
	return qc.assign(name, false)
}

func (qc *quartersContext) isAssignedABedIgnoringGender(name string) error {
	return qc.assign(name, true)
}

func (qc *quartersContext) assign(name string, bypassGender bool) error {
	p, err := qc.person(name)
	if err != nil {
		return err
	}
	qc.quarters.AssignBed(qc.colony.settlement, p, true, bypassGender)
	return nil
}

// Then steps

func (qc *quartersContext) shouldSleepIn(name, bed string) error {
	p, err := qc.person(name)
	if err != nil {
		return err
	}
	if p.Bed() == nil {
		return fmt.Errorf("expected %s to sleep in %s, but they have no bed", name, bed)
	}
	if got := p.Bed().Spot().Name(); got != bed {
		return fmt.Errorf("expected %s to sleep in %s, got %s", name, bed, got)
	}
	return nil
}

func (qc *quartersContext) shouldHaveNoBed(name string) error {
	p, err := qc.person(name)
	if err != nil {
		return err
	}
	if p.Bed() != nil {
		return fmt.Errorf("expected %s to have no bed, got %s", name, p.Bed())
	}
	return nil
}

func (qc *quartersContext) bedsShouldBeOccupied(expected int) error {
	if got := qc.quarters.NumOccupied(); got != expected {
		return fmt.Errorf("expected %d occupied beds, got %d", expected, got)
	}
	return nil
}

func (qc *quartersContext) person(name string) (*unit.Person, error) {
	p, ok := qc.people[name]
	if !ok {
		return nil, fmt.Errorf("no resident named %q", name)
	}
	return p, nil
}

func InitializeQuartersScenario(ctx *godog.ScenarioContext) {
	qc := &quartersContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		qc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^quarters with a bunk pair "([^"]*)" and a single bed "([^"]*)"$`, qc.quartersWithABunkPairAndASingleBed)
	ctx.Step(`^a (male|female) resident "([^"]*)"$`, qc.aResident)

	// When steps
	ctx.Step(`^"([^"]*)" is assigned a bed$`, qc.isAssignedABed)
	ctx.Step(`^"([^"]*)" is assigned a bed ignoring gender$`, qc.isAssignedABedIgnoringGender)

	// Then steps
	ctx.Step(`^"([^"]*)" should sleep in "([^"]*)"$`, qc.shouldSleepIn)
	ctx.Step(`^"([^"]*)" should have no bed$`, qc.shouldHaveNoBed)
	ctx.Step(`^(\d+) beds should be occupied$`, qc.bedsShouldBeOccupied)
}
