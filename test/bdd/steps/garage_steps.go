package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

type garageContext struct {
	colony   *colony
	garage   *function.VehicleMaintenance
	rover    *unit.Vehicle
	accepted bool
}

func (gc *garageContext) reset() {
	gc.colony = nil
	gc.garage = nil
	gc.rover = nil
	gc.accepted = false
}

// Given steps

func (gc *garageContext) aGarageWithRoomForRovers(capacity int) error {
	c, err := newColony()
	if err != nil {
		return err
	}
	b, err := c.place("Garage 1", "Garage", function.Spec{
		Type:     function.TypeVehicleMaintenance,
		Capacity: capacity,
	})
	if err != nil {
		return err
	}
	g, ok := b.VehicleMaintenance()
	if !ok {
		return fmt.Errorf("%s has no vehicle maintenance function", b.Name())
	}
	gc.colony = c
	gc.garage = g
	return nil
}

func (gc *garageContext) aRoverInTheSettlementVicinity(name string) error {
	v, err := unit.NewVehicle(1, name, unit.VehicleTypeRover)
	if err != nil {
		return err
	}
	if err := gc.colony.settlement.AddVehicle(v); err != nil {
		return err
	}
	gc.rover = v
	return nil
}

// When steps

func (gc *garageContext) theRoverIsDrivenIntoTheGarage() error {
	gc.accepted = gc.garage.AddRover(gc.rover)
	return nil
}

func (gc *garageContext) theRoverIsTakenOutOfTheGarage() error {
	gc.accepted = gc.garage.RemoveRover(gc.colony.settlement, gc.rover, true)
	return nil
}

// Then steps

func (gc *garageContext) theGarageShouldAcceptIt() error {
	if !gc.accepted {
		return fmt.Errorf("expected the garage to accept %s, but it refused", gc.rover.Name())
	}
	return nil
}

func (gc *garageContext) theGarageShouldRefuseIt() error {
	if gc.accepted {
		return fmt.Errorf("expected the garage to refuse %s, but it accepted", gc.rover.Name())
	}
	return nil
}

func (gc *garageContext) theRoverShouldBeGaraged() error {
	if !gc.rover.IsGaraged() {
		return fmt.Errorf("expected %s to be garaged, status is %s", gc.rover.Name(), gc.rover.Status())
	}
	if gc.rover.LocationState() != unit.LocationInsideSettlement {
		return fmt.Errorf("expected %s inside the settlement, got %s", gc.rover.Name(), gc.rover.LocationState())
	}
	return nil
}

func (gc *garageContext) theRoverShouldNotBeGaraged() error {
	if gc.rover.IsGaraged() {
		return fmt.Errorf("expected %s not to be garaged", gc.rover.Name())
	}
	if gc.rover.LocationState() != unit.LocationSettlementVicinity {
		return fmt.Errorf("expected %s in the vicinity, got %s", gc.rover.Name(), gc.rover.LocationState())
	}
	return nil
}

func (gc *garageContext) theGarageShouldHoldRovers(expected int) error {
	if got := len(gc.garage.Rovers()); got != expected {
		return fmt.Errorf("expected %d rovers in the garage, got %d", expected, got)
	}
	return nil
}

func InitializeGarageScenario(ctx *godog.ScenarioContext) {
	gc := &garageContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		gc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a garage with room for (\d+) rovers$`, gc.aGarageWithRoomForRovers)
	ctx.Step(`^a rover named "([^"]*)" in the settlement vicinity$`, gc.aRoverInTheSettlementVicinity)

	// When steps
	ctx.Step(`^the rover is driven into the garage$`, gc.theRoverIsDrivenIntoTheGarage)
	ctx.Step(`^the rover is taken out of the garage$`, gc.theRoverIsTakenOutOfTheGarage)

	// Then steps
	ctx.Step(`^the garage should accept it$`, gc.theGarageShouldAcceptIt)
	ctx.Step(`^the garage should refuse it$`, gc.theGarageShouldRefuseIt)
	ctx.Step(`^the rover should be garaged$`, gc.theRoverShouldBeGaraged)
	ctx.Step(`^the rover should not be garaged$`, gc.theRoverShouldNotBeGaraged)
	ctx.Step(`^the garage should hold (\d+) rovers?$`, gc.theGarageShouldHoldRovers)
}
