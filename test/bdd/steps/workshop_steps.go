package steps

import (
	"context"
	"fmt"
	"math"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/marssim-go/internal/domain/building"
	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/resource"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/catalog"
)

type workshopContext struct {
	colony   *colony
	catalog  *catalog.Catalog
	building *building.Building
	workshop *function.Manufacture
	admitted bool
	err      error
}

func (wc *workshopContext) reset() {
	wc.colony = nil
	wc.building = nil
	wc.workshop = nil
	wc.admitted = false
	wc.err = nil
}

// Given steps

func (wc *workshopContext) aWorkshopAllowingProcessesWithPrinterInstalled(processes, printers int) error {
	if wc.catalog == nil {
		cat, err := catalog.LoadDefault()
		if err != nil {
			return err
		}
		wc.catalog = cat
	}
	c, err := newColony()
	if err != nil {
		return err
	}
	b, err := c.place("Workshop 1", "Workshop", function.Spec{
		Type:      function.TypeManufacture,
		TechLevel: 2,
		Capacity:  processes,
		Properties: map[string]interface{}{
			"concurrent-processes": processes,
			"printers-installed":   printers,
		},
	})
	if err != nil {
		return err
	}
	m, ok := b.Manufacture()
	if !ok {
		return fmt.Errorf("%s has no manufacture function", b.Name())
	}
	wc.colony = c
	wc.building = b
	wc.workshop = m
	return nil
}

func (wc *workshopContext) kgOfInStorage(kg float64, name string) error {
	def, err := lookupResource(name)
	if err != nil {
		return err
	}
	wc.colony.settlement.Inventory().StoreAmountResource(def.ID, kg)
	return nil
}

func (wc *workshopContext) aSparePrinterIsInStorage() error {
	wc.colony.settlement.Inventory().StoreItemResource(resource.Printer, 1)
	return nil
}

// When steps

func (wc *workshopContext) iStartInTheWorkshop(process string) error {
	return wc.start(process, false)
}

func (wc *workshopContext) iQueueInTheWorkshop(process string) error {
	if err := wc.start(process, true); err != nil {
		return err
	}
	if wc.err != nil {
		return wc.err
	}
	if wc.admitted {
		return fmt.Errorf("expected %s to wait in the queue, but it started", process)
	}
	return nil
}

func (wc *workshopContext) start(process string, enqueue bool) error {
	info, workshop, err := wc.catalog.Process(process)
	if err != nil {
		return err
	}
	_, admitted, err := wc.colony.settlement.StartProcess(wc.building.ID(), workshop, info, marstime.New(1, 500), enqueue)
	wc.admitted = admitted
	wc.err = err
	return nil
}

func (wc *workshopContext) solBegins(sol int) error {
	wc.colony.startOfSol(sol)
	return nil
}

// Then steps

func (wc *workshopContext) theProcessShouldBeAdmitted() error {
	if wc.err != nil {
		return fmt.Errorf("expected the process to start, got error: %v", wc.err)
	}
	if !wc.admitted {
		return fmt.Errorf("expected the process to start, but it was not admitted")
	}
	return nil
}

func (wc *workshopContext) theProcessShouldBeRejected() error {
	if wc.admitted {
		return fmt.Errorf("expected the process to be rejected, but it started")
	}
	if wc.err == nil {
		return fmt.Errorf("expected a rejection error")
	}
	return nil
}

func (wc *workshopContext) kgOfShouldRemainInStorage(kg float64, name string) error {
	def, err := lookupResource(name)
	if err != nil {
		return err
	}
	if got := wc.colony.settlement.Inventory().SpecificAmountResourceStored(def.ID); math.Abs(got-kg) > 1e-9 {
		return fmt.Errorf("expected %g kg of %s, got %g", kg, name, got)
	}
	return nil
}

func (wc *workshopContext) theWorkshopShouldRunProcesses(expected int) error {
	if got := wc.workshop.CurrentTotalProcesses(); got != expected {
		return fmt.Errorf("expected %d running processes, got %d", expected, got)
	}
	return nil
}

func (wc *workshopContext) theWorkshopShouldHavePrintersInUse(expected int) error {
	if got := wc.workshop.PrintersInUse(); got != expected {
		return fmt.Errorf("expected %d printers in use, got %d", expected, got)
	}
	return nil
}

func (wc *workshopContext) theWorkshopQueueShouldBeEmpty() error {
	if n := wc.workshop.QueueLength(); n != 0 {
		return fmt.Errorf("expected an empty queue, %d processes are waiting", n)
	}
	return nil
}

func lookupResource(name string) (resource.Definition, error) {
	def, ok := resource.Lookup(name)
	if !ok {
		return resource.Definition{}, fmt.Errorf("unknown resource %q", name)
	}
	return def, nil
}

func InitializeWorkshopScenario(ctx *godog.ScenarioContext) {
	wc := &workshopContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		wc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a workshop allowing (\d+) processes with (\d+) printers? installed$`, wc.aWorkshopAllowingProcessesWithPrinterInstalled)
	ctx.Step(`^([0-9.]+) kg of ([a-z]+) in storage$`, wc.kgOfInStorage)
	ctx.Step(`^a spare printer is in storage$`, wc.aSparePrinterIsInStorage)
	ctx.Step(`^I queue "([^"]*)" in the workshop$`, wc.iQueueInTheWorkshop)

	// When steps
	ctx.Step(`^I start "([^"]*)" in the workshop$`, wc.iStartInTheWorkshop)
	ctx.Step(`^sol (\d+) begins$`, wc.solBegins)

	// Then steps
	ctx.Step(`^the process should be admitted$`, wc.theProcessShouldBeAdmitted)
	ctx.Step(`^the process should be rejected$`, wc.theProcessShouldBeRejected)
	ctx.Step(`^([0-9.]+) kg of ([a-z ]+) should remain in storage$`, wc.kgOfShouldRemainInStorage)
	ctx.Step(`^the workshop should run (\d+) process(?:es)?$`, wc.theWorkshopShouldRunProcesses)
	ctx.Step(`^the workshop should have (\d+) printers in use$`, wc.theWorkshopShouldHavePrintersInUse)
	ctx.Step(`^the workshop queue should be empty$`, wc.theWorkshopQueueShouldBeEmpty)
}
