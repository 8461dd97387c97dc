package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	settlementQueries "github.com/andrescamacho/marssim-go/internal/application/settlement/queries"
	"github.com/andrescamacho/marssim-go/internal/application/setup"
	"github.com/andrescamacho/marssim-go/internal/application/simulation"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/catalog"
	"github.com/andrescamacho/marssim-go/test/helpers"
)

type simulationContext struct {
	mediator mediator.Mediator
	response *simulation.RunSimulationResponse
	reports  *settlementQueries.ListSolReportsResponse
}

func (sc *simulationContext) reset() {
	sc.mediator = nil
	sc.response = nil
	sc.reports = nil
}

// Given steps

func (sc *simulationContext) theSettlementFromTheBuiltInCatalog(name string) error {
	cat, err := catalog.LoadDefault()
	if err != nil {
		return err
	}
	settlements, err := cat.BuildSettlements([]string{name}, 1, nil)
	if err != nil {
		return err
	}

	world := simulation.NewWorld(marstime.New(1, 0), false)
	for _, s := range settlements {
		if err := world.AddSettlement(s); err != nil {
			return err
		}
	}

	repos := helpers.NewTestRepositories(shared.NewFixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	med, err := setup.NewHandlerRegistry(world, repos.SolReports, repos.ProcessRecords).CreateConfiguredMediator()
	if err != nil {
		return err
	}
	sc.mediator = med
	return nil
}

// When steps

func (sc *simulationContext) iRunTheSimulationForSolsInPulsesOfMillisols(sols, pulse float64) error {
	resp, err := sc.mediator.Send(context.Background(), &simulation.RunSimulationCommand{
		Sols:           sols,
		PulseMillisols: pulse,
		RunID:          "bdd-run",
	})
	if err != nil {
		return err
	}
	sc.response = resp.(*simulation.RunSimulationResponse)
	return nil
}

// Then steps

func (sc *simulationContext) theRunShouldTakePulses(expected int) error {
	if sc.response.Pulses != expected {
		return fmt.Errorf("expected %d pulses, got %d", expected, sc.response.Pulses)
	}
	return nil
}

func (sc *simulationContext) solReportsShouldBeStoredForSettlement(expected, settlementID int) error {
	resp, err := sc.mediator.Send(context.Background(), &settlementQueries.ListSolReportsQuery{SettlementID: settlementID})
	if err != nil {
		return err
	}
	sc.reports = resp.(*settlementQueries.ListSolReportsResponse)
	if got := len(sc.reports.Reports); got != expected {
		return fmt.Errorf("expected %d stored reports, got %d", expected, got)
	}
	return nil
}

func (sc *simulationContext) theNewestStoredReportShouldBeForSol(sol int) error {
	if sc.reports == nil || len(sc.reports.Reports) == 0 {
		return fmt.Errorf("no stored reports listed")
	}
	if got := sc.reports.Reports[0].Sol; got != sol {
		return fmt.Errorf("expected the newest report to be sol %d, got sol %d", sol, got)
	}
	return nil
}

func InitializeSimulationScenario(ctx *godog.ScenarioContext) {
	sc := &simulationContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, helpers.TruncateAllTables()
	})

	// Given steps
	ctx.Step(`^the "([^"]*)" settlement from the built-in catalog$`, sc.theSettlementFromTheBuiltInCatalog)

	// When steps
	ctx.Step(`^I run the simulation for ([0-9.]+) sols in pulses of ([0-9.]+) millisols$`, sc.iRunTheSimulationForSolsInPulsesOfMillisols)

	// Then steps
	ctx.Step(`^the run should take (\d+) pulses$`, sc.theRunShouldTakePulses)
	ctx.Step(`^(\d+) sol reports should be stored for settlement (\d+)$`, sc.solReportsShouldBeStoredForSettlement)
	ctx.Step(`^the newest stored report should be for sol (\d+)$`, sc.theNewestStoredReportShouldBeForSol)
}
