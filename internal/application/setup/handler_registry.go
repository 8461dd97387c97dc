package setup

import (
	"reflect"

	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	settlementCommands "github.com/andrescamacho/marssim-go/internal/application/settlement/commands"
	settlementQueries "github.com/andrescamacho/marssim-go/internal/application/settlement/queries"
	"github.com/andrescamacho/marssim-go/internal/application/simulation"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	world      *simulation.World
	reportRepo settlement.SolReportRepository
	recordRepo settlement.ProcessRecordRepository
	publishers []settlement.ReportPublisher
}

// NewHandlerRegistry creates a new handler registry with required dependencies.
// The repositories may be nil when nothing is persisted; the report queries
// are then left unregistered.
func NewHandlerRegistry(
	world *simulation.World,
	reportRepo settlement.SolReportRepository,
	recordRepo settlement.ProcessRecordRepository,
	publishers ...settlement.ReportPublisher,
) *HandlerRegistry {
	return &HandlerRegistry{
		world:      world,
		reportRepo: reportRepo,
		recordRepo: recordRepo,
		publishers: publishers,
	}
}

// RegisterSimulationHandlers registers the clock-driving handlers
//
// This method registers:
//   - RunSimulationCommand → RunSimulationHandler
//   - GetWorldStatusQuery → GetWorldStatusHandler
func (r *HandlerRegistry) RegisterSimulationHandlers(m mediator.Mediator) error {
	runHandler := simulation.NewRunSimulationHandler(r.world, r.reportRepo, r.recordRepo, r.publishers...)
	if err := m.Register(
		reflect.TypeOf(&simulation.RunSimulationCommand{}),
		runHandler,
	); err != nil {
		return err
	}

	statusHandler := simulation.NewGetWorldStatusHandler(r.world)
	if err := m.Register(
		reflect.TypeOf(&simulation.GetWorldStatusQuery{}),
		statusHandler,
	); err != nil {
		return err
	}

	return nil
}

// RegisterSettlementHandlers registers the per-settlement commands
//
// This method registers:
//   - AllocateBedCommand → AllocateBedHandler
//   - ScheduleComputingCommand → ScheduleComputingHandler
//   - GarageVehicleCommand, ReleaseVehicleCommand → GarageVehicleHandler
//   - StartProcessCommand → StartProcessHandler
func (r *HandlerRegistry) RegisterSettlementHandlers(m mediator.Mediator) error {
	garageHandler := settlementCommands.NewGarageVehicleHandler(r.world)

	handlers := []struct {
		request mediator.Request
		handler mediator.RequestHandler
	}{
		{&settlementCommands.AllocateBedCommand{}, settlementCommands.NewAllocateBedHandler(r.world)},
		{&settlementCommands.ScheduleComputingCommand{}, settlementCommands.NewScheduleComputingHandler(r.world)},
		{&settlementCommands.GarageVehicleCommand{}, garageHandler},
		{&settlementCommands.ReleaseVehicleCommand{}, garageHandler},
		{&settlementCommands.StartProcessCommand{}, settlementCommands.NewStartProcessHandler(r.world)},
	}
	for _, h := range handlers {
		if err := m.Register(reflect.TypeOf(h.request), h.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterReportHandlers registers the stored-report queries
func (r *HandlerRegistry) RegisterReportHandlers(m mediator.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&settlementQueries.ListSolReportsQuery{}),
		settlementQueries.NewListSolReportsHandler(r.reportRepo),
	); err != nil {
		return err
	}

	return m.Register(
		reflect.TypeOf(&settlementQueries.ListProcessRecordsQuery{}),
		settlementQueries.NewListProcessRecordsHandler(r.recordRepo),
	)
}

// CreateConfiguredMediator creates a new mediator with every handler registered
//
// Middlewares are applied in order; the first one wraps all the others.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	for _, mw := range middlewares {
		m.Use(mw)
	}

	if r.world != nil {
		if err := r.RegisterSimulationHandlers(m); err != nil {
			return nil, err
		}
		if err := r.RegisterSettlementHandlers(m); err != nil {
			return nil, err
		}
	}

	// Report queries only make sense with persistence
	if r.reportRepo != nil && r.recordRepo != nil {
		if err := r.RegisterReportHandlers(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}
