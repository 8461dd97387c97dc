package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/marssim-go/internal/adapters/archive"
	"github.com/andrescamacho/marssim-go/internal/adapters/metrics"
	"github.com/andrescamacho/marssim-go/internal/adapters/telemetry"
	"github.com/andrescamacho/marssim-go/internal/application/common"
	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	"github.com/andrescamacho/marssim-go/internal/application/setup"
	"github.com/andrescamacho/marssim-go/internal/application/simulation"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/catalog"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/config"
	"github.com/andrescamacho/marssim-go/internal/infrastructure/pidfile"
)

type runOptions struct {
	sols        float64
	pulse       float64
	settlements []string
	seed        int64
	parallel    bool
	catalogPath string
	archive     bool
	noPersist   bool
	metrics     bool
	telemetry   bool
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `Build the settlements from the catalog and advance the Mars clock.

Finished sols are stored in the database, streamed to telemetry subscribers
and appended to a compressed archive when those are enabled. Ctrl-C stops the
run between pulses; the sols already closed are kept.

Examples:
  marssim run --sols 3
  marssim run --sols 0.5 --pulse 5 --settlement "Alpha Base"
  marssim run --parallel --metrics --telemetry --archive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			return runSimulation(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.sols, "sols", 0, "Sols to simulate (fractions allowed)")
	cmd.Flags().Float64Var(&opts.pulse, "pulse", 0, "Pulse length in millisols")
	cmd.Flags().StringSliceVar(&opts.settlements, "settlement", nil, "Settlement template to build (repeatable, default all)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Random seed")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Pulse settlements in parallel")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "Building catalog YAML (default: built-in catalog)")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "Write sol reports to a zstd archive")
	cmd.Flags().BoolVar(&opts.noPersist, "no-persist", false, "Do not store reports in the database")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Serve Prometheus metrics")
	cmd.Flags().BoolVar(&opts.telemetry, "telemetry", false, "Stream sol reports over websocket")

	return cmd
}

// apply copies the flags the user set onto the loaded config
func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("sols") {
		cfg.Simulation.Sols = o.sols
	}
	if flags.Changed("pulse") {
		cfg.Simulation.PulseMillisols = o.pulse
	}
	if flags.Changed("settlement") {
		cfg.Simulation.Settlements = o.settlements
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = o.seed
	}
	if flags.Changed("parallel") {
		cfg.Simulation.Parallel = o.parallel
	}
	if flags.Changed("catalog") {
		cfg.Catalog.Path = o.catalogPath
	}
	if flags.Changed("archive") {
		cfg.Reports.ArchiveEnabled = o.archive
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Enabled = o.metrics
	}
	if flags.Changed("telemetry") {
		cfg.Telemetry.Enabled = o.telemetry
	}
}

func runSimulation(parent context.Context, cfg *config.Config, opts *runOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseLogger, settlementLogger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	runID := uuid.New().String()
	lock := pidfile.New(cfg.Simulation.PIDFile)
	if err := lock.Acquire(runID); err != nil {
		return err
	}
	defer lock.Release()

	// World
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	settlements, err := cat.BuildSettlements(cfg.Simulation.Settlements, cfg.Simulation.Seed, settlementLogger)
	if err != nil {
		return fmt.Errorf("failed to build settlements: %w", err)
	}
	world := simulation.NewWorld(marstime.New(cfg.Simulation.StartSol, 0), cfg.Simulation.Parallel)
	for _, s := range settlements {
		if err := world.AddSettlement(s); err != nil {
			return err
		}
	}

	// Side servers live until the run is over
	serverCtx, stopServers := context.WithCancel(ctx)
	servers, serverCtx := errgroup.WithContext(serverCtx)
	defer func() {
		stopServers()
		if err := servers.Wait(); err != nil {
			baseLogger.Log(shared.LevelWarning, "Side server stopped with an error", map[string]interface{}{"error": err.Error()})
		}
	}()

	var middlewares []mediator.Middleware
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		simCollector := metrics.NewSimulationMetricsCollector()
		if err := simCollector.Register(); err != nil {
			return fmt.Errorf("failed to register simulation metrics: %w", err)
		}
		metrics.SetGlobalSimulationCollector(simCollector)
		requestCollector := metrics.NewRequestMetricsCollector()
		if err := requestCollector.Register(); err != nil {
			return fmt.Errorf("failed to register request metrics: %w", err)
		}
		middlewares = append(middlewares, metrics.PrometheusMiddleware(requestCollector))

		servers.Go(func() error { return metrics.Serve(serverCtx, cfg.Metrics.Addr(), cfg.Metrics.Path) })
	}

	var publishers []settlement.ReportPublisher
	if cfg.Telemetry.Enabled {
		hub := telemetry.NewHub()
		servers.Go(func() error {
			hub.Run(serverCtx)
			return nil
		})
		servers.Go(func() error { return hub.Serve(serverCtx, cfg.Telemetry.Addr(), cfg.Telemetry.Path) })
		publishers = append(publishers, hub)
	}

	var reportArchive *archive.ReportArchive
	if cfg.Reports.ArchiveEnabled {
		reportArchive, err = archive.NewReportArchive(cfg.Reports.ArchiveDir, runID, cfg.Reports.ArchiveLevel)
		if err != nil {
			return err
		}
		defer reportArchive.Close()
		publishers = append(publishers, reportArchive)
	}

	// Interfaces stay nil unless the store is open, so the registry can tell
	var (
		reportRepo settlement.SolReportRepository
		recordRepo settlement.ProcessRecordRepository
	)
	if !opts.noPersist {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		reportRepo, recordRepo = st.reports, st.records
	}

	registry := setup.NewHandlerRegistry(world, reportRepo, recordRepo, publishers...)
	med, err := registry.CreateConfiguredMediator(middlewares...)
	if err != nil {
		return fmt.Errorf("failed to configure mediator: %w", err)
	}

	ctx = common.WithLogger(ctx, baseLogger.With("simulation"))
	result, err := mediator.Ask[*simulation.RunSimulationResponse](ctx, med, &simulation.RunSimulationCommand{
		Sols:           cfg.Simulation.Sols,
		PulseMillisols: cfg.Simulation.PulseMillisols,
		RunID:          runID,
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	status, err := mediator.Ask[*simulation.GetWorldStatusResponse](ctx, med, &simulation.GetWorldStatusQuery{})
	if err != nil {
		return err
	}
	printRunSummary(result, status)

	if reportArchive != nil {
		if err := reportArchive.Close(); err != nil {
			return fmt.Errorf("failed to finish archive: %w", err)
		}
		fmt.Printf("\nArchived %d sol reports to %s\n", reportArchive.Written(), reportArchive.Path())
	}

	if userConfigHandler, err := config.NewUserConfigHandler(); err == nil {
		if err := userConfigHandler.RecordRun(result.RunID); err != nil {
			baseLogger.Log(shared.LevelWarning, "Failed to record run", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func printRunSummary(result *simulation.RunSimulationResponse, status *simulation.GetWorldStatusResponse) {
	fmt.Printf("Run %s\n", result.RunID)
	fmt.Printf("  From:      %s\n", result.Start)
	fmt.Printf("  To:        %s\n", result.End)
	fmt.Printf("  Pulses:    %d\n", result.Pulses)
	fmt.Printf("  Processes: %d ended\n", result.ProcessRecords)
	if result.Cancelled {
		fmt.Println("  Stopped early (interrupted)")
	}

	if len(result.Reports) > 0 {
		reports := append([]*settlement.SolReport(nil), result.Reports...)
		sort.SliceStable(reports, func(i, j int) bool {
			if reports[i].SettlementID != reports[j].SettlementID {
				return reports[i].SettlementID < reports[j].SettlementID
			}
			return reports[i].Sol < reports[j].Sol
		})
		fmt.Println("\nSol reports:")
		fmt.Printf("  %-22s %5s %8s %9s %8s %6s %9s\n", "SETTLEMENT", "SOL", "PULSES", "AVG KW", "PEAK KW", "BEDS", "PROCESSES")
		for _, r := range reports {
			fmt.Printf("  %-22s %5d %8d %9.2f %8.2f %6d %4d/%-4d\n",
				r.SettlementName, r.Sol, r.Pulses, r.AveragePowerKW, r.PeakPowerKW,
				r.BedsOccupied, r.ProcessesCompleted, r.ProcessesAborted)
		}
	}

	fmt.Println("\nSettlements:")
	for _, s := range status.Settlements {
		fmt.Printf("  [%d] %s\n", s.ID, s.Name)
		fmt.Printf("      Buildings: %d  People: %d  Robots: %d\n", s.Buildings, s.Population, s.Robots)
		fmt.Printf("      Beds:      %d/%d  Vehicles garaged: %d/%d\n", s.BedsOccupied, s.BedsTotal, s.VehiclesGaraged, s.Vehicles)
		fmt.Printf("      Power:     %.2f kW  CU free: %.1f/%.1f\n", s.PowerLoadKW, s.FreeCU, s.PeakCU)
	}
}
