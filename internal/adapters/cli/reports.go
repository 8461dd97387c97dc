package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/marssim-go/internal/adapters/archive"
	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	settlementQueries "github.com/andrescamacho/marssim-go/internal/application/settlement/queries"
	"github.com/andrescamacho/marssim-go/internal/application/setup"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
)

// NewReportsCommand creates the reports command with subcommands
func NewReportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Read stored sol reports and process records",
		Long: `Read what earlier runs stored in the database or archived to disk.

Examples:
  marssim reports list --settlement-id 1 --limit 10
  marssim reports records --settlement-id 1 --aborted
  marssim reports archive reports/3f2c9a.jsonl.zst`,
	}

	cmd.AddCommand(newReportsListCommand())
	cmd.AddCommand(newReportsRecordsCommand())
	cmd.AddCommand(newReportsArchiveCommand())

	return cmd
}

// withReportMediator opens the database and hands fn a mediator that only
// serves the report queries
func withReportMediator(fn func(ctx context.Context, med mediator.Mediator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	med, err := setup.NewHandlerRegistry(nil, st.reports, st.records).CreateConfiguredMediator()
	if err != nil {
		return err
	}
	return fn(context.Background(), med)
}

func newReportsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sol reports of a settlement, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSettlementID()
			if err != nil {
				return err
			}
			return withReportMediator(func(ctx context.Context, med mediator.Mediator) error {
				resp, err := mediator.Ask[*settlementQueries.ListSolReportsResponse](ctx, med,
					&settlementQueries.ListSolReportsQuery{SettlementID: id, Limit: limit})
				if err != nil {
					return err
				}
				printSolReports(resp.Reports)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many sols (0 = all)")

	return cmd
}

func newReportsRecordsCommand() *cobra.Command {
	var (
		aborted   bool
		completed bool
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List ended workshop processes of a settlement",
		RunE: func(cmd *cobra.Command, args []string) error {
			if aborted && completed {
				return fmt.Errorf("--aborted and --completed are mutually exclusive")
			}
			id, err := resolveSettlementID()
			if err != nil {
				return err
			}
			query := &settlementQueries.ListProcessRecordsQuery{SettlementID: id}
			if aborted || completed {
				query.Premature = &aborted
			}

			return withReportMediator(func(ctx context.Context, med mediator.Mediator) error {
				resp, err := mediator.Ask[*settlementQueries.ListProcessRecordsResponse](ctx, med, query)
				if err != nil {
					return err
				}
				records := resp.Records
				if len(records) == 0 {
					fmt.Println("No process records found")
					return nil
				}
				fmt.Printf("%-28s %-16s %-20s %-12s %-12s %s\n", "PROCESS", "WORKSHOP", "BUILDING", "STARTED", "ENDED", "OUTCOME")
				for _, r := range records {
					outcome := "completed"
					if r.Premature {
						outcome = "aborted"
					}
					fmt.Printf("%-28s %-16s %-20s %-12s %-12s %s\n",
						r.ProcessName, r.Workshop, r.BuildingName, r.StartedAt, r.EndedAt, outcome)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&aborted, "aborted", false, "Only processes ended prematurely")
	cmd.Flags().BoolVar(&completed, "completed", false, "Only processes that finished")

	return cmd
}

func newReportsArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <path>",
		Short: "Print the sol reports of a run archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := archive.ReadArchive(args[0])
			if err != nil {
				return err
			}
			printSolReports(reports)
			return nil
		},
	}
}

func printSolReports(reports []*settlement.SolReport) {
	if len(reports) == 0 {
		fmt.Println("No sol reports found")
		return
	}
	fmt.Printf("%-22s %5s %7s %9s %8s %7s %5s %8s %9s\n",
		"SETTLEMENT", "SOL", "PULSES", "AVG KW", "PEAK KW", "AVG CU", "POP", "GARAGED", "PROCESSES")
	for _, r := range reports {
		fmt.Printf("%-22s %5d %7d %9.2f %8.2f %7.2f %5d %8d %4d/%-4d\n",
			r.SettlementName, r.Sol, r.Pulses, r.AveragePowerKW, r.PeakPowerKW, r.AverageCUUsage,
			r.Population, r.VehiclesGaraged, r.ProcessesCompleted, r.ProcessesAborted)
	}

	last := reports[0]
	if len(last.Resources) == 0 {
		return
	}
	names := make([]string, 0, len(last.Resources))
	for name := range last.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("\nStock at end of sol %d (%s):\n", last.Sol, last.SettlementName)
	for _, name := range names {
		fmt.Printf("  %-18s %10.2f\n", name, last.Resources[name])
	}
}
