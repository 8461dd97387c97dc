package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/andrescamacho/marssim-go/internal/adapters/metrics"
	"github.com/andrescamacho/marssim-go/internal/application/common"
	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// RunSimulationCommand advances the world clock by Sols sols in pulses of
// PulseMillisols, persisting what the settlements produce along the way.
type RunSimulationCommand struct {
	Sols           float64 // Required: sols to simulate, fractions allowed
	PulseMillisols float64 // Required: clock step, at most one sol
	RunID          string  // Optional: generated when empty
}

// RunSimulationResponse summarises a run
type RunSimulationResponse struct {
	RunID          string
	Start          marstime.MarsTime
	End            marstime.MarsTime
	Pulses         int
	Reports        []*settlement.SolReport
	ProcessRecords int
	Cancelled      bool
}

// RunSimulationHandler drives the world clock
type RunSimulationHandler struct {
	world      *World
	reportRepo settlement.SolReportRepository
	recordRepo settlement.ProcessRecordRepository
	publishers []settlement.ReportPublisher
}

// NewRunSimulationHandler creates a new RunSimulationHandler. The repositories
// may be nil, in which case results are only returned and published.
func NewRunSimulationHandler(
	world *World,
	reportRepo settlement.SolReportRepository,
	recordRepo settlement.ProcessRecordRepository,
	publishers ...settlement.ReportPublisher,
) *RunSimulationHandler {
	return &RunSimulationHandler{
		world:      world,
		reportRepo: reportRepo,
		recordRepo: recordRepo,
		publishers: publishers,
	}
}

// Handle executes the RunSimulation command
func (h *RunSimulationHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RunSimulationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunSimulationCommand")
	}
	if cmd.Sols <= 0 {
		return nil, shared.NewValidationError("sols", "must be positive")
	}
	if cmd.PulseMillisols <= 0 || cmd.PulseMillisols > marstime.MillisolsPerSol {
		return nil, shared.NewValidationError("pulse_millisols", fmt.Sprintf("must be in (0, %d]", marstime.MillisolsPerSol))
	}

	logger := common.LoggerFromContext(ctx)
	resp := &RunSimulationResponse{
		RunID: cmd.RunID,
		Start: h.world.Now(),
	}
	if resp.RunID == "" {
		resp.RunID = uuid.New().String()
	}
	logger.Log(shared.LevelInfo, "Starting simulation run", map[string]interface{}{
		"run_id":      resp.RunID,
		"start":       resp.Start.String(),
		"sols":        cmd.Sols,
		"pulse":       cmd.PulseMillisols,
		"settlements": len(h.world.Settlements()),
	})

	remaining := cmd.Sols * marstime.MillisolsPerSol
	for remaining > 1e-9 {
		elapsed := math.Min(cmd.PulseMillisols, remaining)
		if _, err := h.world.Step(ctx, elapsed); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				resp.Cancelled = true
				break
			}
			return nil, fmt.Errorf("pulse %d failed: %w", resp.Pulses+1, err)
		}
		remaining -= elapsed
		resp.Pulses++
		metrics.RecordPulse(elapsed)

		if err := h.collect(ctx, resp); err != nil {
			return nil, err
		}
	}

	resp.End = h.world.Now()
	logger.Log(shared.LevelInfo, "Simulation run finished", map[string]interface{}{
		"run_id":    resp.RunID,
		"end":       resp.End.String(),
		"pulses":    resp.Pulses,
		"reports":   len(resp.Reports),
		"cancelled": resp.Cancelled,
	})
	return resp, nil
}

// collect drains every settlement after a pulse and hands the results to the
// repositories, publishers and metrics.
func (h *RunSimulationHandler) collect(ctx context.Context, resp *RunSimulationResponse) error {
	// A cancelled run still saves the sol it has just closed
	saveCtx := context.WithoutCancel(ctx)

	for _, s := range h.world.Settlements() {
		records := s.DrainProcessRecords()
		for _, rec := range records {
			metrics.RecordProcessEnded(s.Name(), rec)
		}
		if len(records) > 0 && h.recordRepo != nil {
			if err := h.recordRepo.SaveAll(saveCtx, s.ID(), records); err != nil {
				return fmt.Errorf("failed to save process records for %s: %w", s.Name(), err)
			}
		}
		resp.ProcessRecords += len(records)

		reports := s.DrainSolReports()
		for _, report := range reports {
			if h.reportRepo != nil {
				if err := h.reportRepo.Save(saveCtx, report); err != nil {
					return fmt.Errorf("failed to save sol %d report for %s: %w", report.Sol, s.Name(), err)
				}
			}
			for _, pub := range h.publishers {
				pub.Publish(report)
			}
			metrics.RecordSolReport(report)
		}
		resp.Reports = append(resp.Reports, reports...)

		metrics.RecordSettlementStatus(s.Status())
	}
	return nil
}
