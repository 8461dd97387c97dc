package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	"github.com/andrescamacho/marssim-go/internal/application/simulation"
	domainSettlement "github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// ScheduleComputingCommand books computing units on the best node for a window
// of integer millisols [BeginMillisol, EndMillisol).
type ScheduleComputingCommand struct {
	SettlementID  int
	CU            float64
	BeginMillisol int
	EndMillisol   int
}

// ScheduleComputingResponse names the node that took the booking
type ScheduleComputingResponse struct {
	Scheduled  bool
	BuildingID int
}

type ScheduleComputingHandler struct {
	world *simulation.World
}

func NewScheduleComputingHandler(world *simulation.World) *ScheduleComputingHandler {
	return &ScheduleComputingHandler{world: world}
}

// Handle executes the ScheduleComputing command
func (h *ScheduleComputingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ScheduleComputingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ScheduleComputingCommand")
	}
	if cmd.CU <= 0 {
		return nil, shared.NewValidationError("cu", "must be positive")
	}
	if cmd.EndMillisol <= cmd.BeginMillisol {
		return nil, shared.NewValidationError("end_millisol", "window must end after it begins")
	}

	resp := &ScheduleComputingResponse{}
	err := h.world.InSettlement(cmd.SettlementID, func(s *domainSettlement.Settlement) error {
		resp.BuildingID, resp.Scheduled = s.ScheduleComputing(cmd.CU, cmd.BeginMillisol, cmd.EndMillisol)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule computing: %w", err)
	}
	return resp, nil
}
