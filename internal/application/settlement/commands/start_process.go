package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/application/common"
	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	"github.com/andrescamacho/marssim-go/internal/application/simulation"
	"github.com/andrescamacho/marssim-go/internal/domain/function"
	domainSettlement "github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// StartProcessCommand starts a manufacturing or food production process
type StartProcessCommand struct {
	SettlementID int
	BuildingID   int
	Workshop     function.Type // TypeManufacture or TypeFoodProduction
	Process      function.ProcessInfo
	Enqueue      bool // Queue the process when no printer is free
}

// StartProcessResponse reports whether the process runs or waits
type StartProcessResponse struct {
	ProcessID string
	Started   bool
	Queued    bool
}

// StartProcessHandler handles the StartProcess command
type StartProcessHandler struct {
	world *simulation.World
}

// NewStartProcessHandler creates a new StartProcessHandler
func NewStartProcessHandler(world *simulation.World) *StartProcessHandler {
	return &StartProcessHandler{world: world}
}

// Handle executes the StartProcess command
func (h *StartProcessHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartProcessCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartProcessCommand")
	}

	now := h.world.Now()
	resp := &StartProcessResponse{}
	err := h.world.InSettlement(cmd.SettlementID, func(s *domainSettlement.Settlement) error {
		p, started, err := s.StartProcess(cmd.BuildingID, cmd.Workshop, cmd.Process, now, cmd.Enqueue)
		if err != nil {
			return err
		}
		resp.ProcessID = p.ID()
		resp.Started = started
		resp.Queued = !started
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Process.Name, err)
	}

	common.LoggerFromContext(ctx).Log(shared.LevelInfo, "Process submitted", map[string]interface{}{
		"settlement": cmd.SettlementID,
		"building":   cmd.BuildingID,
		"process":    cmd.Process.Name,
		"started":    resp.Started,
	})
	return resp, nil
}
