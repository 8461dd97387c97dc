package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/application/common"
	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	"github.com/andrescamacho/marssim-go/internal/application/simulation"
	domainSettlement "github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// AllocateBedCommand finds a bed for a resident
type AllocateBedCommand struct {
	SettlementID int  // Required
	PersonID     int  // Required
	Permanent    bool // Residents get permanent beds, visitors temporary ones
}

// AllocateBedResponse describes the bed, if one was found
type AllocateBedResponse struct {
	Allocated  bool
	BuildingID int
	BedName    string
	Position   shared.LocalPosition
	Permanent  bool
}

// AllocateBedHandler handles the AllocateBed command
type AllocateBedHandler struct {
	world *simulation.World
}

// NewAllocateBedHandler creates a new AllocateBedHandler
func NewAllocateBedHandler(world *simulation.World) *AllocateBedHandler {
	return &AllocateBedHandler{world: world}
}

// Handle executes the AllocateBed command
func (h *AllocateBedHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*AllocateBedCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AllocateBedCommand")
	}

	resp := &AllocateBedResponse{}
	err := h.world.InSettlement(cmd.SettlementID, func(s *domainSettlement.Settlement) error {
		p, ok := s.Person(cmd.PersonID)
		if !ok {
			return shared.NewNotFoundError("person", fmt.Sprintf("%d", cmd.PersonID))
		}
		bed := s.AllocateBed(p, cmd.Permanent)
		if bed == nil {
			return nil
		}
		resp.Allocated = true
		resp.BuildingID = bed.BuildingID()
		resp.BedName = bed.Spot().Name()
		resp.Position = bed.Spot().Position()
		resp.Permanent = bed.Spot().IsPermanent()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate bed: %w", err)
	}

	common.LoggerFromContext(ctx).Log(shared.LevelDebug, "Bed allocation", map[string]interface{}{
		"settlement": cmd.SettlementID,
		"person":     cmd.PersonID,
		"allocated":  resp.Allocated,
		"building":   resp.BuildingID,
	})
	return resp, nil
}
