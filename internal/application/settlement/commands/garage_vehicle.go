package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/application/common"
	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	"github.com/andrescamacho/marssim-go/internal/application/simulation"
	domainSettlement "github.com/andrescamacho/marssim-go/internal/domain/settlement"
	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/unit"
)

// GarageVehicleCommand moves a vehicle from the vicinity into a free garage bay
type GarageVehicleCommand struct {
	SettlementID int
	VehicleID    int
}

// ReleaseVehicleCommand takes a garaged vehicle back outside
type ReleaseVehicleCommand struct {
	SettlementID int
	VehicleID    int
	TransferCrew bool // Crew aboard leave the garage building with the vehicle
}

// VehicleLocationResponse is where the vehicle ended up
type VehicleLocationResponse struct {
	Changed    bool
	BuildingID int
	Location   unit.LocationState
	Position   shared.LocalPosition
}

// GarageVehicleHandler handles both garage and release commands
type GarageVehicleHandler struct {
	world *simulation.World
}

// NewGarageVehicleHandler creates a new GarageVehicleHandler
func NewGarageVehicleHandler(world *simulation.World) *GarageVehicleHandler {
	return &GarageVehicleHandler{world: world}
}

// Handle executes GarageVehicle or ReleaseVehicle
func (h *GarageVehicleHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	switch cmd := request.(type) {
	case *GarageVehicleCommand:
		return h.garage(ctx, cmd)
	case *ReleaseVehicleCommand:
		return h.release(ctx, cmd)
	default:
		return nil, fmt.Errorf("invalid request type: expected *GarageVehicleCommand or *ReleaseVehicleCommand")
	}
}

func (h *GarageVehicleHandler) garage(ctx context.Context, cmd *GarageVehicleCommand) (*VehicleLocationResponse, error) {
	resp := &VehicleLocationResponse{}
	err := h.world.InSettlement(cmd.SettlementID, func(s *domainSettlement.Settlement) error {
		v, err := vehicleIn(s, cmd.VehicleID)
		if err != nil {
			return err
		}
		_, resp.Changed = s.GarageVehicle(v)
		fillLocation(resp, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to garage vehicle: %w", err)
	}
	if !resp.Changed && resp.Location != unit.LocationInsideSettlement {
		common.LoggerFromContext(ctx).Log(shared.LevelInfo, "No garage bay free", map[string]interface{}{
			"settlement": cmd.SettlementID,
			"vehicle":    cmd.VehicleID,
		})
	}
	return resp, nil
}

func (h *GarageVehicleHandler) release(ctx context.Context, cmd *ReleaseVehicleCommand) (*VehicleLocationResponse, error) {
	resp := &VehicleLocationResponse{}
	err := h.world.InSettlement(cmd.SettlementID, func(s *domainSettlement.Settlement) error {
		v, err := vehicleIn(s, cmd.VehicleID)
		if err != nil {
			return err
		}
		resp.Changed = s.ReleaseVehicle(v, cmd.TransferCrew)
		fillLocation(resp, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to release vehicle: %w", err)
	}
	return resp, nil
}

func vehicleIn(s *domainSettlement.Settlement, id int) (*unit.Vehicle, error) {
	v, ok := s.Vehicle(id)
	if !ok {
		return nil, shared.NewNotFoundError("vehicle", fmt.Sprintf("%d", id))
	}
	return v, nil
}

func fillLocation(resp *VehicleLocationResponse, v *unit.Vehicle) {
	resp.BuildingID = v.GarageBuildingID()
	resp.Location = v.LocationState()
	resp.Position = v.ParkedPosition()
}
