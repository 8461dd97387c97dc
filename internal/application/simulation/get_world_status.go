package simulation

import (
	"context"
	"fmt"

	"github.com/andrescamacho/marssim-go/internal/application/mediator"
	"github.com/andrescamacho/marssim-go/internal/domain/marstime"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
)

// GetWorldStatusQuery asks for the clock and a snapshot of every settlement
type GetWorldStatusQuery struct {
	SettlementID int // Optional: limit to one settlement
}

// GetWorldStatusResponse is the world snapshot
type GetWorldStatusResponse struct {
	Now         marstime.MarsTime
	Settlements []settlement.Status
}

// GetWorldStatusHandler handles the GetWorldStatus query
type GetWorldStatusHandler struct {
	world *World
}

func NewGetWorldStatusHandler(world *World) *GetWorldStatusHandler {
	return &GetWorldStatusHandler{world: world}
}

// Handle executes the GetWorldStatus query
func (h *GetWorldStatusHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetWorldStatusQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetWorldStatusQuery")
	}

	resp := &GetWorldStatusResponse{Now: h.world.Now()}
	if query.SettlementID != 0 {
		err := h.world.InSettlement(query.SettlementID, func(s *settlement.Settlement) error {
			resp.Settlements = append(resp.Settlements, s.Status())
			return nil
		})
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	for _, s := range h.world.Settlements() {
		if err := h.world.InSettlement(s.ID(), func(s *settlement.Settlement) error {
			resp.Settlements = append(resp.Settlements, s.Status())
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
