package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
	"github.com/andrescamacho/marssim-go/internal/domain/spot"
)

// worker is the smallest spot.Worker: just an id
type worker int

func (w worker) ID() int { return int(w) }

type activitySpotContext struct {
	spot    *spot.ActivitySpot
	lease   *spot.AllocatedSpot
	claimed bool
	left    bool
}

func (ac *activitySpotContext) reset() {
	ac.spot = nil
	ac.lease = nil
	ac.claimed = false
	ac.left = false
}

// Given steps

func (ac *activitySpotContext) anEmptyActivitySpot(name string) error {
	ac.spot = spot.NewActivitySpot(name, shared.NewLocalPosition(1, 1))
	return nil
}

// When steps

func (ac *activitySpotContext) workerClaimsTheSpotTemporarily(id int) error {
	return ac.claim(id, false)
}

func (ac *activitySpotContext) workerClaimsTheSpotPermanently(id int) error {
	return ac.claim(id, true)
}

func (ac *activitySpotContext) claim(id int, permanent bool) error {
	if ac.spot == nil {
		return fmt.Errorf("no activity spot available")
	}
	lease := ac.spot.Claim(worker(id), permanent, 1)
	ac.claimed = lease != nil
	if lease != nil {
		ac.lease = lease
	}
	return nil
}

func (ac *activitySpotContext) workerLeavesTheSpot(id int) error {
	if ac.spot == nil {
		return fmt.Errorf("no activity spot available")
	}
	ac.left = ac.spot.Leave(worker(id), false)
	return nil
}

func (ac *activitySpotContext) workerReleasesTheSpot(id int) error {
	if ac.lease == nil {
		return fmt.Errorf("nobody holds a lease on the spot")
	}
	ac.left = ac.lease.Release(worker(id))
	return nil
}

// Then steps

func (ac *activitySpotContext) theClaimShouldSucceed() error {
	if !ac.claimed {
		return fmt.Errorf("expected the claim to succeed, but the spot was taken by %d", ac.spot.OwnerID())
	}
	return nil
}

func (ac *activitySpotContext) theClaimShouldFail() error {
	if ac.claimed {
		return fmt.Errorf("expected the claim to fail, but it succeeded")
	}
	return nil
}

func (ac *activitySpotContext) leavingShouldSucceed() error {
	if !ac.left {
		return fmt.Errorf("expected leaving to succeed, but the spot was kept")
	}
	return nil
}

func (ac *activitySpotContext) leavingShouldFail() error {
	if ac.left {
		return fmt.Errorf("expected leaving to fail, but the spot was freed")
	}
	return nil
}

func (ac *activitySpotContext) theSpotShouldBeOwnedByWorker(id int) error {
	if ac.spot.OwnerID() != id {
		return fmt.Errorf("expected owner %d, got %d", id, ac.spot.OwnerID())
	}
	return nil
}

func (ac *activitySpotContext) theSpotShouldBeEmpty() error {
	if !ac.spot.IsEmpty() {
		return fmt.Errorf("expected the spot to be empty, but %d owns it", ac.spot.OwnerID())
	}
	if ac.spot.IsPermanent() {
		return fmt.Errorf("an empty spot should not keep a permanent claim")
	}
	return nil
}

func InitializeActivitySpotScenario(ctx *godog.ScenarioContext) {
	ac := &activitySpotContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		ac.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty activity spot "([^"]*)"$`, ac.anEmptyActivitySpot)

	// When steps
	ctx.Step(`^worker (\d+) claims the spot temporarily$`, ac.workerClaimsTheSpotTemporarily)
	ctx.Step(`^worker (\d+) claims the spot permanently$`, ac.workerClaimsTheSpotPermanently)
	ctx.Step(`^worker (\d+) leaves the spot$`, ac.workerLeavesTheSpot)
	ctx.Step(`^worker (\d+) releases the spot$`, ac.workerReleasesTheSpot)

	// Then steps
	ctx.Step(`^the claim should succeed$`, ac.theClaimShouldSucceed)
	ctx.Step(`^the claim should fail$`, ac.theClaimShouldFail)
	ctx.Step(`^leaving should succeed$`, ac.leavingShouldSucceed)
	ctx.Step(`^leaving should fail$`, ac.leavingShouldFail)
	ctx.Step(`^the spot should be owned by worker (\d+)$`, ac.theSpotShouldBeOwnedByWorker)
	ctx.Step(`^the spot should be empty$`, ac.theSpotShouldBeEmpty)
}
