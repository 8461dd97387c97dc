package steps

import (
	"context"
	"fmt"
	"math"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
)

type computationContext struct {
	colony   *colony
	node     *function.Computation
	accepted bool
}

func (cc *computationContext) reset() {
	cc.colony = nil
	cc.node = nil
	cc.accepted = false
}

// Given steps

func (cc *computationContext) aComputingNodeWithAPeakOfCU(peak float64) error {
	c, err := newColony()
	if err != nil {
		return err
	}
	b, err := c.place("Server Farm 1", "Server Farm", function.Spec{
		Type:       function.TypeComputation,
		TechLevel:  3,
		Properties: map[string]interface{}{"computing-unit": peak},
	})
	if err != nil {
		return err
	}
	node, ok := b.Computation()
	if !ok {
		return fmt.Errorf("%s has no computation function", b.Name())
	}
	cc.colony = c
	cc.node = node
	return nil
}

// When steps

func (cc *computationContext) iScheduleCUFromMillisolTo(needed float64, begin, end int) error {
	if cc.node == nil {
		return fmt.Errorf("no computing node available")
	}
	cc.accepted = cc.node.ScheduleTask(needed, begin, end)
	return nil
}

func (cc *computationContext) theNodeGainsEntropy(delta float64) error {
	cc.node.IncreaseEntropy(delta)
	return nil
}

func (cc *computationContext) theNodeLosesEntropy(delta float64) error {
	cc.node.ReduceEntropy(delta)
	return nil
}

// Then steps

func (cc *computationContext) theBookingShouldBeAccepted() error {
	if !cc.accepted {
		return fmt.Errorf("expected the booking to be accepted, but it was rejected")
	}
	return nil
}

func (cc *computationContext) theBookingShouldBeRejected() error {
	if cc.accepted {
		return fmt.Errorf("expected the booking to be rejected, but it was accepted")
	}
	return nil
}

func (cc *computationContext) theDemandAtMillisolShouldBeCU(msol int, expected float64) error {
	if got := cc.node.ScheduledDemand(msol); math.Abs(got-expected) > 1e-9 {
		return fmt.Errorf("expected %g CU at millisol %d, got %g", expected, msol, got)
	}
	return nil
}

func (cc *computationContext) theEntropyShouldEqualTheMaximum() error {
	if got, max := cc.node.Entropy(), cc.node.MaxEntropy(); math.Abs(got-max) > 1e-9 {
		return fmt.Errorf("expected entropy %g, got %g", max, got)
	}
	return nil
}

func (cc *computationContext) theEntropyShouldEqualMinusHalfTheMaximum() error {
	want := -0.5 * cc.node.MaxEntropy()
	if got := cc.node.Entropy(); math.Abs(got-want) > 1e-9 {
		return fmt.Errorf("expected entropy %g, got %g", want, got)
	}
	return nil
}

func InitializeComputationScenario(ctx *godog.ScenarioContext) {
	cc := &computationContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a computing node with a peak of ([0-9.]+) CU$`, cc.aComputingNodeWithAPeakOfCU)

	// When steps
	ctx.Step(`^I schedule ([0-9.]+) CU from millisol (\d+) to (\d+)$`, cc.iScheduleCUFromMillisolTo)
	ctx.Step(`^the node gains ([0-9.]+) entropy$`, cc.theNodeGainsEntropy)
	ctx.Step(`^the node loses ([0-9.]+) entropy$`, cc.theNodeLosesEntropy)

	// Then steps
	ctx.Step(`^the booking should be accepted$`, cc.theBookingShouldBeAccepted)
	ctx.Step(`^the booking should be rejected$`, cc.theBookingShouldBeRejected)
	ctx.Step(`^the demand at millisol (\d+) should be ([0-9.]+) CU$`, cc.theDemandAtMillisolShouldBeCU)
	ctx.Step(`^the entropy should equal the maximum$`, cc.theEntropyShouldEqualTheMaximum)
	ctx.Step(`^the entropy should equal minus half the maximum$`, cc.theEntropyShouldEqualMinusHalfTheMaximum)
}
