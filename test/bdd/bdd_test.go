package bdd

import (
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/marssim-go/test/bdd/steps"
	"github.com/andrescamacho/marssim-go/test/helpers"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		TestSuiteInitializer: InitializeTestSuite,
		ScenarioInitializer:  InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/domain", "features/application"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// InitializeTestSuite opens the in-memory database the application scenarios share
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		if err := helpers.InitializeSharedTestDB(); err != nil {
			panic(err)
		}
	})
	ctx.AfterSuite(func() {
		_ = helpers.CloseSharedTestDB()
	})
}

func InitializeScenario(sc *godog.ScenarioContext) {
	steps.InitializeActivitySpotScenario(sc)
	steps.InitializeComputationScenario(sc)
	steps.InitializeGarageScenario(sc)
	steps.InitializeQuartersScenario(sc)
	steps.InitializeWorkshopScenario(sc)
	steps.InitializeSimulationScenario(sc)
}
