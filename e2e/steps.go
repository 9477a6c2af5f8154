package e2e

import (
	"github.com/cucumber/godog"

	"pcps/e2e/steps/common"
	"pcps/e2e/steps/family"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	family.RegisterSteps(ctx, tc)
}
